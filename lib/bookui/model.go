// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package bookui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wnma3mz/xiyou-diagrams/lib/chapter"
	"github.com/wnma3mz/xiyou-diagrams/lib/diagram"
	"github.com/wnma3mz/xiyou-diagrams/lib/panzoom"
	"github.com/wnma3mz/xiyou-diagrams/lib/tui"
)

// FocusRegion identifies which pane has keyboard focus.
type FocusRegion int

const (
	// FocusContent means navigation keys scroll the content pane, or
	// pan the focused diagram surface when one is focused.
	FocusContent FocusRegion = iota
	// FocusSidebar means navigation keys move the chapter list cursor.
	FocusSidebar
	// FocusFilter means keystrokes go to the filter input.
	FocusFilter
)

// Sidebar layout constants.
const (
	sidebarPreferredWidth = 32
	panStepX              = 2.0
	panStepY              = 1.0
)

// surfaceRegion maps a diagram surface to its line range in the
// content body, for mouse hit testing and scroll-into-view.
type surfaceRegion struct {
	surface   int // Index into Model.surfaces.
	startLine int // Inclusive first body line.
	endLine   int // Exclusive last body line.
}

// Model is the top-level bubbletea model for the chapter viewer.
type Model struct {
	collection chapter.Collection
	renderer   diagram.Renderer
	theme      tui.Theme
	keys       KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// Chapter selection state. activeIndex always indexes the
	// unfiltered collection and is never cleared by filtering.
	activeIndex int
	filter      FilterModel
	sidebarOpen bool

	// Sidebar list state over the filtered view.
	filtered      []SidebarEntry
	sidebarCursor int
	sidebarScroll int

	focusRegion FocusRegion
	priorFocus  FocusRegion // Saved focus when entering filter mode.

	// Content pane: scrollable body of the active chapter.
	content        viewport.Model
	surfaces       []*surface
	surfaceRegions []surfaceRegion
	focusedSurface int // Index into surfaces; -1 when none.

	// renderSeq is the global render request counter. Globally
	// monotonic rather than per-surface so a request issued before a
	// chapter switch can never collide with one issued after
	// returning to the same chapter.
	renderSeq uint64

	// zoomStep overrides the default zoom factor when greater than 1.
	zoomStep float64

	// Mouse drag panning state.
	draggingSurface int // Index of the surface being drag-panned; -1 when none.
	dragLastX       int
	dragLastY       int

	// Status bar notices.
	clipboardNotice string
	logNotice       string
	logLevel        slog.Level

	// Render commands for the initial chapter, issued by Init.
	initialRenders []tea.Cmd
}

// NewModel creates a Model over the given chapter collection. The
// first chapter is active; its diagram renders are issued by Init.
func NewModel(collection chapter.Collection, renderer diagram.Renderer) Model {
	model := Model{
		collection:      collection,
		renderer:        renderer,
		theme:           tui.DefaultTheme,
		keys:            DefaultKeyMap,
		focusRegion:     FocusContent,
		focusedSurface:  -1,
		draggingSurface: -1,
		content:         viewport.New(0, 0),
	}
	model.filtered = model.filter.Apply(collection)
	model.initialRenders = model.rebuildSurfaces()
	return model
}

// SetZoomStep overrides the per-keystroke zoom factor. Values at or
// below 1 keep the default.
func (model *Model) SetZoomStep(step float64) {
	model.zoomStep = step
}

// Init implements tea.Model. Issues the render commands for the
// initial chapter's diagram surfaces.
func (model Model) Init() tea.Cmd {
	if len(model.initialRenders) == 0 {
		return nil
	}
	return tea.Batch(model.initialRenders...)
}

// Update implements tea.Model. Routes keyboard events based on the
// current focus region and handles async render completions.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		// When the filter is active, route all input to it first,
		// except for Esc (clear) and Enter (confirm).
		if model.focusRegion == FocusFilter {
			return model.handleFilterKeys(message)
		}

		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit

		case key.Matches(message, model.keys.FocusToggle):
			if model.focusRegion == FocusSidebar {
				model.focusRegion = FocusContent
			} else {
				if !model.sidebarOpen {
					model.toggleSidebar(true)
				}
				model.focusRegion = FocusSidebar
			}

		case key.Matches(message, model.keys.SidebarToggle):
			model.toggleSidebar(!model.sidebarOpen)

		case key.Matches(message, model.keys.FilterActivate):
			if !model.sidebarOpen {
				model.toggleSidebar(true)
			}
			model.priorFocus = model.focusRegion
			model.focusRegion = FocusFilter
			model.filter.Active = true
			// Reset the list position so results are visible from the
			// top as the user types.
			model.sidebarCursor = 0
			model.sidebarScroll = 0

		case key.Matches(message, model.keys.Share):
			active := model.collection[model.activeIndex]
			reference := fmt.Sprintf("xiyou://chapter/%d — %s", active.Num, active.Title)
			model.clipboardNotice = reference
			return model, copyToClipboard(reference)

		case key.Matches(message, model.keys.FilterClear):
			switch {
			case model.focusRegion == FocusContent && model.focusedSurface >= 0:
				model.focusedSurface = -1
				model.refreshContent()
			case model.filter.Input != "":
				model.filter.Clear()
				model.applyFilter()
			case model.sidebarOpen && model.focusRegion == FocusSidebar:
				model.toggleSidebar(false)
			}

		default:
			if model.focusRegion == FocusSidebar {
				if cmd := model.handleSidebarKeys(message); cmd != nil {
					return model, cmd
				}
			} else {
				model.handleContentKeys(message)
			}
		}

	case tea.MouseMsg:
		if cmd := model.handleMouse(message); cmd != nil {
			return model, cmd
		}

	case diagramRenderedMsg:
		model.commitRender(message)

	case clipboardFadeMsg:
		model.clipboardNotice = ""

	case logRecordMsg:
		model.logNotice = message.Summary
		model.logLevel = message.Level
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{}
		})

	case logRecordFadeMsg:
		model.logNotice = ""

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.updatePaneSizes()
	}
	return model, nil
}

// selectChapter makes the chapter at index (into the unfiltered
// collection) active: closes the sidebar, scrolls the content pane to
// the top, rebuilds the diagram surfaces, and returns the render
// commands for them. Selecting the already-active index still closes
// the sidebar and scrolls.
//
// Callers resolve the index through chapter identity (Num), so an
// out-of-range index is a programming error and panics.
func (model *Model) selectChapter(index int) []tea.Cmd {
	if index < 0 || index >= len(model.collection) {
		panic(fmt.Sprintf("chapter index %d out of range (%d chapters)", index, len(model.collection)))
	}
	model.activeIndex = index
	model.sidebarOpen = false
	model.focusRegion = FocusContent
	model.content.GotoTop()
	model.updatePaneSizes()
	return model.rebuildSurfaces()
}

// rebuildSurfaces replaces the diagram surfaces with fresh pending
// ones for the active chapter and returns one render command per
// surface. Old surfaces are dropped wholesale, so results still in
// flight for them can never land.
func (model *Model) rebuildSurfaces() []tea.Cmd {
	active := model.collection[model.activeIndex]
	model.surfaces = make([]*surface, len(active.Diagrams))
	model.focusedSurface = -1

	var commands []tea.Cmd
	for position, source := range active.Diagrams {
		model.renderSeq++
		box := &surface{
			id:        fmt.Sprintf("%d/%d", active.Num, position),
			source:    source,
			status:    surfacePending,
			seq:       model.renderSeq,
			transform: panzoom.Identity(),
		}
		model.surfaces[position] = box
		commands = append(commands, renderDiagram(model.renderer, box.id, box.seq, source))
	}

	model.refreshContent()
	return commands
}

// commitRender applies a completed render attempt. Results for a
// surface that no longer exists, or tagged with a sequence older than
// the surface's latest request, are discarded: only the last request
// per surface wins.
func (model *Model) commitRender(message diagramRenderedMsg) {
	box := model.surfaceByID(message.surfaceID)
	if box == nil || box.seq != message.seq {
		return
	}

	if message.err != nil {
		box.status = surfaceFailed
		box.failure = message.err.Error()
	} else {
		box.status = surfaceRendered
		box.lines = strings.Split(strings.TrimRight(message.markup, "\n"), "\n")
	}
	model.refreshContent()
}

// surfaceByID finds a current surface by its identifier, or nil.
func (model *Model) surfaceByID(id string) *surface {
	for _, box := range model.surfaces {
		if box.id == id {
			return box
		}
	}
	return nil
}

// applyFilter recomputes the filtered sidebar view for the current
// query. The active chapter is untouched: filtering
// narrows the list, never the open document.
func (model *Model) applyFilter() {
	model.filtered = model.filter.Apply(model.collection)
	model.sidebarCursor = 0
	model.sidebarScroll = 0
}

// toggleSidebar opens or closes the sidebar and moves focus to the
// pane that remains visible.
func (model *Model) toggleSidebar(open bool) {
	if model.sidebarOpen == open {
		return
	}
	model.sidebarOpen = open
	if open {
		model.focusRegion = FocusSidebar
		// Put the cursor on the active chapter when it is in view.
		for index, entry := range model.filtered {
			if entry.Index == model.activeIndex {
				model.sidebarCursor = index
				break
			}
		}
		model.ensureSidebarCursorVisible()
	} else {
		model.focusRegion = FocusContent
	}
	model.updatePaneSizes()
}

// handleFilterKeys processes keystrokes when the filter input has
// focus. Only the query changes here; the active chapter never does.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		// ctrl+c always quits, even in filter mode.
		if message.Type == tea.KeyCtrlC {
			return model, tea.Quit
		}
		// 'q' is a regular character in filter mode.
		model.filter.HandleRune('q')
		model.applyFilter()
		return model, nil

	case key.Matches(message, model.keys.FilterClear):
		// Esc: clear the text if any, otherwise exit filter mode.
		if model.filter.Input != "" {
			model.filter.Clear()
			model.applyFilter()
		} else {
			model.filter.Active = false
			model.focusRegion = model.priorFocus
		}
		return model, nil

	case message.Type == tea.KeyEnter:
		// Confirm the filter and return focus to the sidebar list.
		model.filter.Active = false
		model.focusRegion = FocusSidebar
		return model, nil

	case message.Type == tea.KeyBackspace:
		if model.filter.HandleBackspace() {
			model.applyFilter()
		}
		return model, nil

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		for _, character := range message.Runes {
			model.filter.HandleRune(character)
		}
		model.applyFilter()
		return model, nil
	}

	return model, nil
}

// handleSidebarKeys processes navigation keys when the sidebar list
// has focus. Returns a command when Enter selects a chapter.
func (model *Model) handleSidebarKeys(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, model.keys.Up):
		if model.sidebarCursor > 0 {
			model.sidebarCursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.sidebarCursor < len(model.filtered)-1 {
			model.sidebarCursor++
		}

	case key.Matches(message, model.keys.PageUp):
		model.sidebarCursor -= model.visibleHeight()
		if model.sidebarCursor < 0 {
			model.sidebarCursor = 0
		}

	case key.Matches(message, model.keys.PageDown):
		model.sidebarCursor += model.visibleHeight()
		if model.sidebarCursor >= len(model.filtered) {
			model.sidebarCursor = len(model.filtered) - 1
		}
		if model.sidebarCursor < 0 {
			model.sidebarCursor = 0
		}

	case key.Matches(message, model.keys.Home):
		model.sidebarCursor = 0

	case key.Matches(message, model.keys.End):
		if len(model.filtered) > 0 {
			model.sidebarCursor = len(model.filtered) - 1
		}

	case message.Type == tea.KeyEnter:
		return model.selectSidebarRow(model.sidebarCursor)
	}

	model.ensureSidebarCursorVisible()
	return nil
}

// selectSidebarRow resolves the filtered row back to its position in
// the unfiltered collection by chapter number and selects it. A row
// outside the filtered view is ignored (the view may be empty).
func (model *Model) selectSidebarRow(row int) tea.Cmd {
	if row < 0 || row >= len(model.filtered) {
		return nil
	}
	entry := model.filtered[row]
	index := model.collection.IndexOfNum(entry.Chapter.Num)
	if index < 0 {
		return nil
	}
	return tea.Batch(model.selectChapter(index)...)
}

// handleContentKeys processes navigation keys when the content pane
// has focus. With a focused diagram surface, movement keys pan that
// surface; otherwise they scroll the viewport.
func (model *Model) handleContentKeys(message tea.KeyMsg) {
	if model.focusedSurface >= 0 && model.handleDiagramKeys(message) {
		return
	}

	switch {
	case key.Matches(message, model.keys.Up):
		model.content.LineUp(1)
	case key.Matches(message, model.keys.Down):
		model.content.LineDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.content.HalfViewUp()
	case key.Matches(message, model.keys.PageDown):
		model.content.HalfViewDown()
	case key.Matches(message, model.keys.Home),
		key.Matches(message, model.keys.ScrollTop):
		model.content.GotoTop()
	case key.Matches(message, model.keys.End):
		model.content.GotoBottom()
	case key.Matches(message, model.keys.NextDiagram):
		model.cycleFocusedSurface(1)
	case key.Matches(message, model.keys.PreviousDiagram):
		model.cycleFocusedSurface(-1)
	}
}

// handleDiagramKeys applies pan/zoom keys to the focused surface.
// Returns false for keys the surface does not consume, which then
// fall through to content scrolling.
func (model *Model) handleDiagramKeys(message tea.KeyMsg) bool {
	box := model.surfaces[model.focusedSurface]
	viewWidth := model.surfaceInnerWidth()

	switch {
	case key.Matches(message, model.keys.ZoomIn):
		box.transform = box.transform.ZoomInBy(model.zoomStep, viewWidth, surfaceInnerHeight)

	case key.Matches(message, model.keys.ZoomOut):
		box.transform = box.transform.ZoomOutBy(model.zoomStep, viewWidth, surfaceInnerHeight)

	case key.Matches(message, model.keys.ZoomReset):
		box.transform = box.transform.Reset()

	case key.Matches(message, model.keys.CenterDiagram):
		contentWidth, contentHeight := panzoom.ContentSize(box.lines)
		box.transform = box.transform.Center(contentWidth, contentHeight, viewWidth, surfaceInnerHeight)

	case key.Matches(message, model.keys.Left):
		box.transform = box.transform.Pan(panStepX, 0)

	case key.Matches(message, model.keys.Right):
		box.transform = box.transform.Pan(-panStepX, 0)

	case key.Matches(message, model.keys.Up):
		box.transform = box.transform.Pan(0, panStepY)

	case key.Matches(message, model.keys.Down):
		box.transform = box.transform.Pan(0, -panStepY)

	default:
		return false
	}

	model.refreshContent()
	return true
}

// cycleFocusedSurface moves the focused-diagram cursor by delta.
// Cycling past either end drops the focus (no surface focused), so
// repeated presses walk all surfaces and return to plain scrolling.
func (model *Model) cycleFocusedSurface(delta int) {
	count := len(model.surfaces)
	if count == 0 {
		return
	}
	next := model.focusedSurface + delta
	if next >= count || next < -1 {
		next = -1
	}
	model.focusedSurface = next
	model.refreshContent()
	model.scrollSurfaceIntoView()
}

// scrollSurfaceIntoView adjusts the content scroll so the focused
// surface's box is fully visible when possible.
func (model *Model) scrollSurfaceIntoView() {
	if model.focusedSurface < 0 {
		return
	}
	for _, region := range model.surfaceRegions {
		if region.surface != model.focusedSurface {
			continue
		}
		top := model.content.YOffset
		bottom := top + model.content.Height
		if region.startLine < top {
			model.content.SetYOffset(region.startLine)
		} else if region.endLine > bottom {
			model.content.SetYOffset(region.endLine - model.content.Height)
		}
		return
	}
}

// handleMouse routes mouse events: wheel scrolls the pane under the
// pointer, a click in the sidebar selects the clicked chapter, and a
// press-drag on a diagram surface pans it 1:1 with the pointer.
func (model *Model) handleMouse(message tea.MouseMsg) tea.Cmd {
	contentStart := model.contentStartY()
	inContentArea := message.Y >= contentStart && message.Y < model.height-2

	sidebarWidth := 0
	if model.sidebarOpen {
		sidebarWidth = model.sidebarWidth()
	}
	inSidebar := model.sidebarOpen && message.X < sidebarWidth

	// Active drag: motion pans, release ends.
	if model.draggingSurface >= 0 {
		if message.Action == tea.MouseActionRelease {
			model.draggingSurface = -1
			return nil
		}
		if message.Action == tea.MouseActionMotion && model.draggingSurface < len(model.surfaces) {
			box := model.surfaces[model.draggingSurface]
			box.transform = box.transform.Pan(
				float64(message.X-model.dragLastX),
				float64(message.Y-model.dragLastY),
			)
			model.dragLastX = message.X
			model.dragLastY = message.Y
			model.refreshContent()
		}
		return nil
	}

	switch message.Button {
	case tea.MouseButtonWheelUp:
		if !inContentArea {
			return nil
		}
		if inSidebar {
			model.scrollSidebar(-3)
		} else {
			model.content.LineUp(3)
		}

	case tea.MouseButtonWheelDown:
		if !inContentArea {
			return nil
		}
		if inSidebar {
			model.scrollSidebar(3)
		} else {
			model.content.LineDown(3)
		}

	case tea.MouseButtonLeft:
		if message.Action != tea.MouseActionPress || !inContentArea {
			return nil
		}
		if inSidebar {
			model.focusRegion = FocusSidebar
			row := model.sidebarScroll + message.Y - contentStart
			if row >= 0 && row < len(model.filtered) {
				model.sidebarCursor = row
				return model.selectSidebarRow(row)
			}
			return nil
		}

		// Click in the content pane: focus it, and when the click
		// lands on a diagram surface, focus that surface and start a
		// drag pan.
		model.focusRegion = FocusContent
		bodyLine := model.content.YOffset + message.Y - contentStart
		for _, region := range model.surfaceRegions {
			if bodyLine >= region.startLine && bodyLine < region.endLine {
				model.focusedSurface = region.surface
				model.draggingSurface = region.surface
				model.dragLastX = message.X
				model.dragLastY = message.Y
				model.refreshContent()
				return nil
			}
		}
	}
	return nil
}

// scrollSidebar shifts the sidebar scroll window by delta rows,
// keeping the cursor inside the visible range.
func (model *Model) scrollSidebar(delta int) {
	visible := model.visibleHeight()
	maxScroll := len(model.filtered) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}

	model.sidebarScroll += delta
	if model.sidebarScroll < 0 {
		model.sidebarScroll = 0
	}
	if model.sidebarScroll > maxScroll {
		model.sidebarScroll = maxScroll
	}

	if model.sidebarCursor < model.sidebarScroll {
		model.sidebarCursor = model.sidebarScroll
	}
	if model.sidebarCursor >= model.sidebarScroll+visible {
		model.sidebarCursor = model.sidebarScroll + visible - 1
	}
}

// ensureSidebarCursorVisible adjusts the sidebar scroll so the cursor
// row is within the visible window.
func (model *Model) ensureSidebarCursorVisible() {
	visible := model.visibleHeight()
	if visible <= 0 {
		return
	}

	maxScroll := len(model.filtered) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if model.sidebarScroll > maxScroll {
		model.sidebarScroll = maxScroll
	}

	if model.sidebarCursor < model.sidebarScroll {
		model.sidebarScroll = model.sidebarCursor
	}
	if model.sidebarCursor >= model.sidebarScroll+visible {
		model.sidebarScroll = model.sidebarCursor - visible + 1
	}
}

// updatePaneSizes recalculates pane dimensions after a resize or
// sidebar toggle.
func (model *Model) updatePaneSizes() {
	// Left padding column plus scrollbar column.
	model.content.Width = model.contentWidth() - 2
	if model.content.Width < 10 {
		model.content.Width = 10
	}
	model.content.Height = model.visibleHeight()
	model.refreshContent()
}

// contentStartY returns the Y coordinate where the content area
// begins. The top chrome is always exactly one row: either the
// header line or the filter bar replacing it.
func (model Model) contentStartY() int {
	return 1
}

// visibleHeight returns the rows available between the top chrome and
// the bottom separator plus help bar.
func (model Model) visibleHeight() int {
	return model.height - model.contentStartY() - 2
}

// sidebarWidth returns the sidebar pane width in columns.
func (model Model) sidebarWidth() int {
	width := sidebarPreferredWidth
	if model.width > 0 && width > model.width/2 {
		width = model.width / 2
	}
	return width
}

// contentWidth returns the width available to the content pane,
// accounting for the sidebar and its divider when open.
func (model Model) contentWidth() int {
	if !model.sidebarOpen {
		return model.width
	}
	return model.width - model.sidebarWidth() - 1
}

// surfaceInnerWidth returns the width of the diagram grid inside a
// surface box (content width minus border columns).
func (model Model) surfaceInnerWidth() int {
	width := model.content.Width - 2
	if width < surfaceMinWidth-2 {
		width = surfaceMinWidth - 2
	}
	return width
}
