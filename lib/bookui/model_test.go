// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package bookui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wnma3mz/xiyou-diagrams/lib/chapter"
	"github.com/wnma3mz/xiyou-diagrams/lib/diagram"
)

// testCollection builds a small chapter set covering the shapes the
// model has to handle: one diagram, several diagrams, and none.
func testCollection() chapter.Collection {
	return chapter.Collection{
		{
			Num:      1,
			Title:    "灵根育孕源流出 心性修持大道生",
			Diagrams: []string{"graph TD\n  stone[仙石] --> monkey[石猴]"},
			InterestTable: "| 人物 | 出场 |\n| --- | --- |\n| 石猴 | 花果山 |\n",
		},
		{
			Num:   7,
			Title: "八卦炉中逃大圣 五行山下定心猿",
			Diagrams: []string{
				"graph LR\n  furnace[八卦炉] --> escape[逃出]",
				"graph LR\n  escape --> mountain[五行山]",
			},
		},
		{
			Num:           14,
			Title:         "心猿归正 六贼无踪",
			InterestTable: "紧箍咒 binds the Monkey King for the first time.\n",
		},
	}
}

// stubRenderer returns a renderer that always produces the given
// output and error without shelling out.
func stubRenderer(output string, err error) diagram.Renderer {
	return diagram.Func(func(context.Context, string, string) (string, error) {
		return output, err
	})
}

func TestNewModel(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))

	if model.activeIndex != 0 {
		t.Errorf("initial active chapter should be 0, got %d", model.activeIndex)
	}
	if model.focusRegion != FocusContent {
		t.Errorf("initial focus should be content, got %d", model.focusRegion)
	}
	if model.sidebarOpen {
		t.Error("sidebar should start closed")
	}
	if len(model.filtered) != 3 {
		t.Fatalf("empty filter should show all 3 chapters, got %d", len(model.filtered))
	}

	// Chapter 1 has a single diagram, so one pending surface and one
	// render command from Init.
	if len(model.surfaces) != 1 {
		t.Fatalf("expected 1 surface for the first chapter, got %d", len(model.surfaces))
	}
	if model.surfaces[0].status != surfacePending {
		t.Error("surfaces should start pending")
	}
	if model.surfaces[0].id != "1/0" {
		t.Errorf("surface id should be 1/0, got %s", model.surfaces[0].id)
	}
	if model.Init() == nil {
		t.Error("Init should issue render commands for the initial chapter")
	}
	if model.focusedSurface != -1 {
		t.Error("no surface should be focused initially")
	}
}

func TestSelectChapter(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	model.sidebarOpen = true

	commands := model.selectChapter(1)

	if model.activeIndex != 1 {
		t.Errorf("active chapter should be 1, got %d", model.activeIndex)
	}
	if model.sidebarOpen {
		t.Error("selecting a chapter should close the sidebar")
	}
	if model.focusRegion != FocusContent {
		t.Error("selecting a chapter should focus the content pane")
	}
	if len(model.surfaces) != 2 {
		t.Fatalf("chapter 7 has 2 diagrams, got %d surfaces", len(model.surfaces))
	}
	if len(commands) != 2 {
		t.Fatalf("expected 2 render commands, got %d", len(commands))
	}
	for _, box := range model.surfaces {
		if box.status != surfacePending {
			t.Error("fresh surfaces should be pending")
		}
	}

	// A chapter without diagrams produces no surfaces and no commands.
	commands = model.selectChapter(2)
	if len(model.surfaces) != 0 {
		t.Errorf("chapter 14 has no diagrams, got %d surfaces", len(model.surfaces))
	}
	if len(commands) != 0 {
		t.Errorf("expected no render commands, got %d", len(commands))
	}
}

func TestSelectChapterOutOfRangePanics(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))

	defer func() {
		if recover() == nil {
			t.Error("selecting an out-of-range chapter index should panic")
		}
	}()
	model.selectChapter(3)
}

func TestCommitRender(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	box := model.surfaces[0]

	model.commitRender(diagramRenderedMsg{
		surfaceID: box.id,
		seq:       box.seq,
		markup:    "+---+\n| A |\n+---+\n",
	})

	if box.status != surfaceRendered {
		t.Fatalf("surface should be rendered, got status %d", box.status)
	}
	if len(box.lines) != 3 {
		t.Errorf("trailing newline should be trimmed, got %d lines", len(box.lines))
	}
}

func TestCommitRenderFailure(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("", nil))
	box := model.surfaces[0]

	model.commitRender(diagramRenderedMsg{
		surfaceID: box.id,
		seq:       box.seq,
		err:       errors.New("renderer exited with status 1"),
	})

	if box.status != surfaceFailed {
		t.Fatalf("surface should be failed, got status %d", box.status)
	}
	if !strings.Contains(box.failure, "status 1") {
		t.Errorf("failure text should carry the renderer error, got %q", box.failure)
	}
}

func TestStaleRenderDiscarded(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	staleID := model.surfaces[0].id
	staleSeq := model.surfaces[0].seq

	// Leave the chapter and come back. The surface id is the same but
	// the sequence has moved on, so the old in-flight result must not
	// land.
	model.selectChapter(1)
	model.selectChapter(0)

	model.commitRender(diagramRenderedMsg{
		surfaceID: staleID,
		seq:       staleSeq,
		markup:    "stale grid",
	})

	box := model.surfaces[0]
	if box.status != surfacePending {
		t.Fatalf("stale result should be discarded, got status %d", box.status)
	}

	// The current sequence still commits.
	model.commitRender(diagramRenderedMsg{
		surfaceID: box.id,
		seq:       box.seq,
		markup:    "fresh grid",
	})
	if box.status != surfaceRendered {
		t.Error("current-sequence result should commit")
	}
	if box.lines[0] != "fresh grid" {
		t.Errorf("expected fresh grid, got %q", box.lines[0])
	}
}

func TestRenderForDroppedSurfaceDiscarded(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	staleID := model.surfaces[0].id
	staleSeq := model.surfaces[0].seq

	// Switch to a chapter that does not contain the old surface.
	model.selectChapter(2)

	model.commitRender(diagramRenderedMsg{
		surfaceID: staleID,
		seq:       staleSeq,
		markup:    "orphan grid",
	})
	if len(model.surfaces) != 0 {
		t.Error("result for a dropped surface should not resurrect it")
	}
}

func TestFilterNeverChangesActiveChapter(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))

	// Enter filter mode and type a query that excludes the active
	// chapter (1) entirely.
	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	model = updated.(Model)
	if model.focusRegion != FocusFilter {
		t.Fatalf("/ should enter filter mode, got focus %d", model.focusRegion)
	}
	if !model.sidebarOpen {
		t.Error("entering filter mode should open the sidebar")
	}

	for _, character := range "六贼" {
		updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{character}})
		model = updated.(Model)
	}

	if len(model.filtered) != 1 {
		t.Fatalf("query should match only chapter 14, got %d entries", len(model.filtered))
	}
	if model.filtered[0].Index != 2 {
		t.Errorf("filtered entry should keep its unfiltered index 2, got %d", model.filtered[0].Index)
	}
	if model.activeIndex != 0 {
		t.Errorf("filtering must not change the active chapter, got %d", model.activeIndex)
	}
}

func TestFilterEscClearsThenExits(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	model = updated.(Model)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	model = updated.(Model)

	// First Esc clears the text but stays in filter mode.
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(Model)
	if model.filter.Input != "" {
		t.Errorf("Esc should clear the query, got %q", model.filter.Input)
	}
	if model.focusRegion != FocusFilter {
		t.Error("Esc with text should stay in filter mode")
	}
	if len(model.filtered) != 3 {
		t.Errorf("cleared query should show all chapters, got %d", len(model.filtered))
	}

	// Second Esc exits filter mode back to the prior focus.
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(Model)
	if model.focusRegion != FocusContent {
		t.Errorf("Esc with empty query should restore prior focus, got %d", model.focusRegion)
	}
}

func TestFilterTreatsQAsText(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	model = updated.(Model)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	model = updated.(Model)

	if model.filter.Input != "q" {
		t.Errorf("q should be typed into the filter, got %q", model.filter.Input)
	}
}

func TestSidebarEnterSelectsChapter(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model = updated.(Model)
	if model.focusRegion != FocusSidebar {
		t.Fatalf("Tab should focus the sidebar, got %d", model.focusRegion)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	model = updated.(Model)
	if model.sidebarCursor != 1 {
		t.Fatalf("j should move the cursor to row 1, got %d", model.sidebarCursor)
	}

	updated, command := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)
	if model.activeIndex != 1 {
		t.Errorf("Enter should open the chapter under the cursor, got %d", model.activeIndex)
	}
	if model.sidebarOpen {
		t.Error("opening a chapter should close the sidebar")
	}
	if command == nil {
		t.Error("opening a chapter with diagrams should issue render commands")
	}
}

func TestToggleSidebarCursorFollowsActiveChapter(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	model.selectChapter(2)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	model = updated.(Model)
	if !model.sidebarOpen {
		t.Fatal("b should open the sidebar")
	}
	if model.sidebarCursor != 2 {
		t.Errorf("sidebar cursor should sit on the active chapter row, got %d", model.sidebarCursor)
	}
}

func TestCycleFocusedSurfaceDropsOffEnd(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	model.selectChapter(1) // Two diagram surfaces.

	presses := []int{0, 1, -1, 0}
	for step, want := range presses {
		updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
		model = updated.(Model)
		if model.focusedSurface != want {
			t.Fatalf("press %d: focused surface should be %d, got %d", step+1, want, model.focusedSurface)
		}
	}
}

func TestDiagramPanZoomKeys(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	for _, box := range model.surfaces {
		model.commitRender(diagramRenderedMsg{surfaceID: box.id, seq: box.seq, markup: "a b c\nd e f\n"})
	}

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	model = updated.(Model)
	if model.focusedSurface != 0 {
		t.Fatalf("n should focus the first surface, got %d", model.focusedSurface)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	model = updated.(Model)
	if model.surfaces[0].transform.Scale <= 1 {
		t.Errorf("+ should zoom in, scale is %v", model.surfaces[0].transform.Scale)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	model = updated.(Model)
	if model.surfaces[0].transform.X == 0 {
		t.Error("h should pan the focused surface horizontally")
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	model = updated.(Model)
	transform := model.surfaces[0].transform
	if transform.Scale != 1 || transform.X != 0 || transform.Y != 0 {
		t.Errorf("r should reset the transform, got %+v", transform)
	}

	// Esc drops the diagram focus before anything else.
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(Model)
	if model.focusedSurface != -1 {
		t.Errorf("Esc should drop the diagram focus, got %d", model.focusedSurface)
	}
}

func TestCustomZoomStep(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	model.SetZoomStep(2.0)
	for _, box := range model.surfaces {
		model.commitRender(diagramRenderedMsg{surfaceID: box.id, seq: box.seq, markup: "grid"})
	}

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	model = updated.(Model)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	model = updated.(Model)

	if scale := model.surfaces[0].transform.Scale; scale != 2.0 {
		t.Errorf("configured zoom step 2.0 should double the scale, got %v", scale)
	}
}

func TestShareCopiesChapterReference(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	model.selectChapter(1)

	updated, command := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	model = updated.(Model)

	if !strings.Contains(model.clipboardNotice, "xiyou://chapter/7") {
		t.Errorf("share notice should carry the chapter reference, got %q", model.clipboardNotice)
	}
	if !strings.Contains(model.clipboardNotice, "八卦炉中逃大圣") {
		t.Errorf("share notice should carry the chapter title, got %q", model.clipboardNotice)
	}
	if command == nil {
		t.Error("share should issue a clipboard command")
	}

	updated, _ = model.Update(clipboardFadeMsg{})
	model = updated.(Model)
	if model.clipboardNotice != "" {
		t.Error("clipboard notice should fade")
	}
}

func TestLogNoticeLifecycle(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))

	updated, command := model.Update(logRecordMsg{Summary: "render slow", Level: 4})
	model = updated.(Model)
	if model.logNotice != "render slow" {
		t.Errorf("log notice should show the record summary, got %q", model.logNotice)
	}
	if command == nil {
		t.Error("log notice should schedule a fade")
	}

	updated, _ = model.Update(logRecordFadeMsg{})
	model = updated.(Model)
	if model.logNotice != "" {
		t.Error("log notice should fade")
	}
}

func TestModelView(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))

	if view := model.View(); view != "Loading..." {
		t.Errorf("expected 'Loading...' before WindowSizeMsg, got %q", view)
	}

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	view := model.View()
	if !strings.Contains(view, "西游记图说") {
		t.Error("view should contain the book title")
	}
	if !strings.Contains(view, "灵根育孕源流出") {
		t.Error("view should contain the active chapter heading")
	}
	if !strings.Contains(view, "rendering diagram") {
		t.Error("view should show the pending diagram placeholder")
	}
	if !strings.Contains(view, "q quit") {
		t.Error("view should contain help text")
	}
}

func TestModelViewRenderedAndFailed(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	box := model.surfaces[0]
	updated, _ = model.Update(diagramRenderedMsg{
		surfaceID: box.id,
		seq:       box.seq,
		markup:    "XYZZY-GRID\n",
	})
	model = updated.(Model)
	if !strings.Contains(model.View(), "XYZZY-GRID") {
		t.Error("view should show the rendered diagram grid")
	}

	// A later failure for a fresh request replaces the grid with an
	// inline failure placeholder.
	model.selectChapter(0)
	box = model.surfaces[0]
	updated, _ = model.Update(diagramRenderedMsg{
		surfaceID: box.id,
		seq:       box.seq,
		err:       errors.New("mermaid-ascii: parse error"),
	})
	model = updated.(Model)
	if !strings.Contains(model.View(), "diagram failed") {
		t.Error("view should show the failure placeholder")
	}
}

func TestSidebarViewShowsFilteredCount(t *testing.T) {
	model := NewModel(testCollection(), stubRenderer("ok", nil))
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	model = updated.(Model)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'7'}})
	model = updated.(Model)

	// While editing, the filter bar replaces the header.
	if !strings.Contains(model.View(), " / 7") {
		t.Error("filter bar should show the query while editing")
	}

	// Confirm the filter; the header returns with the filtered count.
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)

	view := model.View()
	if !strings.Contains(view, "八卦炉中逃大圣") {
		t.Error("sidebar should list the matching chapter")
	}
	if !strings.Contains(view, "1/3 章") {
		t.Error("header should show the filtered count")
	}
}
