// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package bookui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wnma3mz/xiyou-diagrams/lib/diagram"
	"github.com/wnma3mz/xiyou-diagrams/lib/panzoom"
	"github.com/wnma3mz/xiyou-diagrams/lib/tui"
)

// surfaceStatus tracks the render lifecycle of a diagram surface.
type surfaceStatus int

const (
	// surfacePending means a render request is in flight and no
	// earlier result is available.
	surfacePending surfaceStatus = iota
	// surfaceRendered means the surface holds a usable diagram grid.
	surfaceRendered
	// surfaceFailed means the latest render attempt errored; the
	// surface shows an inline failure placeholder.
	surfaceFailed
)

// surface is one diagram slot in the content pane. Each surface owns
// its pan/zoom transform, independent of sibling surfaces, and records
// the sequence number of its latest render request so stale
// completions can be discarded.
type surface struct {
	// id identifies the surface across chapter switches:
	// "<chapterNum>/<position>". Sequence numbers are globally
	// monotonic, so a stale completion can never be mistaken for a
	// fresh one even when the user leaves a chapter and comes back.
	id     string
	source string

	status  surfaceStatus
	seq     uint64
	lines   []string // Rendered diagram grid, valid when status is surfaceRendered.
	failure string   // Error text, valid when status is surfaceFailed.

	transform panzoom.Transform
}

// diagramRenderedMsg delivers a completed render attempt to the model.
// The model commits it only when the surface still exists and the
// sequence matches the surface's latest request.
type diagramRenderedMsg struct {
	surfaceID string
	seq       uint64
	markup    string
	err       error
}

// renderDiagram returns a tea.Cmd that runs the renderer for one
// surface and delivers the result tagged with the request sequence.
func renderDiagram(renderer diagram.Renderer, surfaceID string, seq uint64, source string) tea.Cmd {
	return func() tea.Msg {
		markup, err := renderer.Render(context.Background(), source, surfaceID)
		return diagramRenderedMsg{
			surfaceID: surfaceID,
			seq:       seq,
			markup:    markup,
			err:       err,
		}
	}
}

// Diagram surface box dimensions within the content pane. The inner
// grid height is fixed so the content layout does not jump when a
// render lands.
const (
	surfaceInnerHeight = 14
	surfaceMinWidth    = 20
)

// renderSurfaceBox renders one diagram surface as a bordered box of
// fixed height. Rendered diagrams are projected through the surface's
// transform; pending and failed surfaces show a centered placeholder.
// The focused flag switches the border to the focus accent color.
func renderSurfaceBox(theme tui.Theme, box surface, width int, focused bool) string {
	if width < surfaceMinWidth {
		width = surfaceMinWidth
	}
	innerWidth := width - 2 // Border columns.

	var inner []string
	switch box.status {
	case surfaceRendered:
		inner = box.transform.Project(box.lines, innerWidth, surfaceInnerHeight)
	case surfacePending:
		inner = placeholderLines("rendering diagram…", theme.DiagramPending, innerWidth)
	case surfaceFailed:
		inner = placeholderLines("diagram failed: "+box.failure, theme.DiagramFailed, innerWidth)
	}

	borderColor := theme.BorderColor
	if focused {
		borderColor = theme.DiagramFocused
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(innerWidth)

	// Suffix the title with the zoom level when it differs from 1:1.
	title := ""
	if box.status == surfaceRendered && box.transform.Scale != 1 {
		title = fmt.Sprintf(" %d%% ", int(box.transform.Scale*100+0.5))
	}

	body := boxStyle.Render(strings.Join(inner, "\n"))
	if title == "" {
		return body
	}

	// Splice the zoom label into the top border line.
	lines := strings.Split(body, "\n")
	labelWidth := lipgloss.Width(title)
	topWidth := innerWidth + 2
	if len(lines) > 0 && labelWidth+4 <= topWidth {
		borderStyle := lipgloss.NewStyle().Foreground(borderColor)
		// "╭─" (2) + label + rest + "╮" (1) must total topWidth.
		rest := topWidth - 3 - labelWidth
		lines[0] = borderStyle.Render("╭─") +
			borderStyle.Render(title) +
			borderStyle.Render(strings.Repeat("─", rest)+"╮")
	}
	return strings.Join(lines, "\n")
}

// placeholderLines centers a single message within the fixed surface
// grid, padding with blank lines above and below.
func placeholderLines(message string, color lipgloss.Color, width int) []string {
	if lipgloss.Width(message) > width {
		message = truncateString(message, width-1) + "…"
	}
	style := lipgloss.NewStyle().Foreground(color)

	padding := (width - lipgloss.Width(message)) / 2
	if padding < 0 {
		padding = 0
	}
	centered := strings.Repeat(" ", padding) + style.Render(message)

	lines := make([]string, surfaceInnerHeight)
	lines[surfaceInnerHeight/2] = centered
	return lines
}
