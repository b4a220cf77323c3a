// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package bookui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wnma3mz/xiyou-diagrams/lib/tui"
)

// columnWidthNum is the fixed width of the chapter number column,
// including the trailing space (e.g. " 12 ").
const columnWidthNum = 5

// SidebarRenderer handles the row rendering of the chapter list within
// a given width.
type SidebarRenderer struct {
	theme tui.Theme
	width int
}

// NewSidebarRenderer creates a SidebarRenderer for the given width.
func NewSidebarRenderer(theme tui.Theme, width int) SidebarRenderer {
	return SidebarRenderer{theme: theme, width: width}
}

// RenderRow renders a single chapter entry as a sidebar row. The
// active flag marks the chapter open in the content pane; the selected
// flag marks the cursor row. Title runes at the entry's match
// positions are highlighted with the search highlight background.
//
// Row layout: " 12 回目标题" with an optional diagram count suffix.
func (renderer SidebarRenderer) RenderRow(entry SidebarEntry, active, selected bool) string {
	titleWidth := renderer.width - columnWidthNum
	if titleWidth < 6 {
		titleWidth = 6
	}

	title := entry.Chapter.Title
	if lipgloss.Width(title) > titleWidth {
		title = truncateString(title, titleWidth-1) + "…"
	}

	numberText := fmt.Sprintf(" %2d ", entry.Chapter.Num)

	if selected {
		baseStyle := lipgloss.NewStyle().
			Background(renderer.theme.SelectedBackground).
			Foreground(renderer.theme.SelectedForeground)

		// On the cursor row the background is already the selection
		// color, so matches use bold+underline instead of a tint.
		titleRendered := highlightRunes(title, entry.TitleMatches,
			baseStyle, baseStyle.Bold(true).Underline(true))

		row := baseStyle.Bold(active).Render(numberText) + titleRendered
		return baseStyle.Width(renderer.width).MaxWidth(renderer.width).Render(row)
	}

	numberStyle := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
	titleStyle := lipgloss.NewStyle().Foreground(renderer.theme.NormalText)
	if active {
		numberStyle = numberStyle.Foreground(renderer.theme.HeaderForeground).Bold(true)
		titleStyle = titleStyle.Foreground(renderer.theme.HeaderForeground).Bold(true)
	}

	highlightStyle := titleStyle.Background(renderer.theme.SearchHighlightBackground)
	titleRendered := highlightRunes(title, entry.TitleMatches, titleStyle, highlightStyle)

	row := numberStyle.Render(numberText) + titleRendered
	return lipgloss.NewStyle().Width(renderer.width).MaxWidth(renderer.width).Render(row)
}

// RenderEmpty renders the sidebar body shown when the filter matches
// no chapters.
func (renderer SidebarRenderer) RenderEmpty() string {
	style := lipgloss.NewStyle().
		Foreground(renderer.theme.FaintText).
		Width(renderer.width)
	return style.Render(" no matching chapters")
}

// highlightRunes renders text with character-level highlighting at the
// given rune positions. Positions index into the text before any
// truncation suffix; positions past the end of text are ignored.
// Consecutive runs of same-style characters are batched into a single
// Render call to keep ANSI output compact.
func highlightRunes(text string, positions []int, baseStyle, highlightStyle lipgloss.Style) string {
	if len(positions) == 0 {
		return baseStyle.Render(text)
	}

	positionSet := make(map[int]bool, len(positions))
	for _, position := range positions {
		positionSet[position] = true
	}

	runes := []rune(text)
	var result strings.Builder
	runStart := 0
	isHighlighted := positionSet[0]

	for index := 1; index <= len(runes); index++ {
		currentHighlighted := index < len(runes) && positionSet[index]
		if currentHighlighted != isHighlighted || index == len(runes) {
			chunk := string(runes[runStart:index])
			if isHighlighted {
				result.WriteString(highlightStyle.Render(chunk))
			} else {
				result.WriteString(baseStyle.Render(chunk))
			}
			runStart = index
			isHighlighted = currentHighlighted
		}
	}

	return result.String()
}

// truncateString truncates a string to maxWidth visual columns.
// Handles double-width characters correctly via lipgloss width
// measurement.
func truncateString(text string, maxWidth int) string {
	if lipgloss.Width(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for length := len(runes) - 1; length >= 0; length-- {
		candidate := string(runes[:length])
		if lipgloss.Width(candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}
