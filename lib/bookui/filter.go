// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package bookui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wnma3mz/xiyou-diagrams/lib/chapter"
	"github.com/wnma3mz/xiyou-diagrams/lib/tui"
)

// FilterModel implements substring matching across the searchable
// chapter fields: title, chapter number (decimal string), and interest
// table text. The filter narrows the sidebar list only; the open
// chapter in the content pane is unaffected by the query.
type FilterModel struct {
	// Input is the current filter query text.
	Input string

	// Active is true when the filter input has keyboard focus
	// (the user pressed / to start typing).
	Active bool
}

// SidebarEntry is one row of the filtered sidebar list. Index is the
// chapter's position in the unfiltered collection, so selection
// resolves back to a stable identity regardless of the current query.
type SidebarEntry struct {
	Index        int
	Chapter      chapter.Chapter
	TitleMatches []int // Rune positions in the title matched by the query.
}

// Matches returns true if the chapter matches the current filter. A
// query that is empty or whitespace-only matches everything. Matching
// is case-insensitive substring against each searchable field.
func (filter *FilterModel) Matches(entry chapter.Chapter) bool {
	query := strings.TrimSpace(filter.Input)
	if query == "" {
		return true
	}
	query = strings.ToLower(query)

	if strings.Contains(strings.ToLower(entry.Title), query) {
		return true
	}
	if strings.Contains(strconv.Itoa(entry.Num), query) {
		return true
	}
	if strings.Contains(strings.ToLower(entry.InterestTable), query) {
		return true
	}
	return false
}

// Apply recomputes the sidebar view for the current query, preserving
// collection order. Title match positions are included for highlight
// rendering when the query has text.
func (filter *FilterModel) Apply(collection chapter.Collection) []SidebarEntry {
	query := strings.TrimSpace(filter.Input)

	entries := make([]SidebarEntry, 0, len(collection))
	for index, entry := range collection {
		if !filter.Matches(entry) {
			continue
		}
		var positions []int
		if query != "" {
			positions = tui.MatchPositions(entry.Title, query)
		}
		entries = append(entries, SidebarEntry{
			Index:        index,
			Chapter:      entry,
			TitleMatches: positions,
		})
	}
	return entries
}

// HandleRune processes a character typed while the filter is active.
// Returns true if the input changed.
func (filter *FilterModel) HandleRune(character rune) bool {
	filter.Input += string(character)
	return true
}

// HandleBackspace removes the last character from the filter input.
// Returns true if the input changed.
func (filter *FilterModel) HandleBackspace() bool {
	if len(filter.Input) == 0 {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear resets the filter input and deactivates it.
func (filter *FilterModel) Clear() {
	filter.Input = ""
	filter.Active = false
}

// View renders the filter input bar with a block cursor. Shown in
// place of the header line while the filter is being edited.
func (filter *FilterModel) View(theme tui.Theme, width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.NormalText).
		Width(width)

	cursor := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Bold(true).
		Render("▎")
	return style.Render(" / " + filter.Input + cursor)
}
