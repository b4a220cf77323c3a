// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package bookui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wnma3mz/xiyou-diagrams/lib/tui"
)

// View implements tea.Model. Renders the full TUI frame: top chrome
// line, sidebar plus content (or content alone when the sidebar is
// closed), bottom separator, and help bar.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	var sections []string

	// Top chrome line: the filter bar replaces the header line while
	// the filter is being edited, so the layout does not shift. Once
	// the query is confirmed the header returns and shows the
	// filtered chapter count instead.
	if model.filter.Active {
		sections = append(sections, model.filter.View(model.theme, model.width))
	} else {
		sections = append(sections, model.renderHeader())
	}

	if model.sidebarOpen {
		sidebarView := model.renderSidebarPane()
		divider := model.renderDivider()
		contentView := model.renderContentPane()
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, sidebarView, divider, contentView))
	} else {
		sections = append(sections, model.renderContentPane())
	}

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))
	sections = append(sections, separator)

	sections = append(sections, model.renderHelp())

	return strings.Join(sections, "\n")
}

// renderHeader renders the top line in the btop style: the book title
// embedded in a horizontal rule with the chapter position on the
// right.
//
// Example: ─── 西游记图说 ──────────────── 第7回 · 10 章 ─
func (model Model) renderHeader() string {
	separatorStyle := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	statsStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	sep := separatorStyle.Render("─")
	title := "西游记图说"

	left := sep + sep + sep + " " + titleStyle.Render(title) + " "
	leftWidth := 3 + 1 + lipgloss.Width(title) + 1

	active := model.collection[model.activeIndex]
	statsText := fmt.Sprintf("第%d回 · %d 章", active.Num, len(model.collection))
	if len(model.filtered) != len(model.collection) {
		statsText = fmt.Sprintf("第%d回 · %d/%d 章", active.Num, len(model.filtered), len(model.collection))
	}
	statsWidth := lipgloss.Width(statsText)

	rightPortion := " " + statsStyle.Render(statsText) + " " + sep
	rightWidth := 1 + statsWidth + 1 + 1

	fillCount := model.width - leftWidth - rightWidth
	if fillCount < 1 {
		fillCount = 1
	}
	fill := strings.Builder{}
	for range fillCount {
		fill.WriteString(sep)
	}

	return left + fill.String() + rightPortion
}

// renderSidebarPane renders the chapter list with a right scrollbar.
func (model Model) renderSidebarPane() string {
	rowWidth := model.sidebarWidth() - 1 // Scrollbar column.
	renderer := NewSidebarRenderer(model.theme, rowWidth)
	focused := model.focusRegion == FocusSidebar || model.focusRegion == FocusFilter

	visible := model.visibleHeight()
	if visible < 0 {
		visible = 0
	}

	var rows []string
	if len(model.filtered) == 0 {
		rows = append(rows, renderer.RenderEmpty())
	}
	for index := model.sidebarScroll; index < model.sidebarScroll+visible && index < len(model.filtered); index++ {
		entry := model.filtered[index]
		active := entry.Index == model.activeIndex
		selected := focused && index == model.sidebarCursor
		rows = append(rows, renderer.RenderRow(entry, active, selected))
	}

	// Pad empty rows.
	emptyStyle := lipgloss.NewStyle().Width(rowWidth)
	for len(rows) < visible {
		rows = append(rows, emptyStyle.Render(""))
	}

	scrollbar := tui.RenderScrollbar(
		model.theme, visible,
		len(model.filtered), visible, model.sidebarScroll,
		focused,
	)

	contentStyle := lipgloss.NewStyle().
		Width(rowWidth).
		Height(visible)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		contentStyle.Render(strings.Join(rows, "\n")),
		scrollbar,
	)
}

// renderDivider renders the single-column vertical rule between the
// sidebar and content panes.
func (model Model) renderDivider() string {
	visible := model.visibleHeight()
	if visible < 0 {
		visible = 0
	}

	dividerStyle := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	lines := make([]string, visible)
	for index := range lines {
		lines[index] = "│"
	}
	return dividerStyle.Width(1).Height(visible).Render(strings.Join(lines, "\n"))
}

// renderContentPane renders the content viewport with a left padding
// column and a right scrollbar.
func (model Model) renderContentPane() string {
	height := model.visibleHeight()
	if height < 0 {
		height = 0
	}

	paddingStyle := lipgloss.NewStyle().
		PaddingLeft(1).
		Width(model.content.Width + 1).
		Height(height)

	scrollbar := tui.RenderScrollbar(
		model.theme, height,
		model.content.TotalLineCount(), model.content.Height, model.content.YOffset,
		model.focusRegion == FocusContent,
	)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		paddingStyle.Render(model.content.View()),
		scrollbar,
	)
}

// refreshContent rebuilds the content body for the active chapter and
// reloads the viewport, preserving the scroll position.
func (model *Model) refreshContent() {
	if model.content.Width <= 0 {
		return
	}
	offset := model.content.YOffset
	body, regions := model.renderContentBody()
	model.surfaceRegions = regions
	model.content.SetContent(body)
	model.content.SetYOffset(offset)
}

// renderContentBody produces the scrollable body of the active
// chapter: header, one bordered box per diagram surface, and the
// interest table. Returns the body together with the line ranges the
// surface boxes occupy, for mouse hit testing.
func (model *Model) renderContentBody() (string, []surfaceRegion) {
	active := model.collection[model.activeIndex]
	width := model.content.Width

	var sections []string
	var regions []surfaceRegion
	lineCount := 0

	appendSection := func(section string) {
		if len(sections) > 0 {
			lineCount++ // Blank line from the "\n\n" join.
		}
		sections = append(sections, section)
		lineCount += strings.Count(section, "\n") + 1
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.HeaderForeground)
	appendSection(headerStyle.Render(fmt.Sprintf("第%d回  %s", active.Num, active.Title)))

	for position, box := range model.surfaces {
		focused := position == model.focusedSurface
		start := lineCount
		if len(sections) > 0 {
			start++
		}
		rendered := renderSurfaceBox(model.theme, *box, width, focused)
		appendSection(rendered)
		regions = append(regions, surfaceRegion{
			surface:   position,
			startLine: start,
			endLine:   lineCount,
		})
	}

	if active.InterestTable != "" {
		table := renderTerminalMarkdown(active.InterestTable, model.theme, width)
		if table != "" {
			appendSection(table)
		}
	}

	return strings.Join(sections, "\n\n"), regions
}

// renderHelp renders the bottom help bar with key hints, the focus
// indicator, and transient notices.
func (model Model) renderHelp() string {
	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)

	focusIndicator := "CONTENT"
	switch {
	case model.focusRegion == FocusSidebar:
		focusIndicator = "SIDEBAR"
	case model.focusRegion == FocusFilter:
		focusIndicator = "FILTER"
	case model.focusedSurface >= 0:
		focusIndicator = "DIAGRAM"
	}

	help := fmt.Sprintf(" [%s] q quit  Tab pane  b sidebar  / filter  n diagram  +/- zoom  r reset  c center  y copy",
		focusIndicator)

	if model.focusedSurface >= 0 && model.focusedSurface < len(model.surfaces) {
		help += fmt.Sprintf("  (%d/%d)", model.focusedSurface+1, len(model.surfaces))
	}

	if model.clipboardNotice != "" {
		noticeStyle := lipgloss.NewStyle().
			Foreground(model.theme.NoticeForeground).
			Bold(true)
		help += "  " + noticeStyle.Render("Copied: "+model.clipboardNotice)
	}

	if model.logNotice != "" {
		color := model.theme.WarnForeground
		if model.logLevel >= slog.LevelError {
			color = model.theme.ErrorForeground
		}
		logStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
		help += "  " + logStyle.Render(model.logNotice)
	}

	return style.Render(help)
}
