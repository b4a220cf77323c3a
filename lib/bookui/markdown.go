// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package bookui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wnma3mz/xiyou-diagrams/lib/tui"
)

// The goldmark parser is configured once and shared: parsing creates
// per-call state, so the instance is safe for concurrent use.
var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParserInstance
}

// renderTerminalMarkdown parses markdown text (the interest table of a
// chapter) and renders it as styled terminal output wrapped to width.
// Soft line breaks become spaces so hard-wrapped source reflows at any
// terminal width; tables keep their column structure.
func renderTerminalMarkdown(input string, theme tui.Theme, width int) string {
	if input == "" {
		return ""
	}
	source := []byte(input)
	reader := text.NewReader(source)
	document := getMarkdownParser().Parser().Parse(reader)

	// Force the ANSI256 profile: this output only ever goes to the
	// bubbletea screen, and auto-detection strips color when stdout is
	// not a TTY (tests, pipes). SetColorProfile is needed because the
	// lipgloss renderer re-detects from the environment otherwise.
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &markdownRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, renderer.walk)

	return strings.TrimRight(renderer.output.String(), "\n")
}

// markdownRenderer walks a goldmark AST and produces styled terminal
// text. A direct ast.Walk fits terminal rendering better than the
// goldmark renderer interface: paragraph inline content accumulates in
// a buffer and is word-wrapped as a unit when the paragraph closes.
type markdownRenderer struct {
	source []byte
	theme  tui.Theme
	width  int

	output strings.Builder

	// Inline accumulator for the current paragraph or heading.
	inline strings.Builder

	// Inline style counters, incremented on entering Emphasis or
	// Strikethrough nodes. Counters rather than booleans so nesting
	// unwinds correctly.
	boldCount          int
	italicCount        int
	strikethroughCount int

	// List nesting state.
	listStack []listState

	// pendingBullet replaces the indent for the next emitted line.
	pendingBullet string
	indent        string

	lipRenderer *lipgloss.Renderer

	trailingNewlines int
}

type listState struct {
	ordered bool
	counter int
	tight   bool
}

func (renderer *markdownRenderer) newStyle() lipgloss.Style {
	return renderer.lipRenderer.NewStyle()
}

func (renderer *markdownRenderer) currentWidth() int {
	width := renderer.width - len(renderer.indent)
	if width < 10 {
		width = 10
	}
	return width
}

func (renderer *markdownRenderer) writeOutput(s string) {
	if s == "" {
		return
	}
	renderer.output.WriteString(s)

	newTrailing := 0
	entirelyNewlines := true
	for index := len(s) - 1; index >= 0; index-- {
		if s[index] == '\n' {
			newTrailing++
		} else {
			entirelyNewlines = false
			break
		}
	}
	if entirelyNewlines {
		renderer.trailingNewlines += newTrailing
	} else {
		renderer.trailingNewlines = newTrailing
	}
}

func (renderer *markdownRenderer) ensureNewline() {
	if renderer.trailingNewlines < 1 {
		renderer.writeOutput("\n")
	}
}

func (renderer *markdownRenderer) ensureBlankLine() {
	for renderer.trailingNewlines < 2 {
		renderer.writeOutput("\n")
	}
}

// consumeLinePrefix returns the indent for the current line, using
// the pending bullet once when set.
func (renderer *markdownRenderer) consumeLinePrefix() string {
	if renderer.pendingBullet != "" {
		bullet := renderer.pendingBullet
		renderer.pendingBullet = ""
		return bullet
	}
	return renderer.indent
}

// applyIndent prepends the line prefix to each line of content. The
// first line may consume the pending list bullet.
func (renderer *markdownRenderer) applyIndent(content string) string {
	lines := strings.Split(content, "\n")
	var result strings.Builder
	for index, line := range lines {
		if index == 0 {
			result.WriteString(renderer.consumeLinePrefix())
		} else {
			result.WriteString(renderer.indent)
		}
		result.WriteString(line)
		if index < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// flushInline word-wraps the accumulated inline content and resets
// the buffer.
func (renderer *markdownRenderer) flushInline() string {
	content := renderer.inline.String()
	renderer.inline.Reset()
	if content == "" {
		return ""
	}
	content = ansi.Wrap(content, renderer.currentWidth(), " ,.;-+|")
	return renderer.applyIndent(content)
}

// styledText applies the current inline style state to a text chunk.
func (renderer *markdownRenderer) styledText(content string) string {
	style := renderer.newStyle().Foreground(renderer.theme.NormalText)
	if renderer.boldCount > 0 {
		style = style.Bold(true)
	}
	if renderer.italicCount > 0 {
		style = style.Italic(true)
	}
	if renderer.strikethroughCount > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// renderInlineContent collects a node's inline children into a string,
// saving and restoring the accumulator and style state around the walk.
func (renderer *markdownRenderer) renderInlineContent(node ast.Node) string {
	savedInline := renderer.inline.String()
	savedBold := renderer.boldCount
	savedItalic := renderer.italicCount
	savedStrikethrough := renderer.strikethroughCount

	renderer.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, renderer.walk)
	}
	result := renderer.inline.String()

	renderer.inline.Reset()
	renderer.inline.WriteString(savedInline)
	renderer.boldCount = savedBold
	renderer.italicCount = savedItalic
	renderer.strikethroughCount = savedStrikethrough

	return result
}

// highlightCode syntax-highlights code via chroma, falling back to
// faint plain text for unknown languages.
func (renderer *markdownRenderer) highlightCode(code, language string) string {
	if language == "" {
		return renderer.newStyle().Foreground(renderer.theme.FaintText).Render(code)
	}
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err != nil {
		return renderer.newStyle().Foreground(renderer.theme.FaintText).Render(code)
	}
	return buffer.String()
}

func (renderer *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	case ast.KindDocument:

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			renderer.inline.Reset()
		} else {
			flushed := renderer.flushInline()
			if flushed != "" {
				renderer.writeOutput(flushed)
				renderer.ensureNewline()
				if !renderer.inTightList() {
					renderer.ensureBlankLine()
				}
			}
		}

	case ast.KindHeading:
		if entering {
			renderer.inline.Reset()
		} else {
			renderer.leaveHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			renderer.renderFencedCodeBlock(node.(*ast.FencedCodeBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			start := 0
			if list.IsOrdered() {
				start = list.Start
			}
			renderer.listStack = append(renderer.listStack, listState{
				ordered: list.IsOrdered(),
				counter: start,
				tight:   list.IsTight,
			})
		} else {
			if len(renderer.listStack) > 0 {
				renderer.listStack = renderer.listStack[:len(renderer.listStack)-1]
			}
			if !renderer.inTightList() {
				renderer.ensureBlankLine()
			}
		}

	case ast.KindListItem:
		if entering {
			renderer.enterListItem()
		} else {
			renderer.leaveListItem()
		}

	case ast.KindThematicBreak:
		if entering {
			rule := strings.Repeat("─", renderer.currentWidth())
			ruleStyle := renderer.newStyle().Foreground(renderer.theme.BorderColor)
			renderer.ensureBlankLine()
			renderer.writeOutput(renderer.applyIndent(ruleStyle.Render(rule)))
			renderer.ensureNewline()
			renderer.ensureBlankLine()
		}

	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			value := string(textNode.Segment.Value(renderer.source))
			renderer.inline.WriteString(renderer.styledText(value))
			if textNode.SoftLineBreak() {
				renderer.inline.WriteString(" ")
			}
			if textNode.HardLineBreak() {
				renderer.inline.WriteString("\n")
			}
		}

	case ast.KindString:
		if entering {
			str := node.(*ast.String)
			renderer.inline.WriteString(renderer.styledText(string(str.Value)))
		}

	case ast.KindEmphasis:
		emphasis := node.(*ast.Emphasis)
		delta := 1
		if !entering {
			delta = -1
		}
		if emphasis.Level >= 2 {
			renderer.boldCount += delta
		} else {
			renderer.italicCount += delta
		}

	case ast.KindCodeSpan:
		if entering {
			renderer.renderCodeSpan(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			displayText := renderer.renderInlineContent(node)
			url := string(node.(*ast.Link).Destination)
			renderer.inline.WriteString(displayText)
			if url != "" {
				urlStyle := renderer.newStyle().Foreground(renderer.theme.FaintText)
				renderer.inline.WriteString(" " + urlStyle.Render("("+url+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			url := string(node.(*ast.AutoLink).URL(renderer.source))
			urlStyle := renderer.newStyle().Foreground(renderer.theme.FaintText)
			renderer.inline.WriteString(urlStyle.Render(url))
		}

	case extast.KindStrikethrough:
		if entering {
			renderer.strikethroughCount++
		} else {
			renderer.strikethroughCount--
		}

	case extast.KindTable:
		if entering {
			renderer.renderTable(node)
			return ast.WalkSkipChildren, nil
		}
	}

	return ast.WalkContinue, nil
}

func (renderer *markdownRenderer) inTightList() bool {
	if len(renderer.listStack) == 0 {
		return false
	}
	return renderer.listStack[len(renderer.listStack)-1].tight
}

func (renderer *markdownRenderer) leaveHeading(heading *ast.Heading) {
	// Strip accumulated inline styling: the heading style replaces it.
	content := ansi.Strip(renderer.inline.String())
	renderer.inline.Reset()
	if content == "" {
		return
	}

	style := renderer.newStyle().Bold(true)
	if heading.Level <= 2 {
		style = style.Foreground(renderer.theme.HeaderForeground)
	} else {
		style = style.Foreground(renderer.theme.NormalText)
	}

	wrapped := ansi.Wrap(style.Render(content), renderer.currentWidth(), " ,.;-+|")
	renderer.ensureBlankLine()
	renderer.writeOutput(renderer.applyIndent(wrapped))
	renderer.ensureNewline()
	renderer.ensureBlankLine()
}

func (renderer *markdownRenderer) renderFencedCodeBlock(node *ast.FencedCodeBlock) {
	language := string(node.Language(renderer.source))
	var code strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		code.Write(segment.Value(renderer.source))
	}

	highlighted := renderer.highlightCode(code.String(), language)
	renderer.ensureBlankLine()
	for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
		renderer.writeOutput(renderer.consumeLinePrefix() + line)
		renderer.ensureNewline()
	}
	renderer.ensureBlankLine()
}

func (renderer *markdownRenderer) renderCodeSpan(node ast.Node) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.Text:
			code.Write(typed.Segment.Value(renderer.source))
		case *ast.String:
			code.Write(typed.Value)
		}
	}
	codeStyle := renderer.newStyle().Foreground(renderer.theme.FaintText)
	renderer.inline.WriteString(codeStyle.Render(code.String()))
}

func (renderer *markdownRenderer) enterListItem() {
	if len(renderer.listStack) == 0 {
		return
	}
	top := &renderer.listStack[len(renderer.listStack)-1]

	var bullet string
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	} else {
		bullet = "- "
	}

	renderer.pendingBullet = renderer.indent + bullet
	renderer.indent += strings.Repeat(" ", len(bullet))
}

func (renderer *markdownRenderer) leaveListItem() {
	if len(renderer.listStack) > 0 {
		top := renderer.listStack[len(renderer.listStack)-1]
		bulletWidth := 2
		if top.ordered {
			bulletWidth = len(fmt.Sprintf("%d. ", top.counter-1))
		}
		if len(renderer.indent) >= bulletWidth {
			renderer.indent = renderer.indent[:len(renderer.indent)-bulletWidth]
		}
	}
	if !renderer.inTightList() {
		renderer.ensureBlankLine()
	} else {
		renderer.ensureNewline()
	}
}

// renderTable renders a GFM table with padded columns: a bold header
// row, a rule, and left/center/right alignment per column. Column
// widths come from the widest cell, shrunk proportionally when the
// table exceeds the available width.
func (renderer *markdownRenderer) renderTable(node ast.Node) {
	table := node.(*extast.Table)
	alignments := table.Alignments

	var headerCells []string
	var bodyRows [][]string
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case extast.KindTableHeader:
			headerCells = renderer.collectTableRow(child)
		case extast.KindTableRow:
			bodyRows = append(bodyRows, renderer.collectTableRow(child))
		}
	}

	columnCount := len(headerCells)
	if columnCount == 0 && len(bodyRows) > 0 {
		columnCount = len(bodyRows[0])
	}
	if columnCount == 0 {
		return
	}

	columnWidths := make([]int, columnCount)
	widen := func(cells []string) {
		for index, cell := range cells {
			if index < columnCount {
				if width := lipgloss.Width(cell); width > columnWidths[index] {
					columnWidths[index] = width
				}
			}
		}
	}
	widen(headerCells)
	for _, row := range bodyRows {
		widen(row)
	}

	const separator = "  "
	totalWidth := len(separator) * (columnCount - 1)
	for _, width := range columnWidths {
		totalWidth += width
	}
	available := renderer.currentWidth()
	if totalWidth > available {
		usable := available - len(separator)*(columnCount-1)
		if usable < columnCount*3 {
			usable = columnCount * 3
		}
		for index := range columnWidths {
			columnWidths[index] = (columnWidths[index] * usable) / totalWidth
			if columnWidths[index] < 3 {
				columnWidths[index] = 3
			}
		}
	}

	renderer.ensureBlankLine()

	if len(headerCells) > 0 {
		bold := renderer.newStyle().Bold(true).Foreground(renderer.theme.NormalText)
		renderer.writeOutput(renderer.consumeLinePrefix() +
			renderer.formatTableRow(headerCells, columnWidths, alignments, bold))
		renderer.ensureNewline()

		var ruleParts []string
		for _, width := range columnWidths {
			ruleParts = append(ruleParts, strings.Repeat("─", width))
		}
		borderStyle := renderer.newStyle().Foreground(renderer.theme.BorderColor)
		renderer.writeOutput(renderer.indent +
			borderStyle.Render(strings.Join(ruleParts, separator)))
		renderer.ensureNewline()
	}

	for _, row := range bodyRows {
		renderer.writeOutput(renderer.indent +
			renderer.formatTableRow(row, columnWidths, alignments, renderer.newStyle()))
		renderer.ensureNewline()
	}

	renderer.ensureBlankLine()
}

func (renderer *markdownRenderer) collectTableRow(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() == extast.KindTableCell {
			cells = append(cells, renderer.renderInlineContent(cell))
		}
	}
	return cells
}

func (renderer *markdownRenderer) formatTableRow(
	cells []string,
	columnWidths []int,
	alignments []extast.Alignment,
	baseStyle lipgloss.Style,
) string {
	const separator = "  "
	var parts []string
	for index, width := range columnWidths {
		var cell string
		if index < len(cells) {
			cell = cells[index]
		}

		visibleWidth := lipgloss.Width(cell)
		if visibleWidth > width {
			cell = ansi.Truncate(cell, width, "…")
			visibleWidth = lipgloss.Width(cell)
		}

		padding := width - visibleWidth
		if padding < 0 {
			padding = 0
		}

		var alignment extast.Alignment
		if index < len(alignments) {
			alignment = alignments[index]
		}
		switch alignment {
		case extast.AlignRight:
			cell = strings.Repeat(" ", padding) + cell
		case extast.AlignCenter:
			leftPad := padding / 2
			cell = strings.Repeat(" ", leftPad) + cell + strings.Repeat(" ", padding-leftPad)
		default:
			cell = cell + strings.Repeat(" ", padding)
		}
		parts = append(parts, cell)
	}
	return baseStyle.Render(strings.Join(parts, separator))
}
