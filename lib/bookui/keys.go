// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package bookui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the chapter viewer TUI.
type KeyMap struct {
	// Navigation (context-sensitive: sidebar cursor movement, content
	// scrolling, or diagram panning depending on current focus).
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Focus switching.
	FocusToggle   key.Binding // Switch between sidebar and content.
	SidebarToggle key.Binding // Open/close the sidebar.

	// Filter.
	FilterActivate key.Binding // Enter filter mode.
	FilterClear    key.Binding // Clear filter / drop diagram focus.

	// Diagram surface control.
	NextDiagram     key.Binding
	PreviousDiagram key.Binding
	ZoomIn          key.Binding
	ZoomOut         key.Binding
	ZoomReset       key.Binding
	CenterDiagram   key.Binding

	// Content scroll shortcut.
	ScrollTop key.Binding

	// Sharing.
	Share key.Binding // Copy a chapter reference to the clipboard.

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k/h/l) alongside standard arrow keys and page up/down.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "pan right"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch pane"),
	),
	SidebarToggle: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "sidebar"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear"),
	),
	NextDiagram: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next diagram"),
	),
	PreviousDiagram: key.NewBinding(
		key.WithKeys("N", "p"),
		key.WithHelp("N", "prev diagram"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	ZoomReset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset zoom"),
	),
	CenterDiagram: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "center"),
	),
	ScrollTop: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "scroll top"),
	),
	Share: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
