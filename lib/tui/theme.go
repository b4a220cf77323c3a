// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the viewer. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Active sidebar row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Diagram surface states.
	DiagramPending lipgloss.Color // Placeholder while a render is in flight.
	DiagramFailed  lipgloss.Color // Failure placeholder text.
	DiagramFocused lipgloss.Color // Border accent for the focused surface.

	// Search match highlighting in sidebar titles.
	SearchHighlightBackground lipgloss.Color

	// Status bar notices (clipboard feedback, log records).
	NoticeForeground lipgloss.Color
	WarnForeground   lipgloss.Color
	ErrorForeground  lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed
// for 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	DiagramPending: lipgloss.Color("245"), // gray
	DiagramFailed:  lipgloss.Color("196"), // bright red
	DiagramFocused: lipgloss.Color("220"), // amber

	SearchHighlightBackground: lipgloss.Color("58"), // dark amber

	NoticeForeground: lipgloss.Color("114"), // green
	WarnForeground:   lipgloss.Color("220"), // amber
	ErrorForeground:  lipgloss.Color("196"), // red
}
