// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

// Package bookui implements the chapter viewer TUI: a sidebar listing
// the chapters of the book, a scrollable content pane showing the
// active chapter's diagrams and interest table, and a free-text filter
// over the chapter list.
//
// The package follows the bubbletea Elm architecture. Model is the
// single source of truth; Update routes keyboard and mouse input by
// focus region; View renders the full frame. Diagram rendering is
// asynchronous: each diagram surface issues a render command tagged
// with a monotonically increasing sequence number, and completions
// carrying a stale sequence are discarded so only the latest request
// per surface ever lands.
package bookui
