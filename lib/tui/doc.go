// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides terminal UI primitives shared by the viewer:
// the color theme, a proportional scrollbar, and substring match
// position lookup for filter highlighting. Domain logic (chapters,
// diagrams, navigation state) lives in the bookui package; this
// package knows nothing about it.
package tui
