// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package bookui

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// clipboardFadeMsg is sent after a short delay to clear the clipboard
// feedback notice from the status bar.
type clipboardFadeMsg struct{}

// clipboardFadeDelay is how long the "Copied" notice stays visible.
const clipboardFadeDelay = 2 * time.Second

// copyToClipboard writes text to the system clipboard via the OSC 52
// terminal escape sequence. Writes directly to /dev/tty to bypass
// bubbletea's managed output; OSC 52 has no screen effect, so it is
// safe to emit alongside the TUI renderer. Failure to open /dev/tty
// drops the copy silently; the status notice still fades normally.
//
// Uses BEL (\x07) as the OSC terminator rather than ST (\x1b\\)
// because BEL is a single byte that survives intact through layered
// terminal environments (SSH, tmux, screen).
//
// When tmux is detected (via $TMUX or $TERM prefix), the OSC 52 is
// sent both through tmux DCS passthrough (for allow-passthrough
// configurations) and directly (for set-clipboard configurations).
// Duplicate clipboard sets are harmless.
func copyToClipboard(text string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
			if err != nil {
				return nil
			}
			defer tty.Close()

			encoded := base64.StdEncoding.EncodeToString([]byte(text))
			osc52 := fmt.Sprintf("\x1b]52;c;%s\x07", encoded)

			inTmux := os.Getenv("TMUX") != "" ||
				strings.HasPrefix(os.Getenv("TERM"), "tmux") ||
				strings.HasPrefix(os.Getenv("TERM"), "screen")

			if inTmux {
				// tmux DCS passthrough: escapes are doubled inside the
				// wrapper. Requires tmux allow-passthrough on.
				fmt.Fprintf(tty, "\x1bPtmux;\x1b%s\x1b\\", osc52)
			}

			tty.WriteString(osc52)
			return nil
		},
		tea.Tick(clipboardFadeDelay, func(time.Time) tea.Msg {
			return clipboardFadeMsg{}
		}),
	)
}
