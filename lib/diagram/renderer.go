// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

// Package diagram defines the boundary to the external diagram
// renderer: a black box that compiles a diagram source text (mermaid
// syntax in the default bundle) into character-grid markup for
// terminal display.
//
// The viewer treats rendering as asynchronous and fallible. A renderer
// may be invoked many times concurrently with different ids; each
// invocation is independent. Ordering and stale-result discard are the
// caller's concern (the UI keys every attempt with a unique token),
// not the renderer's.
package diagram

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Renderer compiles one diagram source into displayable markup.
type Renderer interface {
	// Render compiles sourceText and returns the rendered character
	// grid. The id is unique per invocation; implementations that
	// maintain shared state can use it to keep invocations apart.
	// Returns an error for malformed source or renderer failure; the
	// caller recovers locally and never propagates it.
	Render(ctx context.Context, sourceText, id string) (string, error)
}

// Func adapts a plain function to the Renderer interface. Used for
// in-process renderers and tests.
type Func func(ctx context.Context, sourceText, id string) (string, error)

// Render implements Renderer.
func (render Func) Render(ctx context.Context, sourceText, id string) (string, error) {
	return render(ctx, sourceText, id)
}

// CommandRenderer shells out to an external rendering command (e.g.
// mermaid-ascii). The diagram source is written to the command's
// stdin; the rendered grid is read from stdout. Stderr is captured
// and folded into the error on failure. Context cancellation kills
// the process, so an abandoned render never outlives its surface.
type CommandRenderer struct {
	// Command is the executable name or path.
	Command string

	// Args are passed verbatim before the source arrives on stdin.
	Args []string
}

// Render implements Renderer by running the configured command once.
// The per-invocation id is not passed to the command: every invocation
// is its own process, so there is no shared state to key.
func (renderer *CommandRenderer) Render(ctx context.Context, sourceText, _ string) (string, error) {
	command := exec.CommandContext(ctx, renderer.Command, renderer.Args...)
	command.Stdin = strings.NewReader(sourceText)

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("%s: %w: %s", renderer.Command, err, detail)
		}
		return "", fmt.Errorf("%s: %w", renderer.Command, err)
	}

	markup := strings.TrimRight(stdout.String(), "\n")
	if markup == "" {
		return "", fmt.Errorf("%s produced no output", renderer.Command)
	}
	return markup, nil
}
