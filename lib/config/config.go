// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional viewer configuration file.
//
// The file is JSONC (JSON extended with // line comments, block
// comments, and trailing commas) so a hand-edited config can carry
// its own documentation. A missing file is not an error; every field
// has a working default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Config holds the user-adjustable viewer settings.
type Config struct {
	// RendererCommand is the external diagram rendering command.
	// Reads the diagram source on stdin, writes the character grid
	// on stdout.
	RendererCommand string `json:"renderer_command"`

	// RendererArgs are passed to the command before stdin input.
	RendererArgs []string `json:"renderer_args"`

	// BundlePath points at an alternate chapter bundle. Empty means
	// the embedded bundle. The --file flag overrides both.
	BundlePath string `json:"bundle_path"`

	// ZoomStep overrides the zoom step factor applied per keystroke.
	// Must be greater than 1. Zero means the built-in step.
	ZoomStep float64 `json:"zoom_step"`
}

// Default returns the built-in configuration: mermaid-ascii as the
// renderer, embedded content.
func Default() Config {
	return Config{
		RendererCommand: "mermaid-ascii",
	}
}

// Path returns the default config file location, honoring
// XDG_CONFIG_HOME. Returns an empty string when no config directory
// can be determined (the viewer then runs on defaults).
func Path() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "xiyou-diagrams", "config.jsonc")
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals over the defaults, so a partial config only overrides
// the fields it names.
func Parse(data []byte) (Config, error) {
	parsed := Default()
	if err := json.Unmarshal(jsonc.ToJSON(data), &parsed); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if parsed.RendererCommand == "" {
		return Config{}, fmt.Errorf("renderer_command must not be empty")
	}
	if parsed.ZoomStep != 0 && parsed.ZoomStep <= 1 {
		return Config{}, fmt.Errorf("zoom_step must be greater than 1, got %g", parsed.ZoomStep)
	}
	return parsed, nil
}

// Load reads the config file at path. A missing file yields the
// defaults; any other read or parse failure is an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	parsed, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return parsed, nil
}
