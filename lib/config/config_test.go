// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultsForEmptyObject(t *testing.T) {
	parsed, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.RendererCommand != "mermaid-ascii" {
		t.Errorf("expected default renderer, got %q", parsed.RendererCommand)
	}
}

func TestParseAcceptsJSONCSyntax(t *testing.T) {
	input := []byte(`{
		// local renderer wrapper
		"renderer_command": "render-diagram",
		"renderer_args": ["--ascii",], /* trailing comma */
	}`)
	parsed, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.RendererCommand != "render-diagram" {
		t.Errorf("expected render-diagram, got %q", parsed.RendererCommand)
	}
	if len(parsed.RendererArgs) != 1 || parsed.RendererArgs[0] != "--ascii" {
		t.Errorf("unexpected renderer args: %v", parsed.RendererArgs)
	}
}

func TestParsePartialConfigKeepsDefaults(t *testing.T) {
	parsed, err := Parse([]byte(`{"bundle_path": "/tmp/chapters.yaml"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.BundlePath != "/tmp/chapters.yaml" {
		t.Errorf("expected bundle path override, got %q", parsed.BundlePath)
	}
	if parsed.RendererCommand != "mermaid-ascii" {
		t.Errorf("partial config lost default renderer: %q", parsed.RendererCommand)
	}
}

func TestParseRejectsEmptyRendererCommand(t *testing.T) {
	_, err := Parse([]byte(`{"renderer_command": ""}`))
	if err == nil {
		t.Fatal("expected error for empty renderer_command")
	}
}

func TestParseRejectsBadZoomStep(t *testing.T) {
	_, err := Parse([]byte(`{"zoom_step": 0.5}`))
	if err == nil {
		t.Fatal("expected error for zoom_step below 1")
	}
	parsed, err := Parse([]byte(`{"zoom_step": 1.5}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.ZoomStep != 1.5 {
		t.Errorf("expected zoom_step 1.5, got %g", parsed.ZoomStep)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"renderer_command": `))
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	parsed, err := Load(filepath.Join(t.TempDir(), "absent.jsonc"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if parsed.RendererCommand != "mermaid-ascii" {
		t.Errorf("expected defaults, got %q", parsed.RendererCommand)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	parsed, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if parsed.RendererCommand != "mermaid-ascii" {
		t.Errorf("expected defaults, got %q", parsed.RendererCommand)
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	content := []byte(`{
		// override everything
		"renderer_command": "custom-renderer",
		"bundle_path": "bundle.yaml",
	}`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	parsed, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if parsed.RendererCommand != "custom-renderer" {
		t.Errorf("expected custom-renderer, got %q", parsed.RendererCommand)
	}
	if parsed.BundlePath != "bundle.yaml" {
		t.Errorf("expected bundle.yaml, got %q", parsed.BundlePath)
	}
}
