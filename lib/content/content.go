// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

// Package content provides the embedded default chapter bundle.
//
// The bundle is embedded at compile time via go:embed so the viewer
// works as a single self-contained binary. An alternate bundle can be
// supplied at runtime with --file; this package is only the fallback.
package content

import (
	"embed"
	"fmt"

	"github.com/wnma3mz/xiyou-diagrams/lib/chapter"
)

//go:embed chapters.yaml
var bundleFiles embed.FS

// Chapters returns the embedded chapter collection, parsed and
// validated. An error here indicates a broken embedded bundle, which
// is a build problem, not a runtime condition.
func Chapters() (chapter.Collection, error) {
	data, err := bundleFiles.ReadFile("chapters.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded chapter bundle: %w", err)
	}
	collection, err := chapter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("embedded chapter bundle: %w", err)
	}
	return collection, nil
}
