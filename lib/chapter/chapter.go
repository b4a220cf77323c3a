// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

// Package chapter defines the chapter data model and bundle loading.
//
// A bundle is a YAML document with a top-level "chapters" list. Each
// chapter carries a stable number (the identity used everywhere else in
// the viewer), a title, zero or more diagram sources, and an optional
// interest table in markdown. Bundles may be zstd-compressed; the
// loader detects the frame magic so no file extension convention is
// required.
//
// The collection is loaded once at startup and treated as immutable
// afterwards. Positions within the slice are ephemeral (they shift as
// the sidebar filter changes); Num is the stable key for correlating
// filtered and unfiltered views.
package chapter

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// Chapter is one unit of content: a stable number, a title, the
// diagram sources compiled by the external renderer, and an optional
// interest table in markdown. Values are immutable after loading.
type Chapter struct {
	// Num is the chapter number: unique across the collection and the
	// stable ordering key. Sidebar rows resolve back to collection
	// positions by matching Num, never by list position.
	Num int `yaml:"num"`

	// Title is the display title, shown in the sidebar and the
	// content pane header.
	Title string `yaml:"title"`

	// Diagrams holds the ordered diagram source texts. Each becomes
	// an independent render surface with its own viewport transform.
	Diagrams []string `yaml:"diagrams"`

	// InterestTable is optional markdown (typically a GFM table)
	// rendered below the diagrams. Empty when the chapter has none.
	InterestTable string `yaml:"interest_table"`
}

// Collection is the ordered chapter list. Index is position; Num is
// identity.
type Collection []Chapter

// IndexOfNum returns the position of the chapter with the given number,
// or -1 when no chapter carries it.
func (collection Collection) IndexOfNum(num int) int {
	for index, record := range collection {
		if record.Num == num {
			return index
		}
	}
	return -1
}

// bundle mirrors the YAML document layout.
type bundle struct {
	Chapters []Chapter `yaml:"chapters"`
}

// zstdMagic is the zstd frame magic number (little-endian on disk).
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Parse decodes a chapter bundle from raw bytes. Transparently
// decompresses zstd frames. Returns an error for YAML syntax errors,
// an empty chapter list, or duplicate chapter numbers. All of these
// indicate a broken bundle, not a runtime condition.
func Parse(data []byte) (Collection, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		decoder, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("opening zstd bundle: %w", err)
		}
		defer decoder.Close()
		decompressed, err := io.ReadAll(decoder)
		if err != nil {
			return nil, fmt.Errorf("decompressing bundle: %w", err)
		}
		data = decompressed
	}

	var parsed bundle
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing chapter bundle: %w", err)
	}
	if len(parsed.Chapters) == 0 {
		return nil, fmt.Errorf("chapter bundle contains no chapters")
	}

	seen := make(map[int]int, len(parsed.Chapters))
	for index, record := range parsed.Chapters {
		if previous, exists := seen[record.Num]; exists {
			return nil, fmt.Errorf("duplicate chapter number %d (positions %d and %d)",
				record.Num, previous, index)
		}
		seen[record.Num] = index
	}

	return Collection(parsed.Chapters), nil
}

// Load reads and parses a chapter bundle from disk.
func Load(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chapter bundle: %w", err)
	}
	collection, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return collection, nil
}
