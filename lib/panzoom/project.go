// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package panzoom

import (
	"math"
	"strings"
)

// Project applies the transform to a rendered character grid and
// returns exactly viewHeight lines, each at most viewWidth runes wide.
// Scaling is nearest-neighbor sampling over the rune grid; translation
// is a cell offset. Cells outside the content map to spaces.
//
// The grid is treated as a rune matrix: one rune per cell. The
// external renderer is responsible for column alignment of its own
// output; projection preserves that alignment exactly at scale 1 and
// approximates it under scaling.
func (transform Transform) Project(lines []string, viewWidth, viewHeight int) []string {
	if viewWidth <= 0 || viewHeight <= 0 {
		return nil
	}

	grid := make([][]rune, len(lines))
	for index, line := range lines {
		grid[index] = []rune(line)
	}

	projected := make([]string, viewHeight)
	var row strings.Builder
	for y := 0; y < viewHeight; y++ {
		row.Reset()
		contentY := int(math.Floor((float64(y) - transform.Y) / transform.Scale))
		for x := 0; x < viewWidth; x++ {
			contentX := int(math.Floor((float64(x) - transform.X) / transform.Scale))
			cell := ' '
			if contentY >= 0 && contentY < len(grid) {
				if contentX >= 0 && contentX < len(grid[contentY]) {
					cell = grid[contentY][contentX]
				}
			}
			row.WriteRune(cell)
		}
		projected[y] = strings.TrimRight(row.String(), " ")
	}
	return projected
}

// ContentSize returns the bounding box of a character grid in cells:
// the rune width of the widest line and the line count. Used by Center.
func ContentSize(lines []string) (width, height int) {
	for _, line := range lines {
		if length := len([]rune(line)); length > width {
			width = length
		}
	}
	return width, len(lines)
}
