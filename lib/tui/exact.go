// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// MatchPositions returns the rune indices in text covered by the
// first case-insensitive occurrence of query, for filter match
// highlighting. Returns nil when query is empty or does not occur.
//
// Matching delegates to fzf's exact matcher so highlight positions and
// the filter's substring semantics cannot drift apart: ExactMatchNaive
// is a case-insensitive substring search reporting the matched range.
func MatchPositions(text, query string) []int {
	if query == "" {
		return nil
	}

	chars := util.ToChars([]byte(text))
	pattern := []rune(strings.ToLower(query))

	result, _ := algo.ExactMatchNaive(false, false, true, &chars, pattern, false, nil)
	if result.Start < 0 {
		return nil
	}

	positions := make([]int, 0, result.End-result.Start)
	for index := result.Start; index < result.End; index++ {
		positions = append(positions, index)
	}
	return positions
}
