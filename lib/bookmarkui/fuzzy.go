// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"slices"
	"sync"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of matching one string. Score is zero
// when the pattern does not match. Positions holds the matched rune
// indices in ascending order.
type FuzzyResult struct {
	Score     int
	Positions []int
}

var fuzzyInitOnce sync.Once

// newSlab allocates scratch space for the matcher. One slab serves
// any number of sequential calls but must not be shared across
// goroutines.
func newSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// fuzzyMatch runs fzf's v2 algorithm over text. Both sides are
// lowercased rune by rune so that positions index the original text.
// A nil slab makes the matcher allocate.
func fuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 || text == "" {
		return FuzzyResult{}
	}
	fuzzyInitOnce.Do(func() {
		algo.Init("default")
	})

	chars := util.ToChars([]byte(lowerRunes(text)))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, []rune(lowerRunes(string(pattern))), true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}

	match := FuzzyResult{Score: int(result.Score)}
	if positions != nil {
		match.Positions = slices.Clone(*positions)
		slices.Sort(match.Positions)
	}
	return match
}

// lowerRunes lowercases each rune independently. strings.ToLower can
// change the rune count for a few code points, which would shift match
// positions.
func lowerRunes(text string) string {
	runes := []rune(text)
	for index, character := range runes {
		runes[index] = unicode.ToLower(character)
	}
	return string(runes)
}
