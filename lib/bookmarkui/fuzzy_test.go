// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"slices"
	"testing"
)

func TestFuzzyMatchSubstring(t *testing.T) {
	result := fuzzyMatch("Release checklist", []rune("check"), nil)
	if result.Score <= 0 {
		t.Fatal("expected positive score for substring match")
	}
	if !slices.Equal(result.Positions, []int{8, 9, 10, 11, 12}) {
		t.Errorf("positions = %v, want [8 9 10 11 12]", result.Positions)
	}
}

func TestFuzzyMatchNonContiguous(t *testing.T) {
	result := fuzzyMatch("design review notes", []rune("drn"), newSlab())
	if result.Score <= 0 {
		t.Fatal("expected positive score for non-contiguous match")
	}
	if !slices.IsSorted(result.Positions) {
		t.Errorf("positions not ascending: %v", result.Positions)
	}
}

func TestFuzzyMatchCaseInsensitive(t *testing.T) {
	for _, test := range []struct {
		text    string
		pattern string
	}{
		{"Deploy Notes", "deploy"},
		{"deploy notes", "DEPLOY"},
		{"INCIDENT ROOM", "room"},
	} {
		if result := fuzzyMatch(test.text, []rune(test.pattern), nil); result.Score <= 0 {
			t.Errorf("fuzzyMatch(%q, %q) did not match", test.text, test.pattern)
		}
	}
}

func TestFuzzyMatchNoMatch(t *testing.T) {
	result := fuzzyMatch("Release checklist", []rune("xyz"), nil)
	if result.Score != 0 || len(result.Positions) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestFuzzyMatchEmpty(t *testing.T) {
	if result := fuzzyMatch("anything", nil, nil); result.Score != 0 {
		t.Errorf("empty pattern scored %d", result.Score)
	}
	if result := fuzzyMatch("", []rune("a"), nil); result.Score != 0 {
		t.Errorf("empty text scored %d", result.Score)
	}
}

func TestFuzzyMatchPositionsAreRuneIndices(t *testing.T) {
	result := fuzzyMatch("Ünïcode title", []rune("title"), nil)
	if result.Score <= 0 {
		t.Fatal("expected match")
	}
	if result.Positions[0] != 8 {
		t.Errorf("first position = %d, want rune index 8", result.Positions[0])
	}
}
