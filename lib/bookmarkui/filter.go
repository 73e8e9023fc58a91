// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
)

// FilterResult pairs an entry with its filter score. TitlePositions
// holds matched rune indices in the title, or nil when the title was
// not the field that matched best.
type FilterResult struct {
	Entry          bookmarkindex.Entry
	Score          int
	TitlePositions []int
}

// FilterModel narrows the active tab with fzf-style fuzzy matching
// over title, comment, room ID and event ID. The filter composes with
// tabs: the tab chooses the base set and the filter narrows it.
type FilterModel struct {
	// Input is the current filter query text.
	Input string

	// Active is true when the filter input has keyboard focus.
	Active bool

	slab *util.Slab
}

// Apply returns the entries matching the filter, best match first.
// Ties keep their source order. An empty filter returns every entry
// with a zero score.
func (filter *FilterModel) Apply(entries []bookmarkindex.Entry) []FilterResult {
	results := make([]FilterResult, 0, len(entries))
	if filter.Input == "" {
		for _, entry := range entries {
			results = append(results, FilterResult{Entry: entry})
		}
		return results
	}

	if filter.slab == nil {
		filter.slab = newSlab()
	}
	pattern := []rune(filter.Input)
	for _, entry := range entries {
		if result, ok := filter.match(entry, pattern); ok {
			results = append(results, result)
		}
	}
	slices.SortStableFunc(results, func(a, b FilterResult) int {
		return b.Score - a.Score
	})
	return results
}

func (filter *FilterModel) match(entry bookmarkindex.Entry, pattern []rune) (FilterResult, bool) {
	best := FilterResult{Entry: entry}

	title := fuzzyMatch(entry.Bookmark.Title, pattern, filter.slab)
	if title.Score > 0 {
		best.Score = title.Score
		best.TitlePositions = title.Positions
	}
	for _, field := range []string{
		entry.Bookmark.Comment,
		entry.Room.String(),
		entry.Bookmark.EventID.String(),
	} {
		if result := fuzzyMatch(field, pattern, filter.slab); result.Score > best.Score {
			best.Score = result.Score
			best.TitlePositions = nil
		}
	}
	return best, best.Score > 0
}

// HandleRune appends a character to the filter input.
func (filter *FilterModel) HandleRune(character rune) {
	filter.Input += string(character)
}

// HandleBackspace removes the last character from the filter input.
// Returns true if the input changed.
func (filter *FilterModel) HandleBackspace() bool {
	if len(filter.Input) == 0 {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear resets the filter input and deactivates it.
func (filter *FilterModel) Clear() {
	filter.Input = ""
	filter.Active = false
}

// View renders the filter bar. It is empty when the filter is neither
// active nor holding text.
func (filter *FilterModel) View(theme Theme, width int) string {
	if !filter.Active && filter.Input == "" {
		return ""
	}

	if filter.Active {
		cursor := lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Bold(true).
			Render("▎")
		return lipgloss.NewStyle().
			Foreground(theme.NormalText).
			Width(width).
			Render(" / " + filter.Input + cursor)
	}

	return lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Width(width).
		Render(" filter: " + filter.Input)
}
