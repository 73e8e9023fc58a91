// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkindex

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Okapi BM25 parameters.
const (
	rankK1 = 1.2
	rankB  = 0.75
)

// Title tokens count this many times as comment tokens.
const (
	titleWeight   = 3
	commentWeight = 1
)

// rankedDocument is the weighted term profile of one entry.
type rankedDocument struct {
	frequencies map[string]int
	length      int
}

// rank reorders entries by BM25 relevance to query. Term statistics
// come from entries alone, so scores are relative to the candidate
// set. Entries that share a score, including every entry that scores
// zero, keep their incoming order.
func rank(entries []Entry, query string) {
	terms := tokenize(query)
	if len(terms) == 0 || len(entries) < 2 {
		return
	}

	documents := make([]rankedDocument, len(entries))
	documentFrequency := make(map[string]int)
	totalLength := 0
	for i, entry := range entries {
		document := rankedDocument{frequencies: make(map[string]int)}
		addTokens(&document, entry.Bookmark.Title, titleWeight)
		addTokens(&document, entry.Bookmark.Comment, commentWeight)
		for term := range document.frequencies {
			documentFrequency[term]++
		}
		documents[i] = document
		totalLength += document.length
	}
	if totalLength == 0 {
		return
	}
	averageLength := float64(totalLength) / float64(len(entries))
	documentCount := float64(len(entries))

	scores := make([]float64, len(entries))
	for i, document := range documents {
		for _, term := range terms {
			frequency := float64(document.frequencies[term])
			if frequency == 0 {
				continue
			}
			containing := float64(documentFrequency[term])
			idf := math.Log(1 + (documentCount-containing+0.5)/(containing+0.5))
			normalization := rankK1 * (1 - rankB + rankB*float64(document.length)/averageLength)
			scores[i] += idf * frequency * (rankK1 + 1) / (frequency + normalization)
		}
	}

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})
	ranked := make([]Entry, len(entries))
	for i, source := range order {
		ranked[i] = entries[source]
	}
	copy(entries, ranked)
}

func addTokens(document *rankedDocument, text string, weight int) {
	for _, token := range tokenize(text) {
		document.frequencies[token] += weight
		document.length += weight
	}
}

// tokenize splits text into lowercase runs of letters and digits,
// dropping single-character tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, field := range fields {
		if utf8.RuneCountInString(field) >= 2 {
			tokens = append(tokens, field)
		}
	}
	return tokens
}
