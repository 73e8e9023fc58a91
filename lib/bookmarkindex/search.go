// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkindex

import (
	"context"
	"fmt"
	"strings"
)

// DefaultSearchLimit caps Search results when limit is not positive.
const DefaultSearchLimit = 50

// Search returns rows from either scope whose title or comment contains
// query, ignoring ASCII case, best BM25 match first. Rows that tie keep
// index order. An empty query matches nothing.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	conn, err := x.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("bookmarkindex: search: %w", err)
	}
	defer x.pool.Put(conn)

	pattern := "%" + escapeLike(query) + "%"
	entries, err := queryEntries(conn,
		`SELECT scope, room_id, position, event_id, title, comment FROM bookmarks
		 WHERE title LIKE ? ESCAPE '\' OR comment LIKE ? ESCAPE '\'
		 ORDER BY scope, room_id, position`,
		pattern, pattern)
	if err != nil {
		return nil, err
	}
	rank(entries, query)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	x.logger.Debug("bookmark search",
		"query", query,
		"results", len(entries),
		"limit", limit,
	)
	return entries, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
