// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"context"
	"errors"
	"time"

	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
)

var (
	roomAlpha = ref.MustParseRoomID("!alpha:example.org")
	roomBeta  = ref.MustParseRoomID("!beta:example.org")
)

// fakeSource serves fixed entries per scope.
type fakeSource struct {
	entries  map[bookmarkindex.Scope][]bookmarkindex.Entry
	err      error
	syncedAt time.Time
	calls    []bookmarkindex.Scope
}

func (source *fakeSource) Entries(_ context.Context, scope bookmarkindex.Scope) ([]bookmarkindex.Entry, error) {
	source.calls = append(source.calls, scope)
	if source.err != nil {
		return nil, source.err
	}
	return source.entries[scope], nil
}

func (source *fakeSource) LastSync(context.Context) (time.Time, error) {
	if source.syncedAt.IsZero() {
		return time.Time{}, errors.New("never synced")
	}
	return source.syncedAt, nil
}

func entry(scope bookmarkindex.Scope, room ref.RoomID, position int, eventID, title, comment string) bookmarkindex.Entry {
	return bookmarkindex.Entry{
		Scope:    scope,
		Room:     room,
		Position: position,
		Bookmark: bookmark.New(ref.MustParseEventID(eventID), title, comment),
	}
}

func testSource() *fakeSource {
	return &fakeSource{
		entries: map[bookmarkindex.Scope][]bookmarkindex.Entry{
			bookmarkindex.ScopeGlobal: {
				entry(bookmarkindex.ScopeGlobal, roomAlpha, 0, "$release", "Release checklist", "Steps for **shipping**."),
				entry(bookmarkindex.ScopeGlobal, roomAlpha, 1, "$design", "Design review", ""),
				entry(bookmarkindex.ScopeGlobal, roomBeta, 0, "$incident", "Incident timeline", "Pager went off at `02:14`."),
			},
			bookmarkindex.ScopeRoom: {
				entry(bookmarkindex.ScopeRoom, roomBeta, 0, "$pinned", "Pinned answer", ""),
			},
		},
		syncedAt: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
	}
}
