// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkindex

// Scope distinguishes the two account data documents a row came from.
type Scope string

const (
	// ScopeGlobal rows come from the global bookmarks document.
	ScopeGlobal Scope = "global"
	// ScopeRoom rows come from a room's own bookmarks document.
	ScopeRoom Scope = "room"
)

// migrations is the ordered schema history. Append only.
var migrations = []string{
	// rooms records every (scope, room) document the index holds, so a
	// room present with an empty list survives a round trip.
	`
	CREATE TABLE rooms (
		scope   TEXT NOT NULL,
		room_id TEXT NOT NULL,
		PRIMARY KEY (scope, room_id)
	);
	CREATE TABLE bookmarks (
		scope    TEXT    NOT NULL,
		room_id  TEXT    NOT NULL,
		position INTEGER NOT NULL,
		event_id TEXT    NOT NULL,
		title    TEXT    NOT NULL,
		comment  TEXT    NOT NULL,
		PRIMARY KEY (scope, room_id, position),
		FOREIGN KEY (scope, room_id) REFERENCES rooms (scope, room_id)
	);
	CREATE INDEX bookmarks_event ON bookmarks (event_id);
	`,
	`
	CREATE TABLE sync_state (
		id        INTEGER PRIMARY KEY CHECK (id = 1),
		synced_at INTEGER NOT NULL
	);
	`,
}
