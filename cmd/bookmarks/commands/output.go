// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
	"github.com/bureau-foundation/bookmarks/lib/bookmarkstore"
	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// entryRecord is the JSON form of one bookmark with its location.
type entryRecord struct {
	Scope    string `json:"scope"`
	Room     string `json:"room_id"`
	Position int    `json:"position"`
	EventID  string `json:"event_id"`
	Title    string `json:"title"`
	Comment  string `json:"comment"`
}

func toRecords(entries []bookmarkindex.Entry) []entryRecord {
	records := make([]entryRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, entryRecord{
			Scope:    string(entry.Scope),
			Room:     entry.Room.String(),
			Position: entry.Position,
			EventID:  entry.Bookmark.EventID.String(),
			Title:    entry.Bookmark.Title,
			Comment:  entry.Bookmark.Comment,
		})
	}
	return records
}

// snapshotEntries flattens a homeserver snapshot into the same rows the
// index returns for scope, ordered by room then position.
func snapshotEntries(snapshot bookmarkstore.Snapshot, scope bookmarkindex.Scope) []bookmarkindex.Entry {
	var entries []bookmarkindex.Entry
	if scope == bookmarkindex.ScopeGlobal {
		for room, list := range snapshot.Global.All() {
			for position, entry := range list {
				entries = append(entries, bookmarkindex.Entry{
					Scope: scope, Room: room, Position: position, Bookmark: entry,
				})
			}
		}
		return entries
	}

	rooms := make([]ref.RoomID, 0, len(snapshot.Rooms))
	for room := range snapshot.Rooms {
		rooms = append(rooms, room)
	}
	slices.SortFunc(rooms, ref.RoomID.Compare)
	for _, room := range rooms {
		for position, entry := range snapshot.Rooms[room].Bookmarks {
			entries = append(entries, bookmarkindex.Entry{
				Scope: scope, Room: room, Position: position, Bookmark: entry,
			})
		}
	}
	return entries
}

// printEntries writes entries as an aligned table.
func printEntries(w io.Writer, entries []bookmarkindex.Entry) error {
	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "SCOPE\tROOM\t#\tEVENT\tTITLE\n")
	for _, entry := range entries {
		fmt.Fprintf(writer, "%s\t%s\t%d\t%s\t%s\n",
			entry.Scope,
			entry.Room,
			entry.Position,
			entry.Bookmark.EventID,
			oneLine(entry.Bookmark.Title),
		)
	}
	return writer.Flush()
}

// oneLine collapses whitespace runs so a field stays in its column.
func oneLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
