// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmark

import (
	"bytes"
	"encoding/json"
	"iter"
	"maps"
	"slices"

	"github.com/bureau-foundation/bookmarks/lib/event"
	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// EventTypeGlobalBookmarks is the event type of global bookmark
// content. Stored as global account data: one event per user covering
// every room.
//
// Wire form:
//
//	{
//	  "type": "dev.nordgedanken.bookmarks.global",
//	  "content": {"!123:ruma.io": [{"event_id": "$h29iv0s8:example.com", "title": "test", "comment": "test"}]}
//	}
const EventTypeGlobalBookmarks ref.EventType = "dev.nordgedanken.bookmarks.global"

// GlobalContent is the payload of a [EventTypeGlobalBookmarks] event:
// for each room, that room's bookmarks in insertion order.
//
// The zero value is an empty mapping ready for use. Insert is the only
// mutation and replaces a room's whole list. The underlying map is not
// exposed; lists go in and come out as copies, so callers never alias
// the stored records.
//
// A GlobalContent is owned by one caller at a time and is not safe for
// concurrent mutation.
type GlobalContent struct {
	rooms map[ref.RoomID][]Bookmark
}

// NewGlobalContent returns an empty mapping.
func NewGlobalContent() GlobalContent {
	return GlobalContent{rooms: make(map[ref.RoomID][]Bookmark)}
}

// EventType returns [EventTypeGlobalBookmarks].
func (GlobalContent) EventType() ref.EventType { return EventTypeGlobalBookmarks }

// Insert sets the bookmark list for room, replacing any list already
// stored for it (last write wins). The list is copied. A nil list is
// stored as an empty list, so the room key stays present. The zero
// RoomID has no wire form and is ignored.
func (c *GlobalContent) Insert(room ref.RoomID, bookmarks []Bookmark) {
	if room.IsZero() {
		return
	}
	if c.rooms == nil {
		c.rooms = make(map[ref.RoomID][]Bookmark)
	}
	stored := make([]Bookmark, len(bookmarks))
	copy(stored, bookmarks)
	c.rooms[room] = stored
}

// Get returns a copy of the bookmark list for room. The boolean is
// false if Insert was never called for room.
func (c GlobalContent) Get(room ref.RoomID) ([]Bookmark, bool) {
	bookmarks, ok := c.rooms[room]
	if !ok {
		return nil, false
	}
	return slices.Clone(bookmarks), true
}

// Contains reports whether room has an entry (possibly empty).
func (c GlobalContent) Contains(room ref.RoomID) bool {
	_, ok := c.rooms[room]
	return ok
}

// Len returns the number of rooms with an entry.
func (c GlobalContent) Len() int { return len(c.rooms) }

// Rooms returns the room keys in canonical ([ref.RoomID.Compare]) order.
func (c GlobalContent) Rooms() []ref.RoomID {
	return slices.SortedFunc(maps.Keys(c.rooms), ref.RoomID.Compare)
}

// All iterates rooms in canonical order, yielding a copy of each
// room's list.
func (c GlobalContent) All() iter.Seq2[ref.RoomID, []Bookmark] {
	return func(yield func(ref.RoomID, []Bookmark) bool) {
		for _, room := range c.Rooms() {
			if !yield(room, slices.Clone(c.rooms[room])) {
				return
			}
		}
	}
}

// Count returns the total number of bookmarks across all rooms.
func (c GlobalContent) Count() int {
	total := 0
	for _, bookmarks := range c.rooms {
		total += len(bookmarks)
	}
	return total
}

// Equal reports whether both mappings have the same room keys and,
// per room, the same records in the same order.
func (c GlobalContent) Equal(other GlobalContent) bool {
	return maps.EqualFunc(c.rooms, other.rooms, slices.Equal[[]Bookmark])
}

// Clone returns a deep copy.
func (c GlobalContent) Clone() GlobalContent {
	clone := NewGlobalContent()
	for room, bookmarks := range c.rooms {
		clone.rooms[room] = slices.Clone(bookmarks)
	}
	return clone
}

// MarshalJSON encodes the mapping as a JSON object with one member per
// room, keys in canonical order. Equal values produce identical bytes
// regardless of the order rooms were inserted in. An empty mapping
// encodes as {}.
func (c GlobalContent) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, room := range c.Rooms() {
		if index > 0 {
			buffer.WriteByte(',')
		}
		key, err := json.Marshal(room.String())
		if err != nil {
			return nil, err
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		list, err := encodeBookmarkList(c.rooms[room])
		if err != nil {
			return nil, err
		}
		buffer.Write(list)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// UnmarshalJSON decodes a content document. Every key must be a valid
// room ID and every value an array of valid records; any failure
// rejects the whole document.
func (c *GlobalContent) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeGlobalContent(data)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// DecodeGlobalContent decodes the content document of a global
// bookmark event (the value of the envelope's "content" member).
// An empty object decodes to an empty mapping.
func DecodeGlobalContent(data []byte) (GlobalContent, error) {
	members, err := decodeObject(data, "")
	if err != nil {
		return GlobalContent{}, withEventType(err, EventTypeGlobalBookmarks)
	}

	content := NewGlobalContent()
	// Decode in sorted key order so the reported failure is stable
	// when a document has more than one problem.
	for _, key := range slices.Sorted(maps.Keys(members)) {
		room, err := ref.ParseRoomID(key)
		if err != nil {
			return GlobalContent{}, withEventType(malformed(keyPath(key), "invalid room ID key", err), EventTypeGlobalBookmarks)
		}
		bookmarks, err := decodeBookmarkList(members[key], keyPath(key))
		if err != nil {
			return GlobalContent{}, withEventType(err, EventTypeGlobalBookmarks)
		}
		content.rooms[room] = bookmarks
	}
	return content, nil
}

// GlobalEvent is a global bookmark event in its envelope.
type GlobalEvent = event.BasicEvent[GlobalContent]
