// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmark

import (
	"slices"

	"github.com/bureau-foundation/bookmarks/lib/event"
	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// EventTypeRoomBookmarks is the event type of room-scoped bookmark
// content. Stored as room account data: one event per (user, room).
//
// Wire form:
//
//	{
//	  "type": "dev.nordgedanken.bookmarks.room",
//	  "content": {"bookmarks": [{"event_id": "$x:example.com", "title": "", "comment": ""}]}
//	}
const EventTypeRoomBookmarks ref.EventType = "dev.nordgedanken.bookmarks.room"

// RoomContent is the payload of a [EventTypeRoomBookmarks] event: the
// bookmarks of a single room, in insertion order. Duplicates are kept;
// this layer enforces no identity constraint among records.
type RoomContent struct {
	// Bookmarks is encoded as "bookmarks". A nil slice encodes as an
	// empty array, never as null or a missing field.
	Bookmarks []Bookmark
}

// NewRoomContent returns content holding bookmarks as given: no
// deduplication, no sorting.
func NewRoomContent(bookmarks []Bookmark) RoomContent {
	return RoomContent{Bookmarks: bookmarks}
}

// RoomContentFrom converts a bookmark list into room content. It is
// equivalent to [NewRoomContent].
func RoomContentFrom(bookmarks []Bookmark) RoomContent {
	return NewRoomContent(bookmarks)
}

// EventType returns [EventTypeRoomBookmarks].
func (RoomContent) EventType() ref.EventType { return EventTypeRoomBookmarks }

// Len returns the number of bookmarks.
func (c RoomContent) Len() int { return len(c.Bookmarks) }

// Equal reports whether both contents hold the same records in the
// same order. A nil list equals an empty one.
func (c RoomContent) Equal(other RoomContent) bool {
	return slices.Equal(c.Bookmarks, other.Bookmarks)
}

// MarshalJSON encodes the content as {"bookmarks": [...]}.
func (c RoomContent) MarshalJSON() ([]byte, error) {
	list, err := encodeBookmarkList(c.Bookmarks)
	if err != nil {
		return nil, err
	}
	encoded := make([]byte, 0, len(list)+len(`{"bookmarks":}`))
	encoded = append(encoded, `{"bookmarks":`...)
	encoded = append(encoded, list...)
	encoded = append(encoded, '}')
	return encoded, nil
}

// UnmarshalJSON decodes a content document. The "bookmarks" member is
// required and must be an array of valid records.
func (c *RoomContent) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeRoomContent(data)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// DecodeRoomContent decodes the content document of a room bookmark
// event (the value of the envelope's "content" member).
func DecodeRoomContent(data []byte) (RoomContent, error) {
	members, err := decodeObject(data, "")
	if err != nil {
		return RoomContent{}, withEventType(err, EventTypeRoomBookmarks)
	}
	rawList, ok := members["bookmarks"]
	if !ok {
		return RoomContent{}, withEventType(malformed("bookmarks", "missing required field", nil), EventTypeRoomBookmarks)
	}
	bookmarks, err := decodeBookmarkList(rawList, "bookmarks")
	if err != nil {
		return RoomContent{}, withEventType(err, EventTypeRoomBookmarks)
	}
	return RoomContent{Bookmarks: bookmarks}, nil
}

// RoomEvent is a room bookmark event in its envelope.
type RoomEvent = event.BasicEvent[RoomContent]
