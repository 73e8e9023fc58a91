// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmark

import (
	"encoding/json"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// Bookmark is a user annotation on one Matrix event. Title and Comment
// are free-form and may be empty. Bookmark is a comparable value type:
// two records are equal iff all three fields are equal, so == and
// slices.Equal work directly.
type Bookmark struct {
	// EventID is the bookmarked event.
	EventID ref.EventID `json:"event_id"`

	// Title is a short user-supplied label.
	Title string `json:"title"`

	// Comment is a longer user-supplied note. Viewers render it as
	// markdown.
	Comment string `json:"comment"`
}

// New returns a Bookmark for eventID with the given annotation.
func New(eventID ref.EventID, title, comment string) Bookmark {
	return Bookmark{EventID: eventID, Title: title, Comment: comment}
}

// UnmarshalJSON decodes a bookmark record. All three fields are
// required: a missing field, a null, or a value of the wrong type is a
// [*MalformedContentError]. Unknown fields are ignored.
func (b *Bookmark) UnmarshalJSON(data []byte) error {
	decoded, err := decodeBookmark(data, "")
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// decodeBookmark decodes one record document. path locates the record
// within the enclosing content for error reporting.
func decodeBookmark(data []byte, path string) (Bookmark, error) {
	members, err := decodeObject(data, path)
	if err != nil {
		return Bookmark{}, err
	}

	rawEventID, ok := members["event_id"]
	if !ok {
		return Bookmark{}, malformed(joinPath(path, "event_id"), "missing required field", nil)
	}
	rawTitle, ok := members["title"]
	if !ok {
		return Bookmark{}, malformed(joinPath(path, "title"), "missing required field", nil)
	}
	rawComment, ok := members["comment"]
	if !ok {
		return Bookmark{}, malformed(joinPath(path, "comment"), "missing required field", nil)
	}

	eventIDString, err := decodeString(rawEventID, joinPath(path, "event_id"))
	if err != nil {
		return Bookmark{}, err
	}
	eventID, err := ref.ParseEventID(eventIDString)
	if err != nil {
		return Bookmark{}, malformed(joinPath(path, "event_id"), "invalid event ID", err)
	}

	title, err := decodeString(rawTitle, joinPath(path, "title"))
	if err != nil {
		return Bookmark{}, err
	}
	comment, err := decodeString(rawComment, joinPath(path, "comment"))
	if err != nil {
		return Bookmark{}, err
	}

	return Bookmark{EventID: eventID, Title: title, Comment: comment}, nil
}

// decodeBookmarkList decodes an array of record documents.
func decodeBookmarkList(data []byte, path string) ([]Bookmark, error) {
	elements, err := decodeArray(data, path)
	if err != nil {
		return nil, err
	}
	bookmarks := make([]Bookmark, 0, len(elements))
	for index, element := range elements {
		record, err := decodeBookmark(element, indexPath(path, index))
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, record)
	}
	return bookmarks, nil
}

// encodeBookmarkList encodes a record slice, emitting [] for nil.
func encodeBookmarkList(bookmarks []Bookmark) ([]byte, error) {
	if bookmarks == nil {
		bookmarks = []Bookmark{}
	}
	return json.Marshal(bookmarks)
}
