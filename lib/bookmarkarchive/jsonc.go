// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkarchive

import (
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
)

// ParseGlobalDocument decodes a hand-edited global bookmarks document.
// Comments and trailing commas are allowed; the result must otherwise be
// a valid global bookmarks content object.
func ParseGlobalDocument(data []byte) (bookmark.GlobalContent, error) {
	return bookmark.DecodeGlobalContent(jsonc.ToJSON(data))
}

// ParseRoomDocument is the room-scoped counterpart of ParseGlobalDocument.
func ParseRoomDocument(data []byte) (bookmark.RoomContent, error) {
	return bookmark.DecodeRoomContent(jsonc.ToJSON(data))
}
