// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bookmark defines the content types for the MSC2771 bookmark
// extension events: user-curated references to individual Matrix
// events, each carrying a title and a comment.
//
// Two sibling content types share the [Bookmark] record:
//
//   - [RoomContent] -- event type [EventTypeRoomBookmarks]
//     ("dev.nordgedanken.bookmarks.room"), the bookmarks of a single
//     room, stored as room account data.
//   - [GlobalContent] -- event type [EventTypeGlobalBookmarks]
//     ("dev.nordgedanken.bookmarks.global"), a mapping from room ID to
//     that room's bookmarks across every room the user knows, stored
//     as global account data.
//
// Both types implement [event.Content], so the envelope layer attaches
// the type tag when framing an event and strips it before handing the
// content document to the decoder. [Register] adds both types to an
// [event.Registry].
//
// Decoding is strict: every record must carry event_id, title, and
// comment, and any structural problem fails the whole document with a
// [*MalformedContentError]. Encoding never fails for a value built
// through this package. GlobalContent emits its room keys in
// [ref.RoomID.Compare] order so equal values always encode to
// byte-identical JSON.
//
// The package performs no I/O and holds no shared state.
package bookmark
