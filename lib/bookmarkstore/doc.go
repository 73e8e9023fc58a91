// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bookmarkstore reads and writes bookmark account data through a
// [messaging.Session].
//
// Global bookmarks live in one account data document of type
// [bookmark.EventTypeGlobalBookmarks]; room bookmarks live in the room's
// account data under [bookmark.EventTypeRoomBookmarks]. Matrix account
// data has no compare-and-swap, so every mutation is a read-modify-write
// of the whole document. [Manager] serializes its own mutations; writers
// in other processes can still race it, and the last PUT wins.
//
// Account data that was never written reads as empty content rather than
// as an error.
package bookmarkstore
