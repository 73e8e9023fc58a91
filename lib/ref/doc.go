// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable Matrix identifiers.
//
// Room IDs, event IDs, and user IDs are opaque tokens issued by the
// homeserver. Bookmark code never inspects their structure beyond the
// sigil and the ":server" suffix; it parses them once at the boundary
// (JSON decoding, CLI arguments, API responses) and passes the typed
// values around from then on.
//
// Every identifier type is a comparable value type with a String form,
// an IsZero check for the unset value, a total order (Compare) so that
// maps keyed by identifiers can be emitted deterministically, and
// encoding.TextMarshaler/TextUnmarshaler support so the types can be
// used directly as JSON fields and JSON object keys.
//
// [EventType] is the wire type tag of an event (for example
// "dev.nordgedanken.bookmarks.global"). Constants live next to the
// content types they tag.
package ref
