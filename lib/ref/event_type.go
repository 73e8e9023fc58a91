// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// EventType identifies a Matrix event type: the "type" field of an
// event envelope and the path segment of account data endpoints.
// Custom types use reverse-DNS namespacing
// ("dev.nordgedanken.bookmarks.room").
//
// EventType is a named string type, not a struct wrapper: event types
// need no parsing. The type exists for compile-time safety, so a room
// ID or a plain string cannot be passed where a type tag is expected.
type EventType string

// String returns the event type string.
func (t EventType) String() string { return string(t) }
