// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package event frames typed content payloads as Matrix basic events:
// {"type": <tag>, "content": {...}}.
//
// A content type binds itself to its wire tag by implementing
// [Content] -- a single EventType method returning a constant. There
// is no code generation: the tag is declared next to the type and read
// through the interface.
//
// [BasicEvent] is the generic envelope for one statically known content
// type. [Registry] is the dispatch layer for documents whose type is
// only known at runtime: it strips the framing, looks up the decoder
// registered for the tag, and hands the content document to it.
// [Encode] performs the reverse, re-attaching the tag from the content
// value.
//
// This package depends only on lib/ref.
package event
