// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bookmarkarchive writes and reads portable snapshots of a user's
// bookmarks.
//
// An archive file is laid out as:
//
//	magic    "BMKARCH" followed by a format version byte
//	length   uint32 big-endian length of the header
//	header   CBOR [header]: compression, encryption flag, sizes, digests
//	payload  CBOR body, compressed, then optionally age-encrypted
//
// The header stays in clear text so a file can be inspected without the
// decryption key. Two BLAKE3 keyed digests guard integrity: one over the
// canonical JSON of the global document (the same bytes a homeserver
// stores) and one over the uncompressed CBOR body. [Read] verifies both.
package bookmarkarchive
