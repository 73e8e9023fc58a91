// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the shared CBOR configuration.
//
// JSON is the Matrix wire format; CBOR is used for files this tooling
// writes for itself, such as bookmark archives. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. Equal values always
// produce identical bytes, which keeps archive digests stable.
//
// Types carrying a `json` tag encode with the same field names under
// CBOR. Types implementing encoding.TextMarshaler, such as ref.RoomID,
// encode as CBOR text strings.
package codec
