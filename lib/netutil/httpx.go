// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds reads of JSON API response bodies so that a
// misbehaving homeserver cannot exhaust memory. Account data documents
// are small; the limit only guards against pathological responses.
package netutil

import (
	"errors"
	"fmt"
	"io"
)

// MaxResponseSize bounds JSON API response body reads: 64 MB.
const MaxResponseSize int64 = 64 << 20

// ErrResponseTooLarge is returned when a body exceeds the read limit.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// ReadResponse reads a response body of at most MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return ReadLimited(body, MaxResponseSize)
}

// ReadLimited reads body in full, failing if it is longer than limit.
func ReadLimited(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, limit)
	}
	return data, nil
}
