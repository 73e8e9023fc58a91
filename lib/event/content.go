// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// Content is a typed event payload bound to a fixed wire type tag.
// EventType must return the same constant for every value of the
// type, including the zero value: the envelope calls it on a zero
// value to learn which tag to expect when decoding.
type Content interface {
	EventType() ref.EventType
}

// Raw is an event with its content left undecoded. It is the shape
// the dispatch layer reads before it knows which content type applies.
type Raw struct {
	Type    ref.EventType   `json:"type"`
	Content json.RawMessage `json:"content"`
}

// ErrMissingType is returned when an event document has no "type"
// member or an empty one.
var ErrMissingType = errors.New("event has no type")

// ErrMissingContent is returned when an event document has no
// "content" member or a null one.
var ErrMissingContent = errors.New("event has no content")

// TypeMismatchError is returned when an event document's type tag does
// not match the content type it is being decoded into.
type TypeMismatchError struct {
	Want ref.EventType
	Got  ref.EventType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("event type mismatch: want %q, got %q", e.Want, e.Got)
}

// ParseRaw splits an event document into its type tag and raw content.
func ParseRaw(data []byte) (Raw, error) {
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return Raw{}, fmt.Errorf("parsing event envelope: %w", err)
	}
	if raw.Type == "" {
		return Raw{}, ErrMissingType
	}
	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		return Raw{}, fmt.Errorf("%s: %w", raw.Type, ErrMissingContent)
	}
	return raw, nil
}

// Encode frames content as a full event document, attaching the tag
// returned by content.EventType.
func Encode(content Content) ([]byte, error) {
	encoded, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encoding %s content: %w", content.EventType(), err)
	}
	return json.Marshal(Raw{Type: content.EventType(), Content: encoded})
}
