// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// BasicEvent is a Matrix basic event (no room, sender, or state key)
// carrying content of type C. It marshals as {"type": ..., "content": ...}
// with the type taken from C, and refuses to unmarshal a document
// whose type tag belongs to a different content type.
//
// C must be a value type whose EventType method works on its zero
// value.
type BasicEvent[C Content] struct {
	Content C
}

// NewBasicEvent wraps content in an envelope.
func NewBasicEvent[C Content](content C) BasicEvent[C] {
	return BasicEvent[C]{Content: content}
}

// Type returns the envelope's type tag.
func (e BasicEvent[C]) Type() ref.EventType {
	return e.Content.EventType()
}

// MarshalJSON implements json.Marshaler.
func (e BasicEvent[C]) MarshalJSON() ([]byte, error) {
	return Encode(e.Content)
}

// UnmarshalJSON implements json.Unmarshaler. The type tag must equal
// the tag of C.
func (e *BasicEvent[C]) UnmarshalJSON(data []byte) error {
	raw, err := ParseRaw(data)
	if err != nil {
		return err
	}
	var zero C
	if want := zero.EventType(); raw.Type != want {
		return &TypeMismatchError{Want: want, Got: raw.Type}
	}
	var content C
	if err := json.Unmarshal(raw.Content, &content); err != nil {
		return fmt.Errorf("decoding %s content: %w", raw.Type, err)
	}
	e.Content = content
	return nil
}
