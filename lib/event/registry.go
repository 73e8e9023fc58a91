// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// ErrUnknownEventType is returned by [Registry.Decode] when no decoder
// is registered for the document's type tag.
var ErrUnknownEventType = errors.New("unknown event type")

// Decoder turns a content document into a typed Content value.
type Decoder func(content json.RawMessage) (Content, error)

// Registry maps type tags to content decoders. Registration normally
// happens once at startup; lookups are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[ref.EventType]Decoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[ref.EventType]Decoder)}
}

// Register binds eventType to decoder. Registering the same type twice
// is a programming error and panics.
func (r *Registry) Register(eventType ref.EventType, decoder Decoder) {
	if eventType == "" {
		panic("event: Register with empty event type")
	}
	if decoder == nil {
		panic(fmt.Sprintf("event: Register(%q) with nil decoder", eventType))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decoders[eventType]; exists {
		panic(fmt.Sprintf("event: duplicate registration for %q", eventType))
	}
	r.decoders[eventType] = decoder
}

// RegisterContent registers C under the tag its zero value reports,
// decoding with encoding/json (and therefore C's UnmarshalJSON).
func RegisterContent[C Content](r *Registry) {
	var zero C
	r.Register(zero.EventType(), func(data json.RawMessage) (Content, error) {
		var content C
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, err
		}
		return content, nil
	})
}

// Has reports whether a decoder is registered for eventType.
func (r *Registry) Has(eventType ref.EventType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.decoders[eventType]
	return ok
}

// Types returns the registered type tags, sorted.
func (r *Registry) Types() []ref.EventType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.decoders))
}

// Decode parses a full event document and decodes its content with
// the decoder registered for its type tag.
func (r *Registry) Decode(data []byte) (Content, error) {
	raw, err := ParseRaw(data)
	if err != nil {
		return nil, err
	}
	return r.DecodeContent(raw.Type, raw.Content)
}

// DecodeContent decodes a content document whose type tag is already
// known from elsewhere, such as the path of an account data request.
func (r *Registry) DecodeContent(eventType ref.EventType, content json.RawMessage) (Content, error) {
	r.mu.RLock()
	decoder, ok := r.decoders[eventType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	decoded, err := decoder(content)
	if err != nil {
		return nil, fmt.Errorf("decoding %s content: %w", eventType, err)
	}
	return decoded, nil
}
