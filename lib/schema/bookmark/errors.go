// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmark

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// ErrMalformedContent is the sentinel every decode failure matches
// with errors.Is. It is the only error kind this package produces.
var ErrMalformedContent = errors.New("malformed bookmark content")

// MalformedContentError describes why a content document could not be
// decoded: which event type was being decoded, where in the document
// the problem is, and what was expected there.
//
//	var malformed *bookmark.MalformedContentError
//	if errors.As(err, &malformed) {
//	    logger.Warn("dropping bookmark event", "path", malformed.Path, "reason", malformed.Reason)
//	}
type MalformedContentError struct {
	// EventType is the content type being decoded. Empty when a
	// standalone Bookmark record was decoded.
	EventType ref.EventType

	// Path locates the offending value, e.g. "bookmarks[2].comment"
	// or "!123:ruma.io[0].event_id". Empty for the document root.
	Path string

	// Reason is a short description of what was expected.
	Reason string

	// Err is the underlying parse error, if any (for example the
	// identifier parser's rejection).
	Err error
}

func (e *MalformedContentError) Error() string {
	location := e.Path
	if location == "" {
		location = "<root>"
	}
	message := fmt.Sprintf("%s at %s: %s", ErrMalformedContent, location, e.Reason)
	if e.EventType != "" {
		message = fmt.Sprintf("%s (%s) at %s: %s", ErrMalformedContent, e.EventType, location, e.Reason)
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

// Unwrap exposes both ErrMalformedContent and the underlying cause.
func (e *MalformedContentError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedContent}
	}
	return []error{ErrMalformedContent, e.Err}
}

// malformed builds a MalformedContentError without an event type;
// content decoders stamp the type on the way out via withEventType.
func malformed(path, reason string, cause error) *MalformedContentError {
	return &MalformedContentError{Path: path, Reason: reason, Err: cause}
}

// withEventType stamps eventType onto err if it is a
// MalformedContentError and returns it.
func withEventType(err error, eventType ref.EventType) error {
	var malformedErr *MalformedContentError
	if errors.As(err, &malformedErr) {
		malformedErr.EventType = eventType
	}
	return err
}

// joinPath appends a field name to a document path.
func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// keyPath names a top-level object member. The empty key is quoted so
// it is not mistaken for the document root.
func keyPath(key string) string {
	if key == "" {
		return `""`
	}
	return key
}

// indexPath appends an array index to a document path.
func indexPath(path string, index int) string {
	return fmt.Sprintf("%s[%d]", path, index)
}
