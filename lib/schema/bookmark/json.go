// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmark

import (
	"bytes"
	"encoding/json"
)

// jsonKind returns the first significant byte of a JSON value: '{',
// '[', '"', 'n' (null), 't'/'f' (booleans), or a digit/'-' (numbers).
// Returns 0 for empty or whitespace-only input.
//
// encoding/json silently accepts null for slices, maps and strings, so
// the decoders check the kind explicitly before unmarshaling.
func jsonKind(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// kindName describes a JSON kind byte for error messages.
func kindName(kind byte) string {
	switch kind {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	case 0:
		return "nothing"
	default:
		return "number"
	}
}

// decodeObject unmarshals an object document into its raw members.
func decodeObject(data []byte, path string) (map[string]json.RawMessage, error) {
	if kind := jsonKind(data); kind != '{' {
		return nil, malformed(path, "expected object, got "+kindName(kind), nil)
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, malformed(path, "invalid object", err)
	}
	return members, nil
}

// decodeArray unmarshals an array document into its raw elements.
func decodeArray(data []byte, path string) ([]json.RawMessage, error) {
	if kind := jsonKind(data); kind != '[' {
		return nil, malformed(path, "expected array, got "+kindName(kind), nil)
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, malformed(path, "invalid array", err)
	}
	return elements, nil
}

// decodeString unmarshals a string member.
func decodeString(data []byte, path string) (string, error) {
	if kind := jsonKind(data); kind != '"' {
		return "", malformed(path, "expected string, got "+kindName(kind), nil)
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return "", malformed(path, "invalid string", err)
	}
	return value, nil
}
