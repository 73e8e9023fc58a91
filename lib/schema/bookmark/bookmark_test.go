// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmark

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

func TestBookmarkEncode(t *testing.T) {
	record := New(ref.MustParseEventID("$h29iv0s8:example.com"), "test", "a comment")

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"event_id":"$h29iv0s8:example.com","title":"test","comment":"a comment"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestBookmarkRoundTrip(t *testing.T) {
	records := []Bookmark{
		New(ref.MustParseEventID("$h29iv0s8:example.com"), "test", "test"),
		New(ref.MustParseEventID("$VGhpcyBpcyBhIHRlc3Q"), "", ""),
		New(ref.MustParseEventID("$x:example.com"), "quotes \" and \\ slashes", "multi\nline\ncomment"),
		New(ref.MustParseEventID("$unicode:example.com"), "日本語", "emoji 🔖"),
	}

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", record, err)
		}
		var decoded Bookmark
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if decoded != record {
			t.Errorf("round-trip: got %+v, want %+v", decoded, record)
		}
	}
}

func TestBookmarkDecodeRejects(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
	}{
		{
			name:     "missing event_id",
			input:    `{"title":"t","comment":"c"}`,
			wantPath: "event_id",
		},
		{
			name:     "missing title",
			input:    `{"event_id":"$x:example.com","comment":"c"}`,
			wantPath: "title",
		},
		{
			name:     "missing comment",
			input:    `{"event_id":"$x:example.com","title":"t"}`,
			wantPath: "comment",
		},
		{
			name:     "null title",
			input:    `{"event_id":"$x:example.com","title":null,"comment":"c"}`,
			wantPath: "title",
		},
		{
			name:     "numeric comment",
			input:    `{"event_id":"$x:example.com","title":"t","comment":42}`,
			wantPath: "comment",
		},
		{
			name:     "event_id wrong sigil",
			input:    `{"event_id":"!room:example.com","title":"t","comment":"c"}`,
			wantPath: "event_id",
		},
		{
			name:     "empty event_id",
			input:    `{"event_id":"","title":"t","comment":"c"}`,
			wantPath: "event_id",
		},
		{
			name:     "not an object",
			input:    `["$x:example.com","t","c"]`,
			wantPath: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var decoded Bookmark
			err := json.Unmarshal([]byte(test.input), &decoded)
			if err == nil {
				t.Fatalf("Unmarshal(%s) succeeded, want error", test.input)
			}
			if !errors.Is(err, ErrMalformedContent) {
				t.Errorf("error %v does not match ErrMalformedContent", err)
			}
			var malformedErr *MalformedContentError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("error %T is not a *MalformedContentError", err)
			}
			if malformedErr.Path != test.wantPath {
				t.Errorf("Path = %q, want %q", malformedErr.Path, test.wantPath)
			}
		})
	}
}

func TestBookmarkDecodeIgnoresUnknownFields(t *testing.T) {
	var decoded Bookmark
	input := `{"event_id":"$x:example.com","title":"t","comment":"c","color":"red"}`
	if err := json.Unmarshal([]byte(input), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Title != "t" || decoded.Comment != "c" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestBookmarkEquality(t *testing.T) {
	base := New(ref.MustParseEventID("$x:example.com"), "t", "c")
	if base != New(ref.MustParseEventID("$x:example.com"), "t", "c") {
		t.Error("identical records should be equal")
	}
	variants := []Bookmark{
		New(ref.MustParseEventID("$y:example.com"), "t", "c"),
		New(ref.MustParseEventID("$x:example.com"), "other", "c"),
		New(ref.MustParseEventID("$x:example.com"), "t", "other"),
	}
	for _, variant := range variants {
		if base == variant {
			t.Errorf("%+v should differ from %+v", variant, base)
		}
	}
}
