// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmark

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

func TestRoomContentEventType(t *testing.T) {
	var content RoomContent
	if content.EventType() != "dev.nordgedanken.bookmarks.room" {
		t.Errorf("EventType() = %q", content.EventType())
	}
}

func TestRoomContentNilEncodesEmptyArray(t *testing.T) {
	data, err := json.Marshal(NewRoomContent(nil))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"bookmarks":[]}` {
		t.Errorf("Marshal = %s, want {\"bookmarks\":[]}", data)
	}
}

func TestRoomContentMultipleRecordsRoundTrip(t *testing.T) {
	first := New(ref.MustParseEventID("$h29iv0s8:example.com"), "first", "one")
	second := New(ref.MustParseEventID("$h29iv0s9:example.com"), "second", "two")
	content := RoomContentFrom([]Bookmark{first, second, first})

	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"bookmarks":[` +
		`{"event_id":"$h29iv0s8:example.com","title":"first","comment":"one"},` +
		`{"event_id":"$h29iv0s9:example.com","title":"second","comment":"two"},` +
		`{"event_id":"$h29iv0s8:example.com","title":"first","comment":"one"}]}`
	if string(data) != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", data, want)
	}

	decoded, err := DecodeRoomContent(data)
	if err != nil {
		t.Fatalf("DecodeRoomContent: %v", err)
	}
	if decoded.Len() != 3 {
		t.Fatalf("decoded %d bookmarks, want 3 (duplicates preserved)", decoded.Len())
	}
	if !decoded.Equal(content) {
		t.Errorf("round-trip mismatch: got %+v, want %+v", decoded.Bookmarks, content.Bookmarks)
	}
	if decoded.Bookmarks[0] != first || decoded.Bookmarks[1] != second {
		t.Error("insertion order not preserved")
	}
}

func TestRoomContentNewStoresAsIs(t *testing.T) {
	records := []Bookmark{
		New(ref.MustParseEventID("$b:example.com"), "b", ""),
		New(ref.MustParseEventID("$a:example.com"), "a", ""),
	}
	content := NewRoomContent(records)
	if content.Bookmarks[0].Title != "b" || content.Bookmarks[1].Title != "a" {
		t.Errorf("NewRoomContent reordered records: %+v", content.Bookmarks)
	}
}

func TestRoomContentDecodeRejects(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
	}{
		{
			name:     "missing comment",
			input:    `{"bookmarks":[{"event_id":"$x:example.com","title":"t"}]}`,
			wantPath: "bookmarks[0].comment",
		},
		{
			name:     "missing bookmarks key",
			input:    `{}`,
			wantPath: "bookmarks",
		},
		{
			name:     "bookmarks not an array",
			input:    `{"bookmarks":{"event_id":"$x:example.com","title":"t","comment":"c"}}`,
			wantPath: "bookmarks",
		},
		{
			name:     "bookmarks null",
			input:    `{"bookmarks":null}`,
			wantPath: "bookmarks",
		},
		{
			name:     "second element invalid",
			input:    `{"bookmarks":[{"event_id":"$x:example.com","title":"t","comment":"c"},"nope"]}`,
			wantPath: "bookmarks[1]",
		},
		{
			name:     "document not an object",
			input:    `[]`,
			wantPath: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeRoomContent([]byte(test.input))
			if err == nil {
				t.Fatalf("DecodeRoomContent(%s) succeeded, want error", test.input)
			}
			var malformedErr *MalformedContentError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("error %T is not a *MalformedContentError", err)
			}
			if malformedErr.Path != test.wantPath {
				t.Errorf("Path = %q, want %q", malformedErr.Path, test.wantPath)
			}
			if malformedErr.EventType != EventTypeRoomBookmarks {
				t.Errorf("EventType = %q, want %q", malformedErr.EventType, EventTypeRoomBookmarks)
			}
			if !strings.Contains(err.Error(), test.wantPath) {
				t.Errorf("error message %q does not mention path %q", err, test.wantPath)
			}
		})
	}
}

func TestRoomContentUnmarshalJSON(t *testing.T) {
	var content RoomContent
	err := json.Unmarshal([]byte(`{"bookmarks":[{"event_id":"$x:example.com","title":"t","comment":"c"}]}`), &content)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if content.Len() != 1 || content.Bookmarks[0].EventID.String() != "$x:example.com" {
		t.Errorf("decoded = %+v", content)
	}
}
