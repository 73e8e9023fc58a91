// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkarchive

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
	"github.com/bureau-foundation/bookmarks/lib/sealed"
)

var (
	roomA = ref.MustParseRoomID("!a:example.com")
	roomB = ref.MustParseRoomID("!b:example.com")
)

func mark(eventID, title, comment string) bookmark.Bookmark {
	return bookmark.New(ref.MustParseEventID(eventID), title, comment)
}

func sampleArchive() Archive {
	global := bookmark.NewGlobalContent()
	global.Insert(roomA, []bookmark.Bookmark{
		mark("$1", "first", "a *markdown* comment"),
		mark("$1", "first", "a *markdown* comment"),
	})
	global.Insert(roomB, nil)
	return Archive{
		CreatedAt: time.Unix(1_790_000_000, 0),
		Global:    global,
		Rooms: map[ref.RoomID]bookmark.RoomContent{
			roomB: bookmark.NewRoomContent([]bookmark.Bookmark{mark("$2", "room scoped", "")}),
		},
	}
}

func assertArchiveEqual(t *testing.T, got, want Archive) {
	t.Helper()
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if !got.Global.Equal(want.Global) {
		t.Errorf("Global = %+v, want %+v", got.Global, want.Global)
	}
	if len(got.Rooms) != len(want.Rooms) {
		t.Fatalf("len(Rooms) = %d, want %d", len(got.Rooms), len(want.Rooms))
	}
	for room, content := range want.Rooms {
		if !got.Rooms[room].Equal(content) {
			t.Errorf("Rooms[%s] = %+v, want %+v", room, got.Rooms[room], content)
		}
	}
}

func TestRoundTripCompressions(t *testing.T) {
	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			var buffer bytes.Buffer
			if err := Write(&buffer, sampleArchive(), Options{Compression: compression}); err != nil {
				t.Fatalf("Write: %v", err)
			}
			archive, header, err := Read(&buffer)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if header.Compression != compression || header.Encrypted {
				t.Errorf("header = %+v", header)
			}
			assertArchiveEqual(t, archive, sampleArchive())
		})
	}
}

func TestRoundTripEncrypted(t *testing.T) {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer keypair.Close()

	var buffer bytes.Buffer
	options := Options{Compression: CompressionZstd, Recipients: []string{keypair.PublicKey}}
	if err := Write(&buffer, sampleArchive(), options); err != nil {
		t.Fatalf("Write: %v", err)
	}
	encoded := buffer.Bytes()

	if bytes.Contains(encoded, []byte("room scoped")) {
		t.Error("encrypted archive leaks plaintext")
	}

	if _, _, err := Read(bytes.NewReader(encoded)); !errors.Is(err, ErrEncrypted) {
		t.Errorf("Read without identity: err = %v, want ErrEncrypted", err)
	}

	header, err := ReadHeader(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if !header.Encrypted {
		t.Error("header does not record encryption")
	}

	archive, _, err := Read(bytes.NewReader(encoded), keypair.PrivateKey)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	assertArchiveEqual(t, archive, sampleArchive())
}

func TestHeaderDigestMatchesDigest(t *testing.T) {
	archive := sampleArchive()
	var buffer bytes.Buffer
	if err := Write(&buffer, archive, Options{Compression: CompressionZstd}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	header, err := ReadHeader(&buffer)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	want, err := Digest(archive.Global)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if header.GlobalDigest != want {
		t.Errorf("GlobalDigest = %s, want %s", header.GlobalDigest, want)
	}
}

func TestHeaderDiagnostic(t *testing.T) {
	var buffer bytes.Buffer
	if err := Write(&buffer, sampleArchive(), Options{Compression: CompressionLZ4}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	header, err := ReadHeader(&buffer)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	diagnostic, err := header.Diagnostic()
	if err != nil {
		t.Fatalf("Diagnostic: %v", err)
	}
	for _, want := range []string{`"created_at": 1790000000`, `"encrypted": false`, `"global_digest": h'`} {
		if !strings.Contains(diagnostic, want) {
			t.Errorf("Diagnostic() = %s, missing %s", diagnostic, want)
		}
	}
}

func TestReadDetectsTampering(t *testing.T) {
	var buffer bytes.Buffer
	if err := Write(&buffer, sampleArchive(), Options{Compression: CompressionNone}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	encoded := buffer.Bytes()
	index := bytes.Index(encoded, []byte("room scoped"))
	if index < 0 {
		t.Fatal("uncompressed payload should contain the title")
	}
	encoded[index] = 'R'

	if _, _, err := Read(bytes.NewReader(encoded)); !errors.Is(err, ErrDigestMismatch) {
		t.Errorf("err = %v, want ErrDigestMismatch", err)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{name: "empty", input: nil, want: ErrNotArchive},
		{name: "short", input: []byte("BMK"), want: ErrNotArchive},
		{name: "wrong magic", input: []byte("NOTANARCHIVE-------"), want: ErrNotArchive},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := Read(bytes.NewReader(test.input))
			if !errors.Is(err, test.want) {
				t.Errorf("err = %v, want %v", err, test.want)
			}
		})
	}

	badVersion := append([]byte("BMKARCH"), 99, 0, 0, 0, 1, 0)
	if _, _, err := Read(bytes.NewReader(badVersion)); err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("bad version: err = %v", err)
	}
}

func TestDigest(t *testing.T) {
	empty, err := Digest(bookmark.NewGlobalContent())
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	sample, err := Digest(sampleArchive().Global)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if empty == sample {
		t.Error("different documents share a digest")
	}

	// Insertion order does not affect the canonical encoding.
	reordered := bookmark.NewGlobalContent()
	reordered.Insert(roomB, nil)
	reordered.Insert(roomA, []bookmark.Bookmark{
		mark("$1", "first", "a *markdown* comment"),
		mark("$1", "first", "a *markdown* comment"),
	})
	again, err := Digest(reordered)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if again != sample {
		t.Error("equal documents have different digests")
	}

	// Domain separation: the global digest is not a plain archive body hash.
	encoded, _ := sampleArchive().Global.MarshalJSON()
	if keyedHash(bodyDomainKey, encoded) == sample {
		t.Error("domain keys do not separate digests")
	}

	parsed, err := ParseHash(sample.String())
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if parsed != sample {
		t.Error("ParseHash(String()) round trip failed")
	}
	if _, err := ParseHash("abc"); err == nil {
		t.Error("ParseHash accepted a short digest")
	}
}

func TestLZ4IncompressibleInput(t *testing.T) {
	for _, size := range []int{1, 14, 15, 300, 600} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i*131 + 7)
		}
		compressed, err := compress(data, CompressionLZ4)
		if err != nil {
			t.Fatalf("compress(%d): %v", size, err)
		}
		restored, err := decompress(compressed, CompressionLZ4, size)
		if err != nil {
			t.Fatalf("decompress(%d): %v", size, err)
		}
		if !bytes.Equal(restored, data) {
			t.Errorf("size %d: round trip mismatch", size)
		}
	}
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]Compression{"": CompressionZstd, "zstd": CompressionZstd, "lz4": CompressionLZ4, "none": CompressionNone} {
		got, err := ParseCompression(name)
		if err != nil || got != want {
			t.Errorf("ParseCompression(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseCompression("brotli"); err == nil {
		t.Error("expected error for unknown compression")
	}
}

func TestParseGlobalDocument(t *testing.T) {
	document := []byte(`{
		// reading list
		"!a:example.com": [
			{"event_id": "$1", "title": "first", "comment": "", }, // trailing comma
		],
		/* block comment */
		"!b:example.com": [],
	}`)
	content, err := ParseGlobalDocument(document)
	if err != nil {
		t.Fatalf("ParseGlobalDocument: %v", err)
	}
	if content.Len() != 2 || content.Count() != 1 {
		t.Errorf("Len=%d Count=%d", content.Len(), content.Count())
	}

	_, err = ParseGlobalDocument([]byte(`{"!a:example.com": [{"event_id": "$1"}]}`))
	if !errors.Is(err, bookmark.ErrMalformedContent) {
		t.Errorf("err = %v, want ErrMalformedContent", err)
	}
}

func TestParseRoomDocument(t *testing.T) {
	content, err := ParseRoomDocument([]byte(`{"bookmarks": [ /* none yet */ ]}`))
	if err != nil {
		t.Fatalf("ParseRoomDocument: %v", err)
	}
	if content.Len() != 0 {
		t.Errorf("Len() = %d", content.Len())
	}
}
