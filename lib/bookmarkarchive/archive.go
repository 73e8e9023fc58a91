// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkarchive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/bureau-foundation/bookmarks/lib/codec"
	"github.com/bureau-foundation/bookmarks/lib/netutil"
	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
	"github.com/bureau-foundation/bookmarks/lib/sealed"
	"github.com/bureau-foundation/bookmarks/lib/secret"
)

// FormatVersion is the archive layout version written by Write.
const FormatVersion = 1

// MaxBodySize bounds the uncompressed body accepted by Read.
const MaxBodySize = 64 << 20

// maxHeaderSize bounds the clear-text header accepted by Read.
const maxHeaderSize = 4 << 10

var magic = []byte("BMKARCH")

var (
	// ErrNotArchive is returned when input does not start with the magic.
	ErrNotArchive = errors.New("bookmarkarchive: not a bookmark archive")
	// ErrEncrypted is returned when an encrypted archive is read without
	// identities.
	ErrEncrypted = errors.New("bookmarkarchive: archive is encrypted")
	// ErrDigestMismatch is returned when content fails verification.
	ErrDigestMismatch = errors.New("bookmarkarchive: digest mismatch")
)

// Archive is a snapshot of every bookmark document a user holds.
type Archive struct {
	CreatedAt time.Time
	Global    bookmark.GlobalContent
	// Rooms maps a room to its room-scoped bookmark document.
	Rooms map[ref.RoomID]bookmark.RoomContent
}

// Options controls how Write encodes an archive.
type Options struct {
	Compression Compression
	// Recipients are age X25519 public keys. When empty the payload is
	// not encrypted.
	Recipients []string
}

// Header is the clear-text description of an archive.
type Header struct {
	Compression  Compression `cbor:"compression"`
	Encrypted    bool        `cbor:"encrypted"`
	CreatedAt    int64       `cbor:"created_at"`
	BodySize     int         `cbor:"body_size"`
	GlobalDigest Hash        `cbor:"global_digest"`
	BodyDigest   Hash        `cbor:"body_digest"`
}

// Diagnostic renders the header in CBOR diagnostic notation, as it
// is stored in the archive.
func (h Header) Diagnostic() (string, error) {
	encoded, err := codec.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("bookmarkarchive: encoding header: %w", err)
	}
	return codec.Diagnose(encoded)
}

// body is the CBOR payload. Identifiers travel as strings and are
// re-validated on read.
type body struct {
	Global map[string][]record `cbor:"global"`
	Rooms  map[string][]record `cbor:"rooms"`
}

type record struct {
	EventID string `cbor:"event_id"`
	Title   string `cbor:"title"`
	Comment string `cbor:"comment"`
}

// Write encodes archive to w.
func Write(w io.Writer, archive Archive, options Options) error {
	globalDigest, err := Digest(archive.Global)
	if err != nil {
		return err
	}
	encodedBody, err := codec.Marshal(toBody(archive))
	if err != nil {
		return fmt.Errorf("bookmarkarchive: encoding body: %w", err)
	}
	compressed, err := compress(encodedBody, options.Compression)
	if err != nil {
		return fmt.Errorf("bookmarkarchive: %w", err)
	}

	header := Header{
		Compression:  options.Compression,
		Encrypted:    len(options.Recipients) > 0,
		CreatedAt:    archive.CreatedAt.Unix(),
		BodySize:     len(encodedBody),
		GlobalDigest: globalDigest,
		BodyDigest:   keyedHash(bodyDomainKey, encodedBody),
	}
	encodedHeader, err := codec.Marshal(header)
	if err != nil {
		return fmt.Errorf("bookmarkarchive: encoding header: %w", err)
	}

	prefix := append(slices.Clone(magic), FormatVersion)
	prefix = binary.BigEndian.AppendUint32(prefix, uint32(len(encodedHeader)))
	prefix = append(prefix, encodedHeader...)
	if _, err := w.Write(prefix); err != nil {
		return fmt.Errorf("bookmarkarchive: writing header: %w", err)
	}

	if !header.Encrypted {
		if _, err := w.Write(compressed); err != nil {
			return fmt.Errorf("bookmarkarchive: writing payload: %w", err)
		}
		return nil
	}

	encryptor, err := sealed.EncryptWriter(w, options.Recipients)
	if err != nil {
		return fmt.Errorf("bookmarkarchive: %w", err)
	}
	if _, err := encryptor.Write(compressed); err != nil {
		return fmt.Errorf("bookmarkarchive: writing payload: %w", err)
	}
	if err := encryptor.Close(); err != nil {
		return fmt.Errorf("bookmarkarchive: finishing encryption: %w", err)
	}
	return nil
}

// ReadHeader reads and validates the clear-text header, leaving r
// positioned at the payload.
func ReadHeader(r io.Reader) (Header, error) {
	prefix := make([]byte, len(magic)+1+4)
	if _, err := io.ReadFull(r, prefix); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Header{}, ErrNotArchive
		}
		return Header{}, fmt.Errorf("bookmarkarchive: reading header: %w", err)
	}
	if !bytes.Equal(prefix[:len(magic)], magic) {
		return Header{}, ErrNotArchive
	}
	if version := prefix[len(magic)]; version != FormatVersion {
		return Header{}, fmt.Errorf("bookmarkarchive: unsupported format version %d", version)
	}
	headerLength := binary.BigEndian.Uint32(prefix[len(magic)+1:])
	if headerLength == 0 || headerLength > maxHeaderSize {
		return Header{}, fmt.Errorf("bookmarkarchive: header length %d out of range", headerLength)
	}

	encodedHeader := make([]byte, headerLength)
	if _, err := io.ReadFull(r, encodedHeader); err != nil {
		return Header{}, fmt.Errorf("bookmarkarchive: reading header: %w", err)
	}
	var header Header
	if err := codec.Unmarshal(encodedHeader, &header); err != nil {
		return Header{}, fmt.Errorf("bookmarkarchive: decoding header: %w", err)
	}
	if header.BodySize <= 0 || header.BodySize > MaxBodySize {
		return Header{}, fmt.Errorf("bookmarkarchive: body size %d out of range", header.BodySize)
	}
	return header, nil
}

// Read decodes and verifies an archive. identities are age private keys
// and are only consulted for encrypted archives.
func Read(r io.Reader, identities ...*secret.Buffer) (Archive, Header, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return Archive{}, Header{}, err
	}

	payload := r
	if header.Encrypted {
		if len(identities) == 0 {
			return Archive{}, header, ErrEncrypted
		}
		payload, err = sealed.DecryptReader(r, identities...)
		if err != nil {
			return Archive{}, header, fmt.Errorf("bookmarkarchive: %w", err)
		}
	}
	compressed, err := netutil.ReadLimited(payload, MaxBodySize)
	if err != nil {
		return Archive{}, header, fmt.Errorf("bookmarkarchive: reading payload: %w", err)
	}
	encodedBody, err := decompress(compressed, header.Compression, header.BodySize)
	if err != nil {
		return Archive{}, header, fmt.Errorf("bookmarkarchive: %w", err)
	}
	if keyedHash(bodyDomainKey, encodedBody) != header.BodyDigest {
		return Archive{}, header, fmt.Errorf("%w: body", ErrDigestMismatch)
	}

	var decoded body
	if err := codec.Unmarshal(encodedBody, &decoded); err != nil {
		return Archive{}, header, fmt.Errorf("bookmarkarchive: decoding body: %w", err)
	}
	archive, err := fromBody(decoded)
	if err != nil {
		return Archive{}, header, err
	}
	archive.CreatedAt = time.Unix(header.CreatedAt, 0)

	globalDigest, err := Digest(archive.Global)
	if err != nil {
		return Archive{}, header, err
	}
	if globalDigest != header.GlobalDigest {
		return Archive{}, header, fmt.Errorf("%w: global document", ErrDigestMismatch)
	}
	return archive, header, nil
}

func toBody(archive Archive) body {
	encoded := body{
		Global: make(map[string][]record, archive.Global.Len()),
		Rooms:  make(map[string][]record, len(archive.Rooms)),
	}
	for room, list := range archive.Global.All() {
		encoded.Global[room.String()] = toRecords(list)
	}
	for room, content := range archive.Rooms {
		encoded.Rooms[room.String()] = toRecords(content.Bookmarks)
	}
	return encoded
}

func toRecords(list []bookmark.Bookmark) []record {
	records := make([]record, len(list))
	for i, entry := range list {
		records[i] = record{EventID: entry.EventID.String(), Title: entry.Title, Comment: entry.Comment}
	}
	return records
}

func fromBody(decoded body) (Archive, error) {
	archive := Archive{
		Global: bookmark.NewGlobalContent(),
		Rooms:  make(map[ref.RoomID]bookmark.RoomContent, len(decoded.Rooms)),
	}
	for _, key := range slices.Sorted(maps.Keys(decoded.Global)) {
		room, list, err := fromRecords(key, decoded.Global[key])
		if err != nil {
			return Archive{}, fmt.Errorf("bookmarkarchive: global: %w", err)
		}
		archive.Global.Insert(room, list)
	}
	for _, key := range slices.Sorted(maps.Keys(decoded.Rooms)) {
		room, list, err := fromRecords(key, decoded.Rooms[key])
		if err != nil {
			return Archive{}, fmt.Errorf("bookmarkarchive: rooms: %w", err)
		}
		archive.Rooms[room] = bookmark.NewRoomContent(list)
	}
	return archive, nil
}

func fromRecords(roomKey string, records []record) (ref.RoomID, []bookmark.Bookmark, error) {
	room, err := ref.ParseRoomID(roomKey)
	if err != nil {
		return ref.RoomID{}, nil, err
	}
	list := make([]bookmark.Bookmark, len(records))
	for i, entry := range records {
		eventID, err := ref.ParseEventID(entry.EventID)
		if err != nil {
			return ref.RoomID{}, nil, fmt.Errorf("%s[%d]: %w", roomKey, i, err)
		}
		list[i] = bookmark.New(eventID, entry.Title, entry.Comment)
	}
	return room, list, nil
}
