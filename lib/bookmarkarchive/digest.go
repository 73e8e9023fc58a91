// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkarchive

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// String returns the lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parses the 64-character hex form produced by String.
func ParseHash(value string) (Hash, error) {
	var hash Hash
	if len(value) != hex.EncodedLen(len(hash)) {
		return Hash{}, fmt.Errorf("digest must be %d hex characters, got %d", hex.EncodedLen(len(hash)), len(value))
	}
	if _, err := hex.Decode(hash[:], []byte(value)); err != nil {
		return Hash{}, fmt.Errorf("invalid digest: %w", err)
	}
	return hash, nil
}

// domainKey is a 32-byte BLAKE3 key holding a zero-padded ASCII domain
// name, so digests computed for different purposes never collide.
type domainKey [32]byte

var (
	globalDomainKey = domainKey{
		'b', 'u', 'r', 'e', 'a', 'u', '.', 'b', 'o', 'o', 'k', 'm', 'a', 'r', 'k', 's',
		'.', 'g', 'l', 'o', 'b', 'a', 'l', 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	bodyDomainKey = domainKey{
		'b', 'u', 'r', 'e', 'a', 'u', '.', 'b', 'o', 'o', 'k', 'm', 'a', 'r', 'k', 's',
		'.', 'a', 'r', 'c', 'h', 'i', 'v', 'e', 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// Digest hashes the canonical JSON encoding of content. Two documents
// have the same digest exactly when they serialize to the same bytes.
func Digest(content bookmark.GlobalContent) (Hash, error) {
	encoded, err := content.MarshalJSON()
	if err != nil {
		return Hash{}, fmt.Errorf("encoding global bookmarks: %w", err)
	}
	return keyedHash(globalDomainKey, encoded), nil
}

func keyedHash(key domainKey, data []byte) Hash {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("bookmarkarchive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var result Hash
	copy(result[:], hasher.Sum(nil))
	return result
}
