// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"filippo.io/age"

	"github.com/bureau-foundation/bookmarks/lib/secret"
)

// ErrNoIdentity is returned when decryption is attempted without keys.
var ErrNoIdentity = errors.New("sealed: no identities to decrypt with")

// Keypair is an age X25519 keypair. The private key lives in protected
// memory; Close releases it.
type Keypair struct {
	PrivateKey *secret.Buffer
	PublicKey  string
}

// Close releases the private key memory.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair creates a new X25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("sealed: generating keypair: %w", err)
	}
	privateKey, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("sealed: protecting private key: %w", err)
	}
	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// WriteIdentityFile writes the keypair in age identity file format to
// path with mode 0600. The file must not already exist.
func (k *Keypair) WriteIdentityFile(path string, now time.Time) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("sealed: creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("sealed: closing %s: %w", path, closeErr)
		}
	}()

	header := fmt.Sprintf("# created: %s\n# public key: %s\n", now.UTC().Format(time.RFC3339), k.PublicKey)
	if _, err := io.WriteString(file, header); err != nil {
		return fmt.Errorf("sealed: writing %s: %w", path, err)
	}
	if _, err := file.Write(k.PrivateKey.Bytes()); err != nil {
		return fmt.Errorf("sealed: writing %s: %w", path, err)
	}
	if _, err := io.WriteString(file, "\n"); err != nil {
		return fmt.Errorf("sealed: writing %s: %w", path, err)
	}
	return nil
}

// ParsePublicKey validates an age X25519 recipient string.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("sealed: invalid public key: %w", err)
	}
	return nil
}

// EncryptWriter returns a writer that encrypts to every recipient in
// recipientKeys and writes ciphertext to w. The caller must Close it to
// flush the final chunk; Close does not close w.
func EncryptWriter(w io.Writer, recipientKeys []string) (io.WriteCloser, error) {
	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("sealed: at least one recipient is required")
	}
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("sealed: parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}
	writer, err := age.Encrypt(w, recipients...)
	if err != nil {
		return nil, fmt.Errorf("sealed: creating encryptor: %w", err)
	}
	return writer, nil
}

// DecryptReader returns a reader of the plaintext in r. Each private key
// buffer holds one or more identities in age identity file format.
func DecryptReader(r io.Reader, privateKeys ...*secret.Buffer) (io.Reader, error) {
	var identities []age.Identity
	for _, privateKey := range privateKeys {
		if privateKey == nil {
			continue
		}
		parsed, err := age.ParseIdentities(bytes.NewReader(privateKey.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("sealed: parsing private key: %w", err)
		}
		identities = append(identities, parsed...)
	}
	if len(identities) == 0 {
		return nil, ErrNoIdentity
	}
	reader, err := age.Decrypt(r, identities...)
	if err != nil {
		return nil, fmt.Errorf("sealed: decrypting: %w", err)
	}
	return reader, nil
}
