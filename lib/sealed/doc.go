// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts byte streams to age X25519 recipients and
// decrypts them with identities held in [secret.Buffer] memory.
//
// Bookmark archives use it to protect exports: [EncryptWriter] wraps the
// archive payload writer and [DecryptReader] unwraps it on import.
// Private keys are accepted in age identity file form, so a buffer read
// straight from a key file written by [Keypair.WriteIdentityFile] works.
package sealed
