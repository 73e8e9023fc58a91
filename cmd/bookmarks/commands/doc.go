// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the bookmarks command tree.
//
// Commands fall into three groups:
//
//   - Homeserver commands (add, remove, sync, whoami) read and write
//     the user's bookmark account data through a token session. Writes
//     also refresh the local index so offline commands see them.
//   - Index commands (list, search, view, digest) read the SQLite
//     mirror populated by sync. list and digest accept --remote to
//     read the homeserver instead.
//   - Archive commands (export, import, keygen) move complete
//     snapshots in and out of portable, optionally encrypted files.
//
// Every command that touches state takes --config; without it the
// path comes from $BOOKMARKS_CONFIG.
package commands
