// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bookmarkindex mirrors bookmark account data into a local
// SQLite database so bookmarks can be listed and searched without a
// homeserver round trip.
//
// The index is a cache. Each Replace call overwrites one scope (the
// global document, or one room's document) inside an IMMEDIATE
// transaction, so readers see either the old or the new content and
// never a mix. Positions are stored per row and reads rebuild lists in
// position order, preserving duplicates and the order the homeserver
// returned.
package bookmarkindex
