// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds credentials outside the Go heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM and excluded
// from core dumps. The bookmarks tooling keeps two things in one: the
// Matrix access token read from the configured token file, and the age
// identity used to decrypt archives. Close zeroes and unmaps the region;
// any read after Close panics.
package secret
