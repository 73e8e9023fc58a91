// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports which build of bookmarks is running. The
// values are stamped by the linker; unstamped builds report a -dev
// version and an "unknown" commit.
//
// [Full] backs the version command and [UserAgent] identifies the
// client to the homeserver.
package version
