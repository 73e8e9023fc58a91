// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Stamped with -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/bookmarks/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// Version is the release version.
	Version = "0.1.0-dev"

	// GitCommit is the short SHA the binary was built from.
	GitCommit = "unknown"

	// GitDirty is "true" when the working tree had local changes.
	GitDirty = "false"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Info returns "VERSION (COMMIT, BUILDTIME)", marking dirty trees.
func Info() string {
	commit := GitCommit
	if GitDirty == "true" {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildTime)
}

// Full returns Info followed by the Go toolchain and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent with every homeserver request.
func UserAgent() string {
	return "bookmarks/" + Version
}
