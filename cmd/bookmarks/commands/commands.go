// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/bookmarks/cmd/bookmarks/cli"
	"github.com/bureau-foundation/bookmarks/lib/clock"
	"github.com/bureau-foundation/bookmarks/lib/version"
)

// Root returns the top-level "bookmarks" command with every subcommand
// attached. Command output goes to stdout; logs go to stderr.
func Root(stdout io.Writer) *cli.Command {
	return NewRoot(stdout, clock.Real())
}

// NewRoot is Root with an injected clock for archive and sync
// timestamps.
func NewRoot(stdout io.Writer, clock clock.Clock) *cli.Command {
	return &cli.Command{
		Name: "bookmarks",
		Description: `Bookmarks: Matrix event bookmarks stored in account data.

Bookmarks annotate Matrix events with a title and a comment. Global
bookmarks live in one account data document keyed by room; room
bookmarks live in each room's own account data. A local SQLite index
mirrors both for offline listing, search, and the terminal viewer.`,
		Subcommands: []*cli.Command{
			listCommand(stdout),
			addCommand(stdout),
			removeCommand(stdout),
			syncCommand(stdout, clock),
			searchCommand(stdout),
			viewCommand(clock),
			exportCommand(stdout, clock),
			importCommand(stdout),
			digestCommand(stdout),
			inspectCommand(stdout),
			keygenCommand(stdout, clock),
			whoamiCommand(stdout),
			versionCommand(stdout),
		},
	}
}

func versionCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			fmt.Fprintln(stdout, version.Full())
			return nil
		},
	}
}
