// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/bookmarks/cmd/bookmarks/cli"
	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// --- list ---

type listParams struct {
	Connection
	cli.JSONOutput
	Scope  string `json:"scope"  flag:"scope,s" desc:"global, room, or all" default:"all"`
	Room   string `json:"room"   flag:"room,r"  desc:"only bookmarks in this room ID"`
	Remote bool   `json:"remote" flag:"remote"  desc:"read the homeserver instead of the local index"`
}

func listCommand(stdout io.Writer) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List bookmarks",
		Description: `List bookmarks from the local index, ordered by scope, room, and
position. Global bookmarks live in the user's global account data;
room bookmarks live in each room's own account data.

The index reflects the last "bookmarks sync". Pass --remote to read the
homeserver directly.`,
		Usage: "bookmarks list [flags]",
		Examples: []cli.Example{
			{
				Description: "List everything in the index",
				Command:     "bookmarks list",
			},
			{
				Description: "List global bookmarks for one room as JSON",
				Command:     "bookmarks list --scope global --room '!abc:example.org' --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			scopes, err := parseScopes(params.Scope)
			if err != nil {
				return err
			}
			var room ref.RoomID
			if params.Room != "" {
				if room, err = ref.ParseRoomID(params.Room); err != nil {
					return cli.Validation("--room: %w", err)
				}
			}

			var entries []bookmarkindex.Entry
			if params.Remote {
				manager, session, err := params.Manager(logger)
				if err != nil {
					return err
				}
				defer session.Close()
				snapshot, err := manager.LoadSnapshot(ctx)
				if err != nil {
					return homeserverError(err, "loading bookmarks")
				}
				for _, scope := range scopes {
					entries = append(entries, snapshotEntries(snapshot, scope)...)
				}
			} else {
				index, err := params.Index(ctx, logger)
				if err != nil {
					return err
				}
				defer index.Close()
				for _, scope := range scopes {
					scoped, err := index.Entries(ctx, scope)
					if err != nil {
						return cli.Internal("reading index: %w", err)
					}
					entries = append(entries, scoped...)
				}
			}

			if !room.IsZero() {
				entries = filterRoom(entries, room)
			}

			if done, err := params.EmitJSON(stdout, toRecords(entries)); done {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "No bookmarks.")
				return nil
			}
			return printEntries(stdout, entries)
		},
	}
}

func parseScopes(value string) ([]bookmarkindex.Scope, error) {
	switch value {
	case "all", "":
		return []bookmarkindex.Scope{bookmarkindex.ScopeGlobal, bookmarkindex.ScopeRoom}, nil
	case string(bookmarkindex.ScopeGlobal):
		return []bookmarkindex.Scope{bookmarkindex.ScopeGlobal}, nil
	case string(bookmarkindex.ScopeRoom):
		return []bookmarkindex.Scope{bookmarkindex.ScopeRoom}, nil
	}
	return nil, cli.Validation("--scope must be global, room, or all, got %q", value)
}

func filterRoom(entries []bookmarkindex.Entry, room ref.RoomID) []bookmarkindex.Entry {
	var kept []bookmarkindex.Entry
	for _, entry := range entries {
		if entry.Room == room {
			kept = append(kept, entry)
		}
	}
	return kept
}

// --- search ---

type searchParams struct {
	Connection
	cli.JSONOutput
	Limit int `json:"limit" flag:"limit,n" desc:"maximum number of results" default:"50"`
}

func searchCommand(stdout io.Writer) *cli.Command {
	var params searchParams

	return &cli.Command{
		Name:    "search",
		Summary: "Search bookmark titles and comments",
		Description: `Search the local index for bookmarks whose title or comment contains
QUERY, ignoring case. Multiple arguments are joined with spaces.

Use "bookmarks view" for interactive fuzzy filtering.`,
		Usage: "bookmarks search QUERY [flags]",
		Examples: []cli.Example{
			{
				Description: "Find release notes",
				Command:     "bookmarks search release notes",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return cli.Validation("search query is required\n\nUsage: bookmarks search QUERY [flags]")
			}
			if params.Limit <= 0 {
				return cli.Validation("--limit must be positive, got %d", params.Limit)
			}

			index, err := params.Index(ctx, logger)
			if err != nil {
				return err
			}
			defer index.Close()

			entries, err := index.Search(ctx, query, params.Limit)
			if err != nil {
				return cli.Internal("searching index: %w", err)
			}

			if done, err := params.EmitJSON(stdout, toRecords(entries)); done {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(stdout, "No bookmarks match %q.\n", query)
				return nil
			}
			return printEntries(stdout, entries)
		},
	}
}
