// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/bookmarks/cmd/bookmarks/cli"
	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
	"github.com/bureau-foundation/bookmarks/lib/bookmarkstore"
	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
)

// mutationTarget is the room, event, and scope a mutation applies to.
type mutationTarget struct {
	room    ref.RoomID
	eventID ref.EventID
	scope   bookmarkindex.Scope
}

func parseTarget(room, event, scope string) (mutationTarget, error) {
	var parsed mutationTarget
	var err error
	if room == "" {
		return parsed, cli.Validation("--room is required")
	}
	if parsed.room, err = ref.ParseRoomID(room); err != nil {
		return parsed, cli.Validation("--room: %w", err)
	}
	if event == "" {
		return parsed, cli.Validation("--event is required")
	}
	if parsed.eventID, err = ref.ParseEventID(event); err != nil {
		return parsed, cli.Validation("--event: %w", err)
	}
	switch bookmarkindex.Scope(scope) {
	case bookmarkindex.ScopeGlobal, bookmarkindex.ScopeRoom:
		parsed.scope = bookmarkindex.Scope(scope)
	default:
		return parsed, cli.Validation("--scope must be global or room, got %q", scope)
	}
	return parsed, nil
}

// refreshIndex mirrors the document that target's scope names into the
// local index. Failures are logged: the homeserver write already
// succeeded and the next sync repairs the index.
func refreshIndex(ctx context.Context, connection *Connection, manager *bookmarkstore.Manager, target mutationTarget, logger *slog.Logger) {
	index, err := connection.Index(ctx, logger)
	if err != nil {
		logger.Warn("index not updated; run bookmarks sync", "error", err)
		return
	}
	defer index.Close()

	if target.scope == bookmarkindex.ScopeGlobal {
		content, err := manager.LoadGlobal(ctx)
		if err == nil {
			err = index.ReplaceGlobal(ctx, content)
		}
		if err != nil {
			logger.Warn("index not updated; run bookmarks sync", "error", err)
		}
		return
	}
	content, err := manager.LoadRoom(ctx, target.room)
	if err == nil {
		err = index.ReplaceRoom(ctx, target.room, content)
	}
	if err != nil {
		logger.Warn("index not updated; run bookmarks sync", "error", err)
	}
}

// mutationResult is the JSON output of add and remove.
type mutationResult struct {
	Scope   string `json:"scope"`
	Room    string `json:"room_id"`
	EventID string `json:"event_id"`
	// Count is the room's list length after add, or the number of
	// records removed.
	Count int `json:"count"`
}

// --- add ---

type addParams struct {
	Connection
	cli.JSONOutput
	Room    string `json:"room"    flag:"room,r"  desc:"room ID the event belongs to"`
	Event   string `json:"event"   flag:"event,e" desc:"event ID to bookmark"`
	Title   string `json:"title"   flag:"title,t" desc:"short label"`
	Comment string `json:"comment" flag:"comment" desc:"longer note (markdown)"`
	Scope   string `json:"scope"   flag:"scope,s" desc:"global or room" default:"global"`
}

func addCommand(stdout io.Writer) *cli.Command {
	var params addParams

	return &cli.Command{
		Name:    "add",
		Summary: "Bookmark an event",
		Description: `Append a bookmark to the end of a room's list and write the document
back to the homeserver.

With --scope global (the default) the bookmark goes into the user's
global bookmarks document, keyed by room. With --scope room it goes
into the room's own account data. Adding the same event twice keeps
both records.`,
		Usage: "bookmarks add --room ROOM --event EVENT [flags]",
		Examples: []cli.Example{
			{
				Description: "Bookmark a message with a title",
				Command:     "bookmarks add --room '!abc:example.org' --event '$xyz' --title 'Release checklist'",
			},
			{
				Description: "Store the bookmark in the room's own account data",
				Command:     "bookmarks add -r '!abc:example.org' -e '$xyz' --scope room --comment 'See *step 3*'",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			target, err := parseTarget(params.Room, params.Event, params.Scope)
			if err != nil {
				return err
			}
			logger = logger.With("room", target.room.String(), "scope", string(target.scope))

			manager, session, err := params.Manager(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			entry := bookmark.New(target.eventID, params.Title, params.Comment)
			var count int
			if target.scope == bookmarkindex.ScopeGlobal {
				content, err := manager.AddGlobal(ctx, target.room, entry)
				if err != nil {
					return homeserverError(err, "adding bookmark")
				}
				list, _ := content.Get(target.room)
				count = len(list)
			} else {
				content, err := manager.AddRoom(ctx, target.room, entry)
				if err != nil {
					return homeserverError(err, "adding bookmark")
				}
				count = content.Len()
			}
			refreshIndex(ctx, &params.Connection, manager, target, logger)

			result := mutationResult{
				Scope:   string(target.scope),
				Room:    target.room.String(),
				EventID: target.eventID.String(),
				Count:   count,
			}
			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			fmt.Fprintf(stdout, "Bookmarked %s in %s (%s, %d in room)\n",
				target.eventID, target.room, target.scope, count)
			return nil
		},
	}
}

// --- remove ---

type removeParams struct {
	Connection
	cli.JSONOutput
	Room  string `json:"room"  flag:"room,r"  desc:"room ID the event belongs to"`
	Event string `json:"event" flag:"event,e" desc:"event ID to remove"`
	Scope string `json:"scope" flag:"scope,s" desc:"global or room" default:"global"`
}

func removeCommand(stdout io.Writer) *cli.Command {
	var params removeParams

	return &cli.Command{
		Name:    "remove",
		Summary: "Remove bookmarks for an event",
		Description: `Remove every bookmark for an event from a room's list. A room whose
list becomes empty keeps an empty entry. Nothing is written when no
bookmark matches.`,
		Usage: "bookmarks remove --room ROOM --event EVENT [flags]",
		Examples: []cli.Example{
			{
				Description: "Remove a global bookmark",
				Command:     "bookmarks remove --room '!abc:example.org' --event '$xyz'",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			target, err := parseTarget(params.Room, params.Event, params.Scope)
			if err != nil {
				return err
			}
			logger = logger.With("room", target.room.String(), "scope", string(target.scope))

			manager, session, err := params.Manager(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			var removed int
			if target.scope == bookmarkindex.ScopeGlobal {
				removed, err = manager.RemoveGlobal(ctx, target.room, target.eventID)
			} else {
				removed, err = manager.RemoveRoom(ctx, target.room, target.eventID)
			}
			if err != nil {
				return homeserverError(err, "removing bookmark")
			}
			if removed == 0 {
				return cli.NotFound("no %s bookmark for %s in %s", target.scope, target.eventID, target.room).
					WithHint("Run 'bookmarks list --remote --room " + target.room.String() + "' to see what is stored.")
			}
			refreshIndex(ctx, &params.Connection, manager, target, logger)

			result := mutationResult{
				Scope:   string(target.scope),
				Room:    target.room.String(),
				EventID: target.eventID.String(),
				Count:   removed,
			}
			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			fmt.Fprintf(stdout, "Removed %d bookmark(s) for %s in %s (%s)\n",
				removed, target.eventID, target.room, target.scope)
			return nil
		},
	}
}
