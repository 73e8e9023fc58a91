// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/bookmarks/cmd/bookmarks/cli"
	"github.com/bureau-foundation/bookmarks/lib/clock"
)

// --- sync ---

type syncParams struct {
	Connection
	cli.JSONOutput
}

type syncResult struct {
	GlobalRooms     int       `json:"global_rooms"`
	GlobalBookmarks int       `json:"global_bookmarks"`
	Rooms           int       `json:"rooms"`
	RoomBookmarks   int       `json:"room_bookmarks"`
	SyncedAt        time.Time `json:"synced_at"`
}

func syncCommand(stdout io.Writer, clock clock.Clock) *cli.Command {
	var params syncParams

	return &cli.Command{
		Name:    "sync",
		Summary: "Refresh the local index from the homeserver",
		Description: `Read the global bookmarks document and the room bookmarks of every
joined room, then replace the local index with them in one
transaction. Rooms the user has left drop out of the index.`,
		Usage:  "bookmarks sync [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}

			manager, session, err := params.Manager(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			snapshot, err := manager.LoadSnapshot(ctx)
			if err != nil {
				return homeserverError(err, "loading bookmarks")
			}

			index, err := params.Index(ctx, logger)
			if err != nil {
				return err
			}
			defer index.Close()

			syncedAt := clock.Now().UTC()
			if err := index.ReplaceAll(ctx, snapshot.Global, snapshot.Rooms, syncedAt); err != nil {
				return cli.Internal("updating index: %w", err)
			}

			result := syncResult{
				GlobalRooms:     snapshot.Global.Len(),
				GlobalBookmarks: snapshot.Global.Count(),
				Rooms:           len(snapshot.Rooms),
				SyncedAt:        syncedAt,
			}
			for _, content := range snapshot.Rooms {
				result.RoomBookmarks += content.Len()
			}

			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			fmt.Fprintf(stdout, "Synced %d global bookmark(s) across %d room(s) and %d room bookmark(s) across %d room(s)\n",
				result.GlobalBookmarks, result.GlobalRooms, result.RoomBookmarks, result.Rooms)
			return nil
		},
	}
}

// --- whoami ---

type whoamiParams struct {
	Connection
	cli.JSONOutput
}

type whoamiResult struct {
	UserID     string `json:"user_id"`
	Homeserver string `json:"homeserver"`
}

func whoamiCommand(stdout io.Writer) *cli.Command {
	var params whoamiParams

	return &cli.Command{
		Name:    "whoami",
		Summary: "Check the configured access token",
		Description: `Ask the homeserver who the configured access token belongs to. Fails
when the token is rejected or belongs to a different user than
matrix.user_id.`,
		Usage:  "bookmarks whoami [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			cfg, err := params.Config()
			if err != nil {
				return err
			}
			session, err := params.Session(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			userID, err := session.WhoAmI(ctx)
			if err != nil {
				return homeserverError(err, "whoami")
			}
			if userID != session.UserID() {
				return cli.Forbidden("access token belongs to %s, not %s", userID, session.UserID()).
					WithHint("Update matrix.user_id or matrix.token_file so they match.")
			}

			result := whoamiResult{UserID: userID.String(), Homeserver: cfg.Matrix.Homeserver}
			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			fmt.Fprintf(stdout, "%s on %s\n", result.UserID, result.Homeserver)
			return nil
		},
	}
}
