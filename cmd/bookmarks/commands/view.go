// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bookmarks/cmd/bookmarks/cli"
	"github.com/bureau-foundation/bookmarks/lib/bookmarkui"
	"github.com/bureau-foundation/bookmarks/lib/clock"
)

func viewCommand(clock clock.Clock) *cli.Command {
	var connection Connection
	var syncFirst bool

	return &cli.Command{
		Name:    "view",
		Summary: "Browse bookmarks interactively",
		Description: `Open a terminal viewer over the local index with a Global and a Room
tab. Press tab, 1, or 2 to switch tabs, j/k to move, / to fuzzy filter,
r to reload the index, and q to quit. Comments render as markdown.

With --sync the index is refreshed from the homeserver before the
viewer opens.`,
		Usage: "bookmarks view [flags]",
		Examples: []cli.Example{
			{
				Description: "Sync, then browse",
				Command:     "bookmarks view --sync",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("view", pflag.ContinueOnError)
			connection.AddFlags(flagSet)
			flagSet.BoolVar(&syncFirst, "sync", false, "refresh the index from the homeserver first")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			index, err := connection.Index(ctx, logger)
			if err != nil {
				return err
			}
			defer index.Close()

			if syncFirst {
				manager, session, err := connection.Manager(logger)
				if err != nil {
					return err
				}
				snapshot, err := manager.LoadSnapshot(ctx)
				session.Close()
				if err != nil {
					return homeserverError(err, "loading bookmarks")
				}
				if err := index.ReplaceAll(ctx, snapshot.Global, snapshot.Rooms, clock.Now().UTC()); err != nil {
					return cli.Internal("updating index: %w", err)
				}
			}

			model := bookmarkui.NewModel(ctx, index)
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("running viewer: %w", err)
			}
			return nil
		},
	}
}
