// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bookmarks/cmd/bookmarks/cli"
	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
	"github.com/bureau-foundation/bookmarks/lib/bookmarkstore"
	"github.com/bureau-foundation/bookmarks/lib/config"
	"github.com/bureau-foundation/bookmarks/lib/secret"
	"github.com/bureau-foundation/bookmarks/lib/version"
	"github.com/bureau-foundation/bookmarks/messaging"
)

// Connection locates the config file and opens the resources commands
// need from it. Embed it in a params struct to get --config.
type Connection struct {
	ConfigPath string `json:"-"`

	loaded *config.Config
}

// AddFlags registers --config.
func (c *Connection) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&c.ConfigPath, "config", "c", "",
		"config file (default $"+config.EnvironmentVariable+")")
}

// Config loads and validates the config file once.
func (c *Connection) Config() (*config.Config, error) {
	if c.loaded != nil {
		return c.loaded, nil
	}

	var cfg *config.Config
	var err error
	if c.ConfigPath != "" {
		cfg, err = config.LoadFile(c.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, cli.Validation("loading config: %w", err).
			WithHint("Pass --config or set $" + config.EnvironmentVariable + ".")
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid config:\n%w", err)
	}
	c.loaded = cfg
	return cfg, nil
}

// Session opens a token session against the configured homeserver.
// The caller must Close it.
func (c *Connection) Session(logger *slog.Logger) (*messaging.DirectSession, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateMatrix(); err != nil {
		return nil, cli.Validation("incomplete matrix config:\n%w", err)
	}
	userID, err := cfg.UserID()
	if err != nil {
		return nil, cli.Validation("matrix.user_id: %w", err)
	}

	token, err := secret.ReadFromPath(cfg.Matrix.TokenFile)
	if err != nil {
		return nil, cli.Validation("reading access token: %w", err).
			WithHint("matrix.token_file must hold the access token on one line.")
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.Matrix.Homeserver,
		UserAgent:     version.UserAgent(),
		Logger:        logger,
	})
	if err != nil {
		token.Close()
		return nil, cli.Validation("%w", err)
	}
	session, err := client.SessionFromToken(userID, token)
	if err != nil {
		token.Close()
		return nil, cli.Internal("%w", err)
	}
	return session, nil
}

// Manager opens a session and wraps it in a bookmark manager. The
// returned session must be closed by the caller.
func (c *Connection) Manager(logger *slog.Logger) (*bookmarkstore.Manager, *messaging.DirectSession, error) {
	session, err := c.Session(logger)
	if err != nil {
		return nil, nil, err
	}
	return bookmarkstore.NewManager(session, logger), session, nil
}

// Index opens the local index, creating its directory if needed. The
// caller must Close it.
func (c *Connection) Index(ctx context.Context, logger *slog.Logger) (*bookmarkindex.Index, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, cli.Internal("%w", err)
	}
	index, err := bookmarkindex.Open(ctx, bookmarkindex.Config{
		Path:   cfg.Paths.Index,
		Logger: logger,
	})
	if err != nil {
		return nil, cli.Internal("opening index: %w", err)
	}
	return index, nil
}

// homeserverError categorizes an error from a homeserver call.
func homeserverError(err error, action string) error {
	var matrixErr *messaging.MatrixError
	var netErr net.Error
	switch {
	case errors.As(err, &matrixErr):
		switch matrixErr.Code {
		case messaging.ErrCodeForbidden, messaging.ErrCodeUnknownToken:
			return cli.Forbidden("%s: %w", action, err).
				WithHint("Check that matrix.token_file holds a valid access token for matrix.user_id.")
		case messaging.ErrCodeLimitExceeded:
			return cli.Transient("%s: %w", action, err)
		}
		return cli.Internal("%s: %w", action, err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return cli.Transient("%s: %w", action, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", action, err)
	}
	return cli.Internal("%s: %w", action, err)
}
