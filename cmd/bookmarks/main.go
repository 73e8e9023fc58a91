// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command bookmarks manages Matrix event bookmarks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/bookmarks/cmd/bookmarks/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own verdict (like digest --expect)
		// return an error carrying the exit code. Don't print a
		// redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root(os.Stdout).Execute(ctx, os.Args[1:])
}
