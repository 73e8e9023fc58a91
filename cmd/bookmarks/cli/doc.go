// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the bookmarks
// binary.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a flag source, and a Run function.
// Commands are assembled into a tree by the commands package and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// Flags are declared either with a [pflag.FlagSet] factory or, more
// commonly, by tagging a params struct and returning it from
// [Command.Params]; [BindFlags] turns the tags into flags.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// Errors returned by commands are usually [ToolError] values carrying
// a category, or an [ExitError] when the command already printed its
// own diagnostics.
package cli
