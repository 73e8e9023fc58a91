// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable source of the current time.
//
// Code that stamps records (archive creation times, index sync times)
// takes a [Clock] instead of calling time.Now, so tests can pin the
// timestamps they assert on:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	root := commands.NewRoot(&stdout, c)
//	// ... run a command ...
//	c.Advance(time.Hour)
//
// Production code uses [Real].
package clock
