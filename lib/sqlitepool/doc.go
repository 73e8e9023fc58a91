// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens pooled SQLite connections with the pragmas the
// bookmark index depends on, and applies ordered schema migrations.
//
// Every connection runs in WAL mode with synchronous=NORMAL and a busy
// timeout, so readers never block the single writer. Migrations are a
// list of SQL scripts; the script at index i moves the database from
// user_version i to i+1. [Open] applies any pending scripts on one
// connection inside an IMMEDIATE transaction before handing out the pool.
//
// Connections are not safe for concurrent use. Take one per goroutine
// and Put it back:
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
package sqlitepool
