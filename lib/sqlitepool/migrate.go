// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SchemaVersion reads PRAGMA user_version.
func SchemaVersion(conn *sqlite.Conn) (int, error) {
	var version int
	err := sqlitex.ExecuteTransient(conn, "PRAGMA user_version", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("sqlitepool: reading user_version: %w", err)
	}
	return version, nil
}

func (p *Pool) migrate(ctx context.Context, migrations []string) (err error) {
	if len(migrations) == 0 {
		return nil
	}

	conn, err := p.Take(ctx)
	if err != nil {
		return err
	}
	defer p.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("sqlitepool: begin migration: %w", err)
	}
	defer endTransaction(&err)

	current, err := SchemaVersion(conn)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("sqlitepool: %s has schema version %d, newer than the %d known migrations", p.path, current, len(migrations))
	}

	for version := current; version < len(migrations); version++ {
		if err := sqlitex.ExecuteScript(conn, migrations[version], nil); err != nil {
			return fmt.Errorf("sqlitepool: migration %d: %w", version+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if err := sqlitex.ExecuteTransient(conn, fmt.Sprintf("PRAGMA user_version = %d", version+1), nil); err != nil {
			return fmt.Errorf("sqlitepool: recording schema version %d: %w", version+1, err)
		}
		p.logger.Info("applied schema migration",
			"path", p.path,
			"version", version+1,
		)
	}
	return nil
}
