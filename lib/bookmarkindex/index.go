// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkindex

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
	"github.com/bureau-foundation/bookmarks/lib/sqlitepool"
)

// Config holds the parameters for opening an index.
type Config struct {
	// Path is the database file. The parent directory must exist.
	Path string
	// Logger receives operational messages. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Index is a SQLite-backed bookmark mirror. It is safe for concurrent use.
type Index struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Entry is one bookmark row with its location.
type Entry struct {
	Scope    Scope
	Room     ref.RoomID
	Position int
	Bookmark bookmark.Bookmark
}

// Open opens or creates the index at cfg.Path.
func Open(ctx context.Context, cfg Config) (*Index, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := sqlitepool.Open(ctx, sqlitepool.Config{
		Path:       cfg.Path,
		PoolSize:   4,
		Migrations: migrations,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("bookmarkindex: %w", err)
	}
	return &Index{pool: pool, logger: logger}, nil
}

// Close closes the underlying pool.
func (x *Index) Close() error {
	return x.pool.Close()
}

// ReplaceGlobal overwrites the mirrored global document with content.
func (x *Index) ReplaceGlobal(ctx context.Context, content bookmark.GlobalContent) (err error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("bookmarkindex: replace global: %w", err)
	}
	defer x.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("bookmarkindex: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	if err := replaceGlobal(conn, content); err != nil {
		return err
	}
	x.logger.Debug("indexed global bookmarks",
		"rooms", content.Len(),
		"bookmarks", content.Count(),
	)
	return nil
}

// ReplaceRoom overwrites the mirrored room-scoped document for room.
func (x *Index) ReplaceRoom(ctx context.Context, room ref.RoomID, content bookmark.RoomContent) (err error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("bookmarkindex: replace room: %w", err)
	}
	defer x.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("bookmarkindex: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	if err := deleteScope(conn, ScopeRoom, room); err != nil {
		return err
	}
	if err := insertList(conn, ScopeRoom, room, content.Bookmarks); err != nil {
		return err
	}
	x.logger.Debug("indexed room bookmarks",
		"room_id", room,
		"bookmarks", content.Len(),
	)
	return nil
}

// ReplaceAll overwrites the whole index: the global document and every
// room-scoped document. Rooms absent from rooms are dropped. now is
// recorded as the sync time.
func (x *Index) ReplaceAll(ctx context.Context, global bookmark.GlobalContent, rooms map[ref.RoomID]bookmark.RoomContent, now time.Time) (err error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("bookmarkindex: replace all: %w", err)
	}
	defer x.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("bookmarkindex: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	if err := replaceGlobal(conn, global); err != nil {
		return err
	}
	for _, statement := range []string{
		"DELETE FROM bookmarks WHERE scope = ?",
		"DELETE FROM rooms WHERE scope = ?",
	} {
		if err := sqlitex.Execute(conn, statement, &sqlitex.ExecOptions{Args: []any{string(ScopeRoom)}}); err != nil {
			return fmt.Errorf("bookmarkindex: clearing room scope: %w", err)
		}
	}
	for _, room := range slices.SortedFunc(maps.Keys(rooms), ref.RoomID.Compare) {
		if err := insertList(conn, ScopeRoom, room, rooms[room].Bookmarks); err != nil {
			return err
		}
	}
	err = sqlitex.Execute(conn,
		"INSERT INTO sync_state (id, synced_at) VALUES (1, ?) ON CONFLICT (id) DO UPDATE SET synced_at = excluded.synced_at",
		&sqlitex.ExecOptions{Args: []any{now.Unix()}})
	if err != nil {
		return fmt.Errorf("bookmarkindex: recording sync time: %w", err)
	}

	x.logger.Info("index replaced",
		"global_rooms", global.Len(),
		"global_bookmarks", global.Count(),
		"room_documents", len(rooms),
	)
	return nil
}

// LastSync returns the time recorded by the most recent ReplaceAll, or
// the zero time if the index has never been fully synced.
func (x *Index) LastSync(ctx context.Context) (time.Time, error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("bookmarkindex: last sync: %w", err)
	}
	defer x.pool.Put(conn)

	var syncedAt time.Time
	err = sqlitex.Execute(conn, "SELECT synced_at FROM sync_state WHERE id = 1", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			syncedAt = time.Unix(stmt.ColumnInt64(0), 0)
			return nil
		},
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("bookmarkindex: last sync: %w", err)
	}
	return syncedAt, nil
}

// Global rebuilds the mirrored global document.
func (x *Index) Global(ctx context.Context) (bookmark.GlobalContent, error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return bookmark.GlobalContent{}, fmt.Errorf("bookmarkindex: global: %w", err)
	}
	defer x.pool.Put(conn)

	content := bookmark.NewGlobalContent()
	rooms, err := scopeRooms(conn, ScopeGlobal)
	if err != nil {
		return bookmark.GlobalContent{}, err
	}
	for _, room := range rooms {
		list, err := readList(conn, ScopeGlobal, room)
		if err != nil {
			return bookmark.GlobalContent{}, err
		}
		content.Insert(room, list)
	}
	return content, nil
}

// Room rebuilds the mirrored room-scoped document for room. A room the
// index has never seen yields empty content.
func (x *Index) Room(ctx context.Context, room ref.RoomID) (bookmark.RoomContent, error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return bookmark.RoomContent{}, fmt.Errorf("bookmarkindex: room: %w", err)
	}
	defer x.pool.Put(conn)

	list, err := readList(conn, ScopeRoom, room)
	if err != nil {
		return bookmark.RoomContent{}, err
	}
	return bookmark.NewRoomContent(list), nil
}

// Rooms returns the rooms holding a document in scope, in canonical order.
func (x *Index) Rooms(ctx context.Context, scope Scope) ([]ref.RoomID, error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("bookmarkindex: rooms: %w", err)
	}
	defer x.pool.Put(conn)
	return scopeRooms(conn, scope)
}

// Entries returns every row in scope ordered by room and position.
func (x *Index) Entries(ctx context.Context, scope Scope) ([]Entry, error) {
	conn, err := x.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("bookmarkindex: entries: %w", err)
	}
	defer x.pool.Put(conn)

	return queryEntries(conn,
		`SELECT scope, room_id, position, event_id, title, comment FROM bookmarks
		 WHERE scope = ? ORDER BY room_id, position`,
		string(scope))
}

func replaceGlobal(conn *sqlite.Conn, content bookmark.GlobalContent) error {
	for _, statement := range []string{
		"DELETE FROM bookmarks WHERE scope = ?",
		"DELETE FROM rooms WHERE scope = ?",
	} {
		if err := sqlitex.Execute(conn, statement, &sqlitex.ExecOptions{Args: []any{string(ScopeGlobal)}}); err != nil {
			return fmt.Errorf("bookmarkindex: clearing global scope: %w", err)
		}
	}
	for room, list := range content.All() {
		if err := insertList(conn, ScopeGlobal, room, list); err != nil {
			return err
		}
	}
	return nil
}

func deleteScope(conn *sqlite.Conn, scope Scope, room ref.RoomID) error {
	for _, statement := range []string{
		"DELETE FROM bookmarks WHERE scope = ? AND room_id = ?",
		"DELETE FROM rooms WHERE scope = ? AND room_id = ?",
	} {
		err := sqlitex.Execute(conn, statement, &sqlitex.ExecOptions{
			Args: []any{string(scope), room.String()},
		})
		if err != nil {
			return fmt.Errorf("bookmarkindex: clearing %s %s: %w", scope, room, err)
		}
	}
	return nil
}

func insertList(conn *sqlite.Conn, scope Scope, room ref.RoomID, list []bookmark.Bookmark) error {
	err := sqlitex.Execute(conn, "INSERT INTO rooms (scope, room_id) VALUES (?, ?)", &sqlitex.ExecOptions{
		Args: []any{string(scope), room.String()},
	})
	if err != nil {
		return fmt.Errorf("bookmarkindex: recording %s %s: %w", scope, room, err)
	}
	for position, entry := range list {
		err := sqlitex.Execute(conn,
			`INSERT INTO bookmarks (scope, room_id, position, event_id, title, comment)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{string(scope), room.String(), position, entry.EventID.String(), entry.Title, entry.Comment},
			})
		if err != nil {
			return fmt.Errorf("bookmarkindex: inserting %s %s[%d]: %w", scope, room, position, err)
		}
	}
	return nil
}

func scopeRooms(conn *sqlite.Conn, scope Scope) ([]ref.RoomID, error) {
	var rooms []ref.RoomID
	err := sqlitex.Execute(conn, "SELECT room_id FROM rooms WHERE scope = ? ORDER BY room_id", &sqlitex.ExecOptions{
		Args: []any{string(scope)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			room, err := ref.ParseRoomID(stmt.ColumnText(0))
			if err != nil {
				return fmt.Errorf("corrupt room_id: %w", err)
			}
			rooms = append(rooms, room)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bookmarkindex: listing %s rooms: %w", scope, err)
	}
	return rooms, nil
}

func readList(conn *sqlite.Conn, scope Scope, room ref.RoomID) ([]bookmark.Bookmark, error) {
	entries, err := queryEntries(conn,
		`SELECT scope, room_id, position, event_id, title, comment FROM bookmarks
		 WHERE scope = ? AND room_id = ? ORDER BY position`,
		string(scope), room.String())
	if err != nil {
		return nil, err
	}
	list := make([]bookmark.Bookmark, len(entries))
	for i, entry := range entries {
		list[i] = entry.Bookmark
	}
	return list, nil
}

func queryEntries(conn *sqlite.Conn, query string, args ...any) ([]Entry, error) {
	var entries []Entry
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			entry, err := scanEntry(stmt)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bookmarkindex: query: %w", err)
	}
	return entries, nil
}

// scanEntry reads the columns scope, room_id, position, event_id, title,
// comment in that order.
func scanEntry(stmt *sqlite.Stmt) (Entry, error) {
	room, err := ref.ParseRoomID(stmt.ColumnText(1))
	if err != nil {
		return Entry{}, fmt.Errorf("corrupt room_id: %w", err)
	}
	eventID, err := ref.ParseEventID(stmt.ColumnText(3))
	if err != nil {
		return Entry{}, fmt.Errorf("corrupt event_id: %w", err)
	}
	return Entry{
		Scope:    Scope(stmt.ColumnText(0)),
		Room:     room,
		Position: stmt.ColumnInt(2),
		Bookmark: bookmark.New(eventID, stmt.ColumnText(4), stmt.ColumnText(5)),
	}, nil
}
