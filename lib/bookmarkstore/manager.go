// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkstore

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
	"github.com/bureau-foundation/bookmarks/messaging"
)

// Manager performs bookmark operations against one user's account data.
type Manager struct {
	session messaging.Session
	logger  *slog.Logger

	// mu serializes read-modify-write cycles issued by this Manager.
	mu sync.Mutex
}

// NewManager returns a Manager for session. A nil logger uses slog.Default().
func NewManager(session messaging.Session, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{session: session, logger: logger}
}

// LoadGlobal returns the user's global bookmarks.
func (m *Manager) LoadGlobal(ctx context.Context) (bookmark.GlobalContent, error) {
	content, err := messaging.GetAccountData[bookmark.GlobalContent](ctx, m.session, bookmark.EventTypeGlobalBookmarks)
	if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
		return bookmark.NewGlobalContent(), nil
	}
	if err != nil {
		return bookmark.GlobalContent{}, fmt.Errorf("loading global bookmarks: %w", err)
	}
	return content, nil
}

// SaveGlobal replaces the user's global bookmarks with content.
func (m *Manager) SaveGlobal(ctx context.Context, content bookmark.GlobalContent) error {
	if err := m.session.SetAccountData(ctx, bookmark.EventTypeGlobalBookmarks, content); err != nil {
		return fmt.Errorf("saving global bookmarks: %w", err)
	}
	m.logger.Debug("saved global bookmarks",
		"rooms", content.Len(),
		"bookmarks", content.Count(),
	)
	return nil
}

// LoadRoom returns the bookmarks stored in room's account data.
func (m *Manager) LoadRoom(ctx context.Context, room ref.RoomID) (bookmark.RoomContent, error) {
	content, err := messaging.GetRoomAccountData[bookmark.RoomContent](ctx, m.session, room, bookmark.EventTypeRoomBookmarks)
	if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
		return bookmark.NewRoomContent(nil), nil
	}
	if err != nil {
		return bookmark.RoomContent{}, fmt.Errorf("loading bookmarks for room %s: %w", room, err)
	}
	return content, nil
}

// SaveRoom replaces the bookmarks stored in room's account data.
func (m *Manager) SaveRoom(ctx context.Context, room ref.RoomID, content bookmark.RoomContent) error {
	if err := m.session.SetRoomAccountData(ctx, room, bookmark.EventTypeRoomBookmarks, content); err != nil {
		return fmt.Errorf("saving bookmarks for room %s: %w", room, err)
	}
	m.logger.Debug("saved room bookmarks",
		"room_id", room,
		"bookmarks", content.Len(),
	)
	return nil
}

// AddGlobal appends entry to room's list in the global document and
// returns the document as written.
func (m *Manager) AddGlobal(ctx context.Context, room ref.RoomID, entry bookmark.Bookmark) (bookmark.GlobalContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, err := m.LoadGlobal(ctx)
	if err != nil {
		return bookmark.GlobalContent{}, err
	}
	existing, _ := content.Get(room)
	content.Insert(room, append(existing, entry))

	if err := m.SaveGlobal(ctx, content); err != nil {
		return bookmark.GlobalContent{}, err
	}
	m.logger.Info("added global bookmark",
		"room_id", room,
		"event_id", entry.EventID,
		"title", entry.Title,
	)
	return content, nil
}

// RemoveGlobal deletes every record for eventID from room's list in the
// global document and reports how many were removed. A room left with no
// records keeps an empty list. Nothing is written when nothing matched.
func (m *Manager) RemoveGlobal(ctx context.Context, room ref.RoomID, eventID ref.EventID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, err := m.LoadGlobal(ctx)
	if err != nil {
		return 0, err
	}
	existing, ok := content.Get(room)
	if !ok {
		return 0, nil
	}
	remaining, removed := withoutEvent(existing, eventID)
	if removed == 0 {
		return 0, nil
	}
	content.Insert(room, remaining)

	if err := m.SaveGlobal(ctx, content); err != nil {
		return 0, err
	}
	m.logger.Info("removed global bookmark",
		"room_id", room,
		"event_id", eventID,
		"removed", removed,
	)
	return removed, nil
}

// AddRoom appends entry to room's own bookmark list.
func (m *Manager) AddRoom(ctx context.Context, room ref.RoomID, entry bookmark.Bookmark) (bookmark.RoomContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, err := m.LoadRoom(ctx, room)
	if err != nil {
		return bookmark.RoomContent{}, err
	}
	content = bookmark.NewRoomContent(append(slices.Clone(content.Bookmarks), entry))

	if err := m.SaveRoom(ctx, room, content); err != nil {
		return bookmark.RoomContent{}, err
	}
	m.logger.Info("added room bookmark",
		"room_id", room,
		"event_id", entry.EventID,
		"title", entry.Title,
	)
	return content, nil
}

// RemoveRoom deletes every record for eventID from room's own list and
// reports how many were removed.
func (m *Manager) RemoveRoom(ctx context.Context, room ref.RoomID, eventID ref.EventID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, err := m.LoadRoom(ctx, room)
	if err != nil {
		return 0, err
	}
	remaining, removed := withoutEvent(content.Bookmarks, eventID)
	if removed == 0 {
		return 0, nil
	}
	if err := m.SaveRoom(ctx, room, bookmark.NewRoomContent(remaining)); err != nil {
		return 0, err
	}
	m.logger.Info("removed room bookmark",
		"room_id", room,
		"event_id", eventID,
		"removed", removed,
	)
	return removed, nil
}

// Snapshot is the user's complete bookmark state at one point in time.
type Snapshot struct {
	Global bookmark.GlobalContent
	// Rooms holds room-scoped content for every joined room that has any.
	Rooms map[ref.RoomID]bookmark.RoomContent
}

// LoadSnapshot reads the global document and the room-scoped document of
// every joined room. Rooms without room-scoped bookmarks are omitted.
func (m *Manager) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	global, err := m.LoadGlobal(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	rooms, err := m.session.JoinedRooms(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing joined rooms: %w", err)
	}

	snapshot := Snapshot{Global: global, Rooms: make(map[ref.RoomID]bookmark.RoomContent)}
	for _, room := range rooms {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		content, err := m.LoadRoom(ctx, room)
		if err != nil {
			return Snapshot{}, err
		}
		if content.Len() > 0 {
			snapshot.Rooms[room] = content
		}
	}
	m.logger.Info("loaded bookmark snapshot",
		"joined_rooms", len(rooms),
		"global_rooms", global.Len(),
		"global_bookmarks", global.Count(),
		"rooms_with_bookmarks", len(snapshot.Rooms),
	)
	return snapshot, nil
}

func withoutEvent(bookmarks []bookmark.Bookmark, eventID ref.EventID) ([]bookmark.Bookmark, int) {
	remaining := make([]bookmark.Bookmark, 0, len(bookmarks))
	for _, entry := range bookmarks {
		if entry.EventID != eventID {
			remaining = append(remaining, entry)
		}
	}
	return remaining, len(bookmarks) - len(remaining)
}
