// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// Session is the set of Matrix operations bookmark storage consumes.
// *DirectSession is the production implementation.
type Session interface {
	// UserID returns the fully-qualified Matrix user ID.
	UserID() ref.UserID

	// Close releases any resources held by the session. Idempotent.
	Close() error

	// WhoAmI validates the session and returns the user ID.
	WhoAmI(ctx context.Context) (ref.UserID, error)

	// JoinedRooms returns the rooms the user has joined.
	JoinedRooms(ctx context.Context) ([]ref.RoomID, error)

	// GetAccountData returns raw global account data content.
	GetAccountData(ctx context.Context, eventType ref.EventType) (json.RawMessage, error)

	// SetAccountData replaces global account data content.
	SetAccountData(ctx context.Context, eventType ref.EventType, content any) error

	// GetRoomAccountData returns raw room-scoped account data content.
	GetRoomAccountData(ctx context.Context, roomID ref.RoomID, eventType ref.EventType) (json.RawMessage, error)

	// SetRoomAccountData replaces room-scoped account data content.
	SetRoomAccountData(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, content any) error
}
