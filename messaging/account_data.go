// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// GetAccountData reads typed global account data:
//
//	global, err := messaging.GetAccountData[bookmark.GlobalContent](ctx, session, bookmark.EventTypeGlobalBookmarks)
//
// Missing data surfaces as M_NOT_FOUND; content that does not decode
// into T returns the decoder's error wrapped.
func GetAccountData[T any](ctx context.Context, session Session, eventType ref.EventType) (T, error) {
	var zero T
	content, err := session.GetAccountData(ctx, eventType)
	if err != nil {
		return zero, fmt.Errorf("reading account data %s: %w", eventType, err)
	}
	var result T
	if err := json.Unmarshal(content, &result); err != nil {
		return zero, fmt.Errorf("unmarshaling account data %s: %w", eventType, err)
	}
	return result, nil
}

// GetRoomAccountData reads typed room-scoped account data.
func GetRoomAccountData[T any](ctx context.Context, session Session, roomID ref.RoomID, eventType ref.EventType) (T, error) {
	var zero T
	content, err := session.GetRoomAccountData(ctx, roomID, eventType)
	if err != nil {
		return zero, fmt.Errorf("reading account data %s in room %s: %w", eventType, roomID, err)
	}
	var result T
	if err := json.Unmarshal(content, &result); err != nil {
		return zero, fmt.Errorf("unmarshaling account data %s in room %s: %w", eventType, roomID, err)
	}
	return result, nil
}
