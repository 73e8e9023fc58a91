// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/secret"
)

// DirectSession is an authenticated session talking to the homeserver
// directly. The access token lives in a secret.Buffer; Close releases it.
type DirectSession struct {
	client      *Client
	accessToken *secret.Buffer
	userID      ref.UserID
	deviceID    string
}

var _ Session = (*DirectSession)(nil)

// UserID returns the session's fully-qualified user ID.
func (s *DirectSession) UserID() ref.UserID {
	return s.userID
}

// DeviceID returns the device ID assigned at login, or "" for sessions
// built from a stored token.
func (s *DirectSession) DeviceID() string {
	return s.deviceID
}

// Close releases the access token memory. Idempotent.
func (s *DirectSession) Close() error {
	if s.accessToken != nil {
		return s.accessToken.Close()
	}
	return nil
}

// WhoAmI validates the access token and returns the user it belongs to.
func (s *DirectSession) WhoAmI(ctx context.Context) (ref.UserID, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/account/whoami", s.accessToken, nil)
	if err != nil {
		return ref.UserID{}, fmt.Errorf("messaging: whoami failed: %w", err)
	}

	var response WhoAmIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.UserID{}, fmt.Errorf("messaging: failed to parse whoami response: %w", err)
	}
	return response.UserID, nil
}

// JoinedRooms returns the rooms the user has joined.
func (s *DirectSession) JoinedRooms(ctx context.Context) ([]ref.RoomID, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/joined_rooms", s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: joined rooms failed: %w", err)
	}

	var response JoinedRoomsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse joined rooms response: %w", err)
	}
	return response.JoinedRooms, nil
}

// GetAccountData fetches the user's global account data of eventType.
// Data that was never set yields a *MatrixError with code M_NOT_FOUND.
func (s *DirectSession) GetAccountData(ctx context.Context, eventType ref.EventType) (json.RawMessage, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, s.accountDataPath(eventType), s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get account data %s failed: %w", eventType, err)
	}
	return json.RawMessage(body), nil
}

// SetAccountData replaces the user's global account data of eventType.
func (s *DirectSession) SetAccountData(ctx context.Context, eventType ref.EventType, content any) error {
	_, err := s.client.doRequest(ctx, http.MethodPut, s.accountDataPath(eventType), s.accessToken, content)
	if err != nil {
		return fmt.Errorf("messaging: set account data %s failed: %w", eventType, err)
	}
	return nil
}

// GetRoomAccountData fetches the user's account data of eventType scoped
// to roomID.
func (s *DirectSession) GetRoomAccountData(ctx context.Context, roomID ref.RoomID, eventType ref.EventType) (json.RawMessage, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, s.roomAccountDataPath(roomID, eventType), s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get account data %s in %q failed: %w", eventType, roomID, err)
	}
	return json.RawMessage(body), nil
}

// SetRoomAccountData replaces the user's account data of eventType scoped
// to roomID.
func (s *DirectSession) SetRoomAccountData(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, content any) error {
	_, err := s.client.doRequest(ctx, http.MethodPut, s.roomAccountDataPath(roomID, eventType), s.accessToken, content)
	if err != nil {
		return fmt.Errorf("messaging: set account data %s in %q failed: %w", eventType, roomID, err)
	}
	return nil
}

func (s *DirectSession) accountDataPath(eventType ref.EventType) string {
	return fmt.Sprintf("/_matrix/client/v3/user/%s/account_data/%s",
		url.PathEscape(s.userID.String()),
		url.PathEscape(eventType.String()),
	)
}

func (s *DirectSession) roomAccountDataPath(roomID ref.RoomID, eventType ref.EventType) string {
	return fmt.Sprintf("/_matrix/client/v3/user/%s/rooms/%s/account_data/%s",
		url.PathEscape(s.userID.String()),
		url.PathEscape(roomID.String()),
		url.PathEscape(eventType.String()),
	)
}
