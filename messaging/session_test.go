// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

const testToken = "syt_test_token"

var (
	testUser = ref.MustParseUserID("@alice:example.com")
	testRoom = ref.MustParseRoomID("!room:example.com")
)

func newTestSession(t *testing.T, handler http.Handler) *DirectSession {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{HomeserverURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	session, err := client.SessionFromToken(testUser, testBuffer(t, testToken))
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	return session
}

func TestWhoAmI(t *testing.T) {
	session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assertAuth(t, request, testToken)
		if request.URL.Path != "/_matrix/client/v3/account/whoami" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		writeJSON(writer, map[string]string{"user_id": "@alice:example.com"})
	}))

	userID, err := session.WhoAmI(context.Background())
	if err != nil {
		t.Fatalf("WhoAmI: %v", err)
	}
	if userID != testUser {
		t.Errorf("WhoAmI = %s", userID)
	}
}

func TestWhoAmIUnknownToken(t *testing.T) {
	session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		writeJSON(writer, map[string]string{"errcode": ErrCodeUnknownToken, "error": "Unknown access token"})
	}))

	_, err := session.WhoAmI(context.Background())
	if !IsMatrixError(err, ErrCodeUnknownToken) {
		t.Fatalf("err = %v, want M_UNKNOWN_TOKEN", err)
	}
}

func TestJoinedRooms(t *testing.T) {
	session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assertAuth(t, request, testToken)
		if request.URL.Path != "/_matrix/client/v3/joined_rooms" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		writeJSON(writer, map[string]any{"joined_rooms": []string{"!a:example.com", "!b:example.org"}})
	}))

	rooms, err := session.JoinedRooms(context.Background())
	if err != nil {
		t.Fatalf("JoinedRooms: %v", err)
	}
	if len(rooms) != 2 || rooms[0].String() != "!a:example.com" || rooms[1].String() != "!b:example.org" {
		t.Errorf("JoinedRooms = %v", rooms)
	}
}

func TestJoinedRoomsInvalidRoomID(t *testing.T) {
	session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, map[string]any{"joined_rooms": []string{"not-a-room"}})
	}))

	if _, err := session.JoinedRooms(context.Background()); err == nil {
		t.Fatal("expected error for malformed room ID")
	}
}

func TestGlobalAccountData(t *testing.T) {
	const wantPath = "/_matrix/client/v3/user/@alice:example.com/account_data/dev.nordgedanken.bookmarks.global"
	var stored []byte

	session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assertAuth(t, request, testToken)
		if request.URL.Path != wantPath {
			t.Errorf("path = %s, want %s", request.URL.Path, wantPath)
		}
		switch request.Method {
		case http.MethodPut:
			if request.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", request.Header.Get("Content-Type"))
			}
			stored, _ = io.ReadAll(request.Body)
			writeJSON(writer, struct{}{})
		case http.MethodGet:
			if stored == nil {
				writer.WriteHeader(http.StatusNotFound)
				writeJSON(writer, map[string]string{"errcode": ErrCodeNotFound, "error": "Account data not found"})
				return
			}
			writer.Header().Set("Content-Type", "application/json")
			writer.Write(stored)
		default:
			t.Errorf("unexpected method %s", request.Method)
		}
	}))

	ctx := context.Background()
	eventType := ref.EventType("dev.nordgedanken.bookmarks.global")

	_, err := session.GetAccountData(ctx, eventType)
	if !IsMatrixError(err, ErrCodeNotFound) {
		t.Fatalf("GetAccountData before set: err = %v, want M_NOT_FOUND", err)
	}

	content := map[string]any{"!a:example.com": []any{}}
	if err := session.SetAccountData(ctx, eventType, content); err != nil {
		t.Fatalf("SetAccountData: %v", err)
	}

	raw, err := session.GetAccountData(ctx, eventType)
	if err != nil {
		t.Fatalf("GetAccountData: %v", err)
	}
	if strings.TrimSpace(string(raw)) != `{"!a:example.com":[]}` {
		t.Errorf("GetAccountData = %s", raw)
	}
}

func TestRoomAccountData(t *testing.T) {
	const wantPath = "/_matrix/client/v3/user/@alice:example.com/rooms/!room:example.com/account_data/dev.nordgedanken.bookmarks.room"

	session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assertAuth(t, request, testToken)
		if request.URL.Path != wantPath {
			t.Errorf("path = %s, want %s", request.URL.Path, wantPath)
		}
		switch request.Method {
		case http.MethodPut:
			var body map[string]json.RawMessage
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if _, ok := body["bookmarks"]; !ok {
				t.Errorf("body missing bookmarks: %v", body)
			}
			writeJSON(writer, struct{}{})
		case http.MethodGet:
			writeJSON(writer, map[string]any{"bookmarks": []any{}})
		}
	}))

	ctx := context.Background()
	eventType := ref.EventType("dev.nordgedanken.bookmarks.room")

	if err := session.SetRoomAccountData(ctx, testRoom, eventType, map[string]any{"bookmarks": []any{}}); err != nil {
		t.Fatalf("SetRoomAccountData: %v", err)
	}
	raw, err := session.GetRoomAccountData(ctx, testRoom, eventType)
	if err != nil {
		t.Fatalf("GetRoomAccountData: %v", err)
	}
	if strings.TrimSpace(string(raw)) != `{"bookmarks":[]}` {
		t.Errorf("GetRoomAccountData = %s", raw)
	}
}

func TestGetAccountDataTyped(t *testing.T) {
	session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, map[string]any{"count": 3})
	}))

	type counter struct {
		Count int `json:"count"`
	}
	value, err := GetAccountData[counter](context.Background(), session, "com.example.counter")
	if err != nil {
		t.Fatalf("GetAccountData: %v", err)
	}
	if value.Count != 3 {
		t.Errorf("Count = %d", value.Count)
	}

	_, err = GetRoomAccountData[[]string](context.Background(), session, testRoom, "com.example.counter")
	if err == nil {
		t.Fatal("expected unmarshal error for mismatched shape")
	}
}

func TestCloseIdempotent(t *testing.T) {
	session := newTestSession(t, http.NotFoundHandler())
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func assertAuth(t *testing.T, request *http.Request, expectedToken string) {
	t.Helper()
	if got := request.Header.Get("Authorization"); got != "Bearer "+expectedToken {
		t.Errorf("Authorization = %q, want %q", got, "Bearer "+expectedToken)
	}
}
