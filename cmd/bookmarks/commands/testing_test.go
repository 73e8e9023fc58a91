// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/bookmarks/lib/clock"
	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/schema/bookmark"
)

const (
	testToken   = "syt_test_token"
	testUserID  = "@alice:example.org"
	globalType  = "dev.nordgedanken.bookmarks.global"
	roomType    = "dev.nordgedanken.bookmarks.room"
	alphaRoomID = "!alpha:example.org"
	betaRoomID  = "!beta:example.org"
)

var (
	roomAlpha = ref.MustParseRoomID(alphaRoomID)
	roomBeta  = ref.MustParseRoomID(betaRoomID)
	fixedNow  = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
)

// fakeHomeserver serves the account data endpoints bookmarks uses and
// keeps the stored documents in memory.
type fakeHomeserver struct {
	mu       sync.Mutex
	whoami   string
	joined   []string
	global   []byte
	roomData map[string][]byte
	puts     int
}

func newFakeHomeserver(t *testing.T) (*fakeHomeserver, *httptest.Server) {
	t.Helper()
	homeserver := &fakeHomeserver{
		whoami:   testUserID,
		joined:   []string{alphaRoomID, betaRoomID},
		roomData: make(map[string][]byte),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /_matrix/client/v3/account/whoami", func(writer http.ResponseWriter, request *http.Request) {
		homeserver.mu.Lock()
		defer homeserver.mu.Unlock()
		writeJSON(writer, http.StatusOK, map[string]string{"user_id": homeserver.whoami})
	})
	mux.HandleFunc("GET /_matrix/client/v3/joined_rooms", func(writer http.ResponseWriter, request *http.Request) {
		homeserver.mu.Lock()
		defer homeserver.mu.Unlock()
		writeJSON(writer, http.StatusOK, map[string][]string{"joined_rooms": homeserver.joined})
	})
	mux.HandleFunc("GET /_matrix/client/v3/user/{user}/account_data/{type}", func(writer http.ResponseWriter, request *http.Request) {
		homeserver.mu.Lock()
		defer homeserver.mu.Unlock()
		if request.PathValue("type") != globalType || homeserver.global == nil {
			writeNotFound(writer)
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.Write(homeserver.global)
	})
	mux.HandleFunc("PUT /_matrix/client/v3/user/{user}/account_data/{type}", func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		homeserver.mu.Lock()
		defer homeserver.mu.Unlock()
		if request.PathValue("type") != globalType {
			t.Errorf("PUT unexpected global type %q", request.PathValue("type"))
		}
		homeserver.global = body
		homeserver.puts++
		writeJSON(writer, http.StatusOK, struct{}{})
	})
	mux.HandleFunc("GET /_matrix/client/v3/user/{user}/rooms/{room}/account_data/{type}", func(writer http.ResponseWriter, request *http.Request) {
		homeserver.mu.Lock()
		defer homeserver.mu.Unlock()
		data, ok := homeserver.roomData[request.PathValue("room")]
		if request.PathValue("type") != roomType || !ok {
			writeNotFound(writer)
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.Write(data)
	})
	mux.HandleFunc("PUT /_matrix/client/v3/user/{user}/rooms/{room}/account_data/{type}", func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		homeserver.mu.Lock()
		defer homeserver.mu.Unlock()
		if request.PathValue("type") != roomType {
			t.Errorf("PUT unexpected room type %q", request.PathValue("type"))
		}
		homeserver.roomData[request.PathValue("room")] = body
		homeserver.puts++
		writeJSON(writer, http.StatusOK, struct{}{})
	})

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(writer, http.StatusUnauthorized, map[string]string{
				"errcode": "M_UNKNOWN_TOKEN",
				"error":   "Unrecognised access token",
			})
			return
		}
		mux.ServeHTTP(writer, request)
	}))
	t.Cleanup(server.Close)
	return homeserver, server
}

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(value)
}

func writeNotFound(writer http.ResponseWriter) {
	writeJSON(writer, http.StatusNotFound, map[string]string{
		"errcode": "M_NOT_FOUND",
		"error":   "Account data not found",
	})
}

func (h *fakeHomeserver) setGlobal(t *testing.T, content bookmark.GlobalContent) {
	t.Helper()
	encoded, err := content.MarshalJSON()
	if err != nil {
		t.Fatalf("encoding global content: %v", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.global = encoded
}

func (h *fakeHomeserver) setRoom(t *testing.T, room ref.RoomID, content bookmark.RoomContent) {
	t.Helper()
	encoded, err := content.MarshalJSON()
	if err != nil {
		t.Fatalf("encoding room content: %v", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roomData[room.String()] = encoded
}

func (h *fakeHomeserver) globalContent(t *testing.T) bookmark.GlobalContent {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.global == nil {
		t.Fatal("homeserver holds no global document")
	}
	content, err := bookmark.DecodeGlobalContent(h.global)
	if err != nil {
		t.Fatalf("decoding stored global content: %v", err)
	}
	return content
}

func (h *fakeHomeserver) roomContent(t *testing.T, room ref.RoomID) bookmark.RoomContent {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	data, ok := h.roomData[room.String()]
	if !ok {
		t.Fatalf("homeserver holds no room document for %s", room)
	}
	content, err := bookmark.DecodeRoomContent(data)
	if err != nil {
		t.Fatalf("decoding stored room content: %v", err)
	}
	return content
}

func (h *fakeHomeserver) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.global = nil
	h.roomData = make(map[string][]byte)
}

func (h *fakeHomeserver) putCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.puts
}

// testEnv is a config file, token file, and state directory pointing at
// a fake homeserver.
type testEnv struct {
	t          *testing.T
	dir        string
	configPath string
	homeserver *fakeHomeserver
	url        string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	homeserver, server := newFakeHomeserver(t)
	dir := t.TempDir()

	tokenPath := filepath.Join(dir, "token")
	if err := os.WriteFile(tokenPath, []byte(testToken+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	configYAML := `matrix:
  homeserver: ` + server.URL + `
  user_id: "` + testUserID + `"
  token_file: ` + tokenPath + `
paths:
  root: ` + filepath.Join(dir, "state") + `
archive:
  compression: zstd
  identity_file: ` + filepath.Join(dir, "keys", "identity.txt") + `
`
	configPath := filepath.Join(dir, "bookmarks.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	return &testEnv{t: t, dir: dir, configPath: configPath, homeserver: homeserver, url: server.URL}
}

// run executes "bookmarks <command> --config <path> <args...>" and
// returns stdout.
func (e *testEnv) run(command string, args ...string) (string, error) {
	e.t.Helper()
	full := append([]string{command, "--config", e.configPath}, args...)
	return runRoot(full...)
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(command string, args ...string) string {
	e.t.Helper()
	output, err := e.run(command, args...)
	if err != nil {
		e.t.Fatalf("bookmarks %s %s: %v", command, strings.Join(args, " "), err)
	}
	return output
}

func runRoot(args ...string) (string, error) {
	var stdout bytes.Buffer
	root := NewRoot(&stdout, clock.Fake(fixedNow))
	root.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	err := root.Execute(context.Background(), args)
	return stdout.String(), err
}

func decodeRecords(t *testing.T, output string) []entryRecord {
	t.Helper()
	var records []entryRecord
	if err := json.Unmarshal([]byte(output), &records); err != nil {
		t.Fatalf("decoding JSON output %q: %v", output, err)
	}
	return records
}

func mark(eventID, title, comment string) bookmark.Bookmark {
	return bookmark.New(ref.MustParseEventID(eventID), title, comment)
}

// seed stores a global document with two rooms and a room document in
// alpha.
func (e *testEnv) seed() {
	global := bookmark.NewGlobalContent()
	global.Insert(roomAlpha, []bookmark.Bookmark{
		mark("$release", "Release checklist", "Steps for **1.0**"),
		mark("$design", "Design review", ""),
	})
	global.Insert(roomBeta, []bookmark.Bookmark{
		mark("$incident", "Incident timeline", "Pager went off at 03:00"),
	})
	e.homeserver.setGlobal(e.t, global)
	e.homeserver.setRoom(e.t, roomAlpha, bookmark.NewRoomContent([]bookmark.Bookmark{
		mark("$pinned", "Pinned answer", "Use `make test`"),
	}))
}
