// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bureau-foundation/bookmarks/lib/ref"
	"github.com/bureau-foundation/bookmarks/lib/secret"
)

// testBuffer creates a secret.Buffer that is closed when the test ends.
func testBuffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromBytes([]byte(value))
	if err != nil {
		t.Fatalf("creating test buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid URL", url: "http://localhost:6167"},
		{name: "trailing slash", url: "https://matrix.example.com/"},
		{name: "empty URL", url: "", wantErr: true},
		{name: "invalid URL", url: "://invalid", wantErr: true},
		{name: "unsupported scheme", url: "ftp://matrix.example.com", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, err := NewClient(ClientConfig{HomeserverURL: test.url})
			if test.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient failed: %v", err)
			}
			if client.baseURL[len(client.baseURL)-1] == '/' {
				t.Errorf("baseURL %q keeps trailing slash", client.baseURL)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost || request.URL.Path != "/_matrix/client/v3/login" {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		if request.Header.Get("Authorization") != "" {
			t.Error("login request should not carry a token")
		}

		var body LoginRequest
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body.Type != "m.login.password" {
			t.Errorf("type = %q", body.Type)
		}
		if body.Identifier.Type != "m.id.user" || body.Identifier.User != "alice" {
			t.Errorf("identifier = %+v", body.Identifier)
		}
		if body.Password != "hunter2" {
			t.Errorf("password = %q", body.Password)
		}
		if body.InitialDeviceDisplayName != DefaultDeviceDisplayName {
			t.Errorf("device display name = %q", body.InitialDeviceDisplayName)
		}

		writeJSON(writer, map[string]any{
			"user_id":      "@alice:example.com",
			"access_token": "syt_login_token",
			"device_id":    "DEVICE1",
		})
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{HomeserverURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	session, err := client.Login(context.Background(), "alice", testBuffer(t, "hunter2"))
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	defer session.Close()

	if session.UserID() != ref.MustParseUserID("@alice:example.com") {
		t.Errorf("UserID = %s", session.UserID())
	}
	if session.DeviceID() != "DEVICE1" {
		t.Errorf("DeviceID = %q", session.DeviceID())
	}
	if session.accessToken.String() != "syt_login_token" {
		t.Errorf("access token = %q", session.accessToken.String())
	}
}

func TestUserAgent(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = request.Header.Get("User-Agent")
		writeJSON(writer, map[string]any{
			"user_id":      "@alice:example.com",
			"access_token": "syt_login_token",
		})
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{HomeserverURL: server.URL, UserAgent: "bookmarks/test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	session, err := client.Login(context.Background(), "alice", testBuffer(t, "hunter2"))
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	defer session.Close()

	if seen != "bookmarks/test" {
		t.Errorf("User-Agent = %q, want %q", seen, "bookmarks/test")
	}
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
		writeJSON(writer, map[string]string{"errcode": ErrCodeForbidden, "error": "Invalid password"})
	}))
	defer server.Close()

	client, _ := NewClient(ClientConfig{HomeserverURL: server.URL})
	_, err := client.Login(context.Background(), "alice", testBuffer(t, "wrong"))
	if !IsMatrixError(err, ErrCodeForbidden) {
		t.Fatalf("err = %v, want M_FORBIDDEN", err)
	}
}

func TestLoginValidation(t *testing.T) {
	client, _ := NewClient(ClientConfig{HomeserverURL: "http://localhost:6167"})
	if _, err := client.Login(context.Background(), "", testBuffer(t, "pw")); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := client.Login(context.Background(), "alice", nil); err == nil {
		t.Error("expected error for nil password")
	}
}

func TestSessionFromToken(t *testing.T) {
	client, _ := NewClient(ClientConfig{HomeserverURL: "http://localhost:6167"})
	userID := ref.MustParseUserID("@alice:example.com")

	session, err := client.SessionFromToken(userID, testBuffer(t, "syt_stored"))
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	if session.UserID() != userID {
		t.Errorf("UserID = %s", session.UserID())
	}
	if session.DeviceID() != "" {
		t.Errorf("DeviceID = %q, want empty", session.DeviceID())
	}

	if _, err := client.SessionFromToken(ref.UserID{}, testBuffer(t, "x")); err == nil {
		t.Error("expected error for zero user ID")
	}
	if _, err := client.SessionFromToken(userID, nil); err == nil {
		t.Error("expected error for nil token")
	}
}

func TestMatrixError(t *testing.T) {
	err := &MatrixError{Code: ErrCodeNotFound, Message: "Account data not found", StatusCode: 404}
	if got := err.Error(); got != "matrix: M_NOT_FOUND (404): Account data not found" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := errors.Join(errors.New("context"), err)
	if !IsMatrixError(wrapped, ErrCodeNotFound) {
		t.Error("IsMatrixError should see through wrapping")
	}
	if IsMatrixError(wrapped, ErrCodeForbidden) {
		t.Error("IsMatrixError matched the wrong code")
	}
	if IsMatrixError(errors.New("plain"), ErrCodeNotFound) {
		t.Error("IsMatrixError matched a plain error")
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadGateway)
		writer.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client, _ := NewClient(ClientConfig{HomeserverURL: server.URL})
	_, err := client.doRequest(context.Background(), http.MethodGet, "/_matrix/client/versions", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var matrixErr *MatrixError
	if errors.As(err, &matrixErr) {
		t.Errorf("non-JSON body should not produce a MatrixError, got %v", matrixErr)
	}
}

func writeJSON(writer http.ResponseWriter, value any) {
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(value)
}
