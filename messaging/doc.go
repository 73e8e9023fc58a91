// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the parts of the Matrix client-server API that
// bookmark storage needs: login, identity checks, joined rooms, and
// per-user account data (global and room-scoped).
//
// [Client] is unauthenticated. It holds the homeserver URL and the HTTP
// transport and produces [DirectSession] values through [Client.Login] or
// [Client.SessionFromToken]. A DirectSession keeps its access token in a
// [secret.Buffer]; callers must Close it.
//
// Higher layers depend on the [Session] interface rather than on
// DirectSession so they can be tested against an in-memory store.
//
// All API errors are returned as [*MatrixError] carrying the Matrix error
// code and HTTP status. [IsMatrixError] tests for a specific code; reading
// account data that was never written yields [ErrCodeNotFound]. Request
// URLs are built by concatenating path-escaped segments onto the base URL
// to avoid the double-encoding url.URL.String applies to RawPath.
package messaging
