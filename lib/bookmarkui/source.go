// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"context"
	"time"

	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
)

// Source supplies the bookmarks a tab displays. Entries must come
// back ordered by room and then by position within the room.
type Source interface {
	Entries(ctx context.Context, scope bookmarkindex.Scope) ([]bookmarkindex.Entry, error)
}

// SyncStater is optionally implemented by a Source that knows when
// its data was last refreshed. The header shows the time when present.
type SyncStater interface {
	LastSync(ctx context.Context) (time.Time, error)
}

var (
	_ Source     = (*bookmarkindex.Index)(nil)
	_ SyncStater = (*bookmarkindex.Index)(nil)
)
