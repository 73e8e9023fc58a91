// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmark

import "github.com/bureau-foundation/bookmarks/lib/event"

// Compile-time checks: both content types carry their type tag.
var (
	_ event.Content = RoomContent{}
	_ event.Content = GlobalContent{}
)

// Register adds both bookmark content types to registry.
func Register(registry *event.Registry) {
	event.RegisterContent[RoomContent](registry)
	event.RegisterContent[GlobalContent](registry)
}
