// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bookmarkui implements a terminal viewer for bookmarks.
// Built on bubbletea, it shows two tabs (Global and Room), each a list
// of bookmarks on the left and the selected bookmark's detail on the
// right, with the comment rendered as markdown.
//
// Data comes through the [Source] interface, which the local
// [bookmarkindex.Index] satisfies directly, so the viewer works offline
// from whatever the last sync recorded.
//
// Data flow:
//
//	[bookmarkindex]
//	        | (Source interface)
//	    [Model] <- bubbletea event loop
//	        |
//	  [terminal output]
package bookmarkui
