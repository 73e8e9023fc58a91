// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the bookmarks YAML configuration.
//
// Configuration comes from exactly one file, named by the
// BOOKMARKS_CONFIG environment variable ([Load]) or a --config flag
// ([LoadFile]). There is no ~/.config discovery and no per-field
// environment override, so the file on disk is the whole story.
//
// After decoding, path fields expand ${HOME}, ${BOOKMARKS_ROOT} and
// ${VAR:-default}. Unknown keys are rejected so that a typo fails loudly
// instead of silently falling back to a default.
package config
