// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderScrollbar produces a one-column scrollbar of height rows. The
// thumb covers the visible window within total rows and spans the
// whole track when everything fits.
func renderScrollbar(theme Theme, height, total, visible, offset int) string {
	if height <= 0 {
		return ""
	}

	track := lipgloss.NewStyle().Foreground(theme.BorderColor).Render("│")
	thumb := lipgloss.NewStyle().Foreground(theme.ScrollThumb).Render("┃")

	thumbSize, thumbOffset := height, 0
	if total > visible && total > 0 {
		thumbSize = max(1, height*visible/total)
		if trackRange := height - thumbSize; trackRange > 0 {
			thumbOffset = offset * trackRange / (total - visible)
		}
		thumbOffset = min(thumbOffset, height-thumbSize)
	}

	lines := make([]string, height)
	for index := range lines {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			lines[index] = thumb
		} else {
			lines[index] = track
		}
	}
	return strings.Join(lines, "\n")
}
