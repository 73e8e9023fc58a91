// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the viewer. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ScrollThumb      lipgloss.Color

	// Identifiers shown beside titles and in the detail header.
	RoomForeground  lipgloss.Color
	EventForeground lipgloss.Color

	// Filter match highlighting.
	MatchBackground lipgloss.Color

	// Error text in the status line.
	ErrorForeground lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ScrollThumb:      lipgloss.Color("220"), // yellow/amber

	RoomForeground:  lipgloss.Color("75"),  // blue
	EventForeground: lipgloss.Color("141"), // light purple

	MatchBackground: lipgloss.Color("58"), // dark amber

	ErrorForeground: lipgloss.Color("196"), // red
}
