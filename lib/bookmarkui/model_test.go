// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
)

// runes builds a key message for typed characters.
func runes(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

// send applies one message and, when the model returns a load
// command, runs it and applies its result too.
func send(t *testing.T, model Model, message tea.Msg) Model {
	t.Helper()
	updated, command := model.Update(message)
	model = updated.(Model)
	if command == nil {
		return model
	}
	if loaded, ok := command().(entriesLoadedMsg); ok {
		updated, _ = model.Update(loaded)
		model = updated.(Model)
	}
	return model
}

// loadedModel returns a sized model with the Global tab loaded.
func loadedModel(t *testing.T, source *fakeSource) Model {
	t.Helper()
	model := NewModel(context.Background(), source)
	model = send(t, model, tea.WindowSizeMsg{Width: 100, Height: 20})
	loaded := model.Init()()
	updated, _ := model.Update(loaded)
	return updated.(Model)
}

func TestModelInitialLoad(t *testing.T) {
	source := testSource()
	model := loadedModel(t, source)

	if model.ActiveTab() != TabGlobal {
		t.Errorf("initial tab = %v, want TabGlobal", model.ActiveTab())
	}
	if model.Visible() != 3 {
		t.Errorf("visible = %d, want 3", model.Visible())
	}
	selected, ok := model.Selected()
	if !ok || selected.Bookmark.Title != "Release checklist" {
		t.Errorf("selected = %+v, %v", selected, ok)
	}
	if !slices.Equal(source.calls, []bookmarkindex.Scope{bookmarkindex.ScopeGlobal}) {
		t.Errorf("source calls = %v", source.calls)
	}
}

func TestModelNavigation(t *testing.T) {
	model := loadedModel(t, testSource())

	model = send(t, model, runes("j"))
	model = send(t, model, runes("j"))
	if selected, _ := model.Selected(); selected.Bookmark.Title != "Incident timeline" {
		t.Errorf("after jj selected %q", selected.Bookmark.Title)
	}

	// Moving past the end clamps.
	model = send(t, model, runes("j"))
	if model.cursor != 2 {
		t.Errorf("cursor = %d, want clamp at 2", model.cursor)
	}

	model = send(t, model, runes("k"))
	if selected, _ := model.Selected(); selected.Bookmark.Title != "Design review" {
		t.Errorf("after k selected %q", selected.Bookmark.Title)
	}

	model = send(t, model, runes("g"))
	if model.cursor != 0 {
		t.Errorf("g moved cursor to %d", model.cursor)
	}
	model = send(t, model, runes("G"))
	if model.cursor != 2 {
		t.Errorf("G moved cursor to %d", model.cursor)
	}
}

func TestModelTabSwitching(t *testing.T) {
	source := testSource()
	model := loadedModel(t, source)

	model = send(t, model, runes("2"))
	if model.ActiveTab() != TabRoom {
		t.Fatalf("tab = %v after 2", model.ActiveTab())
	}
	if selected, _ := model.Selected(); selected.Bookmark.Title != "Pinned answer" {
		t.Errorf("room tab selected %q", selected.Bookmark.Title)
	}

	model = send(t, model, tea.KeyMsg{Type: tea.KeyTab})
	if model.ActiveTab() != TabGlobal {
		t.Errorf("tab = %v after Tab", model.ActiveTab())
	}
	if model.Visible() != 3 {
		t.Errorf("visible = %d on global tab", model.Visible())
	}

	// Selecting the active tab does not reload.
	calls := len(source.calls)
	model = send(t, model, runes("1"))
	if len(source.calls) != calls {
		t.Errorf("re-selecting the active tab reloaded the source")
	}
}

func TestModelIgnoresStaleLoad(t *testing.T) {
	model := loadedModel(t, testSource())

	// Switch without running the load, then deliver a late result
	// for the tab that was left.
	updated, _ := model.Update(runes("2"))
	model = updated.(Model)
	updated, _ = model.Update(entriesLoadedMsg{
		tab:     TabGlobal,
		entries: testSource().entries[bookmarkindex.ScopeGlobal],
	})
	model = updated.(Model)

	if model.Visible() != 0 {
		t.Errorf("stale global load populated the room tab with %d entries", model.Visible())
	}
}

func TestModelFilter(t *testing.T) {
	model := loadedModel(t, testSource())

	model = send(t, model, runes("/"))
	if model.focusRegion != FocusFilter {
		t.Fatal("/ did not focus the filter")
	}
	for _, character := range "incident" {
		model = send(t, model, runes(string(character)))
	}
	if model.Visible() != 1 {
		t.Fatalf("visible = %d after filtering, want 1", model.Visible())
	}

	// Typing 'q' in filter mode is text, not quit.
	updated, command := model.Update(runes("q"))
	if command != nil {
		t.Error("q in filter mode returned a command")
	}
	model = updated.(Model)
	if model.filter.Input != "incidentq" {
		t.Errorf("filter input = %q", model.filter.Input)
	}
	model = send(t, model, tea.KeyMsg{Type: tea.KeyBackspace})

	model = send(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.focusRegion != FocusList {
		t.Error("Enter did not return focus to the list")
	}
	if model.filter.Input != "incident" {
		t.Errorf("filter input = %q after Enter", model.filter.Input)
	}

	// The filter composes with tabs.
	model = send(t, model, runes("2"))
	if model.Visible() != 0 {
		t.Errorf("room tab shows %d entries under the filter", model.Visible())
	}
	model = send(t, model, runes("1"))

	model = send(t, model, tea.KeyMsg{Type: tea.KeyEscape})
	if model.filter.Input != "" || model.Visible() != 3 {
		t.Errorf("Esc left input %q and %d visible", model.filter.Input, model.Visible())
	}
}

func TestModelFilterKeepsSelection(t *testing.T) {
	model := loadedModel(t, testSource())
	model = send(t, model, runes("j"))
	model = send(t, model, runes("j"))

	model = send(t, model, runes("/"))
	for _, character := range "!beta" {
		model = send(t, model, runes(string(character)))
	}
	if selected, _ := model.Selected(); selected.Bookmark.Title != "Incident timeline" {
		t.Errorf("selection moved to %q", selected.Bookmark.Title)
	}

	model = send(t, model, tea.KeyMsg{Type: tea.KeyEscape})
	if selected, _ := model.Selected(); selected.Bookmark.Title != "Incident timeline" {
		t.Errorf("clearing the filter moved selection to %q", selected.Bookmark.Title)
	}
}

func TestModelFilterEscapeLeavesWhenEmpty(t *testing.T) {
	model := loadedModel(t, testSource())
	model = send(t, model, runes("/"))
	model = send(t, model, tea.KeyMsg{Type: tea.KeyEscape})
	if model.focusRegion != FocusList || model.filter.Active {
		t.Error("Esc on an empty filter should leave filter mode")
	}
}

func TestModelQuit(t *testing.T) {
	model := loadedModel(t, testSource())
	_, command := model.Update(runes("q"))
	if command == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := command().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModelReload(t *testing.T) {
	source := testSource()
	model := loadedModel(t, source)
	model = send(t, model, runes("r"))
	if len(source.calls) != 2 {
		t.Errorf("source calls = %d after reload", len(source.calls))
	}
	if model.loading {
		t.Error("model still loading after reload completed")
	}
}

func TestModelLoadError(t *testing.T) {
	source := testSource()
	source.err = errors.New("database is locked")
	model := loadedModel(t, source)

	view := ansi.Strip(model.View())
	if !strings.Contains(view, "database is locked") {
		t.Errorf("view does not show load error:\n%s", view)
	}
}

func TestModelView(t *testing.T) {
	model := loadedModel(t, testSource())
	view := ansi.Strip(model.View())

	for _, want := range []string{
		"1:Global", "2:Room",
		"3 shown", "synced",
		"Release checklist", "Incident timeline",
		"$release", "Steps for shipping.",
		"[LIST]", "1/3",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	lines := strings.Split(view, "\n")
	if len(lines) != 20 {
		t.Errorf("view has %d lines, want terminal height 20", len(lines))
	}
	for index, line := range lines {
		if width := ansi.StringWidth(line); width > 100 {
			t.Errorf("line %d is %d columns wide", index, width)
		}
	}
}

func TestModelViewEmpty(t *testing.T) {
	source := testSource()
	source.entries[bookmarkindex.ScopeGlobal] = nil
	model := loadedModel(t, source)

	if view := ansi.Strip(model.View()); !strings.Contains(view, "No bookmarks.") {
		t.Errorf("empty view:\n%s", view)
	}
}

func TestModelViewBeforeSize(t *testing.T) {
	model := NewModel(context.Background(), testSource())
	if model.View() != "Loading..." {
		t.Errorf("unsized view = %q", model.View())
	}
}

func TestHighlightRunes(t *testing.T) {
	rendered := highlightRunes("Design", []int{0, 1}, DefaultTheme)
	if ansi.Strip(rendered) != "Design" {
		t.Errorf("visible text = %q", ansi.Strip(rendered))
	}
}

func TestRenderScrollbar(t *testing.T) {
	full := strings.Split(ansi.Strip(renderScrollbar(DefaultTheme, 4, 2, 4, 0)), "\n")
	if !slices.Equal(full, []string{"┃", "┃", "┃", "┃"}) {
		t.Errorf("fitting content scrollbar = %v", full)
	}

	bottom := strings.Split(ansi.Strip(renderScrollbar(DefaultTheme, 4, 8, 4, 4)), "\n")
	if !slices.Equal(bottom, []string{"│", "│", "┃", "┃"}) {
		t.Errorf("scrolled-to-bottom scrollbar = %v", bottom)
	}
}
