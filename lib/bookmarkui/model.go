// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/bookmarks/lib/bookmarkindex"
	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// Tab identifies which bookmark scope is shown.
type Tab int

const (
	// TabGlobal shows bookmarks from the global account data document.
	TabGlobal Tab = iota
	// TabRoom shows bookmarks stored in per-room account data.
	TabRoom
)

// Scope returns the index scope the tab reads.
func (tab Tab) Scope() bookmarkindex.Scope {
	if tab == TabRoom {
		return bookmarkindex.ScopeRoom
	}
	return bookmarkindex.ScopeGlobal
}

// FocusRegion identifies where keystrokes go.
type FocusRegion int

const (
	// FocusList means navigation keys move the list cursor.
	FocusList FocusRegion = iota
	// FocusFilter means keystrokes edit the filter input.
	FocusFilter
)

const (
	// chromeHeight is the header line plus the bottom separator and
	// help bar.
	chromeHeight = 3

	// listFraction is the share of the width given to the list pane.
	listFraction = 0.45
	minListWidth = 24
)

// entriesLoadedMsg delivers the result of a Source read for one tab.
type entriesLoadedMsg struct {
	tab      Tab
	entries  []bookmarkindex.Entry
	syncedAt time.Time
	err      error
}

// selectionKey identifies an entry across reloads and filter changes.
type selectionKey struct {
	room     ref.RoomID
	position int
}

func keyOf(entry bookmarkindex.Entry) selectionKey {
	return selectionKey{room: entry.Room, position: entry.Position}
}

// Model is the top-level bubbletea model for the bookmark viewer.
type Model struct {
	ctx    context.Context
	source Source
	theme  Theme
	keys   KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	activeTab   Tab
	focusRegion FocusRegion
	filter      FilterModel

	// entries is the active tab's data; results is entries after the
	// filter, in display order.
	entries      []bookmarkindex.Entry
	results      []FilterResult
	cursor       int
	scrollOffset int
	selected     selectionKey
	hasSelection bool

	loading   bool
	loadError string
	syncedAt  time.Time
}

// NewModel creates a Model reading from source. The Global tab is
// shown first. ctx bounds every Source read the model issues.
func NewModel(ctx context.Context, source Source) Model {
	return Model{
		ctx:       ctx,
		source:    source,
		theme:     DefaultTheme,
		keys:      DefaultKeyMap,
		activeTab: TabGlobal,
		loading:   true,
	}
}

// Init implements tea.Model by loading the initial tab.
func (model Model) Init() tea.Cmd {
	return model.load(model.activeTab)
}

// load returns a command that reads one tab's entries.
func (model Model) load(tab Tab) tea.Cmd {
	ctx, source := model.ctx, model.source
	return func() tea.Msg {
		entries, err := source.Entries(ctx, tab.Scope())
		message := entriesLoadedMsg{tab: tab, entries: entries, err: err}
		if err == nil {
			if stater, ok := source.(SyncStater); ok {
				message.syncedAt, _ = stater.LastSync(ctx)
			}
		}
		return message
	}
}

// ActiveTab returns the tab being shown.
func (model Model) ActiveTab() Tab {
	return model.activeTab
}

// Selected returns the entry under the cursor.
func (model Model) Selected() (bookmarkindex.Entry, bool) {
	if model.cursor < 0 || model.cursor >= len(model.results) {
		return bookmarkindex.Entry{}, false
	}
	return model.results[model.cursor].Entry, true
}

// Visible returns the number of entries shown after filtering.
func (model Model) Visible() int {
	return len(model.results)
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.ensureCursorVisible()
		return model, nil

	case entriesLoadedMsg:
		// A slow load for a tab the user already left is stale.
		if message.tab != model.activeTab {
			return model, nil
		}
		model.loading = false
		if message.err != nil {
			model.loadError = message.err.Error()
			model.entries = nil
		} else {
			model.loadError = ""
			model.entries = message.entries
			model.syncedAt = message.syncedAt
		}
		model.applyFilter()
		return model, nil

	case tea.KeyMsg:
		if model.focusRegion == FocusFilter {
			return model.handleFilterKeys(message)
		}
		return model.handleListKeys(message)
	}
	return model, nil
}

func (model Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.TabNext):
		return model.switchTab((model.activeTab + 1) % 2)

	case key.Matches(message, model.keys.TabGlobal):
		return model.switchTab(TabGlobal)

	case key.Matches(message, model.keys.TabRoom):
		return model.switchTab(TabRoom)

	case key.Matches(message, model.keys.FilterActivate):
		model.filter.Active = true
		model.focusRegion = FocusFilter
		return model, nil

	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Clear()
			model.applyFilter()
		}
		return model, nil

	case key.Matches(message, model.keys.Reload):
		model.loading = true
		return model, model.load(model.activeTab)

	case key.Matches(message, model.keys.Up):
		model.moveCursor(-1)
	case key.Matches(message, model.keys.Down):
		model.moveCursor(1)
	case key.Matches(message, model.keys.PageUp):
		model.moveCursor(-model.visibleHeight())
	case key.Matches(message, model.keys.PageDown):
		model.moveCursor(model.visibleHeight())
	case key.Matches(message, model.keys.Home):
		model.moveCursor(-len(model.results))
	case key.Matches(message, model.keys.End):
		model.moveCursor(len(model.results))
	}
	return model, nil
}

// handleFilterKeys routes typing to the filter input. Esc clears the
// text, or leaves filter mode when there is none; Enter keeps the
// filter and returns to the list.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Input = ""
			model.applyFilter()
		} else {
			model.filter.Active = false
			model.focusRegion = FocusList
		}

	case message.Type == tea.KeyEnter:
		model.filter.Active = false
		model.focusRegion = FocusList

	case message.Type == tea.KeyBackspace:
		if model.filter.HandleBackspace() {
			model.applyFilter()
		}

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		for _, character := range message.Runes {
			model.filter.HandleRune(character)
		}
		if message.Type == tea.KeySpace && len(message.Runes) == 0 {
			model.filter.HandleRune(' ')
		}
		model.applyFilter()
	}
	return model, nil
}

func (model Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	if tab == model.activeTab {
		return model, nil
	}
	model.activeTab = tab
	model.entries = nil
	model.results = nil
	model.cursor = 0
	model.scrollOffset = 0
	model.hasSelection = false
	model.loading = true
	model.loadError = ""
	return model, model.load(tab)
}

// applyFilter recomputes results and keeps the cursor on the same
// entry when it survived the filter.
func (model *Model) applyFilter() {
	model.results = model.filter.Apply(model.entries)

	if model.hasSelection {
		for index, result := range model.results {
			if keyOf(result.Entry) == model.selected {
				model.cursor = index
				model.ensureCursorVisible()
				return
			}
		}
	}
	model.cursor = 0
	model.scrollOffset = 0
	model.syncSelection()
}

func (model *Model) moveCursor(delta int) {
	if len(model.results) == 0 {
		return
	}
	model.cursor = max(0, min(len(model.results)-1, model.cursor+delta))
	model.syncSelection()
	model.ensureCursorVisible()
}

func (model *Model) syncSelection() {
	entry, ok := model.Selected()
	model.hasSelection = ok
	if ok {
		model.selected = keyOf(entry)
	}
}

func (model Model) visibleHeight() int {
	return max(1, model.height-chromeHeight)
}

func (model *Model) ensureCursorVisible() {
	height := model.visibleHeight()
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+height {
		model.scrollOffset = model.cursor - height + 1
	}
	model.scrollOffset = max(0, min(model.scrollOffset, len(model.results)-height))
}

func (model Model) listWidth() int {
	width := int(float64(model.width) * listFraction)
	return min(max(width, minListWidth), model.width)
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	var sections []string
	if filterView := model.filter.View(model.theme, model.width); filterView != "" {
		sections = append(sections, filterView)
	} else {
		sections = append(sections, model.renderHeader())
	}

	detailWidth := model.width - model.listWidth() - 1
	content := model.renderListPane()
	if detailWidth > 0 {
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			content, model.renderDivider(), model.renderDetail(detailWidth))
	}
	sections = append(sections, content)

	sections = append(sections, lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width)))
	sections = append(sections, model.renderHelp())
	return strings.Join(sections, "\n")
}

var tabLabels = []struct {
	label string
	tab   Tab
}{
	{"1:Global", TabGlobal},
	{"2:Room", TabRoom},
}

// renderHeader draws the tab labels embedded in a horizontal rule with
// counts on the right:
//
//	─── 1:Global ─── 2:Room ─────────── 4 shown  synced 2026-10-18 09:30 ─
func (model Model) renderHeader() string {
	sep := lipgloss.NewStyle().Foreground(model.theme.BorderColor).Render("─")
	active := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	inactive := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var left strings.Builder
	width := 3
	left.WriteString(strings.Repeat(sep, 3))
	for index, tabLabel := range tabLabels {
		style := inactive
		if tabLabel.tab == model.activeTab {
			style = active
		}
		left.WriteString(" " + style.Render(tabLabel.label) + " ")
		width += lipgloss.Width(tabLabel.label) + 2

		separators := 3
		if index == len(tabLabels)-1 {
			separators = 1
		}
		left.WriteString(strings.Repeat(sep, separators))
		width += separators
	}

	stats := fmt.Sprintf("%d shown", len(model.results))
	if len(model.results) != len(model.entries) {
		stats = fmt.Sprintf("%d/%d shown", len(model.results), len(model.entries))
	}
	if !model.syncedAt.IsZero() {
		stats += "  synced " + model.syncedAt.Local().Format("2006-01-02 15:04")
	}
	statsWidth := lipgloss.Width(stats) + 3
	fill := max(1, model.width-width-statsWidth)

	return left.String() + strings.Repeat(sep, fill) +
		" " + inactive.Render(stats) + " " + sep
}

func (model Model) renderListPane() string {
	listWidth := model.listWidth()
	rowWidth := max(1, listWidth-1)
	height := model.visibleHeight()

	rows := make([]string, height)
	switch {
	case model.loadError != "":
		rows[0] = lipgloss.NewStyle().Foreground(model.theme.ErrorForeground).
			Render(ansi.Truncate(" "+model.loadError, rowWidth, "…"))
	case model.loading && len(model.results) == 0:
		rows[0] = lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(" Loading...")
	case len(model.results) == 0 && model.filter.Input != "":
		rows[0] = lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(" No matches.")
	case len(model.results) == 0:
		rows[0] = lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(" No bookmarks.")
	default:
		for row := range height {
			index := model.scrollOffset + row
			if index >= len(model.results) {
				break
			}
			rows[row] = model.renderRow(model.results[index], rowWidth, index == model.cursor)
		}
	}

	pad := lipgloss.NewStyle().Width(rowWidth)
	for index, row := range rows {
		rows[index] = pad.Render(row)
	}
	scrollbar := renderScrollbar(model.theme, height, len(model.results), height, model.scrollOffset)
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(rows, "\n"), scrollbar)
}

func (model Model) renderRow(result FilterResult, width int, selected bool) string {
	entry := result.Entry
	title := entry.Bookmark.Title
	if title == "" {
		title = "(untitled)"
	}

	if selected {
		plain := " " + title + "  " + entry.Room.String()
		plain = ansi.Truncate(plain, width, "…")
		return lipgloss.NewStyle().
			Background(model.theme.SelectedBackground).
			Foreground(model.theme.SelectedForeground).
			Bold(true).
			Width(width).
			Render(plain)
	}

	row := " " + highlightRunes(title, result.TitlePositions, model.theme) +
		"  " + lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(entry.Room.String())
	return ansi.Truncate(row, width, "…")
}

// highlightRunes renders text with the runes at positions marked as
// filter matches.
func highlightRunes(text string, positions []int, theme Theme) string {
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)
	if len(positions) == 0 {
		return normal.Render(text)
	}
	match := normal.Background(theme.MatchBackground).Bold(true)

	marked := make(map[int]bool, len(positions))
	for _, position := range positions {
		marked[position] = true
	}

	var output, run strings.Builder
	runMatched := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runMatched {
			output.WriteString(match.Render(run.String()))
		} else {
			output.WriteString(normal.Render(run.String()))
		}
		run.Reset()
	}
	for index, character := range []rune(text) {
		if marked[index] != runMatched {
			flush()
			runMatched = marked[index]
		}
		run.WriteRune(character)
	}
	flush()
	return output.String()
}

func (model Model) renderDivider() string {
	line := lipgloss.NewStyle().Foreground(model.theme.BorderColor).Render("│")
	lines := make([]string, model.visibleHeight())
	for index := range lines {
		lines[index] = line
	}
	return strings.Join(lines, "\n")
}

// renderDetail shows the selected bookmark's identifiers and its
// comment rendered as markdown.
func (model Model) renderDetail(width int) string {
	height := model.visibleHeight()
	lines := make([]string, 0, height)

	entry, ok := model.Selected()
	if ok {
		faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
		title := entry.Bookmark.Title
		if title == "" {
			title = "(untitled)"
		}
		lines = append(lines,
			lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(" "+title),
			faint.Render(" room   ")+lipgloss.NewStyle().Foreground(model.theme.RoomForeground).Render(entry.Room.String()),
			faint.Render(" event  ")+lipgloss.NewStyle().Foreground(model.theme.EventForeground).Render(entry.Bookmark.EventID.String()),
			faint.Render(fmt.Sprintf(" %s #%d", entry.Scope, entry.Position+1)),
			"",
		)
		if comment := renderComment(entry.Bookmark.Comment, model.theme, width-2); comment != "" {
			for _, line := range strings.Split(comment, "\n") {
				lines = append(lines, " "+line)
			}
		} else {
			lines = append(lines, faint.Render(" No comment."))
		}
	}

	pad := lipgloss.NewStyle().Width(width)
	rendered := make([]string, height)
	for index := range rendered {
		var line string
		if index < len(lines) {
			line = ansi.Truncate(lines[index], width, "…")
		}
		rendered[index] = pad.Render(line)
	}
	return strings.Join(rendered, "\n")
}

func (model Model) renderHelp() string {
	focus := "LIST"
	if model.focusRegion == FocusFilter {
		focus = "FILTER"
	}
	help := fmt.Sprintf(" [%s] q quit  j/k navigate  Tab/1/2 tabs  / filter  r reload", focus)
	if len(model.results) > 0 {
		help += fmt.Sprintf("  %d/%d", model.cursor+1, len(model.results))
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(help)
}
