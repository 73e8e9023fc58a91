// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	commentParser     goldmark.Markdown
	commentParserOnce sync.Once
)

func getCommentParser() goldmark.Markdown {
	commentParserOnce.Do(func() {
		commentParser = goldmark.New(goldmark.WithExtensions(
			extension.Strikethrough,
			extension.Linkify,
			extension.TaskList,
		))
	})
	return commentParser
}

// wrapBreakpoints are the characters ansi.Wrap may break after in
// addition to spaces.
const wrapBreakpoints = " ,.;-+|"

// renderComment renders a bookmark comment as styled terminal text
// wrapped to width. Soft line breaks reflow; fenced code blocks with a
// language tag are syntax highlighted.
func renderComment(input string, theme Theme, width int) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	source := []byte(input)
	document := getCommentParser().Parser().Parse(text.NewReader(source))

	// The output is always for the TUI, so force a color profile
	// instead of detecting one from a stderr that may not be a TTY.
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &commentRenderer{
		source:      source,
		theme:       theme,
		lipRenderer: lipRenderer,
	}
	blocks := renderer.blocks(document, width)
	return strings.Join(blocks, "\n\n")
}

// commentRenderer turns a goldmark AST into terminal text. Each block
// renders to a string of lines at a given width; containers indent
// their children's lines.
type commentRenderer struct {
	source      []byte
	theme       Theme
	lipRenderer *lipgloss.Renderer
}

func (renderer *commentRenderer) style() lipgloss.Style {
	return renderer.lipRenderer.NewStyle()
}

// blocks renders each block child of parent.
func (renderer *commentRenderer) blocks(parent ast.Node, width int) []string {
	var rendered []string
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if block := renderer.block(child, width); block != "" {
			rendered = append(rendered, block)
		}
	}
	return rendered
}

func (renderer *commentRenderer) block(node ast.Node, width int) string {
	switch node := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return ansi.Wrap(renderer.inline(node), width, wrapBreakpoints)

	case *ast.Heading:
		content := ansi.Strip(renderer.inline(node))
		style := renderer.style().Bold(true).Foreground(renderer.theme.NormalText)
		if node.Level <= 2 {
			style = style.Foreground(renderer.theme.HeaderForeground)
		}
		return ansi.Wrap(style.Render(content), width, wrapBreakpoints)

	case *ast.FencedCodeBlock:
		language := string(node.Language(renderer.source))
		return renderer.code(renderer.lines(node), language)

	case *ast.CodeBlock:
		return renderer.code(renderer.lines(node), "")

	case *ast.Blockquote:
		bar := renderer.style().Foreground(renderer.theme.BorderColor).Render("│ ")
		inner := strings.Join(renderer.blocks(node, width-2), "\n\n")
		return indent(inner, bar, bar)

	case *ast.List:
		return renderer.list(node, width)

	case *ast.ThematicBreak:
		return renderer.style().Foreground(renderer.theme.BorderColor).Render(strings.Repeat("─", width))

	case *ast.HTMLBlock:
		html := stripTags(renderer.lines(node))
		if strings.TrimSpace(html) == "" {
			return ""
		}
		return renderer.style().Foreground(renderer.theme.FaintText).Render(strings.TrimSpace(html))
	}
	return ""
}

func (renderer *commentRenderer) list(list *ast.List, width int) string {
	var items []string
	number := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		bullet := "- "
		if list.IsOrdered() {
			bullet = fmt.Sprintf("%d. ", number)
			number++
		}
		continuation := strings.Repeat(" ", len(bullet))

		separator := "\n\n"
		if list.IsTight {
			separator = "\n"
		}
		body := strings.Join(renderer.blocks(item, width-len(bullet)), separator)
		items = append(items, indent(body, bullet, continuation))
	}
	if list.IsTight {
		return strings.Join(items, "\n")
	}
	return strings.Join(items, "\n\n")
}

// code highlights with chroma when the language is known and falls
// back to faint plain text otherwise.
func (renderer *commentRenderer) code(code, language string) string {
	code = strings.TrimRight(code, "\n")
	if language != "" {
		var buffer strings.Builder
		if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err == nil {
			return trimBlankTail(buffer.String())
		}
	}
	faint := renderer.style().Foreground(renderer.theme.FaintText)
	lines := strings.Split(code, "\n")
	for index, line := range lines {
		lines[index] = faint.Render(line)
	}
	return strings.Join(lines, "\n")
}

func (renderer *commentRenderer) lines(node ast.Node) string {
	var content strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		content.Write(segment.Value(renderer.source))
	}
	return content.String()
}

// inlineStyle accumulates emphasis as the inline walk descends.
type inlineStyle struct {
	bold          bool
	italic        bool
	strikethrough bool
}

func (renderer *commentRenderer) inline(node ast.Node) string {
	var output strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		renderer.inlineNode(&output, child, inlineStyle{})
	}
	return output.String()
}

func (renderer *commentRenderer) text(content string, state inlineStyle) string {
	style := renderer.style().Foreground(renderer.theme.NormalText)
	if state.bold {
		style = style.Bold(true)
	}
	if state.italic {
		style = style.Italic(true)
	}
	if state.strikethrough {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

func (renderer *commentRenderer) inlineNode(output *strings.Builder, node ast.Node, state inlineStyle) {
	faint := renderer.style().Foreground(renderer.theme.FaintText)

	switch node := node.(type) {
	case *ast.Text:
		output.WriteString(renderer.text(string(node.Segment.Value(renderer.source)), state))
		if node.HardLineBreak() {
			output.WriteString("\n")
		} else if node.SoftLineBreak() {
			output.WriteString(" ")
		}
		return

	case *ast.String:
		output.WriteString(renderer.text(string(node.Value), state))
		return

	case *ast.CodeSpan:
		var code strings.Builder
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			if textNode, ok := child.(*ast.Text); ok {
				code.Write(textNode.Segment.Value(renderer.source))
			}
		}
		output.WriteString(faint.Render(code.String()))
		return

	case *ast.Emphasis:
		if node.Level >= 2 {
			state.bold = true
		} else {
			state.italic = true
		}

	case *extast.Strikethrough:
		state.strikethrough = true

	case *ast.Link:
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			renderer.inlineNode(output, child, state)
		}
		if destination := string(node.Destination); destination != "" {
			output.WriteString(" " + faint.Render("("+destination+")"))
		}
		return

	case *ast.AutoLink:
		output.WriteString(renderer.style().Foreground(renderer.theme.RoomForeground).
			Render(string(node.URL(renderer.source))))
		return

	case *ast.Image:
		output.WriteString(faint.Render("[" + ansi.Strip(renderer.inline(node)) + "]"))
		return

	case *extast.TaskCheckBox:
		if node.IsChecked {
			output.WriteString(renderer.text("[x] ", state))
		} else {
			output.WriteString(renderer.text("[ ] ", state))
		}
		return

	case *ast.RawHTML:
		var html strings.Builder
		for index := 0; index < node.Segments.Len(); index++ {
			segment := node.Segments.At(index)
			html.Write(segment.Value(renderer.source))
		}
		if stripped := stripTags(html.String()); stripped != "" {
			output.WriteString(faint.Render(stripped))
		}
		return
	}

	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		renderer.inlineNode(output, child, state)
	}
}

// trimBlankTail drops trailing lines with no visible text. Highlighter
// output can end in a newline followed by a bare reset sequence, so a
// reset is kept whenever anything was dropped.
func trimBlankTail(content string) string {
	lines := strings.Split(content, "\n")
	trimmed := false
	for len(lines) > 1 && strings.TrimSpace(ansi.Strip(lines[len(lines)-1])) == "" {
		lines = lines[:len(lines)-1]
		trimmed = true
	}
	if trimmed {
		lines[len(lines)-1] += "\x1b[0m"
	}
	return strings.Join(lines, "\n")
}

// indent prefixes the first line with first and every later line with
// rest.
func indent(content, first, rest string) string {
	lines := strings.Split(content, "\n")
	for index, line := range lines {
		if index == 0 {
			lines[index] = first + line
		} else {
			lines[index] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}

func stripTags(html string) string {
	var result strings.Builder
	inTag := false
	for _, character := range html {
		switch {
		case character == '<':
			inTag = true
		case character == '>':
			inTag = false
		case !inTag:
			result.WriteRune(character)
		}
	}
	return result.String()
}
