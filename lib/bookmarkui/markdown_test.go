// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func stripped(input string, width int) string {
	return ansi.Strip(renderComment(input, DefaultTheme, width))
}

func TestRenderCommentEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n"} {
		if result := renderComment(input, DefaultTheme, 80); result != "" {
			t.Errorf("renderComment(%q) = %q, want empty", input, result)
		}
	}
}

func TestRenderCommentReflow(t *testing.T) {
	result := stripped("first line\nsecond line", 80)
	if result != "first line second line" {
		t.Errorf("got %q", result)
	}
}

func TestRenderCommentWraps(t *testing.T) {
	input := "This comment is long enough that it has to wrap at a narrow width."
	for _, line := range strings.Split(stripped(input, 20), "\n") {
		if ansi.StringWidth(line) > 20 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
}

func TestRenderCommentParagraphs(t *testing.T) {
	result := stripped("one\n\ntwo", 80)
	if result != "one\n\ntwo" {
		t.Errorf("got %q", result)
	}
}

func TestRenderCommentEmphasisIsStyled(t *testing.T) {
	raw := renderComment("plain **bold** text", DefaultTheme, 80)
	if ansi.Strip(raw) != "plain bold text" {
		t.Errorf("visible text = %q", ansi.Strip(raw))
	}
	if !strings.Contains(raw, "\x1b[") {
		t.Error("expected ANSI styling in output")
	}
}

func TestRenderCommentList(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"- alpha\n- beta", "- alpha\n- beta"},
		{"1. one\n2. two", "1. one\n2. two"},
		{"3. three\n4. four", "3. three\n4. four"},
	}
	for _, test := range tests {
		if result := stripped(test.input, 80); result != test.want {
			t.Errorf("stripped(%q) = %q, want %q", test.input, result, test.want)
		}
	}
}

func TestRenderCommentBlockquote(t *testing.T) {
	result := stripped("> quoted", 80)
	if result != "│ quoted" {
		t.Errorf("got %q", result)
	}
}

func TestRenderCommentLink(t *testing.T) {
	result := stripped("[docs](https://example.org/docs)", 80)
	if result != "docs (https://example.org/docs)" {
		t.Errorf("got %q", result)
	}
}

func TestRenderCommentCodeSpan(t *testing.T) {
	result := stripped("run `make test` first", 80)
	if result != "run make test first" {
		t.Errorf("got %q", result)
	}
}

func TestRenderCommentFencedCode(t *testing.T) {
	input := "```go\nfunc main() {}\n```"
	raw := renderComment(input, DefaultTheme, 80)
	if ansi.Strip(raw) != "func main() {}" {
		t.Errorf("visible code = %q", ansi.Strip(raw))
	}
	if !strings.Contains(raw, "\x1b[") {
		t.Error("expected highlighted code")
	}
}

func TestRenderCommentUnknownLanguage(t *testing.T) {
	input := "```not-a-language\nkeep me\n```"
	if result := stripped(input, 80); result != "keep me" {
		t.Errorf("got %q", result)
	}
}

func TestRenderCommentHeading(t *testing.T) {
	result := stripped("## Notes\n\nbody", 80)
	if result != "Notes\n\nbody" {
		t.Errorf("got %q", result)
	}
}

func TestRenderCommentStripsHTML(t *testing.T) {
	result := stripped("a <b>bold</b> word", 80)
	if result != "a bold word" {
		t.Errorf("got %q", result)
	}
}
