// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownBasic(t *testing.T) {
	out := Markdown("# Title\n\nSome **bold** text.")
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestMarkdownStripsScript(t *testing.T) {
	out := Markdown("hello <script>alert(1)</script> world")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")
}

func TestMarkdownTable(t *testing.T) {
	out := Markdown("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.Contains(t, out, "<table>")
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`<p onclick="evil()">ok</p><iframe src="x"></iframe>`)
	assert.Equal(t, "<p>ok</p>", out)
}
