// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render converts markdown authored in the studio and returned
// by the AI assistant into sanitized HTML safe to embed in clients.
package render

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlSanitizer strips script tags, event handlers and other dangerous
// markup from rendered output. UGCPolicy keeps the formatting tags that
// lesson bodies and chat replies actually use.
var htmlSanitizer = bluemonday.UGCPolicy()

// md enables GFM tables and strikethrough, which show up often in
// AI-generated answers.
var md = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

// Markdown converts markdown source to sanitized HTML. Conversion
// errors yield the escaped source rather than failing the request.
func Markdown(src string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return string(htmlSanitizer.SanitizeBytes([]byte(src)))
	}
	return string(htmlSanitizer.SanitizeBytes(buf.Bytes()))
}

// SanitizeHTML strips unsafe markup from already-rendered HTML, such as
// lesson content pasted into the studio editor.
func SanitizeHTML(s string) string {
	return htmlSanitizer.Sanitize(s)
}
