// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Hello World", "hello-world"},
		{"accents", "Café au Lait", "cafe-au-lait"},
		{"vietnamese", "Lập Trình React Cơ Bản", "lap-trinh-react-co-ban"},
		{"vietnamese d", "Đào tạo NodeJS", "dao-tao-nodejs"},
		{"punctuation", "What's New? (2026)", "whats-new-2026"},
		{"multiple spaces", "a   b", "a-b"},
		{"leading trailing", " -edge- ", "edge"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("hello-world"))
	assert.True(t, IsValidSlug("c1"))
	assert.False(t, IsValidSlug(""))
	assert.False(t, IsValidSlug("-leading"))
	assert.False(t, IsValidSlug("trailing-"))
	assert.False(t, IsValidSlug("double--hyphen"))
	assert.False(t, IsValidSlug("UpperCase"))
	assert.False(t, IsValidSlug("with space"))
}
