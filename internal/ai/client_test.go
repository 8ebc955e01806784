// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledClient(t *testing.T) {
	c := New("", "gpt-4o-mini", "gpt-image-1")
	assert.False(t, c.Enabled())

	_, err := c.Chat(context.Background(), nil, "hi")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.GradeEssay(context.Background(), "q", "", "a")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.GenerateImage(context.Background(), "a cat")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEnabledFlag(t *testing.T) {
	c := New("sk-test", "gpt-4o-mini", "gpt-image-1")
	assert.True(t, c.Enabled())
}
