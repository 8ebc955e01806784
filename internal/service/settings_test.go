// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/store"
)

func TestSettingsDefaults(t *testing.T) {
	f := newFixture(t)
	got := f.settings().Get(context.Background())
	assert.Equal(t, "EduSpace", got.BrandName)
	assert.Equal(t, model.DefaultLogo, got.LogoURL)
}

func TestSettingsUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")

	next := model.DefaultSettings()
	next.BrandName = "EduSpace Pro"
	next.LogoURL = "data:image/png;base64,abc"

	got, err := f.settings().Update(ctx, admin, next)
	require.NoError(t, err)
	assert.Equal(t, "EduSpace Pro", got.BrandName)

	// A fresh read reflects the update (cache was invalidated).
	assert.Equal(t, "EduSpace Pro", f.settings().Get(ctx).BrandName)
}

func TestSettingsUpdatePermissionsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	student := f.register(t, "student@example.com", "secret123", "Student")

	_, err := f.settings().Update(ctx, student, model.DefaultSettings())
	assert.ErrorIs(t, err, ErrForbidden)

	bad := model.DefaultSettings()
	bad.LogoURL = "https://evil.example/logo.png"
	_, err = f.settings().Update(ctx, admin, bad)
	assert.ErrorIs(t, err, ErrValidation)

	bad = model.DefaultSettings()
	bad.BrandName = " "
	_, err = f.settings().Update(ctx, admin, bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSettingsGetRepairsRogueLogo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rogue := model.DefaultSettings()
	rogue.LogoURL = "javascript:alert(1)"
	_, err := store.Save(ctx, f.kv, store.KeySettings, rogue, 0)
	require.NoError(t, err)

	got := f.settings().Get(ctx)
	assert.Equal(t, model.DefaultLogo, got.LogoURL)

	// The repair reaches storage, not just the returned copy.
	stored, rev := store.Load(ctx, f.kv, store.KeySettings, model.DefaultSettings())
	assert.Equal(t, model.DefaultLogo, stored.LogoURL)
	assert.Equal(t, int64(2), rev)
}
