// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nd-labs/eduspace/internal/model"
)

func TestSetRoleRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	target := f.register(t, "student@example.com", "secret123", "Student")

	// Admins cannot change their own role.
	_, err := f.users().SetRole(ctx, admin, admin.ID, model.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)

	// Unknown roles are rejected.
	_, err = f.users().SetRole(ctx, admin, target.ID, "SUPERUSER")
	assert.ErrorIs(t, err, ErrValidation)

	// Moving into DEVELOPER starts unapproved.
	got, err := f.users().SetRole(ctx, admin, target.ID, model.RoleDeveloper)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDeveloper, got.Role)
	assert.False(t, got.IsApproved)
	assert.True(t, got.PendingApproval())
}

func TestSetApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	target := f.register(t, "dev@example.com", "secret123", "Dev")

	// Approval only applies to developers.
	_, err := f.users().SetApproval(ctx, admin, target.ID, true)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.users().SetRole(ctx, admin, target.ID, model.RoleDeveloper)
	require.NoError(t, err)

	got, err := f.users().SetApproval(ctx, admin, target.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)
	assert.False(t, got.PendingApproval())
}

func TestGrantVIP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	student := f.register(t, "student@example.com", "secret123", "Student")
	dev := f.register(t, "dev@example.com", "secret123", "Dev")
	_, err := f.users().SetRole(ctx, admin, dev.ID, model.RoleDeveloper)
	require.NoError(t, err)

	// Plain users become VIP.
	got, err := f.users().GrantVIP(ctx, admin, student.ID, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, model.RoleVIP, got.Role)
	until, perr := time.Parse(time.RFC3339, got.VIPUntil)
	require.NoError(t, perr)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), until, time.Minute)

	// Developers keep their role, only the marker changes.
	got, err = f.users().GrantVIP(ctx, admin, dev.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDeveloper, got.Role)
	assert.Equal(t, model.VIPPermanent, got.VIPUntil)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	target := f.register(t, "student@example.com", "secret123", "Student")

	assert.ErrorIs(t, f.users().Delete(ctx, admin, admin.ID), ErrForbidden)
	require.NoError(t, f.users().Delete(ctx, admin, target.ID))

	_, err := f.users().Get(ctx, target.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.users().Delete(ctx, admin, target.ID), ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "student@example.com", "secret123", "Old Name")

	got, err := f.users().UpdateProfile(ctx, u.ID, "New Name", "data:image/png;base64,xxx")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.FullName)
	assert.Equal(t, "data:image/png;base64,xxx", got.Avatar)

	_, err = f.users().UpdateProfile(ctx, u.ID, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "student@example.com", "secret123", "Student")

	assert.ErrorIs(t, f.users().ChangePassword(ctx, u.ID, "wrong", "newsecret"), ErrInvalidCredentials)
	require.NoError(t, f.users().ChangePassword(ctx, u.ID, "secret123", "newsecret"))

	_, err := f.auth().Login(ctx, u.Email, "newsecret", "", "")
	require.NoError(t, err)
}

func TestExpireVIPs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	a := f.register(t, "a@example.com", "secret123", "A")
	b := f.register(t, "b@example.com", "secret123", "B")

	_, err := f.users().GrantVIP(ctx, admin, a.ID, time.Hour)
	require.NoError(t, err)
	_, err = f.users().GrantVIP(ctx, admin, b.ID, 0) // permanent
	require.NoError(t, err)

	// Nothing lapsed yet.
	n, err := f.users().ExpireVIPs(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	// Two hours later the timed grant lapses, the permanent one stays.
	n, err = f.users().ExpireVIPs(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	gotA, err := f.users().Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, gotA.Role)

	gotB, err := f.users().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleVIP, gotB.Role)
}
