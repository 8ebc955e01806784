// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nd-labs/eduspace/internal/model"
)

func requestWithUser(u *model.User) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if u == nil {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), ContextKeyUser, u))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"authentication required"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(&model.User{ID: "u1", Role: model.RoleUser}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(model.RoleAdmin)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(&model.User{Role: model.RoleUser}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(&model.User{Role: model.RoleAdmin}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolePendingDeveloper(t *testing.T) {
	h := RequireRole(model.RoleAdmin, model.RoleDeveloper)(okHandler)

	// An unapproved developer is turned away even though the role is
	// listed.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(&model.User{Role: model.RoleDeveloper, IsApproved: false}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "awaiting approval")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithUser(&model.User{Role: model.RoleDeveloper, IsApproved: true}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginProtectionLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
	})

	locked, _ := lp.RecordFailedAttempt("a@example.com")
	assert.False(t, locked)
	locked, _ = lp.RecordFailedAttempt("a@example.com")
	assert.False(t, locked)
	locked, d := lp.RecordFailedAttempt("a@example.com")
	assert.True(t, locked)
	assert.Equal(t, time.Minute, d)

	isLocked, remaining := lp.IsAccountLocked("a@example.com")
	assert.True(t, isLocked)
	assert.Greater(t, remaining, time.Duration(0))

	// Success clears the slate.
	lp.RecordSuccessfulLogin("a@example.com")
	isLocked, _ = lp.IsAccountLocked("a@example.com")
	assert.False(t, isLocked)
}

func TestLoginProtectionIPRateLimit(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 1, IPBurst: 2})

	assert.True(t, lp.CheckIPRateLimit("10.0.0.1"))
	assert.True(t, lp.CheckIPRateLimit("10.0.0.1"))
	assert.False(t, lp.CheckIPRateLimit("10.0.0.1"))
	// Other IPs are unaffected.
	assert.True(t, lp.CheckIPRateLimit("10.0.0.2"))
}
