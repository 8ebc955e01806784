// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization and request protection.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/service"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser carries the resolved *model.User.
const ContextKeyUser ContextKey = "user"

// Session keys.
const (
	SessionKeyUserID = "user_id"

	// SessionKeyAdminVerified is set after the management password
	// check and gates destructive admin operations.
	SessionKeyAdminVerified = "admin_verified"
)

// UserFromContext returns the session user, or nil for guests.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(ContextKeyUser).(*model.User)
	return u
}

// LoadUser resolves the session's account on every request and stores
// it in the context. Resolution goes through the auth service so the
// allow-list override and VIP expiry rules are re-applied on restore,
// not just at login. A dangling session is destroyed silently.
func LoadUser(sm *scs.SessionManager, authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetString(r.Context(), SessionKeyUserID)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authSvc.Restore(r.Context(), userID)
			if err != nil {
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects guests with 401. Must run after LoadUser.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits only the listed roles. A developer still waiting
// for approval is rejected even when DEVELOPER is listed, with a
// distinct message so clients can show the pending screen.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !allowed[user.Role] {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			if user.PendingApproval() {
				writeError(w, http.StatusForbidden, "developer account awaiting approval")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminVerified additionally demands the in-session management
// password verification. Used on the destructive admin endpoints.
func RequireAdminVerified(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sm.GetBool(r.Context(), SessionKeyAdminVerified) {
				writeError(w, http.StatusForbidden, "management password verification required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError emits the API error envelope. Duplicated from the handler
// package to keep the import graph acyclic.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
