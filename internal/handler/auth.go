// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/nd-labs/eduspace/internal/middleware"
	"github.com/nd-labs/eduspace/internal/service"
)

// AuthHandler serves login, registration and session endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	sm         *scs.SessionManager
	protection *middleware.LoginProtection
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, sm *scs.SessionManager, protection *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{auth: auth, sm: sm, protection: protection}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !h.protection.CheckIPRateLimit(ip) {
		writeJSONError(w, http.StatusTooManyRequests, "too many login attempts, slow down")
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if locked, remaining := h.protection.IsAccountLocked(req.Email); locked {
		writeJSONError(w, http.StatusTooManyRequests,
			"account temporarily locked, try again in "+remaining.Round(1e9).String())
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password, ip, r.UserAgent())
	if err != nil {
		h.protection.RecordFailedAttempt(req.Email)
		writeServiceError(w, err)
		return
	}
	h.protection.RecordSuccessfulLogin(req.Email)

	// Rotate the session token on privilege change.
	if err := h.sm.RenewToken(r.Context()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "session error")
		return
	}
	h.sm.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	writeJSONSuccess(w, map[string]any{"user": user.Public()})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.sm.RenewToken(r.Context()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "session error")
		return
	}
	h.sm.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	writeJSONSuccessStatus(w, http.StatusCreated, map[string]any{"user": user.Public()})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sm.Destroy(r.Context()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "session error")
		return
	}
	writeJSONSuccess(w, nil)
}

// Me handles GET /api/auth/me, restoring the session user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	writeJSONSuccess(w, map[string]any{"user": user.Public()})
}

// clientIP extracts the remote address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
