// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/nd-labs/eduspace/internal/middleware"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/service"
)

// vipGrantDays is the length of a timed VIP grant from the admin panel.
const vipGrantDays = 30

// AdminHandler serves the admin panel's account management and audit
// endpoints.
type AdminHandler struct {
	users  *service.UserService
	events *service.EventService
	sm     *scs.SessionManager
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(users *service.UserService, events *service.EventService, sm *scs.SessionManager) *AdminHandler {
	return &AdminHandler{users: users, events: events, sm: sm}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.users.List(r.Context())
	views := make([]model.PublicUser, 0, len(users))
	for i := range users {
		views = append(views, users[i].Public())
	}
	writeJSONSuccess(w, map[string]any{"users": views})
}

type verifyRequest struct {
	Password string `json:"password"`
}

// Verify handles POST /api/admin/verify: checking the management
// password unlocks the destructive endpoints for this session.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ok, err := h.users.VerifyManagementPassword(r.Context(), actor.ID, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		writeJSONError(w, http.StatusForbidden, "management password incorrect")
		return
	}

	h.sm.Put(r.Context(), middleware.SessionKeyAdminVerified, true)
	writeJSONSuccess(w, nil)
}

type roleRequest struct {
	Role string `json:"role"`
}

// SetRole handles PUT /api/admin/users/{userID}/role.
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	var req roleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.SetRole(r.Context(), actor, chi.URLParam(r, "userID"), req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"user": user.Public()})
}

type approvalRequest struct {
	Approved bool `json:"approved"`
}

// SetApproval handles PUT /api/admin/users/{userID}/approval.
func (h *AdminHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	var req approvalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.SetApproval(r.Context(), actor, chi.URLParam(r, "userID"), req.Approved)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"user": user.Public()})
}

type vipRequest struct {
	Permanent bool `json:"permanent"`
}

// GrantVIP handles POST /api/admin/users/{userID}/vip. Timed grants
// run 30 days; permanent ones never lapse.
func (h *AdminHandler) GrantVIP(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	var req vipRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var d time.Duration
	if !req.Permanent {
		d = vipGrantDays * 24 * time.Hour
	}

	user, err := h.users.GrantVIP(r.Context(), actor, chi.URLParam(r, "userID"), d)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"user": user.Public()})
}

// DeleteUser handles DELETE /api/admin/users/{userID}. Requires the
// management password verification.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	if err := h.users.Delete(r.Context(), actor, chi.URLParam(r, "userID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, nil)
}

// Events handles GET /api/admin/events: the audit trail, newest first.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.Recent(r.Context(), 200)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSONSuccess(w, map[string]any{"events": events})
}
