// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/nd-labs/eduspace/internal/middleware"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/service"
)

// SettingsHandler serves the branding record: public read, admin write.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSONSuccess(w, map[string]any{"settings": h.settings.Get(r.Context())})
}

// Update handles PUT /api/admin/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	var next model.SiteSettings
	if !decodeJSON(w, r, &next) {
		return
	}

	saved, err := h.settings.Update(r.Context(), actor, next)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"settings": saved})
}
