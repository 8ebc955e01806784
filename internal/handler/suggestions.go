// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nd-labs/eduspace/internal/middleware"
	"github.com/nd-labs/eduspace/internal/service"
)

// SuggestionHandler serves the suggestion box endpoints.
type SuggestionHandler struct {
	suggestions *service.SuggestionService
}

// NewSuggestionHandler creates a SuggestionHandler.
func NewSuggestionHandler(suggestions *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

type suggestionRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Create handles POST /api/suggestions.
func (h *SuggestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	var req suggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sg, err := h.suggestions.Create(r.Context(), actor, req.Type, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccessStatus(w, http.StatusCreated, map[string]any{"suggestion": sg})
}

// List handles GET /api/suggestions. Admins get everything, developers
// their own submissions.
func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	all, err := h.suggestions.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"suggestions": all})
}

// SetStatus handles PUT /api/suggestions/{suggestionID}/status.
func (h *SuggestionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sg, err := h.suggestions.SetStatus(r.Context(), actor, chi.URLParam(r, "suggestionID"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"suggestion": sg})
}
