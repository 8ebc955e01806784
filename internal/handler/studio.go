// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nd-labs/eduspace/internal/ai"
	"github.com/nd-labs/eduspace/internal/imaging"
	"github.com/nd-labs/eduspace/internal/middleware"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/service"
)

// StudioHandler serves the authoring endpoints used by developers and
// admins.
type StudioHandler struct {
	courses   *service.CourseService
	assistant ai.Assistant
	processor *imaging.Processor
}

// NewStudioHandler creates a StudioHandler.
func NewStudioHandler(courses *service.CourseService, assistant ai.Assistant, processor *imaging.Processor) *StudioHandler {
	return &StudioHandler{courses: courses, assistant: assistant, processor: processor}
}

// Save handles POST /api/studio/courses: whole-record create or
// overwrite, exactly as the editor submits it.
func (h *StudioHandler) Save(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	var course model.Course
	if !decodeJSON(w, r, &course) {
		return
	}

	saved, err := h.courses.Save(r.Context(), actor, course)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"course": saved})
}

// Delete handles DELETE /api/studio/courses/{courseID}.
func (h *StudioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	if err := h.courses.Delete(r.Context(), actor, chi.URLParam(r, "courseID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, nil)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PUT /api/studio/courses/{courseID}/status.
func (h *StudioHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	course, err := h.courses.SetStatus(r.Context(), actor, chi.URLParam(r, "courseID"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"course": course})
}

type thumbnailRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateThumbnail handles POST /api/studio/thumbnail: the AI renders
// the prompt, the processor crops it to card size and the data URI
// goes back for the editor to attach.
func (h *StudioHandler) GenerateThumbnail(w http.ResponseWriter, r *http.Request) {
	var req thumbnailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	raw, err := h.assistant.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	uri, err := h.processor.Thumbnail(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "generated image could not be processed")
		return
	}
	writeJSONSuccess(w, map[string]any{"thumbnail": uri})
}
