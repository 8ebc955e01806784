// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the JSON API consumed by the EduSpace
// frontend.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nd-labs/eduspace/internal/ai"
	"github.com/nd-labs/eduspace/internal/service"
	"github.com/nd-labs/eduspace/internal/store"
)

// maxBodyBytes caps request bodies. Course records with embedded
// thumbnails are the largest payloads.
const maxBodyBytes = 8 << 20

// writeJSONError writes the error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}

// writeJSONSuccess writes the success envelope with the given fields.
func writeJSONSuccess(w http.ResponseWriter, data map[string]any) {
	writeJSONSuccessStatus(w, http.StatusOK, data)
}

// writeJSONSuccessStatus writes the success envelope with an explicit
// status code.
func writeJSONSuccessStatus(w http.ResponseWriter, statusCode int, data map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON reads a request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps service sentinels onto HTTP statuses. An AI
// outage is a 503: recoverable, try again later.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrVIPRequired):
		writeJSONError(w, http.StatusForbidden, "vip access required")
	case errors.Is(err, service.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrEmailTaken):
		writeJSONError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, ai.ErrUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, "ai service unavailable, try again later")
	case errors.Is(err, store.ErrRevisionConflict):
		writeJSONError(w, http.StatusConflict, "concurrent update, reload and retry")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
