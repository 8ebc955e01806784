// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/store"
)

// EventService writes audit trail entries. Role mutations, allow-list
// overrides and settings changes all leave a row here.
type EventService struct {
	events *store.Events
}

// NewEventService creates an EventService over an open database.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{events: store.NewEvents(db)}
}

// LogEvent creates a new audit entry. Failures are logged, not
// propagated: auditing never blocks the operation being audited.
func (s *EventService) LogEvent(ctx context.Context, level, category, message, userID, ipAddress string, metadata map[string]any) {
	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.events.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    userID,
		IPAddress: ipAddress,
		Metadata:  metadataJSON,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to write audit event", "category", category, "error", err)
	}
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message, userID, ipAddress string, metadata map[string]any) {
	s.LogEvent(ctx, model.EventLevelInfo, category, message, userID, ipAddress, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message, userID, ipAddress string, metadata map[string]any) {
	s.LogEvent(ctx, model.EventLevelWarning, category, message, userID, ipAddress, metadata)
}

// LogError logs an error-level event.
func (s *EventService) LogError(ctx context.Context, category, message, userID, ipAddress string, metadata map[string]any) {
	s.LogEvent(ctx, model.EventLevelError, category, message, userID, ipAddress, metadata)
}

// Recent returns up to limit audit entries, newest first.
func (s *EventService) Recent(ctx context.Context, limit int) ([]model.Event, error) {
	return s.events.ListRecent(ctx, limit)
}

// DeleteOldEvents removes entries older than the given duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) error {
	return s.events.DeleteOldEvents(ctx, time.Now().Add(-olderThan))
}
