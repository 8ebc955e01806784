// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/store"
)

// SuggestionService handles the developer suggestion box and its admin
// review queue.
type SuggestionService struct {
	kv     *store.KV
	events *EventService
}

// NewSuggestionService creates a SuggestionService.
func NewSuggestionService(kv *store.KV, events *EventService) *SuggestionService {
	return &SuggestionService{kv: kv, events: events}
}

// Create files a suggestion. Only approved developers and admins may
// submit.
func (s *SuggestionService) Create(ctx context.Context, actor *model.User, kind, content string) (*model.Suggestion, error) {
	if actor == nil || (!actor.IsAdmin() && actor.Role != model.RoleDeveloper) {
		return nil, ErrForbidden
	}
	if actor.PendingApproval() {
		return nil, fmt.Errorf("%w: developer account awaiting approval", ErrForbidden)
	}
	if !model.IsValidSuggestionType(kind) {
		return nil, fmt.Errorf("%w: unknown suggestion type %q", ErrValidation, kind)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: suggestion content is required", ErrValidation)
	}

	sg := model.Suggestion{
		ID:      uuid.NewString(),
		UserID:  actor.ID,
		Type:    kind,
		Content: strings.TrimSpace(content),
		Status:  model.SuggestionPending,
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		all, rev := store.Load(ctx, s.kv, store.KeySuggestions, []model.Suggestion{})
		all = append(all, sg)
		if _, err := store.Save(ctx, s.kv, store.KeySuggestions, all, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return nil, fmt.Errorf("persisting suggestion: %w", err)
		}
		s.events.LogInfo(ctx, model.EventCategoryUser, "suggestion filed", actor.ID, "", map[string]any{"type": kind})
		return &sg, nil
	}
	return nil, store.ErrRevisionConflict
}

// List returns suggestions. Admins see everything; developers only
// their own.
func (s *SuggestionService) List(ctx context.Context, viewer *model.User) ([]model.Suggestion, error) {
	if viewer == nil {
		return nil, ErrForbidden
	}
	all, _ := store.Load(ctx, s.kv, store.KeySuggestions, []model.Suggestion{})
	if viewer.IsAdmin() {
		return all, nil
	}
	if viewer.Role != model.RoleDeveloper {
		return nil, ErrForbidden
	}
	own := make([]model.Suggestion, 0)
	for _, sg := range all {
		if sg.UserID == viewer.ID {
			own = append(own, sg)
		}
	}
	return own, nil
}

// SetStatus resolves a suggestion. Admin only.
func (s *SuggestionService) SetStatus(ctx context.Context, actor *model.User, id, status string) (*model.Suggestion, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	switch status {
	case model.SuggestionApproved, model.SuggestionRejected, model.SuggestionPending:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		all, rev := store.Load(ctx, s.kv, store.KeySuggestions, []model.Suggestion{})
		idx := -1
		for i := range all {
			if all[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrNotFound
		}
		if all[idx].Status == status {
			sg := all[idx]
			return &sg, nil
		}
		all[idx].Status = status

		if _, err := store.Save(ctx, s.kv, store.KeySuggestions, all, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return nil, fmt.Errorf("persisting suggestion review: %w", err)
		}
		s.events.LogInfo(ctx, model.EventCategoryUser, "suggestion reviewed", actor.ID, "", map[string]any{
			"suggestionId": id,
			"status":       status,
		})
		sg := all[idx]
		return &sg, nil
	}
	return nil, store.ErrRevisionConflict
}
