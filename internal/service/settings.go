// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nd-labs/eduspace/internal/cache"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/store"
)

// SettingsService manages the singleton branding record.
type SettingsService struct {
	kv     *store.KV
	cache  cache.Cache
	events *EventService
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(kv *store.KV, c cache.Cache, events *EventService) *SettingsService {
	return &SettingsService{kv: kv, cache: c, events: events}
}

// Get returns the current site settings. The logo whitelist is applied
// on every read, so a rogue value written out of band never reaches a
// client; the repaired record is written back so the rogue value does
// not survive in storage either.
func (s *SettingsService) Get(ctx context.Context) model.SiteSettings {
	if raw, err := s.cache.Get(ctx, cache.KeySettings); err == nil {
		var cached model.SiteSettings
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached
		}
	}

	settings, rev := store.Load(ctx, s.kv, store.KeySettings, model.DefaultSettings())
	if settings.SanitizeLogo() {
		slog.Warn("stored logo failed whitelist, reset to default")
		if _, err := store.Save(ctx, s.kv, store.KeySettings, settings, rev); err != nil {
			// A concurrent writer wins; its record gets sanitized on
			// the next read.
			slog.Warn("persisting repaired logo failed", "error", err)
		}
	}

	if raw, err := json.Marshal(settings); err == nil {
		if err := s.cache.Set(ctx, cache.KeySettings, raw, 0); err != nil {
			slog.Warn("settings cache write failed", "error", err)
		}
	}
	return settings
}

// Update overwrites the settings record. Admin only. An out-of-
// whitelist logo is rejected rather than silently rewritten, so the
// admin panel can show the error.
func (s *SettingsService) Update(ctx context.Context, actor *model.User, next model.SiteSettings) (model.SiteSettings, error) {
	if actor == nil || !actor.IsAdmin() {
		return model.SiteSettings{}, ErrForbidden
	}
	if strings.TrimSpace(next.BrandName) == "" {
		return model.SiteSettings{}, fmt.Errorf("%w: brand name is required", ErrValidation)
	}
	if next.LogoURL != "" && !model.ValidLogoURL(next.LogoURL) {
		return model.SiteSettings{}, fmt.Errorf("%w: logo must be the bundled asset or an embedded image", ErrValidation)
	}
	if next.LogoURL == "" {
		next.LogoURL = model.DefaultLogo
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		_, rev := store.Load(ctx, s.kv, store.KeySettings, model.DefaultSettings())
		if _, err := store.Save(ctx, s.kv, store.KeySettings, next, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return model.SiteSettings{}, fmt.Errorf("persisting settings: %w", err)
		}

		if err := s.cache.Delete(ctx, cache.KeySettings); err != nil {
			slog.Warn("settings cache invalidation failed", "error", err)
		}
		s.events.LogInfo(ctx, model.EventCategoryConfig, "site settings updated", actor.ID, "", map[string]any{
			"brandName": next.BrandName,
		})
		return next, nil
	}
	return model.SiteSettings{}, store.ErrRevisionConflict
}
