// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"github.com/nd-labs/eduspace/internal/auth"
	"github.com/nd-labs/eduspace/internal/config"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/store"
)

// AuthService handles registration, login and the session-restore
// privilege checks.
type AuthService struct {
	kv     *store.KV
	cfg    *config.Config
	events *EventService

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates an AuthService.
func NewAuthService(kv *store.KV, cfg *config.Config, events *EventService) *AuthService {
	return &AuthService{kv: kv, cfg: cfg, events: events}
}

// dummy returns a valid argon2id hash used to equalize login timing for
// unknown accounts.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := auth.HashPassword(uuid.NewString())
		if err != nil {
			slog.Error("failed to build dummy hash", "error", err)
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Login authenticates an account. Unknown emails and wrong passwords
// both return ErrInvalidCredentials; the dummy hash keeps the two
// paths at the same cost. On success the admin allow-list override,
// VIP expiry demotion and hash upgrades are applied and persisted.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress, uaString string) (*model.User, error) {
	email = normalizeEmail(email)

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		users, rev := store.Load(ctx, s.kv, store.KeyUsers, []model.User{})

		idx := findUserByEmail(users, email)
		if idx < 0 {
			_, _ = auth.CheckPassword(password, s.dummy())
			return nil, ErrInvalidCredentials
		}

		u := users[idx]
		ok, err := auth.CheckPassword(password, u.PasswordHash)
		if err != nil || !ok {
			s.events.LogWarning(ctx, model.EventCategoryAuth, "failed login attempt", u.ID, ipAddress, map[string]any{"email": email})
			return nil, ErrInvalidCredentials
		}

		dirty := s.applyAccountRules(ctx, &u, ipAddress)

		if auth.NeedsRehash(u.PasswordHash) {
			if h, err := auth.HashPassword(password); err == nil {
				u.PasswordHash = h
				dirty = true
			}
		}

		if dirty {
			u.UpdatedAt = time.Now()
			users[idx] = u
			if _, err := store.Save(ctx, s.kv, store.KeyUsers, users, rev); err != nil {
				if err == store.ErrRevisionConflict {
					continue
				}
				return nil, fmt.Errorf("persisting login updates: %w", err)
			}
		}

		ua := useragent.Parse(uaString)
		s.events.LogInfo(ctx, model.EventCategoryAuth, "user logged in", u.ID, ipAddress, map[string]any{
			"email":   u.Email,
			"browser": ua.Name,
			"os":      ua.OS,
			"mobile":  ua.Mobile,
		})
		return &u, nil
	}
	return nil, store.ErrRevisionConflict
}

// Register creates a new USER account. The email must be unused and the
// password at least 6 characters, matching the client-side rule.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		users, rev := store.Load(ctx, s.kv, store.KeyUsers, []model.User{})
		if findUserByEmail(users, email) >= 0 {
			return nil, ErrEmailTaken
		}

		now := time.Now()
		u := model.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			FullName:     strings.TrimSpace(fullName),
			Role:         model.RoleUser,
			Avatar:       model.DefaultAvatar,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		// A registration on the allow-list comes up as admin directly.
		if s.cfg.IsAdminEmail(email) {
			u.Role = model.RoleAdmin
			s.events.LogWarning(ctx, model.EventCategoryAuth, "allow-list registration granted admin role", u.ID, "", map[string]any{"email": email})
		}

		users = append(users, u)
		if _, err := store.Save(ctx, s.kv, store.KeyUsers, users, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return nil, fmt.Errorf("persisting registration: %w", err)
		}

		s.events.LogInfo(ctx, model.EventCategoryUser, "account registered", u.ID, "", map[string]any{"email": email})
		return &u, nil
	}
	return nil, store.ErrRevisionConflict
}

// Restore re-resolves a session's user by ID, re-applying the account
// rules. Returns ErrNotFound when the account no longer exists.
func (s *AuthService) Restore(ctx context.Context, userID string) (*model.User, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		users, rev := store.Load(ctx, s.kv, store.KeyUsers, []model.User{})
		idx := findUserByID(users, userID)
		if idx < 0 {
			return nil, ErrNotFound
		}

		u := users[idx]
		if dirty := s.applyAccountRules(ctx, &u, ""); dirty {
			u.UpdatedAt = time.Now()
			users[idx] = u
			if _, err := store.Save(ctx, s.kv, store.KeyUsers, users, rev); err != nil {
				if err == store.ErrRevisionConflict {
					continue
				}
				return nil, fmt.Errorf("persisting restore updates: %w", err)
			}
		}
		return &u, nil
	}
	return nil, store.ErrRevisionConflict
}

// applyAccountRules enforces the invariants applied on every login and
// session restore. Returns true when the record changed.
func (s *AuthService) applyAccountRules(ctx context.Context, u *model.User, ipAddress string) bool {
	dirty := false

	// The allow-list always wins over the stored role.
	if s.cfg.IsAdminEmail(u.Email) && u.Role != model.RoleAdmin {
		s.events.LogWarning(ctx, model.EventCategoryAuth, "allow-list override promoted account to admin", u.ID, ipAddress, map[string]any{
			"email":    u.Email,
			"fromRole": u.Role,
		})
		u.Role = model.RoleAdmin
		dirty = true
	}

	// Lapsed VIP grants demote back to USER.
	if u.VIPExpired(time.Now()) {
		s.events.LogInfo(ctx, model.EventCategoryUser, "vip grant expired", u.ID, ipAddress, map[string]any{"vipUntil": u.VIPUntil})
		u.Role = model.RoleUser
		u.VIPUntil = ""
		dirty = true
	}

	return dirty
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func findUserByEmail(users []model.User, email string) int {
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return i
		}
	}
	return -1
}

func findUserByID(users []model.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}
