// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nd-labs/eduspace/internal/auth"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/store"
)

// UserService covers the admin panel's account management plus profile
// self-service.
type UserService struct {
	kv     *store.KV
	events *EventService
}

// NewUserService creates a UserService.
func NewUserService(kv *store.KV, events *EventService) *UserService {
	return &UserService{kv: kv, events: events}
}

// List returns all accounts. Password hashes never leave the model's
// JSON encoding, so the slice is safe to hand to handlers.
func (s *UserService) List(ctx context.Context) []model.User {
	users, _ := store.Load(ctx, s.kv, store.KeyUsers, []model.User{})
	return users
}

// Get returns one account by ID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	users, _ := store.Load(ctx, s.kv, store.KeyUsers, []model.User{})
	if i := findUserByID(users, id); i >= 0 {
		u := users[i]
		return &u, nil
	}
	return nil, ErrNotFound
}

// mutate loads the user collection, applies fn to the target record and
// persists under the revision guard, retrying on conflicts. fn returns
// false to abort without writing.
func (s *UserService) mutate(ctx context.Context, targetID string, fn func(u *model.User) (bool, error)) (*model.User, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		users, rev := store.Load(ctx, s.kv, store.KeyUsers, []model.User{})
		idx := findUserByID(users, targetID)
		if idx < 0 {
			return nil, ErrNotFound
		}

		u := users[idx]
		write, err := fn(&u)
		if err != nil {
			return nil, err
		}
		if !write {
			return &u, nil
		}

		u.UpdatedAt = time.Now()
		users[idx] = u
		if _, err := store.Save(ctx, s.kv, store.KeyUsers, users, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return nil, fmt.Errorf("persisting user update: %w", err)
		}
		return &u, nil
	}
	return nil, store.ErrRevisionConflict
}

// UpdateProfile lets an account change its own display name and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, userID, fullName, avatar string) (*model.User, error) {
	return s.mutate(ctx, userID, func(u *model.User) (bool, error) {
		if strings.TrimSpace(fullName) == "" {
			return false, fmt.Errorf("%w: full name is required", ErrValidation)
		}
		u.FullName = strings.TrimSpace(fullName)
		if avatar != "" {
			u.Avatar = avatar
		}
		return true, nil
	})
}

// ChangePassword rotates an account's login password after verifying
// the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	_, err := s.mutate(ctx, userID, func(u *model.User) (bool, error) {
		ok, err := auth.CheckPassword(current, u.PasswordHash)
		if err != nil || !ok {
			return false, ErrInvalidCredentials
		}
		h, err := auth.HashPassword(next)
		if err != nil {
			return false, fmt.Errorf("hashing password: %w", err)
		}
		u.PasswordHash = h
		return true, nil
	})
	return err
}

// SetRole changes an account's role. Admins cannot change their own
// role, and a demotion into DEVELOPER starts unapproved.
func (s *UserService) SetRole(ctx context.Context, actor *model.User, targetID, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if actor.ID == targetID {
		return nil, fmt.Errorf("%w: cannot change own role", ErrForbidden)
	}

	updated, err := s.mutate(ctx, targetID, func(u *model.User) (bool, error) {
		if u.Role == role {
			return false, nil
		}
		u.Role = role
		if role == model.RoleDeveloper {
			u.IsApproved = false
		}
		if role != model.RoleVIP {
			u.VIPUntil = ""
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.events.LogWarning(ctx, model.EventCategoryUser, "role changed", targetID, "", map[string]any{
		"actor": actor.ID,
		"role":  role,
	})
	return updated, nil
}

// SetApproval toggles a developer's approval flag.
func (s *UserService) SetApproval(ctx context.Context, actor *model.User, targetID string, approved bool) (*model.User, error) {
	updated, err := s.mutate(ctx, targetID, func(u *model.User) (bool, error) {
		if u.Role != model.RoleDeveloper {
			return false, fmt.Errorf("%w: only developer accounts carry approval", ErrValidation)
		}
		if u.IsApproved == approved {
			return false, nil
		}
		u.IsApproved = approved
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.events.LogInfo(ctx, model.EventCategoryUser, "developer approval changed", targetID, "", map[string]any{
		"actor":    actor.ID,
		"approved": approved,
	})
	return updated, nil
}

// GrantVIP records a VIP grant. Accounts whose role already implies VIP
// access (admin, developer) keep their role and only gain the expiry
// marker; everyone else becomes VIP. A zero duration grants permanent
// access.
func (s *UserService) GrantVIP(ctx context.Context, actor *model.User, targetID string, d time.Duration) (*model.User, error) {
	until := model.VIPPermanent
	if d > 0 {
		until = time.Now().Add(d).Format(time.RFC3339)
	}

	updated, err := s.mutate(ctx, targetID, func(u *model.User) (bool, error) {
		if u.Role != model.RoleAdmin && u.Role != model.RoleDeveloper {
			u.Role = model.RoleVIP
		}
		u.VIPUntil = until
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.events.LogInfo(ctx, model.EventCategoryUser, "vip access granted", targetID, "", map[string]any{
		"actor": actor.ID,
		"until": until,
	})
	return updated, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *model.User, targetID string) error {
	if actor.ID == targetID {
		return fmt.Errorf("%w: cannot delete own account", ErrForbidden)
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		users, rev := store.Load(ctx, s.kv, store.KeyUsers, []model.User{})
		idx := findUserByID(users, targetID)
		if idx < 0 {
			return ErrNotFound
		}

		users = append(users[:idx], users[idx+1:]...)
		if _, err := store.Save(ctx, s.kv, store.KeyUsers, users, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return fmt.Errorf("persisting user delete: %w", err)
		}

		s.events.LogWarning(ctx, model.EventCategoryUser, "account deleted", targetID, "", map[string]any{"actor": actor.ID})
		return nil
	}
	return store.ErrRevisionConflict
}

// VerifyManagementPassword checks the secondary password that gates
// destructive admin panel operations.
func (s *UserService) VerifyManagementPassword(ctx context.Context, adminID, password string) (bool, error) {
	u, err := s.Get(ctx, adminID)
	if err != nil {
		return false, err
	}
	if u.ManagementPasswordHash == "" {
		return false, nil
	}
	return auth.CheckPassword(password, u.ManagementPasswordHash)
}

// ExpireVIPs demotes every account whose timed VIP grant has lapsed.
// The cron sweep calls this so expiry does not wait for the next login.
// Returns the number of demoted accounts.
func (s *UserService) ExpireVIPs(ctx context.Context, now time.Time) (int, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		users, rev := store.Load(ctx, s.kv, store.KeyUsers, []model.User{})

		demoted := 0
		for i := range users {
			if users[i].VIPExpired(now) {
				users[i].Role = model.RoleUser
				users[i].VIPUntil = ""
				users[i].UpdatedAt = now
				demoted++
			}
		}
		if demoted == 0 {
			return 0, nil
		}

		if _, err := store.Save(ctx, s.kv, store.KeyUsers, users, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return 0, fmt.Errorf("persisting vip sweep: %w", err)
		}

		s.events.LogInfo(ctx, model.EventCategoryUser, "vip expiry sweep demoted accounts", "", "", map[string]any{"count": demoted})
		return demoted, nil
	}
	return 0, store.ErrRevisionConflict
}
