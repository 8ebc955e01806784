// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Course, Suggestion and site settings.
package model

import "time"

// User roles.
const (
	RoleAdmin     = "ADMIN"
	RoleDeveloper = "DEVELOPER"
	RoleVIP       = "VIP"
	RoleUser      = "USER"
)

// VIPPermanent marks a VIP grant that never expires.
const VIPPermanent = "PERMANENT"

// User represents a platform account as stored. The credential hashes
// are part of the persisted record; anything leaving the API goes
// through Public instead.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
	Avatar       string `json:"avatar,omitempty"`

	// IsApproved is meaningful only for DEVELOPER accounts: a developer
	// is created (or demoted into the role) unapproved and must be
	// approved by an admin before developer routes open up.
	IsApproved bool `json:"isApproved,omitempty"`

	// VIPUntil is either VIPPermanent or an RFC 3339 timestamp. Empty
	// means the account has no explicit VIP grant recorded.
	VIPUntil string `json:"vipUntil,omitempty"`

	// ManagementPasswordHash gates destructive admin panel operations.
	ManagementPasswordHash string `json:"managementPasswordHash,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicUser is the API projection of a User. Credential hashes never
// appear here.
type PublicUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Role       string    `json:"role"`
	Avatar     string    `json:"avatar,omitempty"`
	IsApproved bool      `json:"isApproved,omitempty"`
	VIPUntil   string    `json:"vipUntil,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Public returns the response view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Avatar:     u.Avatar,
		IsApproved: u.IsApproved,
		VIPUntil:   u.VIPUntil,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsValidRole reports whether role is one of the four known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDeveloper, RoleVIP, RoleUser:
		return true
	}
	return false
}

// HasVIPAccess reports whether the user may open VIP-gated course content.
// Admins and developers carry the privilege implicitly.
func (u *User) HasVIPAccess() bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleAdmin, RoleDeveloper, RoleVIP:
		return true
	}
	return false
}

// VIPExpired reports whether a VIP grant has lapsed as of now.
// Permanent grants and grants without a recorded expiry never lapse.
func (u *User) VIPExpired(now time.Time) bool {
	if u.Role != RoleVIP || u.VIPUntil == "" || u.VIPUntil == VIPPermanent {
		return false
	}
	until, err := time.Parse(time.RFC3339, u.VIPUntil)
	if err != nil {
		// An unreadable expiry is treated as lapsed rather than as a
		// permanent grant.
		return true
	}
	return until.Before(now)
}

// PendingApproval reports whether the user is a developer still waiting
// for admin approval.
func (u *User) PendingApproval() bool {
	return u != nil && u.Role == RoleDeveloper && !u.IsApproved
}
