// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the application's business logic on top of
// the kv store: accounts, catalog, suggestions, settings and chat.
package service

import "errors"

// Sentinel errors shared by the services. Handlers translate these into
// HTTP status codes.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrVIPRequired        = errors.New("vip access required")
	ErrValidation         = errors.New("validation failed")
)

// maxWriteAttempts bounds optimistic-concurrency retries on the shared
// collections. Contention on a single-box deployment is rare, so a
// handful of attempts is plenty.
const maxWriteAttempts = 5
