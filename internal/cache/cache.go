// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching layer used to keep hot read paths
// (site settings, published catalog snapshots) off the database.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all backends implement. Values are opaque
// byte slices so memory and Redis backends behave identically.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key, or ErrMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear drops every entry owned by this cache.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Stats describes hit/miss counters for backends that track them.
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
	Items  int
}

// StatsProvider is implemented by backends that expose counters.
type StatsProvider interface {
	Stats() Stats
}

// Error is a sentinel error type for cache operations.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrMiss means the key was not found or had expired.
	ErrMiss Error = "cache miss"

	// ErrClosed means the cache was closed before the call.
	ErrClosed Error = "cache closed"
)

// Well-known keys shared by the services that populate them.
const (
	KeySettings = "settings"
	KeyCatalog  = "catalog"
)
