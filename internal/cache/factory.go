// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "time"

// Options selects and configures a backend. A non-empty RedisURL
// selects the Redis backend, otherwise an in-memory cache is used.
type Options struct {
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
	MaxItems   int // memory backend only, 0 = unlimited
}

// New builds a Cache from Options.
func New(opts Options) (Cache, error) {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = time.Hour
	}
	if opts.RedisURL != "" {
		return NewRedis(RedisOptions{
			URL:        opts.RedisURL,
			Prefix:     opts.Prefix,
			DefaultTTL: opts.DefaultTTL,
		})
	}
	return NewMemory(MemoryOptions{
		DefaultTTL:      opts.DefaultTTL,
		MaxItems:        opts.MaxItems,
		CleanupInterval: time.Minute,
	}), nil
}
