// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is an in-process Cache backed by sync.Map. It is the default
// backend when no Redis URL is configured.
type Memory struct {
	entries    sync.Map
	defaultTTL time.Duration
	maxItems   int
	stop       chan struct{}
	closed     atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryOptions configures a Memory cache.
type MemoryOptions struct {
	DefaultTTL      time.Duration
	MaxItems        int           // 0 = unlimited
	CleanupInterval time.Duration // 0 = no background sweep
}

// NewMemory creates an in-memory cache.
func NewMemory(opts MemoryOptions) *Memory {
	m := &Memory{
		defaultTTL: opts.DefaultTTL,
		maxItems:   opts.MaxItems,
		stop:       make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go m.sweep(opts.CleanupInterval)
	}
	return m
}

// Get retrieves a value. The returned slice is a copy.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	v, ok := m.entries.Load(key)
	if !ok {
		m.misses.Add(1)
		return nil, ErrMiss
	}
	e := v.(*memoryEntry)
	if time.Now().After(e.expiresAt) {
		m.entries.Delete(key)
		m.misses.Add(1)
		return nil, ErrMiss
	}
	m.hits.Add(1)
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = m.defaultTTL
	}
	if m.maxItems > 0 && m.count() >= m.maxItems {
		m.removeExpired()
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	m.entries.Store(key, &memoryEntry{value: buf, expiresAt: time.Now().Add(ttl)})
	m.sets.Add(1)
	return nil
}

// Delete removes a key.
func (m *Memory) Delete(_ context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.entries.Delete(key)
	return nil
}

// Clear removes all entries.
func (m *Memory) Clear(_ context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.entries.Range(func(key, _ any) bool {
		m.entries.Delete(key)
		return true
	})
	return nil
}

// Close stops the sweep goroutine. Subsequent calls are no-ops.
func (m *Memory) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		close(m.stop)
	}
	return nil
}

// Stats returns the hit/miss counters.
func (m *Memory) Stats() Stats {
	return Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Sets:   m.sets.Load(),
		Items:  m.count(),
	}
}

func (m *Memory) count() int {
	n := 0
	m.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (m *Memory) removeExpired() {
	now := time.Now()
	m.entries.Range(func(key, value any) bool {
		if now.After(value.(*memoryEntry).expiresAt) {
			m.entries.Delete(key)
		}
		return true
	})
}

func (m *Memory) sweep(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.removeExpired()
		case <-m.stop:
			return
		}
	}
}
