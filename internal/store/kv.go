// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Storage keys, one JSON blob per key.
const (
	KeyUsers       = "users"
	KeyCourses     = "courses"
	KeySuggestions = "suggestions"
	KeySettings    = "site_settings"
)

// ChatKey returns the storage key for a user's chat history.
func ChatKey(userID string) string {
	return "chat:" + userID
}

// GuestChatKey returns the storage key for an anonymous visitor's chat
// history, scoped by session token.
func GuestChatKey(sessionToken string) string {
	return "chat:guest:" + sessionToken
}

// ErrRevisionConflict is returned by Save when the stored revision no
// longer matches the one the caller read. Two concurrent read-modify-write
// cycles surface here instead of silently losing the first write.
var ErrRevisionConflict = errors.New("store: revision conflict")

// KV is the flat key-value blob store.
type KV struct {
	db *sql.DB
}

// NewKV creates a KV store over an open database.
func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// DB exposes the underlying handle for components that share the database
// (session store, event log).
func (kv *KV) DB() *sql.DB {
	return kv.db
}

// getRaw fetches the serialized value and revision for a key.
func (kv *KV) getRaw(ctx context.Context, key string) (value string, revision int64, found bool, err error) {
	err = kv.db.QueryRowContext(ctx,
		`SELECT value, revision FROM kv WHERE key = ?`, key,
	).Scan(&value, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("reading key %q: %w", key, err)
	}
	return value, revision, true, nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (kv *KV) Delete(ctx context.Context, key string) error {
	if _, err := kv.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	return nil
}

// Load reads the blob stored under key into a value of type T. An absent
// key yields the supplied default with revision 0. A stored payload that
// cannot be deserialized also yields the default, but keeps the row's
// revision so the caller can overwrite it; the failure is logged rather
// than surfaced, per the store's best-effort recovery policy.
func Load[T any](ctx context.Context, kv *KV, key string, def T) (T, int64) {
	raw, revision, found, err := kv.getRaw(ctx, key)
	if err != nil {
		slog.Warn("kv read failed, using default", "key", key, "error", err)
		return def, 0
	}
	if !found {
		return def, 0
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		slog.Warn("kv payload corrupt, using default", "key", key, "revision", revision, "error", err)
		return def, revision
	}
	return v, revision
}

// Save serializes v and overwrites the blob under key, guarded by the
// revision the caller read: expectRev 0 creates the key, any other value
// must match the stored revision. Returns the new revision, or
// ErrRevisionConflict when another writer got there first.
func Save[T any](ctx context.Context, kv *KV, key string, v T, expectRev int64) (int64, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("serializing key %q: %w", key, err)
	}
	now := time.Now()

	if expectRev == 0 {
		res, err := kv.db.ExecContext(ctx,
			`INSERT INTO kv (key, value, revision, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT(key) DO NOTHING`,
			key, string(payload), now)
		if err != nil {
			return 0, fmt.Errorf("creating key %q: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("creating key %q: %w", key, err)
		}
		if n == 0 {
			return 0, ErrRevisionConflict
		}
		return 1, nil
	}

	res, err := kv.db.ExecContext(ctx,
		`UPDATE kv SET value = ?, revision = revision + 1, updated_at = ?
		 WHERE key = ? AND revision = ?`,
		string(payload), now, key, expectRev)
	if err != nil {
		return 0, fmt.Errorf("writing key %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("writing key %q: %w", key, err)
	}
	if n == 0 {
		return 0, ErrRevisionConflict
	}
	return expectRev + 1, nil
}

// Put serializes v and overwrites the blob under key unconditionally,
// last write wins. Chat history keeps this behavior; the shared
// collections go through Save.
func Put[T any](ctx context.Context, kv *KV, key string, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializing key %q: %w", key, err)
	}
	_, err = kv.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, revision, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   revision = kv.revision + 1,
		   updated_at = excluded.updated_at`,
		key, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}
