// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nd-labs/eduspace/internal/model"
)

// Events provides access to the audit event table.
type Events struct {
	db *sql.DB
}

// NewEvents creates an Events store over an open database.
func NewEvents(db *sql.DB) *Events {
	return &Events{db: db}
}

// CreateEventParams are the fields of a new audit event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    string
	IPAddress string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an audit event row.
func (e *Events) CreateEvent(ctx context.Context, p CreateEventParams) (int64, error) {
	if p.Metadata == "" {
		p.Metadata = "{}"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	var userID sql.NullString
	if p.UserID != "" {
		userID = sql.NullString{String: p.UserID, Valid: true}
	}

	res, err := e.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, user_id, ip_address, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Level, p.Category, p.Message, userID, p.IPAddress, p.Metadata, p.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("creating event: %w", err)
	}
	return res.LastInsertId()
}

// ListRecent returns up to limit events, newest first.
func (e *Events) ListRecent(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := e.db.QueryContext(ctx,
		`SELECT id, level, category, message, user_id, ip_address, metadata, created_at
		 FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var userID sql.NullString
		if err := rows.Scan(&ev.ID, &ev.Level, &ev.Category, &ev.Message, &userID, &ev.IPAddress, &ev.Metadata, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.UserID = userID.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DeleteOldEvents removes events recorded before the cutoff.
func (e *Events) DeleteOldEvents(ctx context.Context, cutoff time.Time) error {
	if _, err := e.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("deleting old events: %w", err)
	}
	return nil
}
