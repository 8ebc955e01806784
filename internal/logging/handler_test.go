// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/store"
	"github.com/nd-labs/eduspace/internal/testutil"
)

func TestWarnRecordsMirroredToEventLog(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	inner := slog.NewTextHandler(io.Discard, nil)
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Info("routine info is not mirrored")
	logger.Warn("login failed for unknown account", "category", model.EventCategoryAuth, "email", "x@y.com")

	events, err := store.NewEvents(db).ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("mirrored %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Level != model.EventLevelWarning {
		t.Errorf("level = %s, want warning", ev.Level)
	}
	if ev.Category != model.EventCategoryAuth {
		t.Errorf("category = %s, want auth", ev.Category)
	}
	if ev.Metadata == "{}" {
		t.Error("attributes should be captured as metadata")
	}
}

func TestCategoryInference(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"login attempt blocked", model.EventCategoryAuth},
		{"course save rejected", model.EventCategoryCourse},
		{"user record missing", model.EventCategoryUser},
		{"settings sanitized", model.EventCategoryConfig},
		{"chat history truncated", model.EventCategoryChat},
		{"disk almost full", model.EventCategorySystem},
	}

	for _, tt := range tests {
		var r slog.Record
		r.Message = tt.msg
		if got := extractCategory(r); got != tt.want {
			t.Errorf("extractCategory(%q) = %s, want %s", tt.msg, got, tt.want)
		}
	}
}
