// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/nd-labs/eduspace/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "eduspace-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	kv := NewKV(db)

	want := []model.Suggestion{
		{ID: "s1", UserID: "u1", Type: model.SuggestionCourse, Content: "more Go", Status: model.SuggestionPending},
	}

	rev, err := Save(ctx, kv, KeySuggestions, want, 0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rev != 1 {
		t.Errorf("revision = %d, want 1", rev)
	}

	got, gotRev := Load(ctx, kv, KeySuggestions, []model.Suggestion(nil))
	if gotRev != 1 {
		t.Errorf("loaded revision = %d, want 1", gotRev)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestUserHashesSurviveRoundTrip(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	kv := NewKV(db)

	users := []model.User{{
		ID:                     "u1",
		Email:                  "an@eduspace.test",
		PasswordHash:           "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		ManagementPasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$bWdtdA",
		Role:                   model.RoleAdmin,
	}}
	if _, err := Save(ctx, kv, KeyUsers, users, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := Load(ctx, kv, KeyUsers, []model.User(nil))
	if len(got) != 1 {
		t.Fatalf("loaded %d users, want 1", len(got))
	}
	if got[0].PasswordHash != users[0].PasswordHash {
		t.Errorf("PasswordHash = %q after reload, want it preserved", got[0].PasswordHash)
	}
	if got[0].ManagementPasswordHash != users[0].ManagementPasswordHash {
		t.Errorf("ManagementPasswordHash = %q after reload, want it preserved", got[0].ManagementPasswordHash)
	}
}

func TestLoadMissingKeyYieldsDefault(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	kv := NewKV(db)

	def := model.DefaultSettings()
	got, rev := Load(ctx, kv, KeySettings, def)
	if rev != 0 {
		t.Errorf("revision = %d, want 0 for absent key", rev)
	}
	if got != def {
		t.Errorf("Load = %+v, want default %+v", got, def)
	}
}

func TestLoadCorruptPayloadYieldsDefault(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	kv := NewKV(db)

	// Simulate an interrupted write leaving a truncated payload.
	_, err := db.ExecContext(ctx,
		`INSERT INTO kv (key, value, revision, updated_at) VALUES (?, ?, 3, ?)`,
		KeySettings, `{"brandName": "Edu`, time.Now())
	if err != nil {
		t.Fatalf("inserting corrupt row: %v", err)
	}

	def := model.DefaultSettings()
	got, rev := Load(ctx, kv, KeySettings, def)
	if got != def {
		t.Errorf("corrupt payload should yield default, got %+v", got)
	}
	// The row's revision is kept so a subsequent Save can repair it.
	if rev != 3 {
		t.Errorf("revision = %d, want 3", rev)
	}

	if _, err := Save(ctx, kv, KeySettings, def, rev); err != nil {
		t.Fatalf("repair Save: %v", err)
	}
	repaired, _ := Load(ctx, kv, KeySettings, model.SiteSettings{})
	if repaired != def {
		t.Errorf("repaired value = %+v, want %+v", repaired, def)
	}
}

func TestSaveRevisionConflict(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	kv := NewKV(db)

	if _, err := Save(ctx, kv, KeyUsers, []model.User{{ID: "u1"}}, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Creating an existing key conflicts.
	if _, err := Save(ctx, kv, KeyUsers, []model.User{{ID: "u2"}}, 0); !errors.Is(err, ErrRevisionConflict) {
		t.Errorf("create over existing key: err = %v, want ErrRevisionConflict", err)
	}

	// Writing with a stale revision conflicts.
	if _, err := Save(ctx, kv, KeyUsers, []model.User{{ID: "u3"}}, 5); !errors.Is(err, ErrRevisionConflict) {
		t.Errorf("stale revision: err = %v, want ErrRevisionConflict", err)
	}

	// Writing with the current revision succeeds and bumps it.
	rev, err := Save(ctx, kv, KeyUsers, []model.User{{ID: "u4"}}, 1)
	if err != nil {
		t.Fatalf("Save with current revision: %v", err)
	}
	if rev != 2 {
		t.Errorf("revision = %d, want 2", rev)
	}
}

func TestPutLastWriteWins(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	kv := NewKV(db)
	key := ChatKey("u1")

	if err := Put(ctx, kv, key, []model.ChatSession{{ID: "a"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := Put(ctx, kv, key, []model.ChatSession{{ID: "b"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, _ := Load(ctx, kv, key, []model.ChatSession(nil))
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Load = %+v, want the later write", got)
	}
}

func TestDelete(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	kv := NewKV(db)
	key := GuestChatKey("tok")

	if err := Put(ctx, kv, key, []model.ChatSession{{ID: "a"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := kv.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, rev := Load(ctx, kv, key, []model.ChatSession(nil)); rev != 0 {
		t.Errorf("revision = %d after delete, want 0", rev)
	}

	// Deleting an absent key is not an error.
	if err := kv.Delete(ctx, key); err != nil {
		t.Errorf("Delete of absent key: %v", err)
	}
}

func TestSeed(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	kv := NewKV(db)

	if err := Seed(ctx, kv); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	users, _ := Load(ctx, kv, KeyUsers, []model.User(nil))
	if len(users) != 2 {
		t.Fatalf("seeded %d users, want 2", len(users))
	}
	for _, u := range users {
		if u.Role != model.RoleAdmin {
			t.Errorf("seed user %s role = %s, want ADMIN", u.Email, u.Role)
		}
		if u.PasswordHash == "" || u.PasswordHash == seedAdmin1Password {
			t.Errorf("seed user %s should carry a hashed password", u.Email)
		}
	}

	courses, _ := Load(ctx, kv, KeyCourses, []model.Course(nil))
	if len(courses) != 2 {
		t.Fatalf("seeded %d courses, want 2", len(courses))
	}
	if !courses[1].IsVIP {
		t.Error("second seed course should be VIP-gated")
	}

	// Seeding again is a no-op.
	if err := Seed(ctx, kv); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	again, _ := Load(ctx, kv, KeyUsers, []model.User(nil))
	if len(again) != 2 {
		t.Errorf("second seed changed user count to %d", len(again))
	}
}

func TestEvents(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	events := NewEvents(db)

	id, err := events.CreateEvent(ctx, CreateEventParams{
		Level:    model.EventLevelWarning,
		Category: model.EventCategoryAuth,
		Message:  "admin allow-list override applied",
		UserID:   "admin-1",
		Metadata: `{"email":"a@x.com"}`,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if id == 0 {
		t.Error("event id should not be 0")
	}

	list, err := events.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListRecent returned %d events, want 1", len(list))
	}
	if list[0].UserID != "admin-1" || list[0].Category != model.EventCategoryAuth {
		t.Errorf("event = %+v", list[0])
	}

	if err := events.DeleteOldEvents(ctx, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}
	list, err = events.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("events remaining after cleanup: %d", len(list))
	}
}
