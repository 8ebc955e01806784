// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/nd-labs/eduspace/internal/ai"
	"github.com/nd-labs/eduspace/internal/cache"
	"github.com/nd-labs/eduspace/internal/config"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/store"
	"github.com/nd-labs/eduspace/internal/testutil"
)

// fixture wires the services over a throwaway database.
type fixture struct {
	db     *sql.DB
	kv     *store.KV
	cache  cache.Cache
	events *EventService
	cfg    *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	c, err := cache.New(cache.Options{})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	return &fixture{
		db:     db,
		kv:     store.NewKV(db),
		cache:  c,
		events: NewEventService(db),
		cfg:    &config.Config{AdminEmails: []string{"boss@eduspace.test"}},
	}
}

func (f *fixture) auth() *AuthService {
	return NewAuthService(f.kv, f.cfg, f.events)
}

func (f *fixture) users() *UserService {
	return NewUserService(f.kv, f.events)
}

func (f *fixture) courses() *CourseService {
	return NewCourseService(f.kv, f.cache, f.events)
}

func (f *fixture) suggestions() *SuggestionService {
	return NewSuggestionService(f.kv, f.events)
}

func (f *fixture) settings() *SettingsService {
	return NewSettingsService(f.kv, f.cache, f.events)
}

// register is a shortcut that fails the test on error.
func (f *fixture) register(t *testing.T, email, password, name string) *model.User {
	t.Helper()
	u, err := f.auth().Register(context.Background(), email, password, name)
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return u
}

// chatStub is a canned ai.Assistant for chat tests.
type chatStub struct {
	reply string
	err   error
}

func (s *chatStub) Chat(context.Context, []model.ChatMessage, string) (string, error) {
	return s.reply, s.err
}

func (s *chatStub) GradeEssay(context.Context, string, string, string) (ai.EssayGrade, error) {
	return ai.EssayGrade{}, s.err
}

func (s *chatStub) GenerateImage(context.Context, string) ([]byte, error) {
	return nil, s.err
}

func (s *chatStub) Enabled() bool { return true }
