// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nd-labs/eduspace/internal/model"
)

func sampleCourse(vip bool) model.Course {
	return model.Course{
		Title:       "Lập Trình React Cơ Bản",
		Description: "React từ con số 0",
		IsVIP:       vip,
		Lessons: []model.Lesson{
			{Title: "Giới thiệu", Content: "<p>JSX là gì?</p>"},
		},
		Quizzes: []model.Quiz{
			{Type: model.QuizMultipleChoice, Question: "JSX?", Options: []string{"a", "b"}, CorrectIndex: 1},
		},
	}
}

func TestCatalogHidesPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	dev := f.register(t, "dev@example.com", "secret123", "Dev")
	_, err := f.users().SetRole(ctx, admin, dev.ID, model.RoleDeveloper)
	require.NoError(t, err)
	dev, err = f.users().Get(ctx, dev.ID)
	require.NoError(t, err)
	_, err = f.users().SetApproval(ctx, admin, dev.ID, true)
	require.NoError(t, err)
	dev, err = f.users().Get(ctx, dev.ID)
	require.NoError(t, err)

	published, err := f.courses().Save(ctx, admin, sampleCourse(false))
	require.NoError(t, err)
	pending, err := f.courses().Save(ctx, dev, sampleCourse(true))
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusPending, pending.Status)

	catalog := f.courses().Catalog(ctx)
	require.Len(t, catalog, 1)
	assert.Equal(t, published.ID, catalog[0].ID)
	// Card metadata only.
	assert.Nil(t, catalog[0].Lessons)
	assert.Nil(t, catalog[0].Quizzes)
}

func TestCatalogCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")

	assert.Empty(t, f.courses().Catalog(ctx)) // primes the cache

	_, err := f.courses().Save(ctx, admin, sampleCourse(false))
	require.NoError(t, err)

	assert.Len(t, f.courses().Catalog(ctx), 1)
}

func TestGetVIPGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	student := f.register(t, "student@example.com", "secret123", "Student")

	course, err := f.courses().Save(ctx, admin, sampleCourse(true))
	require.NoError(t, err)

	// Anonymous and plain users get the stripped record plus the
	// sentinel, so the paywall card can still render.
	got, err := f.courses().Get(ctx, course.ID, nil)
	assert.ErrorIs(t, err, ErrVIPRequired)
	require.NotNil(t, got)
	assert.Empty(t, got.Lessons)
	assert.Empty(t, got.Quizzes)
	assert.Equal(t, course.Title, got.Title)

	got, err = f.courses().Get(ctx, course.ID, student)
	assert.ErrorIs(t, err, ErrVIPRequired)
	assert.Empty(t, got.Lessons)

	// A VIP grant opens it up.
	_, err = f.users().GrantVIP(ctx, admin, student.ID, 0)
	require.NoError(t, err)
	student, err = f.users().Get(ctx, student.ID)
	require.NoError(t, err)

	got, err = f.courses().Get(ctx, course.ID, student)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Lessons)
}

func TestGetPendingVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	student := f.register(t, "student@example.com", "secret123", "Student")

	course, err := f.courses().Save(ctx, admin, sampleCourse(false))
	require.NoError(t, err)
	_, err = f.courses().SetStatus(ctx, admin, course.ID, model.CourseStatusPending)
	require.NoError(t, err)

	_, err = f.courses().Get(ctx, course.ID, student)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.courses().Get(ctx, course.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	// The author and admins still see it.
	_, err = f.courses().Get(ctx, course.ID, admin)
	require.NoError(t, err)
}

func TestSaveSanitizesLessonContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")

	c := sampleCourse(false)
	c.Lessons[0].Content = `<p>ok</p><script>alert(1)</script>`

	saved, err := f.courses().Save(ctx, admin, c)
	require.NoError(t, err)
	assert.NotContains(t, saved.Lessons[0].Content, "<script>")
	assert.Contains(t, saved.Lessons[0].Content, "<p>ok</p>")
}

func TestSaveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	student := f.register(t, "student@example.com", "secret123", "Student")

	// Students cannot author at all.
	_, err := f.courses().Save(ctx, student, sampleCourse(false))
	assert.ErrorIs(t, err, ErrForbidden)

	c := sampleCourse(false)
	c.Title = " "
	_, err = f.courses().Save(ctx, admin, c)
	assert.ErrorIs(t, err, ErrValidation)

	c = sampleCourse(false)
	c.Quizzes[0].CorrectIndex = 7
	_, err = f.courses().Save(ctx, admin, c)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUnapprovedDeveloperCannotAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	dev := f.register(t, "dev@example.com", "secret123", "Dev")
	_, err := f.users().SetRole(ctx, admin, dev.ID, model.RoleDeveloper)
	require.NoError(t, err)
	dev, err = f.users().Get(ctx, dev.ID)
	require.NoError(t, err)

	_, err = f.courses().Save(ctx, dev, sampleCourse(false))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteCourseOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")
	dev := f.register(t, "dev@example.com", "secret123", "Dev")
	_, err := f.users().SetRole(ctx, admin, dev.ID, model.RoleDeveloper)
	require.NoError(t, err)
	_, err = f.users().SetApproval(ctx, admin, dev.ID, true)
	require.NoError(t, err)
	dev, err = f.users().Get(ctx, dev.ID)
	require.NoError(t, err)

	adminCourse, err := f.courses().Save(ctx, admin, sampleCourse(false))
	require.NoError(t, err)
	devCourse, err := f.courses().Save(ctx, dev, sampleCourse(false))
	require.NoError(t, err)

	assert.ErrorIs(t, f.courses().Delete(ctx, dev, adminCourse.ID), ErrForbidden)
	require.NoError(t, f.courses().Delete(ctx, dev, devCourse.ID))
	require.NoError(t, f.courses().Delete(ctx, admin, adminCourse.ID))
}

func TestQuizLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "boss@eduspace.test", "secret123", "Boss")

	course, err := f.courses().Save(ctx, admin, sampleCourse(false))
	require.NoError(t, err)

	q, err := f.courses().Quiz(ctx, course.ID, course.Quizzes[0].ID, admin)
	require.NoError(t, err)
	assert.Equal(t, model.QuizMultipleChoice, q.Type)

	_, err = f.courses().Quiz(ctx, course.ID, "nope", admin)
	assert.ErrorIs(t, err, ErrNotFound)
}
