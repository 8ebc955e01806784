// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nd-labs/eduspace/internal/cache"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/render"
	"github.com/nd-labs/eduspace/internal/store"
	"github.com/nd-labs/eduspace/internal/util"
)

// CourseService owns the catalog: listing, access gating and the
// studio's authoring writes.
type CourseService struct {
	kv     *store.KV
	cache  cache.Cache
	events *EventService
}

// NewCourseService creates a CourseService. The cache holds the
// published catalog snapshot and is invalidated on every write.
func NewCourseService(kv *store.KV, c cache.Cache, events *EventService) *CourseService {
	return &CourseService{kv: kv, cache: c, events: events}
}

// Catalog returns the published courses with their content stripped
// down to card metadata. PENDING courses never appear here, whoever
// asks.
func (s *CourseService) Catalog(ctx context.Context) []model.Course {
	if raw, err := s.cache.Get(ctx, cache.KeyCatalog); err == nil {
		var cached []model.Course
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached
		}
	}

	courses, _ := store.Load(ctx, s.kv, store.KeyCourses, []model.Course{})
	out := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if !c.Published() {
			continue
		}
		c.Lessons = nil
		c.Quizzes = nil
		out = append(out, c)
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, cache.KeyCatalog, raw, 0); err != nil {
			slog.Warn("catalog cache write failed", "error", err)
		}
	}
	return out
}

// Get returns one course for the given viewer. Unpublished courses are
// visible only to admins and their author. A VIP course viewed without
// VIP access comes back with lessons and quizzes stripped alongside
// ErrVIPRequired, so handlers can still render the paywall card.
func (s *CourseService) Get(ctx context.Context, id string, viewer *model.User) (*model.Course, error) {
	courses, _ := store.Load(ctx, s.kv, store.KeyCourses, []model.Course{})
	idx := findCourse(courses, id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	c := courses[idx]

	if !c.Published() {
		if viewer == nil || (!viewer.IsAdmin() && viewer.ID != c.AuthorID) {
			return nil, ErrNotFound
		}
	}

	if !c.AccessibleBy(viewer) {
		c.Lessons = nil
		c.Quizzes = nil
		return &c, ErrVIPRequired
	}
	return &c, nil
}

// Quiz resolves a single quiz on a course the viewer can open.
func (s *CourseService) Quiz(ctx context.Context, courseID, quizID string, viewer *model.User) (*model.Quiz, error) {
	c, err := s.Get(ctx, courseID, viewer)
	if err != nil {
		return nil, err
	}
	for i := range c.Quizzes {
		if c.Quizzes[i].ID == quizID {
			return &c.Quizzes[i], nil
		}
	}
	return nil, ErrNotFound
}

// Save creates or overwrites a course record wholesale, the way the
// studio submits it. Approved developers author PENDING courses; only
// admins write PUBLISHED ones. Lesson bodies are sanitized on the way
// in.
func (s *CourseService) Save(ctx context.Context, actor *model.User, course model.Course) (*model.Course, error) {
	if actor == nil || (!actor.IsAdmin() && actor.Role != model.RoleDeveloper) {
		return nil, ErrForbidden
	}
	if actor.PendingApproval() {
		return nil, fmt.Errorf("%w: developer account awaiting approval", ErrForbidden)
	}
	if err := validateCourse(&course); err != nil {
		return nil, err
	}

	if course.ID == "" {
		if slug := util.Slugify(course.Title); slug != "" {
			course.ID = slug + "-" + uuid.NewString()[:8]
		} else {
			course.ID = uuid.NewString()
		}
	}

	// Developers cannot self-publish.
	if !actor.IsAdmin() {
		course.Status = model.CourseStatusPending
	} else if course.Status == "" {
		course.Status = model.CourseStatusPublished
	}

	for i := range course.Lessons {
		course.Lessons[i].Content = render.SanitizeHTML(course.Lessons[i].Content)
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		courses, rev := store.Load(ctx, s.kv, store.KeyCourses, []model.Course{})
		idx := findCourse(courses, course.ID)
		if idx >= 0 {
			existing := courses[idx]
			if !actor.IsAdmin() && existing.AuthorID != actor.ID {
				return nil, ErrForbidden
			}
			course.AuthorID = existing.AuthorID
			courses[idx] = course
		} else {
			course.AuthorID = actor.ID
			courses = append(courses, course)
		}

		if _, err := store.Save(ctx, s.kv, store.KeyCourses, courses, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return nil, fmt.Errorf("persisting course: %w", err)
		}

		s.invalidate(ctx)
		s.events.LogInfo(ctx, model.EventCategoryCourse, "course saved", actor.ID, "", map[string]any{
			"courseId": course.ID,
			"status":   course.Status,
		})
		return &course, nil
	}
	return nil, store.ErrRevisionConflict
}

// SetStatus moves a course between PENDING and PUBLISHED. Admin only.
func (s *CourseService) SetStatus(ctx context.Context, actor *model.User, courseID, status string) (*model.Course, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if status != model.CourseStatusPending && status != model.CourseStatusPublished {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		courses, rev := store.Load(ctx, s.kv, store.KeyCourses, []model.Course{})
		idx := findCourse(courses, courseID)
		if idx < 0 {
			return nil, ErrNotFound
		}
		if courses[idx].Status == status {
			c := courses[idx]
			return &c, nil
		}
		courses[idx].Status = status

		if _, err := store.Save(ctx, s.kv, store.KeyCourses, courses, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return nil, fmt.Errorf("persisting status change: %w", err)
		}

		s.invalidate(ctx)
		s.events.LogInfo(ctx, model.EventCategoryCourse, "course status changed", actor.ID, "", map[string]any{
			"courseId": courseID,
			"status":   status,
		})
		c := courses[idx]
		return &c, nil
	}
	return nil, store.ErrRevisionConflict
}

// Delete removes a course. Admins may delete anything, developers only
// their own.
func (s *CourseService) Delete(ctx context.Context, actor *model.User, courseID string) error {
	if actor == nil {
		return ErrForbidden
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		courses, rev := store.Load(ctx, s.kv, store.KeyCourses, []model.Course{})
		idx := findCourse(courses, courseID)
		if idx < 0 {
			return ErrNotFound
		}
		if !actor.IsAdmin() && courses[idx].AuthorID != actor.ID {
			return ErrForbidden
		}

		courses = append(courses[:idx], courses[idx+1:]...)
		if _, err := store.Save(ctx, s.kv, store.KeyCourses, courses, rev); err != nil {
			if err == store.ErrRevisionConflict {
				continue
			}
			return fmt.Errorf("persisting course delete: %w", err)
		}

		s.invalidate(ctx)
		s.events.LogWarning(ctx, model.EventCategoryCourse, "course deleted", actor.ID, "", map[string]any{"courseId": courseID})
		return nil
	}
	return store.ErrRevisionConflict
}

func (s *CourseService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyCatalog); err != nil {
		slog.Warn("catalog cache invalidation failed", "error", err)
	}
}

func validateCourse(c *model.Course) error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: course title is required", ErrValidation)
	}
	for i := range c.Lessons {
		if c.Lessons[i].ID == "" {
			c.Lessons[i].ID = uuid.NewString()
		}
		if strings.TrimSpace(c.Lessons[i].Title) == "" {
			return fmt.Errorf("%w: lesson %d has no title", ErrValidation, i+1)
		}
	}
	for i := range c.Quizzes {
		q := &c.Quizzes[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if !model.IsValidQuizType(q.Type) {
			return fmt.Errorf("%w: quiz %d has unknown type %q", ErrValidation, i+1, q.Type)
		}
		switch q.Type {
		case model.QuizMultipleChoice:
			if len(q.Options) < 2 || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return fmt.Errorf("%w: quiz %d has an invalid answer key", ErrValidation, i+1)
			}
		case model.QuizTrueFalse:
			if q.CorrectIndex != 0 && q.CorrectIndex != 1 {
				return fmt.Errorf("%w: quiz %d has an invalid answer key", ErrValidation, i+1)
			}
		case model.QuizShortAnswer:
			if strings.TrimSpace(q.CorrectAnswer) == "" {
				return fmt.Errorf("%w: quiz %d has no answer key", ErrValidation, i+1)
			}
		}
	}
	return nil
}

func findCourse(courses []model.Course, id string) int {
	for i := range courses {
		if courses[i].ID == id {
			return i
		}
	}
	return -1
}
