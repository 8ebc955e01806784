// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nd-labs/eduspace/internal/grader"
	"github.com/nd-labs/eduspace/internal/middleware"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/service"
)

// CourseHandler serves the public catalog, course detail and quiz
// grading endpoints.
type CourseHandler struct {
	courses *service.CourseService
	grader  *grader.Grader
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(courses *service.CourseService, g *grader.Grader) *CourseHandler {
	return &CourseHandler{courses: courses, grader: g}
}

// List handles GET /api/courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSONSuccess(w, map[string]any{"courses": h.courses.Catalog(r.Context())})
}

// Get handles GET /api/courses/{courseID}. A VIP course without VIP
// access returns the stripped record plus a vipRequired marker so the
// client renders the paywall instead of a hard error page.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.UserFromContext(r.Context())
	course, err := h.courses.Get(r.Context(), chi.URLParam(r, "courseID"), viewer)
	if err != nil {
		if errors.Is(err, service.ErrVIPRequired) {
			writeJSONSuccessStatus(w, http.StatusForbidden, map[string]any{"course": course, "vipRequired": true})
			return
		}
		writeServiceError(w, err)
		return
	}
	// Admins and the author see the full record for editing; everyone
	// else gets the quizzes without their answer keys.
	if viewer == nil || (!viewer.IsAdmin() && viewer.ID != course.AuthorID) {
		course.RedactAnswerKeys()
	}
	writeJSONSuccess(w, map[string]any{"course": course})
}

type gradeRequest struct {
	QuizID        string `json:"quizId"`
	SelectedIndex int    `json:"selectedIndex"`
	Answer        string `json:"answer"`
}

// Grade handles POST /api/courses/{courseID}/grade. Objective answers
// are graded locally; essays go to the AI and surface a 503 when the
// assistant is down, leaving the submission ungraded.
func (h *CourseHandler) Grade(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.UserFromContext(r.Context())

	var req gradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.courses.Quiz(r.Context(), chi.URLParam(r, "courseID"), req.QuizID, viewer)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.grader.Grade(r.Context(), *quiz, req.SelectedIndex, req.Answer)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := map[string]any{"result": result}
	// The answer key ships only after grading, for the review screen.
	if quiz.Type != model.QuizEssay && quiz.Explanation != "" {
		resp["explanation"] = quiz.Explanation
	}
	writeJSONSuccess(w, resp)
}
