// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package grader evaluates quiz submissions. Objective question types
// are graded locally, essays are delegated to the AI assistant.
package grader

import (
	"context"
	"fmt"
	"strings"

	"github.com/nd-labs/eduspace/internal/ai"
	"github.com/nd-labs/eduspace/internal/model"
)

// Result is a graded submission for a single quiz question.
type Result struct {
	QuizID   string  `json:"quizId"`
	Correct  bool    `json:"correct"`
	Score    float64 `json:"score"`    // 0..10, objective questions score 0 or 10
	Feedback string  `json:"feedback"` // essay feedback, empty for objective types
}

// Grader grades answers against quiz definitions.
type Grader struct {
	assistant ai.Assistant
}

// New creates a Grader. The assistant may be disabled, in which case
// essay grading reports the assistant's unavailability.
func New(assistant ai.Assistant) *Grader {
	return &Grader{assistant: assistant}
}

// passScore is the minimum essay score counted as correct.
const passScore = 5.0

// GradeChoice grades a multiple choice or true/false answer by option
// index.
func (g *Grader) GradeChoice(quiz model.Quiz, selected int) Result {
	correct := selected == quiz.CorrectIndex
	return Result{QuizID: quiz.ID, Correct: correct, Score: objectiveScore(correct)}
}

// GradeShortAnswer grades a short text answer. Comparison trims
// surrounding whitespace but is otherwise exact, matching how answer
// keys are authored in the studio.
func (g *Grader) GradeShortAnswer(quiz model.Quiz, answer string) Result {
	correct := strings.TrimSpace(answer) == strings.TrimSpace(quiz.CorrectAnswer)
	return Result{QuizID: quiz.ID, Correct: correct, Score: objectiveScore(correct)}
}

// GradeEssay asks the AI assistant to grade a free-form answer. The
// quiz explanation doubles as the grading rubric when present.
func (g *Grader) GradeEssay(ctx context.Context, quiz model.Quiz, answer string) (Result, error) {
	grade, err := g.assistant.GradeEssay(ctx, quiz.Question, quiz.Explanation, answer)
	if err != nil {
		return Result{}, fmt.Errorf("grade essay %s: %w", quiz.ID, err)
	}
	return Result{
		QuizID:   quiz.ID,
		Correct:  grade.Score >= passScore,
		Score:    grade.Score,
		Feedback: grade.Feedback,
	}, nil
}

// Grade dispatches on the quiz type. Choice answers arrive as an
// option index, text answers as a string.
func (g *Grader) Grade(ctx context.Context, quiz model.Quiz, selected int, answer string) (Result, error) {
	switch quiz.Type {
	case model.QuizMultipleChoice, model.QuizTrueFalse:
		return g.GradeChoice(quiz, selected), nil
	case model.QuizShortAnswer:
		return g.GradeShortAnswer(quiz, answer), nil
	case model.QuizEssay:
		return g.GradeEssay(ctx, quiz, answer)
	default:
		return Result{}, fmt.Errorf("unknown quiz type %q", quiz.Type)
	}
}

func objectiveScore(correct bool) float64 {
	if correct {
		return 10
	}
	return 0
}
