// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package grader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nd-labs/eduspace/internal/ai"
	"github.com/nd-labs/eduspace/internal/model"
)

// stubAssistant returns canned grades without touching the network.
type stubAssistant struct {
	grade ai.EssayGrade
	err   error
}

func (s *stubAssistant) Chat(context.Context, []model.ChatMessage, string) (string, error) {
	return "", nil
}

func (s *stubAssistant) GradeEssay(context.Context, string, string, string) (ai.EssayGrade, error) {
	return s.grade, s.err
}

func (s *stubAssistant) GenerateImage(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (s *stubAssistant) Enabled() bool { return true }

func TestGradeChoice(t *testing.T) {
	g := New(&stubAssistant{})
	quiz := model.Quiz{ID: "q1", Type: model.QuizMultipleChoice, CorrectIndex: 2}

	res := g.GradeChoice(quiz, 2)
	assert.True(t, res.Correct)
	assert.Equal(t, 10.0, res.Score)

	res = g.GradeChoice(quiz, 0)
	assert.False(t, res.Correct)
	assert.Equal(t, 0.0, res.Score)
}

func TestGradeShortAnswerTrimsWhitespace(t *testing.T) {
	g := New(&stubAssistant{})
	quiz := model.Quiz{ID: "q2", Type: model.QuizShortAnswer, CorrectAnswer: "useEffect"}

	assert.True(t, g.GradeShortAnswer(quiz, "  useEffect  ").Correct)
	assert.False(t, g.GradeShortAnswer(quiz, "useeffect").Correct)
	assert.False(t, g.GradeShortAnswer(quiz, "").Correct)
}

func TestGradeEssayDelegates(t *testing.T) {
	g := New(&stubAssistant{grade: ai.EssayGrade{Score: 7.5, Feedback: "solid reasoning"}})
	quiz := model.Quiz{ID: "q3", Type: model.QuizEssay, Question: "Explain closures"}

	res, err := g.GradeEssay(context.Background(), quiz, "a closure captures...")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 7.5, res.Score)
	assert.Equal(t, "solid reasoning", res.Feedback)
}

func TestGradeEssayBelowPassLine(t *testing.T) {
	g := New(&stubAssistant{grade: ai.EssayGrade{Score: 3, Feedback: "off topic"}})
	quiz := model.Quiz{ID: "q3", Type: model.QuizEssay}

	res, err := g.GradeEssay(context.Background(), quiz, "dunno")
	require.NoError(t, err)
	assert.False(t, res.Correct)
}

func TestGradeEssayUnavailable(t *testing.T) {
	g := New(&stubAssistant{err: ai.ErrUnavailable})
	quiz := model.Quiz{ID: "q3", Type: model.QuizEssay}

	_, err := g.GradeEssay(context.Background(), quiz, "anything")
	assert.ErrorIs(t, err, ai.ErrUnavailable)
}

func TestGradeDispatch(t *testing.T) {
	g := New(&stubAssistant{grade: ai.EssayGrade{Score: 10}})
	ctx := context.Background()

	res, err := g.Grade(ctx, model.Quiz{Type: model.QuizTrueFalse, CorrectIndex: 1}, 1, "")
	require.NoError(t, err)
	assert.True(t, res.Correct)

	res, err = g.Grade(ctx, model.Quiz{Type: model.QuizShortAnswer, CorrectAnswer: "x"}, 0, "x")
	require.NoError(t, err)
	assert.True(t, res.Correct)

	_, err = g.Grade(ctx, model.Quiz{Type: "RIDDLE"}, 0, "")
	assert.Error(t, err)
}
