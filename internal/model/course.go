// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Course publication states.
const (
	CourseStatusPending   = "PENDING"
	CourseStatusPublished = "PUBLISHED"
)

// Quiz types.
const (
	QuizMultipleChoice = "MULTIPLE_CHOICE"
	QuizTrueFalse      = "TRUE_FALSE"
	QuizShortAnswer    = "SHORT_ANSWER"
	QuizEssay          = "ESSAY"
)

// Course is a content record. Lessons and quizzes are owned by the course
// and have no identity outside it; ordering is array position.
type Course struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	IsVIP       bool     `json:"isVip"`
	Lessons     []Lesson `json:"lessons"`
	Quizzes     []Quiz   `json:"quizzes"`
	AuthorID    string   `json:"authorId"`
	Status      string   `json:"status"`
}

// Lesson is a single unit of course content.
type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	VideoURL string `json:"videoUrl"`
	Content  string `json:"content"`
	Summary  string `json:"summary,omitempty"`
}

// Quiz is a question attached to a course. CorrectIndex is used by the
// choice types, CorrectAnswer by SHORT_ANSWER. Explanation doubles as the
// grading rubric for ESSAY questions.
type Quiz struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectIndex  int      `json:"correctIndex,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Published reports whether the course belongs in the public catalog.
func (c *Course) Published() bool {
	return c.Status == CourseStatusPublished
}

// RedactAnswerKeys clears the grading fields from every quiz. Learner
// responses carry questions only; the key material stays server-side
// until the grade endpoint runs.
func (c *Course) RedactAnswerKeys() {
	for i := range c.Quizzes {
		c.Quizzes[i].CorrectIndex = 0
		c.Quizzes[i].CorrectAnswer = ""
		c.Quizzes[i].Explanation = ""
	}
}

// AccessibleBy reports whether the given session user may open the course
// content. Non-VIP courses are open to everyone; VIP courses require a
// role that carries VIP access.
func (c *Course) AccessibleBy(u *User) bool {
	if !c.IsVIP {
		return true
	}
	return u.HasVIPAccess()
}

// IsValidQuizType reports whether t is a known quiz type.
func IsValidQuizType(t string) bool {
	switch t {
	case QuizMultipleChoice, QuizTrueFalse, QuizShortAnswer, QuizEssay:
		return true
	}
	return false
}
