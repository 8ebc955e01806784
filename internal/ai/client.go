// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ai wraps the OpenAI API behind the three operations the
// platform needs: tutoring chat, essay grading and thumbnail art.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/nd-labs/eduspace/internal/model"
)

// ErrUnavailable is returned when no API key is configured or the
// upstream call failed. Callers surface it as a recoverable condition,
// never as a crash.
var ErrUnavailable = errors.New("ai service unavailable")

// EssayGrade is the structured verdict for an essay answer.
type EssayGrade struct {
	Score    float64 `json:"score"`    // 0..10
	Feedback string  `json:"feedback"` // short justification for the student
}

// Assistant is the surface services depend on, so tests can stub the
// upstream API.
type Assistant interface {
	Chat(ctx context.Context, history []model.ChatMessage, message string) (string, error)
	GradeEssay(ctx context.Context, question, rubric, answer string) (EssayGrade, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	Enabled() bool
}

// Client implements Assistant against the OpenAI API.
type Client struct {
	api        openai.Client
	chatModel  shared.ChatModel
	imageModel openai.ImageModel
	enabled    bool
}

// systemPrompt frames the tutoring persona. Replies come back as
// markdown and are rendered client-side.
const systemPrompt = "You are the EduSpace learning assistant. Help students " +
	"understand programming course material. Answer in the language the " +
	"student writes in, prefer Vietnamese when unsure. Use markdown. Be " +
	"concise and never invent course content that was not asked about."

// New builds a Client. An empty apiKey yields a disabled client whose
// operations all return ErrUnavailable.
func New(apiKey, chatModel, imageModel string) *Client {
	c := &Client{
		chatModel:  shared.ChatModel(chatModel),
		imageModel: openai.ImageModel(imageModel),
		enabled:    apiKey != "",
	}
	if c.enabled {
		c.api = openai.NewClient(option.WithAPIKey(apiKey))
	}
	return c
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool { return c.enabled }

// Chat sends the conversation history plus the new message and returns
// the assistant reply.
func (c *Client) Chat(ctx context.Context, history []model.ChatMessage, message string) (string, error) {
	if !c.enabled {
		return "", ErrUnavailable
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		if m.Role == model.ChatRoleUser {
			msgs = append(msgs, openai.UserMessage(m.Text))
		} else {
			msgs = append(msgs, openai.AssistantMessage(m.Text))
		}
	}
	msgs = append(msgs, openai.UserMessage(message))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.chatModel,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// essayGradeSchema constrains the model to the EssayGrade shape.
var essayGradeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"score": map[string]any{
			"type":        "number",
			"description": "Grade from 0 to 10",
		},
		"feedback": map[string]any{
			"type":        "string",
			"description": "Short feedback for the student",
		},
	},
	"required":             []string{"score", "feedback"},
	"additionalProperties": false,
}

// GradeEssay asks the model to grade an essay answer against the
// question and optional rubric, returning a structured score.
func (c *Client) GradeEssay(ctx context.Context, question, rubric, answer string) (EssayGrade, error) {
	if !c.enabled {
		return EssayGrade{}, ErrUnavailable
	}

	prompt := "Grade the student's essay answer on a 0-10 scale.\n\nQuestion: " + question
	if rubric != "" {
		prompt += "\n\nGrading guidance: " + rubric
	}
	prompt += "\n\nStudent answer: " + answer

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a strict but fair grader for a programming course."),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "essay_grade",
					Description: openai.String("Structured essay grade"),
					Schema:      essayGradeSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return EssayGrade{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return EssayGrade{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	var grade EssayGrade
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &grade); err != nil {
		return EssayGrade{}, fmt.Errorf("%w: malformed grade payload: %v", ErrUnavailable, err)
	}
	if grade.Score < 0 {
		grade.Score = 0
	}
	if grade.Score > 10 {
		grade.Score = 10
	}
	return grade, nil
}

// GenerateImage produces raw image bytes for a course thumbnail prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if !c.enabled {
		return nil, ErrUnavailable
	}

	resp, err := c.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      openai.Int(1),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: no image data returned", ErrUnavailable)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: image base64 decode: %v", ErrUnavailable, err)
	}
	return raw, nil
}
