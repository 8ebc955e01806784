// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nd-labs/eduspace/internal/ai"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/store"
)

// titleRunes caps the auto-generated session title length.
const titleRunes = 40

// ChatService persists assistant conversations per account (or guest
// session token) and relays messages to the AI client. Chat history is
// last-write-wins: losing a concurrent tab's message is acceptable,
// blocking on a conflict is not.
type ChatService struct {
	kv        *store.KV
	assistant ai.Assistant
}

// NewChatService creates a ChatService.
func NewChatService(kv *store.KV, assistant ai.Assistant) *ChatService {
	return &ChatService{kv: kv, assistant: assistant}
}

// Enabled reports whether the assistant is configured.
func (s *ChatService) Enabled() bool { return s.assistant.Enabled() }

// Sessions returns all conversations for the owner key, newest first.
func (s *ChatService) Sessions(ctx context.Context, ownerKey string) []model.ChatSession {
	sessions, _ := store.Load(ctx, s.kv, ownerKey, []model.ChatSession{})
	return sessions
}

// Send appends a user message to the session (creating it when
// sessionID is empty), asks the assistant for a reply and persists the
// updated conversation. Returns the session including the new reply.
func (s *ChatService) Send(ctx context.Context, ownerKey, sessionID, message string) (*model.ChatSession, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrValidation)
	}

	sessions, _ := store.Load(ctx, s.kv, ownerKey, []model.ChatSession{})

	idx := -1
	if sessionID != "" {
		for i := range sessions {
			if sessions[i].ID == sessionID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrNotFound
		}
	}

	var sess model.ChatSession
	if idx >= 0 {
		sess = sessions[idx]
	} else {
		sess = model.ChatSession{ID: uuid.NewString(), Title: sessionTitle(message)}
	}

	reply, err := s.assistant.Chat(ctx, sess.Messages, message)
	if err != nil {
		return nil, err
	}

	sess.Messages = append(sess.Messages,
		model.ChatMessage{Role: model.ChatRoleUser, Text: message},
		model.ChatMessage{Role: model.ChatRoleModel, Text: reply},
	)
	sess.Timestamp = time.Now().UnixMilli()

	if idx >= 0 {
		sessions[idx] = sess
	} else {
		sessions = append([]model.ChatSession{sess}, sessions...)
	}

	if err := store.Put(ctx, s.kv, ownerKey, sessions); err != nil {
		return nil, fmt.Errorf("persisting chat: %w", err)
	}
	return &sess, nil
}

// DeleteSession removes one conversation.
func (s *ChatService) DeleteSession(ctx context.Context, ownerKey, sessionID string) error {
	sessions, _ := store.Load(ctx, s.kv, ownerKey, []model.ChatSession{})
	for i := range sessions {
		if sessions[i].ID == sessionID {
			sessions = append(sessions[:i], sessions[i+1:]...)
			if err := store.Put(ctx, s.kv, ownerKey, sessions); err != nil {
				return fmt.Errorf("persisting chat delete: %w", err)
			}
			return nil
		}
	}
	return ErrNotFound
}

// Clear drops the owner's entire history.
func (s *ChatService) Clear(ctx context.Context, ownerKey string) error {
	return s.kv.Delete(ctx, ownerKey)
}

func sessionTitle(message string) string {
	r := []rune(message)
	if len(r) <= titleRunes {
		return message
	}
	return string(r[:titleRunes]) + "…"
}
