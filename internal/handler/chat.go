// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nd-labs/eduspace/internal/middleware"
	"github.com/nd-labs/eduspace/internal/render"
	"github.com/nd-labs/eduspace/internal/service"
	"github.com/nd-labs/eduspace/internal/store"
)

// ChatHandler serves the AI assistant endpoints. Guests may chat too;
// their history hangs off the anonymous session token and dies with
// the session.
type ChatHandler struct {
	chat *service.ChatService
	sm   *scs.SessionManager
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chat *service.ChatService, sm *scs.SessionManager) *ChatHandler {
	return &ChatHandler{chat: chat, sm: sm}
}

// sessionKeyGuestChat stores the guest's chat identity. The session
// token itself is not assigned until first commit, so it cannot key
// the history.
const sessionKeyGuestChat = "guest_chat_id"

// ownerKey resolves where this requester's history lives.
func (h *ChatHandler) ownerKey(r *http.Request) string {
	if user := middleware.UserFromContext(r.Context()); user != nil {
		return store.ChatKey(user.ID)
	}
	id := h.sm.GetString(r.Context(), sessionKeyGuestChat)
	if id == "" {
		id = uuid.NewString()
		h.sm.Put(r.Context(), sessionKeyGuestChat, id)
	}
	return store.GuestChatKey(id)
}

// Sessions handles GET /api/chat/sessions.
func (h *ChatHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	writeJSONSuccess(w, map[string]any{
		"sessions": h.chat.Sessions(r.Context(), h.ownerKey(r)),
		"enabled":  h.chat.Enabled(),
	})
}

type chatSendRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Send handles POST /api/chat/send. The reply ships both as raw
// markdown and as sanitized HTML.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatSendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.chat.Send(r.Context(), h.ownerKey(r), req.SessionID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	reply := sess.Messages[len(sess.Messages)-1]
	writeJSONSuccess(w, map[string]any{
		"session":   sess,
		"reply":     reply.Text,
		"replyHtml": render.Markdown(reply.Text),
	})
}

// DeleteSession handles DELETE /api/chat/sessions/{sessionID}.
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.DeleteSession(r.Context(), h.ownerKey(r), chi.URLParam(r, "sessionID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONSuccess(w, nil)
}

// Clear handles DELETE /api/chat/sessions.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.Clear(r.Context(), h.ownerKey(r)); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	writeJSONSuccess(w, nil)
}
