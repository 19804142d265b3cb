package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ytakeda/fitcoach/internal/coach"
	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/middleware"
)

// Chat handles the AI coach conversation. Each call rebuilds the user's
// context from the store, so the coach always answers against current data.
type Chat struct {
	DB *sql.DB
}

type chatRequest struct {
	Messages []llm.Message `json:"messages"`
}

// Send forwards the conversation to the coach and returns the next reply.
// POST /api/chat
func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		jsonError(w, "Conversation has no messages", http.StatusBadRequest)
		return
	}
	for _, m := range req.Messages {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			jsonError(w, "Message roles must be user or assistant", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(m.Content) == "" {
			jsonError(w, "Messages must not be empty", http.StatusBadRequest)
			return
		}
	}
	if last := req.Messages[len(req.Messages)-1]; last.Role != llm.RoleUser {
		jsonError(w, "The last message must be from the user", http.StatusBadRequest)
		return
	}

	provider, err := llm.NewProviderFromSettings(h.DB)
	if err != nil {
		log.Printf("handlers: create LLM provider: %v", err)
		coachError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()

	reply, err := coach.Chat(ctx, h.DB, provider, userID, req.Messages)
	if err != nil {
		if errors.Is(err, coach.ErrEmptyConversation) {
			jsonError(w, "Conversation has no messages", http.StatusBadRequest)
			return
		}
		log.Printf("handlers: chat for user %s: %v", userID, err)
		coachError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"reply": reply})
}
