package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/ytakeda/fitcoach/internal/middleware"
	"github.com/ytakeda/fitcoach/internal/models"
)

// Session handles anonymous session lifecycle. There are no accounts: the
// first explicit init mints a user ID and stores it in the session cookie,
// and every later call returns the same ID.
type Session struct {
	DB       *sql.DB
	Sessions *scs.SessionManager
}

// Init creates or resumes the caller's session.
// POST /api/session
func (h *Session) Init(w http.ResponseWriter, r *http.Request) {
	userID := h.Sessions.GetString(r.Context(), middleware.SessionUserKey)
	created := false
	if userID == "" {
		userID = uuid.NewString()
		h.Sessions.Put(r.Context(), middleware.SessionUserKey, userID)
		created = true
	}

	if err := models.EnsureProfile(h.DB, userID); err != nil {
		log.Printf("handlers: ensure profile %s: %v", userID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if created {
		log.Printf("handlers: session initialized for user %s", userID)
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"userId": userID,
		"new":    created,
	})
}
