package handlers

import (
	"database/sql"
	"net/http"

	"github.com/ytakeda/fitcoach/internal/models"
)

// Settings exposes read-only coach configuration state so the client can
// gate AI features before calling them.
type Settings struct {
	DB *sql.DB
}

// Status reports whether the AI coach is configured and which provider
// backs it. The API key never leaves the server.
// GET /api/settings/status
func (h *Settings) Status(w http.ResponseWriter, r *http.Request) {
	configured := models.IsCoachConfigured(h.DB)
	provider := models.GetSetting(h.DB, "llm.provider")
	jsonResponse(w, http.StatusOK, map[string]any{
		"configured": configured,
		"provider":   provider,
	})
}
