package handlers

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/ytakeda/fitcoach/internal/coach"
	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/middleware"
	"github.com/ytakeda/fitcoach/internal/models"
)

// Plans handles AI plan generation during onboarding.
type Plans struct {
	DB *sql.DB
}

type generatePlansRequest struct {
	UserData coach.UserData `json:"userData"`
	GoalData coach.GoalData `json:"goalData"`
}

// Generate asks the model for three difficulty-tiered weekly plans.
// Nothing is persisted here; the user picks one and the pick is saved by
// the onboarding handler.
// POST /api/plans/generate
func (h *Plans) Generate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req generatePlansRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.UserData.Age <= 0 || req.UserData.Height <= 0 || req.UserData.Weight <= 0 {
		jsonError(w, "Age, height, and weight must be positive", http.StatusBadRequest)
		return
	}
	if !models.ValidGoalType(req.GoalData.GoalType) {
		jsonError(w, "Unknown goal type", http.StatusBadRequest)
		return
	}

	provider, err := llm.NewProviderFromSettings(h.DB)
	if err != nil {
		log.Printf("handlers: create LLM provider: %v", err)
		coachError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	plans, err := coach.GeneratePlans(ctx, h.DB, provider, req.UserData, req.GoalData, userID)
	if err != nil {
		log.Printf("handlers: generate plans for user %s: %v", userID, err)
		coachError(w, err)
		return
	}

	log.Printf("handlers: generated %d plan suggestions for user %s", len(plans), userID)
	jsonResponse(w, http.StatusOK, map[string]any{"plans": plans})
}
