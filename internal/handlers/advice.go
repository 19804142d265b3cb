package handlers

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/ytakeda/fitcoach/internal/coach"
	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/middleware"
	"github.com/ytakeda/fitcoach/internal/models"
)

// Advice handles standalone advice generation for a workout the client has
// not logged through the combined workout endpoint. Nothing is persisted.
type Advice struct {
	DB *sql.DB
}

type adviceRequest struct {
	Goal           coach.GoalData       `json:"goal"`
	WorkoutLog     coach.WorkoutInput   `json:"workoutLog"`
	WorkoutHistory []coach.HistoryEntry `json:"workoutHistory"`
}

// Generate returns a short coaching message for one workout.
// POST /api/advice
func (h *Advice) Generate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req adviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.WorkoutLog.Exercise) == "" {
		jsonError(w, "Exercise is required", http.StatusBadRequest)
		return
	}
	if req.WorkoutLog.Sets < 1 || req.WorkoutLog.Reps < 1 {
		jsonError(w, "Sets and reps must be at least 1", http.StatusBadRequest)
		return
	}
	if !models.ValidGoalType(req.Goal.GoalType) {
		jsonError(w, "Unknown goal type", http.StatusBadRequest)
		return
	}

	provider, err := llm.NewProviderFromSettings(h.DB)
	if err != nil {
		log.Printf("handlers: create LLM provider: %v", err)
		coachError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adviceTimeout)
	defer cancel()

	advice, err := coach.GenerateAdvice(ctx, h.DB, provider, req.Goal, req.WorkoutLog, req.WorkoutHistory, userID)
	if err != nil {
		log.Printf("handlers: generate advice for user %s: %v", userID, err)
		coachError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"advice": advice})
}
