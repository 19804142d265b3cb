package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/ytakeda/fitcoach/internal/coach"
	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/middleware"
	"github.com/ytakeda/fitcoach/internal/models"
)

const (
	defaultWorkoutListLimit = 10
	maxWorkoutListLimit     = 100
	adviceHistoryLimit      = 10
)

// Workouts handles workout logging and history. Logging a workout also
// triggers advice generation; a failed advice call never loses the log.
type Workouts struct {
	DB *sql.DB
}

type createWorkoutRequest struct {
	Exercise string  `json:"exercise"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	Weight   float64 `json:"weight"`
}

// Create logs a workout, then asks the coach for advice on it.
// POST /api/workouts
func (h *Workouts) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req createWorkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Exercise) == "" {
		jsonError(w, "Exercise is required", http.StatusBadRequest)
		return
	}
	if req.Sets < 1 || req.Reps < 1 {
		jsonError(w, "Sets and reps must be at least 1", http.StatusBadRequest)
		return
	}
	if req.Weight < 0 {
		jsonError(w, "Weight must not be negative", http.StatusBadRequest)
		return
	}

	// The weight itself is not stored; its derived volume is.
	var volume sql.NullFloat64
	if req.Weight > 0 {
		volume = sql.NullFloat64{
			Float64: float64(req.Sets) * float64(req.Reps) * req.Weight,
			Valid:   true,
		}
	}

	// History for overtraining context, captured before the new log so it
	// reflects prior sessions only.
	prior, err := models.ListWorkoutLogs(h.DB, userID, adviceHistoryLimit)
	if err != nil {
		log.Printf("handlers: list workout history for user %s: %v", userID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	wl, err := models.CreateWorkoutLog(h.DB, userID, strings.TrimSpace(req.Exercise), req.Sets, req.Reps, volume)
	if err != nil {
		log.Printf("handlers: create workout log for user %s: %v", userID, err)
		jsonError(w, "Failed to save workout", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"workoutLog": renderWorkoutLog(wl)}

	advice, adviceErr := h.adviseOn(r.Context(), userID, req, prior)
	if adviceErr != nil {
		log.Printf("handlers: advice for workout %d: %v", wl.ID, adviceErr)
		resp["adviceError"] = adviceUserMessage(adviceErr)
	} else {
		if _, err := models.CreateAdvice(h.DB, userID, wl.ID, advice); err != nil {
			log.Printf("handlers: store advice for workout %d: %v", wl.ID, err)
		}
		resp["advice"] = advice
	}

	jsonResponse(w, http.StatusCreated, resp)
}

// adviseOn generates coaching advice for a freshly logged workout.
func (h *Workouts) adviseOn(ctx context.Context, userID string, req createWorkoutRequest, prior []*models.WorkoutLog) (string, error) {
	goal, err := models.GetActiveGoal(h.DB, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", errNoActiveGoal
		}
		return "", err
	}

	provider, err := llm.NewProviderFromSettings(h.DB)
	if err != nil {
		return "", err
	}

	history := make([]coach.HistoryEntry, 0, len(prior))
	for _, p := range prior {
		history = append(history, coach.HistoryEntry{
			Date:     p.PerformedAt.UTC().Format("2006-01-02"),
			Exercise: p.Exercise,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, adviceTimeout)
	defer cancel()

	return coach.GenerateAdvice(ctx, h.DB, provider,
		coach.GoalData{
			GoalType:    goal.GoalType,
			TargetValue: goal.TargetValue,
			TargetDate:  goal.TargetDate,
		},
		coach.WorkoutInput{
			Exercise: req.Exercise,
			Sets:     req.Sets,
			Reps:     req.Reps,
			Weight:   req.Weight,
		},
		history, userID)
}

var errNoActiveGoal = errors.New("handlers: no active goal")

// adviceUserMessage turns a failed advice call into a message the client
// can show next to the saved workout.
func adviceUserMessage(err error) string {
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, errNoActiveGoal):
		return "Set a goal to get coaching advice on your workouts."
	case errors.Is(err, llm.ErrNotConfigured):
		return "The AI coach is not configured, so no advice was generated."
	case errors.As(err, &apiErr):
		return apiErr.UserMessage()
	case errors.Is(err, context.DeadlineExceeded):
		return "The coach took too long to respond. Your workout was saved."
	default:
		return "Advice could not be generated. Your workout was saved."
	}
}

// List returns the user's recent workouts, newest first, with any stored
// advice attached.
// GET /api/workouts
func (h *Workouts) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	limit := defaultWorkoutListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxWorkoutListLimit {
			jsonError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	logs, err := models.ListWorkoutLogs(h.DB, userID, limit)
	if err != nil {
		log.Printf("handlers: list workouts for user %s: %v", userID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	out := make([]*workoutLogJSON, 0, len(logs))
	for _, wl := range logs {
		j := renderWorkoutLog(wl)
		advice, err := models.GetAdviceForWorkoutLog(h.DB, wl.ID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			log.Printf("handlers: load advice for workout %d: %v", wl.ID, err)
		}
		if advice != nil {
			j.Advice = &advice.Content
		}
		out = append(out, j)
	}

	jsonResponse(w, http.StatusOK, map[string]any{"workouts": out})
}
