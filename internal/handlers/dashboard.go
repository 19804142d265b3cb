package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/ytakeda/fitcoach/internal/middleware"
	"github.com/ytakeda/fitcoach/internal/models"
)

const dashboardWorkoutLimit = 10

// Dashboard serves the home-screen snapshot: profile, active goal,
// selected plan, latest measurements, and recent workouts in one call.
type Dashboard struct {
	DB *sql.DB
}

// Show returns the dashboard snapshot. Sections the user has not filled
// in yet come back null.
// GET /api/dashboard
func (h *Dashboard) Show(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	profile, err := models.GetProfileByID(h.DB, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		log.Printf("handlers: load profile %s: %v", userID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	goal, err := models.GetActiveGoal(h.DB, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		log.Printf("handlers: load active goal for user %s: %v", userID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	plan, err := models.GetSelectedPlan(h.DB, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		log.Printf("handlers: load selected plan for user %s: %v", userID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	latest, err := models.LatestBodyMetrics(h.DB, userID)
	if err != nil {
		log.Printf("handlers: load latest metrics for user %s: %v", userID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logs, err := models.ListWorkoutLogs(h.DB, userID, dashboardWorkoutLimit)
	if err != nil {
		log.Printf("handlers: load recent workouts for user %s: %v", userID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	workouts := make([]*workoutLogJSON, 0, len(logs))
	for _, wl := range logs {
		workouts = append(workouts, renderWorkoutLog(wl))
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"profile":        renderProfile(profile),
		"activeGoal":     renderGoal(goal),
		"selectedPlan":   renderPlan(plan),
		"latestMetrics":  renderBodyMetrics(latest),
		"recentWorkouts": workouts,
	})
}
