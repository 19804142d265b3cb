package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ytakeda/fitcoach/internal/middleware"
	"github.com/ytakeda/fitcoach/internal/models"
)

// Onboarding persists the completed onboarding flow: profile identity,
// goal, and the one plan the user picked from the generated suggestions.
type Onboarding struct {
	DB *sql.DB
}

type onboardingRequest struct {
	UserData struct {
		Name   string  `json:"name"`
		Age    int64   `json:"age"`
		Height float64 `json:"height"`
		Weight float64 `json:"weight"`
	} `json:"userData"`
	GoalData struct {
		GoalType    string  `json:"goalType"`
		TargetValue float64 `json:"targetValue"`
		TargetDate  string  `json:"targetDate"`
	} `json:"goalData"`
	SelectedPlan struct {
		Title       string `json:"title"`
		Frequency   string `json:"frequency"`
		Description string `json:"description"`
		Workouts    []struct {
			Day   string `json:"day"`
			Focus string `json:"focus"`
		} `json:"workouts"`
	} `json:"selectedPlan"`
}

// Save stores the whole onboarding result in one transaction.
// POST /api/onboarding
func (h *Onboarding) Save(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req onboardingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.UserData.Name) == "" {
		jsonError(w, "Name is required", http.StatusBadRequest)
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
	if strings.TrimSpace(req.SelectedPlan.Title) == "" {
		jsonError(w, "A selected plan is required", http.StatusBadRequest)
		return
	}

	data := models.OnboardingData{
		Name:            req.UserData.Name,
		Age:             req.UserData.Age,
		Height:          req.UserData.Height,
		Weight:          req.UserData.Weight,
		GoalType:        req.GoalData.GoalType,
		TargetValue:     req.GoalData.TargetValue,
		TargetDate:      req.GoalData.TargetDate,
		PlanTitle:       req.SelectedPlan.Title,
		PlanFrequency:   req.SelectedPlan.Frequency,
		PlanDescription: req.SelectedPlan.Description,
	}
	for _, pw := range req.SelectedPlan.Workouts {
		data.PlanWorkouts = append(data.PlanWorkouts, models.PlanWorkoutInput{
			Day:   pw.Day,
			Focus: pw.Focus,
		})
	}

	plan, err := models.SaveOnboarding(h.DB, userID, data)
	if err != nil {
		if errors.Is(err, models.ErrInvalidGoalType) {
			jsonError(w, "Unknown goal type", http.StatusBadRequest)
			return
		}
		log.Printf("handlers: save onboarding for user %s: %v", userID, err)
		jsonError(w, "Failed to save onboarding", http.StatusInternalServerError)
		return
	}

	log.Printf("handlers: onboarding complete for user %s (plan %d)", userID, plan.ID)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"plan": renderPlan(plan),
	})
}
