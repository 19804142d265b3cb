package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ytakeda/fitcoach/internal/models"
)

func TestDashboard_Show_Empty(t *testing.T) {
	db := testDB(t)
	h := &Dashboard{DB: db}

	rr := httptest.NewRecorder()
	h.Show(rr, userRequest("GET", "/api/dashboard", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	for _, key := range []string{"profile", "activeGoal", "selectedPlan", "latestMetrics"} {
		if body[key] != nil {
			t.Errorf("%s = %v, want null for a fresh user", key, body[key])
		}
	}
	if workouts := body["recentWorkouts"].([]any); len(workouts) != 0 {
		t.Errorf("recentWorkouts = %v", workouts)
	}
}

func TestDashboard_Show_Seeded(t *testing.T) {
	db := testDB(t)
	h := &Dashboard{DB: db}

	if _, err := models.SaveOnboarding(db, testUserID, models.OnboardingData{
		Name:        "Taro",
		Age:         30,
		Height:      175,
		Weight:      72,
		GoalType:    models.GoalLoseWeight,
		TargetValue: 65,
		TargetDate:  "2026-12-31",
		PlanTitle:   "Normal Plan",
		PlanWorkouts: []models.PlanWorkoutInput{
			{Day: "Monday", Focus: "Full body"},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := models.CreateBodyMetrics(db, testUserID, models.BodyMetricsParams{
		Weight: models.NullFloat(ptr(72.5)),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := models.CreateWorkoutLog(db, testUserID, "Squat", 3, 10, models.NullFloat(nil)); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	h.Show(rr, userRequest("GET", "/api/dashboard", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)

	if name := body["profile"].(map[string]any)["name"]; name != "Taro" {
		t.Errorf("profile name = %v", name)
	}
	if gt := body["activeGoal"].(map[string]any)["goalType"]; gt != "lose_weight" {
		t.Errorf("goal type = %v", gt)
	}
	if title := body["selectedPlan"].(map[string]any)["title"]; title != "Normal Plan" {
		t.Errorf("plan title = %v", title)
	}
	if w := body["latestMetrics"].(map[string]any)["weight"]; w.(float64) != 72.5 {
		t.Errorf("latest weight = %v", w)
	}
	if workouts := body["recentWorkouts"].([]any); len(workouts) != 1 {
		t.Errorf("recentWorkouts = %v", workouts)
	}
}
