package models

import (
	"database/sql"
	"testing"

	"github.com/ytakeda/fitcoach/internal/database"
)

func testDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

const testUserID = "11111111-2222-3333-4444-555555555555"

// seedOnboarding runs a complete onboarding for testUserID and returns the
// saved plan.
func seedOnboarding(t testing.TB, db *sql.DB) *Plan {
	t.Helper()

	plan, err := SaveOnboarding(db, testUserID, OnboardingData{
		Name:            "Taro",
		Age:             30,
		Height:          175,
		Weight:          72,
		GoalType:        GoalReduceFat,
		TargetValue:     15,
		TargetDate:      "2026-12-31",
		PlanTitle:       "Balanced Start",
		PlanFrequency:   "3 days/week",
		PlanDescription: "Full-body sessions with rest days between.",
		PlanWorkouts: []PlanWorkoutInput{
			{Day: "Monday", Focus: "Full body"},
			{Day: "Wednesday", Focus: "Cardio"},
			{Day: "Friday", Focus: "Full body"},
		},
	})
	if err != nil {
		t.Fatalf("seed onboarding: %v", err)
	}
	return plan
}
