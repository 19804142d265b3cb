package models

import (
	"database/sql"
	"fmt"
)

// OnboardingData is everything the onboarding wizard collects: the profile
// identity fields, the goal, and the plan the user picked from the three
// generated suggestions. Gender is collected for plan generation only and
// never stored.
type OnboardingData struct {
	Name   string
	Age    int64
	Height float64
	Weight float64

	GoalType    string
	TargetValue float64
	TargetDate  string

	PlanTitle       string
	PlanFrequency   string
	PlanDescription string
	PlanWorkouts    []PlanWorkoutInput
}

// SaveOnboarding persists the full onboarding result as one transaction:
// profile upsert, goal insert (deactivating any prior active goal), plan
// insert with is_selected set, and the bulk plan_workouts insert. A failure
// at any step rolls the whole sequence back.
func SaveOnboarding(db *sql.DB, userID string, data OnboardingData) (*Plan, error) {
	if !ValidGoalType(data.GoalType) {
		return nil, ErrInvalidGoalType
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin onboarding: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO profiles (id, name, age, height, weight, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			height = excluded.height,
			weight = excluded.weight,
			updated_at = CURRENT_TIMESTAMP`,
		userID, data.Name, data.Age, data.Height, data.Weight,
	); err != nil {
		return nil, fmt.Errorf("models: onboarding profile upsert for %s: %w", userID, err)
	}

	goalID, err := createGoalTx(tx, userID, data.GoalType, data.TargetValue, data.TargetDate)
	if err != nil {
		return nil, err
	}

	planID, err := createPlanTx(tx, userID, goalID, data.PlanTitle, data.PlanFrequency, data.PlanDescription, data.PlanWorkouts)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit onboarding for %s: %w", userID, err)
	}

	return GetPlanByID(db, planID)
}
