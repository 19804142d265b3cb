package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Plan is one AI-generated weekly training plan. After onboarding exactly
// one plan per user carries is_selected = 1.
type Plan struct {
	ID          int64
	UserID      string
	GoalID      sql.NullInt64
	Title       string
	Frequency   sql.NullString
	Description sql.NullString
	IsSelected  bool
	CreatedAt   time.Time

	// Workouts are the plan's day-by-day schedule, loaded in insertion order.
	Workouts []*PlanWorkout
}

// PlanWorkout is a single scheduled day within a plan.
type PlanWorkout struct {
	ID        int64
	PlanID    int64
	DayOfWeek sql.NullString
	Focus     sql.NullString
	CreatedAt time.Time
}

// PlanWorkoutInput is one {day, focus} pair from a generated plan.
type PlanWorkoutInput struct {
	Day   string
	Focus string
}

// createPlanTx inserts a selected plan and its workout days as one batch
// inside an existing transaction, deselecting any previously selected plan.
func createPlanTx(tx *sql.Tx, userID string, goalID int64, title, frequency, description string, workouts []PlanWorkoutInput) (int64, error) {
	if _, err := tx.Exec(
		`UPDATE plans SET is_selected = 0 WHERE user_id = ? AND is_selected = 1`, userID,
	); err != nil {
		return 0, fmt.Errorf("models: deselect plans for %s: %w", userID, err)
	}

	result, err := tx.Exec(
		`INSERT INTO plans (user_id, goal_id, title, frequency, description, is_selected)
		 VALUES (?, ?, ?, ?, ?, 1)`,
		userID, goalID, title, frequency, description)
	if err != nil {
		return 0, fmt.Errorf("models: create plan for %s: %w", userID, err)
	}
	planID, _ := result.LastInsertId()

	for _, w := range workouts {
		if _, err := tx.Exec(
			`INSERT INTO plan_workouts (plan_id, day_of_week, focus) VALUES (?, ?, ?)`,
			planID, w.Day, w.Focus,
		); err != nil {
			return 0, fmt.Errorf("models: create plan workout for plan %d: %w", planID, err)
		}
	}

	return planID, nil
}

// GetPlanByID retrieves a plan with its workouts.
func GetPlanByID(db *sql.DB, id int64) (*Plan, error) {
	p := &Plan{}
	err := db.QueryRow(
		`SELECT id, user_id, goal_id, title, frequency, description, is_selected, created_at
		 FROM plans WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.GoalID, &p.Title, &p.Frequency, &p.Description, &p.IsSelected, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get plan %d: %w", id, err)
	}

	if p.Workouts, err = ListPlanWorkouts(db, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// GetSelectedPlan returns the user's selected plan with its workouts, or
// ErrNotFound if the user has not finished onboarding.
func GetSelectedPlan(db *sql.DB, userID string) (*Plan, error) {
	p := &Plan{}
	err := db.QueryRow(
		`SELECT id, user_id, goal_id, title, frequency, description, is_selected, created_at
		 FROM plans WHERE user_id = ? AND is_selected = 1
		 ORDER BY created_at DESC LIMIT 1`, userID,
	).Scan(&p.ID, &p.UserID, &p.GoalID, &p.Title, &p.Frequency, &p.Description, &p.IsSelected, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get selected plan for %s: %w", userID, err)
	}

	if p.Workouts, err = ListPlanWorkouts(db, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlanWorkouts returns a plan's workout days in insertion order.
func ListPlanWorkouts(db *sql.DB, planID int64) ([]*PlanWorkout, error) {
	rows, err := db.Query(
		`SELECT id, plan_id, day_of_week, focus, created_at
		 FROM plan_workouts WHERE plan_id = ? ORDER BY id`, planID)
	if err != nil {
		return nil, fmt.Errorf("models: list plan workouts for plan %d: %w", planID, err)
	}
	defer rows.Close()

	var workouts []*PlanWorkout
	for rows.Next() {
		w := &PlanWorkout{}
		if err := rows.Scan(&w.ID, &w.PlanID, &w.DayOfWeek, &w.Focus, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("models: scan plan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// CountPlans returns the number of plans stored for the user.
func CountPlans(db *sql.DB, userID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM plans WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("models: count plans for %s: %w", userID, err)
	}
	return n, nil
}
