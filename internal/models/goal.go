package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Goal types a user can pick. The storage layer enforces these with a CHECK
// constraint as well.
const (
	GoalLoseWeight     = "lose_weight"
	GoalMaintainWeight = "maintain_weight"
	GoalGainMuscle     = "gain_muscle"
	GoalReduceFat      = "reduce_fat"
)

// ErrInvalidGoalType is returned for an unknown goal type.
var ErrInvalidGoalType = errors.New("models: invalid goal type")

// Goal is one fitness goal for a user. At most one goal per user is active
// at a time; creating a new goal deactivates the previous active one.
type Goal struct {
	ID          int64
	UserID      string
	GoalType    string
	TargetValue float64
	TargetDate  string
	IsActive    bool
	CreatedAt   time.Time
}

// ValidGoalType reports whether t is one of the known goal types.
func ValidGoalType(t string) bool {
	switch t {
	case GoalLoseWeight, GoalMaintainWeight, GoalGainMuscle, GoalReduceFat:
		return true
	}
	return false
}

// CreateGoal inserts a new active goal for the user, transactionally
// deactivating any previous active goal first.
func CreateGoal(db *sql.DB, userID, goalType string, targetValue float64, targetDate string) (*Goal, error) {
	if !ValidGoalType(goalType) {
		return nil, ErrInvalidGoalType
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("models: begin create goal: %w", err)
	}
	defer tx.Rollback()

	id, err := createGoalTx(tx, userID, goalType, targetValue, targetDate)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("models: commit create goal: %w", err)
	}
	return GetGoalByID(db, id)
}

// createGoalTx deactivates the user's current active goal and inserts a new
// active one inside an existing transaction.
func createGoalTx(tx *sql.Tx, userID, goalType string, targetValue float64, targetDate string) (int64, error) {
	if _, err := tx.Exec(
		`UPDATE goals SET is_active = 0 WHERE user_id = ? AND is_active = 1`, userID,
	); err != nil {
		return 0, fmt.Errorf("models: deactivate goals for %s: %w", userID, err)
	}

	result, err := tx.Exec(
		`INSERT INTO goals (user_id, goal_type, target_value, target_date, is_active)
		 VALUES (?, ?, ?, ?, 1)`,
		userID, goalType, targetValue, targetDate)
	if err != nil {
		return 0, fmt.Errorf("models: create goal for %s: %w", userID, err)
	}
	id, _ := result.LastInsertId()
	return id, nil
}

// GetGoalByID retrieves a goal by primary key.
func GetGoalByID(db *sql.DB, id int64) (*Goal, error) {
	g := &Goal{}
	err := db.QueryRow(
		`SELECT id, user_id, goal_type, target_value, target_date, is_active, created_at
		 FROM goals WHERE id = ?`, id,
	).Scan(&g.ID, &g.UserID, &g.GoalType, &g.TargetValue, &g.TargetDate, &g.IsActive, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get goal %d: %w", id, err)
	}
	return g, nil
}

// GetActiveGoal returns the user's active goal, or ErrNotFound if none.
func GetActiveGoal(db *sql.DB, userID string) (*Goal, error) {
	g := &Goal{}
	err := db.QueryRow(
		`SELECT id, user_id, goal_type, target_value, target_date, is_active, created_at
		 FROM goals WHERE user_id = ? AND is_active = 1
		 ORDER BY created_at DESC LIMIT 1`, userID,
	).Scan(&g.ID, &g.UserID, &g.GoalType, &g.TargetValue, &g.TargetDate, &g.IsActive, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get active goal for %s: %w", userID, err)
	}
	return g, nil
}

// CountActiveGoals returns how many active goals the user has. The schema
// keeps this at 0 or 1.
func CountActiveGoals(db *sql.DB, userID string) (int, error) {
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM goals WHERE user_id = ? AND is_active = 1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("models: count active goals for %s: %w", userID, err)
	}
	return n, nil
}
