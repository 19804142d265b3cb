package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Advice is one AI coaching message tied to a workout log. Append-only.
type Advice struct {
	ID           int64
	UserID       string
	WorkoutLogID int64
	Content      string
	CreatedAt    time.Time
}

// CreateAdvice stores a coaching message for a workout log.
func CreateAdvice(db *sql.DB, userID string, workoutLogID int64, content string) (*Advice, error) {
	result, err := db.Exec(
		`INSERT INTO advices (user_id, workout_log_id, content) VALUES (?, ?, ?)`,
		userID, workoutLogID, content)
	if err != nil {
		return nil, fmt.Errorf("models: create advice for log %d: %w", workoutLogID, err)
	}

	id, _ := result.LastInsertId()
	a := &Advice{}
	err = db.QueryRow(
		`SELECT id, user_id, workout_log_id, content, created_at FROM advices WHERE id = ?`, id,
	).Scan(&a.ID, &a.UserID, &a.WorkoutLogID, &a.Content, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("models: get advice %d: %w", id, err)
	}
	return a, nil
}

// GetAdviceForWorkoutLog returns the advice stored for a workout log, or
// ErrNotFound if advice generation failed or was skipped for that session.
func GetAdviceForWorkoutLog(db *sql.DB, workoutLogID int64) (*Advice, error) {
	a := &Advice{}
	err := db.QueryRow(
		`SELECT id, user_id, workout_log_id, content, created_at
		 FROM advices WHERE workout_log_id = ?
		 ORDER BY created_at DESC LIMIT 1`, workoutLogID,
	).Scan(&a.ID, &a.UserID, &a.WorkoutLogID, &a.Content, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get advice for log %d: %w", workoutLogID, err)
	}
	return a, nil
}
