package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// WorkoutLog is one append-only training session record. The weight lifted
// is not stored here; it is captured per request and forwarded to advice
// generation only; volume keeps its derived footprint when a weight was
// supplied.
type WorkoutLog struct {
	ID          int64
	UserID      string
	Exercise    string
	Sets        int
	Reps        int
	Volume      sql.NullFloat64
	PerformedAt time.Time
	CreatedAt   time.Time
}

// CreateWorkoutLog appends a workout record for the user.
func CreateWorkoutLog(db *sql.DB, userID, exercise string, sets, reps int, volume sql.NullFloat64) (*WorkoutLog, error) {
	result, err := db.Exec(
		`INSERT INTO workout_logs (user_id, exercise, sets, reps, volume, performed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, exercise, sets, reps, volume, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("models: create workout log for %s: %w", userID, err)
	}

	id, _ := result.LastInsertId()
	return GetWorkoutLogByID(db, id)
}

// GetWorkoutLogByID retrieves a workout log by primary key.
func GetWorkoutLogByID(db *sql.DB, id int64) (*WorkoutLog, error) {
	l := &WorkoutLog{}
	err := db.QueryRow(
		`SELECT id, user_id, exercise, sets, reps, volume, performed_at, created_at
		 FROM workout_logs WHERE id = ?`, id,
	).Scan(&l.ID, &l.UserID, &l.Exercise, &l.Sets, &l.Reps, &l.Volume, &l.PerformedAt, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get workout log %d: %w", id, err)
	}
	return l, nil
}

// ListWorkoutLogs returns up to limit workout logs for the user, most
// recent first.
func ListWorkoutLogs(db *sql.DB, userID string, limit int) ([]*WorkoutLog, error) {
	rows, err := db.Query(
		`SELECT id, user_id, exercise, sets, reps, volume, performed_at, created_at
		 FROM workout_logs WHERE user_id = ?
		 ORDER BY performed_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("models: list workout logs for %s: %w", userID, err)
	}
	defer rows.Close()

	var logs []*WorkoutLog
	for rows.Next() {
		l := &WorkoutLog{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.Exercise, &l.Sets, &l.Reps, &l.Volume,
			&l.PerformedAt, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("models: scan workout log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
