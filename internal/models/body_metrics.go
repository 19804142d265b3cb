package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BodyMetrics is one append-only body-composition snapshot, typically
// extracted from an InBody scan image. Rows are never mutated after insert.
type BodyMetrics struct {
	ID                 int64
	UserID             string
	Weight             sql.NullFloat64
	BodyFat            sql.NullFloat64
	BodyFatMass        sql.NullFloat64
	SkeletalMuscleMass sql.NullFloat64
	SMI                sql.NullFloat64
	BMR                sql.NullFloat64
	VisceralFatLevel   sql.NullFloat64
	InBodyScore        sql.NullFloat64
	PhotoURL           sql.NullString
	MeasuredAt         time.Time
	CreatedAt          time.Time
}

// BodyMetricsParams holds the nullable measurement fields for an insert.
// Unreadable scan fields stay invalid and are stored as NULL.
type BodyMetricsParams struct {
	Weight             sql.NullFloat64
	BodyFat            sql.NullFloat64
	BodyFatMass        sql.NullFloat64
	SkeletalMuscleMass sql.NullFloat64
	SMI                sql.NullFloat64
	BMR                sql.NullFloat64
	VisceralFatLevel   sql.NullFloat64
	InBodyScore        sql.NullFloat64
	PhotoURL           sql.NullString
	MeasuredAt         time.Time // zero value means now
}

const bodyMetricsColumns = `id, user_id, weight, body_fat, body_fat_mass, skeletal_muscle_mass,
	smi, bmr, visceral_fat_level, inbody_score, photo_url, measured_at, created_at`

// CreateBodyMetrics appends a body-metrics snapshot for the user.
func CreateBodyMetrics(db *sql.DB, userID string, params BodyMetricsParams) (*BodyMetrics, error) {
	measuredAt := params.MeasuredAt
	if measuredAt.IsZero() {
		measuredAt = time.Now().UTC()
	}

	result, err := db.Exec(`
		INSERT INTO body_metrics (user_id, weight, body_fat, body_fat_mass, skeletal_muscle_mass,
			smi, bmr, visceral_fat_level, inbody_score, photo_url, measured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, params.Weight, params.BodyFat, params.BodyFatMass, params.SkeletalMuscleMass,
		params.SMI, params.BMR, params.VisceralFatLevel, params.InBodyScore, params.PhotoURL,
		measuredAt)
	if err != nil {
		return nil, fmt.Errorf("models: create body metrics for %s: %w", userID, err)
	}

	id, _ := result.LastInsertId()
	return GetBodyMetricsByID(db, id)
}

// GetBodyMetricsByID retrieves a snapshot by primary key.
func GetBodyMetricsByID(db *sql.DB, id int64) (*BodyMetrics, error) {
	m := &BodyMetrics{}
	err := db.QueryRow(
		`SELECT `+bodyMetricsColumns+` FROM body_metrics WHERE id = ?`, id,
	).Scan(&m.ID, &m.UserID, &m.Weight, &m.BodyFat, &m.BodyFatMass, &m.SkeletalMuscleMass,
		&m.SMI, &m.BMR, &m.VisceralFatLevel, &m.InBodyScore, &m.PhotoURL, &m.MeasuredAt, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get body metrics %d: %w", id, err)
	}
	return m, nil
}

// LatestBodyMetrics returns the most recent snapshot for the user, or nil
// if no scans have been recorded.
func LatestBodyMetrics(db *sql.DB, userID string) (*BodyMetrics, error) {
	m := &BodyMetrics{}
	err := db.QueryRow(
		`SELECT `+bodyMetricsColumns+` FROM body_metrics
		 WHERE user_id = ? ORDER BY measured_at DESC, id DESC LIMIT 1`, userID,
	).Scan(&m.ID, &m.UserID, &m.Weight, &m.BodyFat, &m.BodyFatMass, &m.SkeletalMuscleMass,
		&m.SMI, &m.BMR, &m.VisceralFatLevel, &m.InBodyScore, &m.PhotoURL, &m.MeasuredAt, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("models: latest body metrics for %s: %w", userID, err)
	}
	return m, nil
}

// ListBodyMetrics returns up to limit snapshots for the user, most recent
// first.
func ListBodyMetrics(db *sql.DB, userID string, limit int) ([]*BodyMetrics, error) {
	rows, err := db.Query(
		`SELECT `+bodyMetricsColumns+` FROM body_metrics
		 WHERE user_id = ? ORDER BY measured_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("models: list body metrics for %s: %w", userID, err)
	}
	defer rows.Close()

	var metrics []*BodyMetrics
	for rows.Next() {
		m := &BodyMetrics{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.Weight, &m.BodyFat, &m.BodyFatMass,
			&m.SkeletalMuscleMass, &m.SMI, &m.BMR, &m.VisceralFatLevel, &m.InBodyScore,
			&m.PhotoURL, &m.MeasuredAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("models: scan body metrics: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
