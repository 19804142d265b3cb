package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Profile is the single per-user profile row. Identity fields come from
// onboarding; body-composition fields mirror the most recent InBody scan
// extraction, when one exists.
type Profile struct {
	ID                 string
	Name               sql.NullString
	Age                sql.NullInt64
	Height             sql.NullFloat64
	Weight             sql.NullFloat64
	SkeletalMuscleMass sql.NullFloat64
	BodyFat            sql.NullFloat64
	BodyFatMass        sql.NullFloat64
	SMI                sql.NullFloat64
	BMR                sql.NullFloat64
	VisceralFatLevel   sql.NullFloat64
	InBodyScore        sql.NullFloat64
	ProfileImageURL    sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

const profileColumns = `id, name, age, height, weight, skeletal_muscle_mass, body_fat,
	body_fat_mass, smi, bmr, visceral_fat_level, inbody_score, profile_image_url,
	created_at, updated_at`

func scanProfile(row *sql.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Height, &p.Weight, &p.SkeletalMuscleMass,
		&p.BodyFat, &p.BodyFatMass, &p.SMI, &p.BMR, &p.VisceralFatLevel, &p.InBodyScore,
		&p.ProfileImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: scan profile: %w", err)
	}
	return p, nil
}

// GetProfileByID retrieves a profile by user id.
func GetProfileByID(db *sql.DB, id string) (*Profile, error) {
	return scanProfile(db.QueryRow(
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
}

// EnsureProfile creates an empty profile row for the user if none exists.
// Called once at session initialization so every later upsert has a row to
// land on.
func EnsureProfile(db *sql.DB, id string) error {
	_, err := db.Exec(`INSERT INTO profiles (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, id)
	if err != nil {
		return fmt.Errorf("models: ensure profile %s: %w", id, err)
	}
	return nil
}

// UpsertProfileIdentity creates or updates the identity portion of a profile
// (name, age, height, weight). Composition fields are left untouched.
func UpsertProfileIdentity(db *sql.DB, id string, name sql.NullString, age sql.NullInt64, height, weight sql.NullFloat64) error {
	_, err := db.Exec(`
		INSERT INTO profiles (id, name, age, height, weight, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			height = excluded.height,
			weight = excluded.weight,
			updated_at = CURRENT_TIMESTAMP`,
		id, name, age, height, weight)
	if err != nil {
		return fmt.Errorf("models: upsert profile %s: %w", id, err)
	}
	return nil
}

// ScanProfileUpdate is the profile-facing slice of one InBody extraction.
// Any nil field was unreadable on the scan and stays NULL.
type ScanProfileUpdate struct {
	Name               sql.NullString
	Age                sql.NullInt64
	Height             sql.NullFloat64
	Weight             sql.NullFloat64
	SkeletalMuscleMass sql.NullFloat64
	BodyFat            sql.NullFloat64
	BodyFatMass        sql.NullFloat64
	SMI                sql.NullFloat64
	BMR                sql.NullFloat64
	VisceralFatLevel   sql.NullFloat64
	InBodyScore        sql.NullFloat64
}

// UpsertProfileFromScan creates or updates a profile from an InBody scan
// extraction. Fields the scan could not resolve overwrite with NULL; the
// scan is the authoritative latest snapshot.
func UpsertProfileFromScan(db *sql.DB, id string, u ScanProfileUpdate) error {
	_, err := db.Exec(`
		INSERT INTO profiles (id, name, age, height, weight, skeletal_muscle_mass,
			body_fat, body_fat_mass, smi, bmr, visceral_fat_level, inbody_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			height = excluded.height,
			weight = excluded.weight,
			skeletal_muscle_mass = excluded.skeletal_muscle_mass,
			body_fat = excluded.body_fat,
			body_fat_mass = excluded.body_fat_mass,
			smi = excluded.smi,
			bmr = excluded.bmr,
			visceral_fat_level = excluded.visceral_fat_level,
			inbody_score = excluded.inbody_score,
			updated_at = CURRENT_TIMESTAMP`,
		id, u.Name, u.Age, u.Height, u.Weight, u.SkeletalMuscleMass,
		u.BodyFat, u.BodyFatMass, u.SMI, u.BMR, u.VisceralFatLevel, u.InBodyScore)
	if err != nil {
		return fmt.Errorf("models: upsert profile from scan %s: %w", id, err)
	}
	return nil
}
