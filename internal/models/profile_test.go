package models

import (
	"database/sql"
	"errors"
	"testing"
)

func TestEnsureProfile(t *testing.T) {
	db := testDB(t)

	if err := EnsureProfile(db, testUserID); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	// Second call is a no-op, not an error.
	if err := EnsureProfile(db, testUserID); err != nil {
		t.Fatalf("ensure profile again: %v", err)
	}

	p, err := GetProfileByID(db, testUserID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Name.Valid {
		t.Errorf("expected empty profile, got name %q", p.Name.String)
	}
}

func TestGetProfileByID_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := GetProfileByID(db, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertProfileIdentity(t *testing.T) {
	db := testDB(t)

	name := "Taro"
	err := UpsertProfileIdentity(db, testUserID,
		sql.NullString{String: name, Valid: true},
		sql.NullInt64{Int64: 30, Valid: true},
		sql.NullFloat64{Float64: 175, Valid: true},
		sql.NullFloat64{Float64: 72, Valid: true})
	if err != nil {
		t.Fatalf("upsert identity: %v", err)
	}

	p, err := GetProfileByID(db, testUserID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Name.String != "Taro" || p.Age.Int64 != 30 {
		t.Errorf("unexpected identity: name=%q age=%d", p.Name.String, p.Age.Int64)
	}

	// Update over the existing row.
	err = UpsertProfileIdentity(db, testUserID,
		sql.NullString{String: "Jiro", Valid: true},
		sql.NullInt64{Int64: 31, Valid: true},
		sql.NullFloat64{Float64: 175, Valid: true},
		sql.NullFloat64{Float64: 70, Valid: true})
	if err != nil {
		t.Fatalf("upsert identity again: %v", err)
	}

	p, _ = GetProfileByID(db, testUserID)
	if p.Name.String != "Jiro" || p.Weight.Float64 != 70 {
		t.Errorf("update not applied: name=%q weight=%v", p.Name.String, p.Weight.Float64)
	}
}

func TestUpsertProfileFromScan(t *testing.T) {
	db := testDB(t)

	update := ScanProfileUpdate{
		Name:               sql.NullString{String: "Taro", Valid: true},
		Age:                sql.NullInt64{Int64: 30, Valid: true},
		Height:             sql.NullFloat64{Float64: 175.2, Valid: true},
		Weight:             sql.NullFloat64{Float64: 72.5, Valid: true},
		SkeletalMuscleMass: sql.NullFloat64{Float64: 33.1, Valid: true},
		BodyFat:            sql.NullFloat64{Float64: 18.3, Valid: true},
		BMR:                sql.NullFloat64{Float64: 1650, Valid: true},
		InBodyScore:        sql.NullFloat64{Float64: 78, Valid: true},
	}
	if err := UpsertProfileFromScan(db, testUserID, update); err != nil {
		t.Fatalf("upsert from scan: %v", err)
	}

	p, err := GetProfileByID(db, testUserID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.SkeletalMuscleMass.Float64 != 33.1 || p.BodyFat.Float64 != 18.3 {
		t.Errorf("composition not stored: smm=%v fat=%v",
			p.SkeletalMuscleMass.Float64, p.BodyFat.Float64)
	}
	if p.VisceralFatLevel.Valid {
		t.Error("expected unreadable visceral fat level to stay NULL")
	}

	// A later scan with fewer readable fields overwrites with NULL; the
	// profile mirrors the latest scan, not a merge.
	if err := UpsertProfileFromScan(db, testUserID, ScanProfileUpdate{
		Weight: sql.NullFloat64{Float64: 71.8, Valid: true},
	}); err != nil {
		t.Fatalf("second scan upsert: %v", err)
	}

	p, _ = GetProfileByID(db, testUserID)
	if p.Weight.Float64 != 71.8 {
		t.Errorf("weight not updated: %v", p.Weight.Float64)
	}
	if p.SkeletalMuscleMass.Valid {
		t.Error("expected skeletal muscle mass to be overwritten with NULL")
	}
}
