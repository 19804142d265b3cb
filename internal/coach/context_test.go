package coach

import (
	"database/sql"
	"testing"

	"github.com/ytakeda/fitcoach/internal/database"
	"github.com/ytakeda/fitcoach/internal/models"
)

const testUserID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

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

// seedUser fills the store with one complete user: onboarded profile plus
// goal plus plan, one metrics snapshot, and one workout.
func seedUser(t testing.TB, db *sql.DB) {
	t.Helper()

	_, err := models.SaveOnboarding(db, testUserID, models.OnboardingData{
		Name:            "Taro",
		Age:             30,
		Height:          175,
		Weight:          72,
		GoalType:        models.GoalReduceFat,
		TargetValue:     15,
		TargetDate:      "2026-12-31",
		PlanTitle:       "Balanced Start",
		PlanFrequency:   "3 days/week",
		PlanDescription: "Full-body sessions.",
		PlanWorkouts: []models.PlanWorkoutInput{
			{Day: "Monday", Focus: "Full body"},
		},
	})
	if err != nil {
		t.Fatalf("seed onboarding: %v", err)
	}

	if _, err := models.CreateBodyMetrics(db, testUserID, models.BodyMetricsParams{
		Weight:  sql.NullFloat64{Float64: 72.5, Valid: true},
		BodyFat: sql.NullFloat64{Float64: 18.3, Valid: true},
	}); err != nil {
		t.Fatalf("seed metrics: %v", err)
	}

	if _, err := models.CreateWorkoutLog(db, testUserID, "Squat", 3, 10,
		sql.NullFloat64{Float64: 2400, Valid: true}); err != nil {
		t.Fatalf("seed workout: %v", err)
	}
}

func TestBuildUserContext_EmptyStore(t *testing.T) {
	db := testDB(t)

	uc, err := BuildUserContext(db, testUserID)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if uc.Profile != nil || uc.ActiveGoal != nil || uc.SelectedPlan != nil {
		t.Errorf("expected empty context, got %+v", uc)
	}
	if len(uc.BodyMetrics) != 0 || len(uc.WorkoutHistory) != 0 {
		t.Errorf("expected no history, got %+v", uc)
	}
}

func TestBuildUserContext_Seeded(t *testing.T) {
	db := testDB(t)
	seedUser(t, db)

	uc, err := BuildUserContext(db, testUserID)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}

	if uc.Profile == nil || uc.Profile.Name == nil || *uc.Profile.Name != "Taro" {
		t.Errorf("profile = %+v", uc.Profile)
	}
	if uc.ActiveGoal == nil || uc.ActiveGoal.GoalType != models.GoalReduceFat {
		t.Errorf("goal = %+v", uc.ActiveGoal)
	}
	if len(uc.BodyMetrics) != 1 || *uc.BodyMetrics[0].Weight != 72.5 {
		t.Errorf("metrics = %+v", uc.BodyMetrics)
	}
	if len(uc.WorkoutHistory) != 1 || uc.WorkoutHistory[0].Exercise != "Squat" {
		t.Errorf("workouts = %+v", uc.WorkoutHistory)
	}
	if uc.SelectedPlan == nil || uc.SelectedPlan.Title != "Balanced Start" {
		t.Errorf("plan = %+v", uc.SelectedPlan)
	}
	if len(uc.SelectedPlan.Workouts) != 1 || uc.SelectedPlan.Workouts[0].Day != "Monday" {
		t.Errorf("plan workouts = %+v", uc.SelectedPlan.Workouts)
	}
}

func TestBuildUserContext_Limits(t *testing.T) {
	db := testDB(t)

	for i := 0; i < chatWorkoutsLimit+3; i++ {
		if _, err := models.CreateWorkoutLog(db, testUserID, "Push-up", 3, 15, sql.NullFloat64{}); err != nil {
			t.Fatalf("seed workout %d: %v", i, err)
		}
	}
	for i := 0; i < chatMetricsLimit+2; i++ {
		if _, err := models.CreateBodyMetrics(db, testUserID, models.BodyMetricsParams{
			Weight: sql.NullFloat64{Float64: 70, Valid: true},
		}); err != nil {
			t.Fatalf("seed metrics %d: %v", i, err)
		}
	}

	uc, err := BuildUserContext(db, testUserID)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if len(uc.WorkoutHistory) != chatWorkoutsLimit {
		t.Errorf("workouts = %d, want %d", len(uc.WorkoutHistory), chatWorkoutsLimit)
	}
	if len(uc.BodyMetrics) != chatMetricsLimit {
		t.Errorf("metrics = %d, want %d", len(uc.BodyMetrics), chatMetricsLimit)
	}
}
