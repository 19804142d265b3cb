package coach

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ytakeda/fitcoach/internal/models"
)

// Context fetch limits. Chat always sees the 5 most recent scans and the
// 10 most recent workouts.
const (
	chatMetricsLimit  = 5
	chatWorkoutsLimit = 10
)

// UserContext is the structured briefing packet the chat feature sends with
// every conversation. It is rebuilt fresh from the store on each call, so
// replies always reflect the latest saved state.
type UserContext struct {
	Profile        *ProfileSummary  `json:"profile"`
	ActiveGoal     *GoalSummary     `json:"active_goal"`
	BodyMetrics    []MetricsSummary `json:"body_metrics"`
	WorkoutHistory []WorkoutSummary `json:"workout_history"`
	SelectedPlan   *PlanSummary     `json:"selected_plan"`
}

// ProfileSummary is the profile as the model sees it.
type ProfileSummary struct {
	Name               *string  `json:"name,omitempty"`
	Age                *int64   `json:"age,omitempty"`
	Height             *float64 `json:"height,omitempty"`
	Weight             *float64 `json:"weight,omitempty"`
	SkeletalMuscleMass *float64 `json:"skeletal_muscle_mass,omitempty"`
	BodyFat            *float64 `json:"body_fat,omitempty"`
	SMI                *float64 `json:"smi,omitempty"`
	BMR                *float64 `json:"bmr,omitempty"`
	InBodyScore        *float64 `json:"inbody_score,omitempty"`
}

// GoalSummary is the active goal as the model sees it.
type GoalSummary struct {
	GoalType    string  `json:"goal_type"`
	TargetValue float64 `json:"target_value"`
	TargetDate  string  `json:"target_date"`
}

// MetricsSummary is one body composition snapshot.
type MetricsSummary struct {
	MeasuredAt         string   `json:"measured_at"`
	Weight             *float64 `json:"weight,omitempty"`
	BodyFat            *float64 `json:"body_fat,omitempty"`
	BodyFatMass        *float64 `json:"body_fat_mass,omitempty"`
	SkeletalMuscleMass *float64 `json:"skeletal_muscle_mass,omitempty"`
	SMI                *float64 `json:"smi,omitempty"`
	BMR                *float64 `json:"bmr,omitempty"`
	VisceralFatLevel   *float64 `json:"visceral_fat_level,omitempty"`
	InBodyScore        *float64 `json:"inbody_score,omitempty"`
}

// WorkoutSummary is one logged training session.
type WorkoutSummary struct {
	PerformedAt string   `json:"performed_at"`
	Exercise    string   `json:"exercise"`
	Sets        int      `json:"sets"`
	Reps        int      `json:"reps"`
	Volume      *float64 `json:"volume,omitempty"`
}

// PlanSummary is the selected training plan with its weekly schedule.
type PlanSummary struct {
	Title       string    `json:"title"`
	Frequency   string    `json:"frequency,omitempty"`
	Description string    `json:"description,omitempty"`
	Workouts    []PlanDay `json:"workouts"`
}

// BuildUserContext gathers all stored data for one user into the structured
// context document the chat model receives. Missing pieces (no goal yet, no
// plan yet) are simply absent; only store failures are errors.
func BuildUserContext(db *sql.DB, userID string) (*UserContext, error) {
	uc := &UserContext{}

	profile, err := models.GetProfileByID(db, userID)
	if err != nil && err != models.ErrNotFound {
		return nil, fmt.Errorf("coach: build profile context: %w", err)
	}
	if profile != nil {
		uc.Profile = summarizeProfile(profile)
	}

	goal, err := models.GetActiveGoal(db, userID)
	if err != nil && err != models.ErrNotFound {
		return nil, fmt.Errorf("coach: build goal context: %w", err)
	}
	if goal != nil {
		uc.ActiveGoal = &GoalSummary{
			GoalType:    goal.GoalType,
			TargetValue: goal.TargetValue,
			TargetDate:  goal.TargetDate,
		}
	}

	metrics, err := models.ListBodyMetrics(db, userID, chatMetricsLimit)
	if err != nil {
		return nil, fmt.Errorf("coach: build metrics context: %w", err)
	}
	for _, m := range metrics {
		uc.BodyMetrics = append(uc.BodyMetrics, summarizeMetrics(m))
	}

	logs, err := models.ListWorkoutLogs(db, userID, chatWorkoutsLimit)
	if err != nil {
		return nil, fmt.Errorf("coach: build workout context: %w", err)
	}
	for _, l := range logs {
		ws := WorkoutSummary{
			PerformedAt: l.PerformedAt.Format(time.RFC3339),
			Exercise:    l.Exercise,
			Sets:        l.Sets,
			Reps:        l.Reps,
		}
		if l.Volume.Valid {
			v := l.Volume.Float64
			ws.Volume = &v
		}
		uc.WorkoutHistory = append(uc.WorkoutHistory, ws)
	}

	plan, err := models.GetSelectedPlan(db, userID)
	if err != nil && err != models.ErrNotFound {
		return nil, fmt.Errorf("coach: build plan context: %w", err)
	}
	if plan != nil {
		ps := &PlanSummary{
			Title:       plan.Title,
			Frequency:   plan.Frequency.String,
			Description: plan.Description.String,
		}
		for _, w := range plan.Workouts {
			ps.Workouts = append(ps.Workouts, PlanDay{
				Day:   w.DayOfWeek.String,
				Focus: w.Focus.String,
			})
		}
		uc.SelectedPlan = ps
	}

	return uc, nil
}

func summarizeProfile(p *models.Profile) *ProfileSummary {
	s := &ProfileSummary{}
	if p.Name.Valid {
		s.Name = &p.Name.String
	}
	if p.Age.Valid {
		s.Age = &p.Age.Int64
	}
	s.Height = nullFloatPtr(p.Height)
	s.Weight = nullFloatPtr(p.Weight)
	s.SkeletalMuscleMass = nullFloatPtr(p.SkeletalMuscleMass)
	s.BodyFat = nullFloatPtr(p.BodyFat)
	s.SMI = nullFloatPtr(p.SMI)
	s.BMR = nullFloatPtr(p.BMR)
	s.InBodyScore = nullFloatPtr(p.InBodyScore)
	return s
}

func summarizeMetrics(m *models.BodyMetrics) MetricsSummary {
	return MetricsSummary{
		MeasuredAt:         m.MeasuredAt.Format(time.RFC3339),
		Weight:             nullFloatPtr(m.Weight),
		BodyFat:            nullFloatPtr(m.BodyFat),
		BodyFatMass:        nullFloatPtr(m.BodyFatMass),
		SkeletalMuscleMass: nullFloatPtr(m.SkeletalMuscleMass),
		SMI:                nullFloatPtr(m.SMI),
		BMR:                nullFloatPtr(m.BMR),
		VisceralFatLevel:   nullFloatPtr(m.VisceralFatLevel),
		InBodyScore:        nullFloatPtr(m.InBodyScore),
	}
}

func nullFloatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
