// Package handlers contains the JSON API handlers. Every handler is a
// small struct holding its dependencies (database, session manager) with
// http.HandlerFunc methods, wired up by the router in cmd/fitcoach.
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ytakeda/fitcoach/internal/coach"
	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/models"
)

// Timeouts for model-backed operations. Plan generation produces the
// largest outputs and gets the most room.
const (
	extractTimeout  = 90 * time.Second
	generateTimeout = 180 * time.Second
	adviceTimeout   = 60 * time.Second
	chatTimeout     = 120 * time.Second
)

const maxRequestBody = 1 << 20

func jsonResponse(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonResponse(w, code, map[string]string{"error": msg})
}

// decodeJSON reads a JSON request body into dst. On failure it writes a
// 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, "Invalid JSON request body", http.StatusBadRequest)
		return false
	}
	return true
}

// coachError maps a failed model call to an HTTP response.
func coachError(w http.ResponseWriter, err error) {
	var apiErr *llm.APIError
	var valErr *coach.ValidationError
	switch {
	case errors.As(err, &apiErr) && apiErr.IsRateLimit():
		jsonError(w, apiErr.UserMessage(), http.StatusTooManyRequests)
	case errors.As(err, &apiErr):
		jsonError(w, apiErr.UserMessage(), http.StatusInternalServerError)
	case errors.As(err, &valErr):
		jsonError(w, "The coach returned an unusable answer. Please try again.", http.StatusInternalServerError)
	case errors.Is(err, context.DeadlineExceeded):
		jsonError(w, "The coach took too long to respond. Please try again.", http.StatusInternalServerError)
	case errors.Is(err, llm.ErrNotConfigured):
		jsonError(w, "The AI coach is not configured.", http.StatusInternalServerError)
	default:
		jsonError(w, "Something went wrong talking to the coach. Please try again.", http.StatusInternalServerError)
	}
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullFloatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}

func nullIntPtr(i sql.NullInt64) *int64 {
	if !i.Valid {
		return nil
	}
	return &i.Int64
}

// JSON render types. The models package keeps sql.Null* fields for the
// store; the API surface presents them as nullable pointers.

type goalJSON struct {
	ID          int64   `json:"id"`
	GoalType    string  `json:"goalType"`
	TargetValue float64 `json:"targetValue"`
	TargetDate  string  `json:"targetDate"`
	IsActive    bool    `json:"isActive"`
	CreatedAt   string  `json:"createdAt"`
}

func renderGoal(g *models.Goal) *goalJSON {
	if g == nil {
		return nil
	}
	return &goalJSON{
		ID:          g.ID,
		GoalType:    g.GoalType,
		TargetValue: g.TargetValue,
		TargetDate:  g.TargetDate,
		IsActive:    g.IsActive,
		CreatedAt:   g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type planWorkoutJSON struct {
	Day   string `json:"day"`
	Focus string `json:"focus"`
}

type planJSON struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Frequency   *string           `json:"frequency"`
	Description *string           `json:"description"`
	IsSelected  bool              `json:"isSelected"`
	Workouts    []planWorkoutJSON `json:"workouts"`
	CreatedAt   string            `json:"createdAt"`
}

func renderPlan(p *models.Plan) *planJSON {
	if p == nil {
		return nil
	}
	out := &planJSON{
		ID:          p.ID,
		Title:       p.Title,
		Frequency:   nullStringPtr(p.Frequency),
		Description: nullStringPtr(p.Description),
		IsSelected:  p.IsSelected,
		Workouts:    []planWorkoutJSON{},
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, pw := range p.Workouts {
		out.Workouts = append(out.Workouts, planWorkoutJSON{
			Day:   pw.DayOfWeek.String,
			Focus: pw.Focus.String,
		})
	}
	return out
}

type profileJSON struct {
	ID                 string   `json:"id"`
	Name               *string  `json:"name"`
	Age                *int64   `json:"age"`
	Height             *float64 `json:"height"`
	Weight             *float64 `json:"weight"`
	SkeletalMuscleMass *float64 `json:"skeletalMuscleMass"`
	BodyFat            *float64 `json:"bodyFatPercentage"`
	BodyFatMass        *float64 `json:"bodyFatMass"`
	SMI                *float64 `json:"smi"`
	BMR                *float64 `json:"bmr"`
	VisceralFatLevel   *float64 `json:"visceralFatLevel"`
	InBodyScore        *float64 `json:"inbodyScore"`
	UpdatedAt          string   `json:"updatedAt"`
}

func renderProfile(p *models.Profile) *profileJSON {
	if p == nil {
		return nil
	}
	return &profileJSON{
		ID:                 p.ID,
		Name:               nullStringPtr(p.Name),
		Age:                nullIntPtr(p.Age),
		Height:             nullFloatPtr(p.Height),
		Weight:             nullFloatPtr(p.Weight),
		SkeletalMuscleMass: nullFloatPtr(p.SkeletalMuscleMass),
		BodyFat:            nullFloatPtr(p.BodyFat),
		BodyFatMass:        nullFloatPtr(p.BodyFatMass),
		SMI:                nullFloatPtr(p.SMI),
		BMR:                nullFloatPtr(p.BMR),
		VisceralFatLevel:   nullFloatPtr(p.VisceralFatLevel),
		InBodyScore:        nullFloatPtr(p.InBodyScore),
		UpdatedAt:          p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type bodyMetricsJSON struct {
	ID                 int64    `json:"id"`
	Weight             *float64 `json:"weight"`
	BodyFat            *float64 `json:"bodyFatPercentage"`
	BodyFatMass        *float64 `json:"bodyFatMass"`
	SkeletalMuscleMass *float64 `json:"skeletalMuscleMass"`
	SMI                *float64 `json:"smi"`
	BMR                *float64 `json:"bmr"`
	VisceralFatLevel   *float64 `json:"visceralFatLevel"`
	InBodyScore        *float64 `json:"inbodyScore"`
	PhotoURL           *string  `json:"photoUrl"`
	MeasuredAt         string   `json:"measuredAt"`
}

func renderBodyMetrics(m *models.BodyMetrics) *bodyMetricsJSON {
	if m == nil {
		return nil
	}
	return &bodyMetricsJSON{
		ID:                 m.ID,
		Weight:             nullFloatPtr(m.Weight),
		BodyFat:            nullFloatPtr(m.BodyFat),
		BodyFatMass:        nullFloatPtr(m.BodyFatMass),
		SkeletalMuscleMass: nullFloatPtr(m.SkeletalMuscleMass),
		SMI:                nullFloatPtr(m.SMI),
		BMR:                nullFloatPtr(m.BMR),
		VisceralFatLevel:   nullFloatPtr(m.VisceralFatLevel),
		InBodyScore:        nullFloatPtr(m.InBodyScore),
		PhotoURL:           nullStringPtr(m.PhotoURL),
		MeasuredAt:         m.MeasuredAt.UTC().Format(time.RFC3339),
	}
}

type workoutLogJSON struct {
	ID          int64    `json:"id"`
	Exercise    string   `json:"exercise"`
	Sets        int      `json:"sets"`
	Reps        int      `json:"reps"`
	Volume      *float64 `json:"volume"`
	PerformedAt string   `json:"performedAt"`
	Advice      *string  `json:"advice,omitempty"`
}

func renderWorkoutLog(wl *models.WorkoutLog) *workoutLogJSON {
	if wl == nil {
		return nil
	}
	return &workoutLogJSON{
		ID:          wl.ID,
		Exercise:    wl.Exercise,
		Sets:        wl.Sets,
		Reps:        wl.Reps,
		Volume:      nullFloatPtr(wl.Volume),
		PerformedAt: wl.PerformedAt.UTC().Format(time.RFC3339),
	}
}
