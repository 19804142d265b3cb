package coach

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/models"
)

// planCount is how many difficulty-tiered suggestions a generation must
// return: easy, normal, hard.
const planCount = 3

// UserData is the profile slice forwarded to plan generation.
type UserData struct {
	Age    int     `json:"age"`
	Gender string  `json:"gender"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// GoalData is the goal slice forwarded to plan and advice generation.
type GoalData struct {
	GoalType    string  `json:"goalType"`
	TargetValue float64 `json:"targetValue"`
	TargetDate  string  `json:"targetDate"`
}

// Plan is one generated weekly training plan suggestion.
type Plan struct {
	Title       string    `json:"title"`
	Frequency   string    `json:"frequency"`
	Description string    `json:"description"`
	Workouts    []PlanDay `json:"workouts"`
}

// PlanDay is one scheduled day within a generated plan.
type PlanDay struct {
	Day   string `json:"day"`
	Focus string `json:"focus"`
}

// GeneratePlans asks the model for exactly three difficulty-tiered weekly
// plans based on the user's profile and goal. When userID is set, the
// latest body-metrics snapshot is pulled in so the plans can target the
// scan's weak points. The model's JSON-array answer is strictly validated.
func GeneratePlans(ctx context.Context, db *sql.DB, provider llm.Provider, userData UserData, goalData GoalData, userID string) ([]Plan, error) {
	var latest *models.BodyMetrics
	if userID != "" {
		m, err := models.LatestBodyMetrics(db, userID)
		if err != nil {
			return nil, fmt.Errorf("coach: generate plans: %w", err)
		}
		latest = m
	}

	prompt := buildPlanPrompt(userData, goalData, latest, models.GetSetting(db, "coach.language"))

	resp, err := provider.Generate(ctx, "", prompt, llm.Options{
		Temperature: llm.TemperatureFromSettings(db),
		MaxTokens:   8192,
	})
	if err != nil {
		return nil, fmt.Errorf("coach: generate plans: %w", err)
	}

	return parsePlans(resp.Content)
}

func buildPlanPrompt(userData UserData, goalData GoalData, latest *models.BodyMetrics, language string) string {
	var b strings.Builder

	b.WriteString(`You are an expert fitness coach. Based on the user data and goal below, create three different weekly training plan suggestions: easy, normal, and hard.
Each plan needs a title, a frequency (days per week), a short description, and a weekly workout schedule of days and focuses.
Return your answer as a JSON array of plan objects and nothing else. Do not include any text outside the JSON array.
`)
	fmt.Fprintf(&b, "All strings in the JSON objects (title, description, day, focus) must be in %s.\n", language)
	b.WriteString("If InBody scan data is present, weigh it heavily and propose more personalized plans that improve the weak points it shows.\n\n")

	fmt.Fprintf(&b, "User data:\n- Age: %d\n- Gender: %s\n- Height: %.1f cm\n- Weight: %.1f kg\n\n",
		userData.Age, userData.Gender, userData.Height, userData.Weight)

	writeMetricsSection(&b, latest)

	fmt.Fprintf(&b, "User goal:\n- Goal type: %s\n- Target value: %g\n- Target date: %s\n\n",
		goalData.GoalType, goalData.TargetValue, goalData.TargetDate)

	b.WriteString(`Example JSON format for a single plan:
{
  "title": "Starter Plan",
  "frequency": "3 days/week",
  "description": "Ideal for beginners.",
  "workouts": [
    { "day": "Monday", "focus": "Full-body strength" },
    { "day": "Wednesday", "focus": "Full-body strength" },
    { "day": "Friday", "focus": "Full-body strength" }
  ]
}`)

	return b.String()
}

// writeMetricsSection appends the latest InBody snapshot to a prompt, or a
// note that none exists.
func writeMetricsSection(b *strings.Builder, m *models.BodyMetrics) {
	if m == nil {
		b.WriteString("No InBody scan data has been provided for this user.\n\n")
		return
	}
	b.WriteString("Latest InBody scan results for this user:\n")
	fmt.Fprintf(b, "- Weight: %s kg\n", nullFloatString(m.Weight))
	fmt.Fprintf(b, "- Body fat: %s %%\n", nullFloatString(m.BodyFat))
	fmt.Fprintf(b, "- Skeletal muscle mass: %s kg\n", nullFloatString(m.SkeletalMuscleMass))
	fmt.Fprintf(b, "- Body fat mass: %s kg\n", nullFloatString(m.BodyFatMass))
	fmt.Fprintf(b, "- SMI: %s\n", nullFloatString(m.SMI))
	fmt.Fprintf(b, "- BMR: %s kcal\n", nullFloatString(m.BMR))
	fmt.Fprintf(b, "- Visceral fat level: %s\n", nullFloatString(m.VisceralFatLevel))
	fmt.Fprintf(b, "- InBody score: %s / 100\n\n", nullFloatString(m.InBodyScore))
}

func nullFloatString(f sql.NullFloat64) string {
	if !f.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%g", f.Float64)
}

// parsePlans validates the model's answer: a JSON array of exactly three
// plans, each with non-empty title, frequency, description, and workouts.
func parsePlans(content string) ([]Plan, error) {
	raw := extractJSON(content, '[', ']')
	if raw == nil {
		return nil, validationErrorf("no JSON array in plan response")
	}

	var plans []Plan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return nil, validationErrorf("plan response is not a valid plan array: %v", err)
	}

	if len(plans) != planCount {
		return nil, validationErrorf("expected %d plans, got %d", planCount, len(plans))
	}
	for i, p := range plans {
		if strings.TrimSpace(p.Title) == "" {
			return nil, validationErrorf("plan %d has an empty title", i)
		}
		if strings.TrimSpace(p.Frequency) == "" {
			return nil, validationErrorf("plan %d has an empty frequency", i)
		}
		if strings.TrimSpace(p.Description) == "" {
			return nil, validationErrorf("plan %d has an empty description", i)
		}
		if len(p.Workouts) == 0 {
			return nil, validationErrorf("plan %d has no workouts", i)
		}
		for j, w := range p.Workouts {
			if strings.TrimSpace(w.Day) == "" || strings.TrimSpace(w.Focus) == "" {
				return nil, validationErrorf("plan %d workout %d is missing day or focus", i, j)
			}
		}
	}
	return plans, nil
}
