package coach

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/models"
)

// WorkoutInput is the freshly logged session forwarded to advice
// generation. Weight is transient and never reaches the store.
type WorkoutInput struct {
	Exercise string  `json:"exercise"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	Weight   float64 `json:"weight"`
}

// HistoryEntry is one prior session, date and exercise only, used as
// frequency context for overtraining detection.
type HistoryEntry struct {
	Date     string `json:"date"`
	Exercise string `json:"exercise"`
}

// GenerateAdvice produces a short coaching message for one logged workout.
// When userID is set, the latest body-metrics snapshot is included as
// reference. The caller decides what to do on failure; advice never blocks
// the workout save that preceded it.
func GenerateAdvice(ctx context.Context, db *sql.DB, provider llm.Provider, goal GoalData, workout WorkoutInput, history []HistoryEntry, userID string) (string, error) {
	var latest *models.BodyMetrics
	if userID != "" {
		m, err := models.LatestBodyMetrics(db, userID)
		if err != nil {
			return "", fmt.Errorf("coach: generate advice: %w", err)
		}
		latest = m
	}

	prompt := buildAdvicePrompt(goal, workout, history, latest, models.GetSetting(db, "coach.language"))

	resp, err := provider.Generate(ctx, "", prompt, llm.Options{
		Temperature: llm.TemperatureFromSettings(db),
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("coach: generate advice: %w", err)
	}

	advice := strings.TrimSpace(resp.Content)
	if advice == "" {
		return "", validationErrorf("empty advice response")
	}
	return advice, nil
}

func buildAdvicePrompt(goal GoalData, workout WorkoutInput, history []HistoryEntry, latest *models.BodyMetrics, language string) string {
	var b strings.Builder

	b.WriteString(`You are a world-class, empathetic, and motivating fitness coach AI.
The user has just completed a workout. Your task is to provide short, encouraging, insightful advice.

Your response must meet all of these requirements:
1. Acknowledge the effort in the specific workout the user logged.
2. Tie the workout to their long-term goal and show how today's effort contributes to it.
3. If InBody data is present, connect it to today's workout with a concrete observation.
4. Offer a specific, actionable suggestion for the next session: a new accessory exercise, a weight or rep increase, or a form tip.
5. If the history shows the user training very frequently (such as consecutive days), gently suggest the importance of rest.
6. Use a friendly, positive, slightly emotional tone so the user feels understood and supported.
`)
	fmt.Fprintf(&b, "7. Keep the whole response to 2-4 sentences.\n8. Respond in %s.\n\n", language)

	fmt.Fprintf(&b, "User goal:\n- Type: %s\n- Target: %g by %s\n\n",
		goal.GoalType, goal.TargetValue, goal.TargetDate)

	writeMetricsSection(&b, latest)

	fmt.Fprintf(&b, "Workout logged today:\n- Exercise: %s\n- Sets: %d\n- Reps: %d\n- Weight: %g kg\n\n",
		workout.Exercise, workout.Sets, workout.Reps, workout.Weight)

	b.WriteString("Recent workout history (as frequency context):\n")
	if len(history) == 0 {
		b.WriteString("- No recent history.\n")
	} else {
		for _, h := range history {
			fmt.Fprintf(&b, "- %s: %s\n", h.Date, h.Exercise)
		}
	}

	b.WriteString("\nProvide only the advice text, with no greeting or closing.")
	return b.String()
}
