package coach

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/models"
)

// ErrEmptyConversation is returned when a chat call arrives with no
// messages.
var ErrEmptyConversation = errors.New("coach: conversation has no messages")

// chatAcknowledgment is the synthetic model turn inserted after the context
// message, so the conversation proper starts from an accepted briefing.
const chatAcknowledgment = "Understood. I will act as the user's personal fitness coach, taking all of their data into account. How can I help?"

// Chat sends the running conversation to the model together with a context
// message rebuilt fresh from the store: profile, active goal, the last 5
// body-metric snapshots, the last 10 workouts, and the selected plan. The
// final message is the new user turn; everything before it is history.
func Chat(ctx context.Context, db *sql.DB, provider llm.Provider, userID string, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyConversation
	}

	uc, err := BuildUserContext(db, userID)
	if err != nil {
		return "", err
	}

	contextMsg, err := buildChatContext(uc, models.GetSetting(db, "coach.language"))
	if err != nil {
		return "", err
	}

	// Context as the opening user turn, a synthetic acknowledgment, then
	// the supplied conversation with its final element as the new turn.
	history := make([]llm.Message, 0, len(messages)+2)
	history = append(history,
		llm.Message{Role: llm.RoleUser, Content: contextMsg},
		llm.Message{Role: llm.RoleAssistant, Content: chatAcknowledgment},
	)
	history = append(history, messages...)

	resp, err := provider.Chat(ctx, "", history, llm.Options{
		Temperature: llm.TemperatureFromSettings(db),
		MaxTokens:   2048,
	})
	if err != nil {
		return "", fmt.Errorf("coach: chat: %w", err)
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", validationErrorf("empty chat reply")
	}
	return reply, nil
}

// buildChatContext renders the user context as labeled JSON sections.
func buildChatContext(uc *UserContext, language string) (string, error) {
	var b strings.Builder

	b.WriteString(`You are a world-class, empathetic, data-driven personal fitness coach AI. The user has given you access to all of their fitness data. Your job is to answer their questions supportively and insightfully, taking every piece of available data into account.

Below is a complete summary of the user's data.`)

	sections := []struct {
		title string
		data  any
	}{
		{"User profile", uc.Profile},
		{"Current active goal", uc.ActiveGoal},
		{"Latest body measurements (up to 5)", uc.BodyMetrics},
		{"Recent workout history (up to 10)", uc.WorkoutHistory},
		{"Currently selected training plan", uc.SelectedPlan},
	}
	for _, s := range sections {
		section, err := formatSection(s.title, s.data)
		if err != nil {
			return "", err
		}
		b.WriteString(section)
	}

	fmt.Fprintf(&b, "\nBased on the complete context above, generate concise, helpful, and encouraging responses to the conversation that follows, in %s.", language)
	return b.String(), nil
}

// formatSection renders one labeled JSON block, or nothing when the data is
// absent or empty.
func formatSection(title string, data any) (string, error) {
	switch v := data.(type) {
	case nil:
		return "", nil
	case *ProfileSummary:
		if v == nil {
			return "", nil
		}
	case *GoalSummary:
		if v == nil {
			return "", nil
		}
	case *PlanSummary:
		if v == nil {
			return "", nil
		}
	case []MetricsSummary:
		if len(v) == 0 {
			return "", nil
		}
	case []WorkoutSummary:
		if len(v) == 0 {
			return "", nil
		}
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("coach: marshal %s section: %w", title, err)
	}
	return fmt.Sprintf("\n## %s\n```json\n%s\n```\n", title, encoded), nil
}
