package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/models"
)

func TestChat(t *testing.T) {
	db := testDB(t)
	seedUser(t, db)
	mock := llm.NewMockProvider("You are on track for your goal.")

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: "How is my progress?"},
	}
	reply, err := Chat(context.Background(), db, mock, testUserID, messages)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "You are on track for your goal." {
		t.Errorf("reply = %q", reply)
	}

	// Context turn + acknowledgment + the conversation.
	h := mock.LastHistory
	if len(h) != 3 {
		t.Fatalf("history = %d turns, want 3", len(h))
	}
	if h[0].Role != llm.RoleUser || h[1].Role != llm.RoleAssistant {
		t.Errorf("unexpected leading roles: %s, %s", h[0].Role, h[1].Role)
	}
	if h[2].Content != "How is my progress?" {
		t.Errorf("last turn = %q", h[2].Content)
	}

	contextMsg := h[0].Content
	for _, want := range []string{
		"## User profile", "## Current active goal",
		"## Latest body measurements (up to 5)",
		"## Recent workout history (up to 10)",
		"## Currently selected training plan",
		`"goal_type": "reduce_fat"`,
		`"exercise": "Squat"`,
		"in Japanese",
	} {
		if !strings.Contains(contextMsg, want) {
			t.Errorf("context message missing %q", want)
		}
	}
}

func TestChat_MultiTurnKeepsOrder(t *testing.T) {
	db := testDB(t)
	mock := llm.NewMockProvider("Sure.")

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: "first question"},
		{Role: llm.RoleAssistant, Content: "first answer"},
		{Role: llm.RoleUser, Content: "second question"},
	}
	if _, err := Chat(context.Background(), db, mock, testUserID, messages); err != nil {
		t.Fatalf("chat: %v", err)
	}

	h := mock.LastHistory
	if len(h) != 5 {
		t.Fatalf("history = %d turns, want 5", len(h))
	}
	if h[3].Role != llm.RoleAssistant || h[3].Content != "first answer" {
		t.Errorf("turn 3 = %+v", h[3])
	}
	if h[4].Content != "second question" {
		t.Errorf("turn 4 = %+v", h[4])
	}
}

func TestChat_SkipsEmptySections(t *testing.T) {
	db := testDB(t)
	// No data at all for this user.
	mock := llm.NewMockProvider("Hi!")

	if _, err := Chat(context.Background(), db, mock, testUserID,
		[]llm.Message{{Role: llm.RoleUser, Content: "hello"}}); err != nil {
		t.Fatalf("chat: %v", err)
	}

	contextMsg := mock.LastHistory[0].Content
	if strings.Contains(contextMsg, "## Current active goal") {
		t.Error("empty goal section should be omitted")
	}
	if strings.Contains(contextMsg, "## Recent workout history") {
		t.Error("empty workout section should be omitted")
	}
}

func TestChat_ContextIsRebuiltPerCall(t *testing.T) {
	db := testDB(t)
	mock := llm.NewMockProvider("Noted.")
	ask := []llm.Message{{Role: llm.RoleUser, Content: "what's my goal?"}}

	if _, err := Chat(context.Background(), db, mock, testUserID, ask); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if strings.Contains(mock.LastHistory[0].Content, "gain_muscle") {
		t.Fatal("goal should not be present yet")
	}

	if _, err := models.CreateGoal(db, testUserID, models.GoalGainMuscle, 35, "2027-06-30"); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	if _, err := Chat(context.Background(), db, mock, testUserID, ask); err != nil {
		t.Fatalf("chat after goal: %v", err)
	}
	if !strings.Contains(mock.LastHistory[0].Content, "gain_muscle") {
		t.Error("fresh goal should appear in the next call's context")
	}
}

func TestChat_EmptyConversation(t *testing.T) {
	db := testDB(t)
	mock := llm.NewMockProvider("hello")

	_, err := Chat(context.Background(), db, mock, testUserID, nil)
	if !errors.Is(err, ErrEmptyConversation) {
		t.Errorf("expected ErrEmptyConversation, got %v", err)
	}
}

func TestChat_EmptyReply(t *testing.T) {
	db := testDB(t)
	mock := llm.NewMockProvider("")

	_, err := Chat(context.Background(), db, mock, testUserID,
		[]llm.Message{{Role: llm.RoleUser, Content: "hello"}})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
