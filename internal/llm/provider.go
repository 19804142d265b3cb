// Package llm abstracts the generative-model backends the coach features
// call into: text generation, vision-assisted extraction, and multi-turn
// chat. Providers speak plain HTTP to their APIs; all coach-level prompt
// construction lives in internal/coach.
package llm

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ytakeda/fitcoach/internal/models"
)

// ErrNotConfigured is returned when no LLM provider is configured.
var ErrNotConfigured = fmt.Errorf("llm: provider not configured")

// Role values for chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the interface for LLM backends.
type Provider interface {
	// Generate sends a system prompt and user prompt and returns the
	// response text.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts Options) (*Response, error)

	// GenerateVision sends a prompt together with one inline image.
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string, opts Options) (*Response, error)

	// Chat sends a system prompt plus an ordered conversation history and
	// returns the model's next assistant turn.
	Chat(ctx context.Context, systemPrompt string, history []Message, opts Options) (*Response, error)

	// Name returns the display name of this provider (e.g. "Gemini").
	Name() string
}

// Options controls generation behavior.
type Options struct {
	Temperature float64
	MaxTokens   int
	// JSONOutput requests strict JSON from providers that support a
	// response MIME type or response format constraint.
	JSONOutput bool
}

// Response holds the LLM's output.
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	Duration   time.Duration
	StopReason string
}

// NewProviderFromSettings creates a Provider using the current app_settings
// configuration (with env var overrides).
func NewProviderFromSettings(db *sql.DB) (Provider, error) {
	provider := models.GetSetting(db, "llm.provider")
	if provider == "" {
		return nil, ErrNotConfigured
	}

	model := models.GetSetting(db, "llm.model")
	apiKey := models.GetSetting(db, "llm.api_key")
	baseURL := models.GetSetting(db, "llm.base_url")

	switch provider {
	case "gemini":
		return NewGeminiProvider(apiKey, model, baseURL), nil
	case "openai":
		return NewOpenAIProvider(apiKey, model, baseURL), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}

// TemperatureFromSettings reads the temperature setting.
func TemperatureFromSettings(db *sql.DB) float64 {
	v := models.GetSetting(db, "llm.temperature")
	var temp float64
	if _, err := fmt.Sscanf(v, "%f", &temp); err != nil {
		return 0.7 // fallback default
	}
	return temp
}
