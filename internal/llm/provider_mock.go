package llm

import (
	"context"
	"time"
)

// MockProvider implements Provider for testing. It returns a fixed response
// and records the prompts it received.
type MockProvider struct {
	FixedContent string
	GenerateErr  error

	// Captured inputs from the last call, for assertions.
	LastSystemPrompt string
	LastUserPrompt   string
	LastImage        []byte
	LastMimeType     string
	LastHistory      []Message
	LastOptions      Options
}

// NewMockProvider creates a mock provider with a canned response.
func NewMockProvider(content string) *MockProvider {
	return &MockProvider{FixedContent: content}
}

func (p *MockProvider) Name() string { return "Mock" }

func (p *MockProvider) respond() (*Response, error) {
	if p.GenerateErr != nil {
		return nil, p.GenerateErr
	}
	return &Response{
		Content:    p.FixedContent,
		Model:      "mock",
		TokensUsed: 100,
		Duration:   time.Millisecond,
		StopReason: "stop",
	}, nil
}

func (p *MockProvider) Generate(_ context.Context, systemPrompt, userPrompt string, opts Options) (*Response, error) {
	p.LastSystemPrompt = systemPrompt
	p.LastUserPrompt = userPrompt
	p.LastOptions = opts
	return p.respond()
}

func (p *MockProvider) GenerateVision(_ context.Context, prompt string, image []byte, mimeType string, opts Options) (*Response, error) {
	p.LastUserPrompt = prompt
	p.LastImage = image
	p.LastMimeType = mimeType
	p.LastOptions = opts
	return p.respond()
}

func (p *MockProvider) Chat(_ context.Context, systemPrompt string, history []Message, opts Options) (*Response, error) {
	p.LastSystemPrompt = systemPrompt
	p.LastHistory = history
	p.LastOptions = opts
	return p.respond()
}
