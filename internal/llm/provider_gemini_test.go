package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// geminiStub records the last decoded request and replies with a canned
// generateContent response.
func geminiStub(t *testing.T, reply string) (*httptest.Server, *map[string]any) {
	t.Helper()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content":      map[string]any{"parts": []map[string]any{{"text": reply}}},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]any{"totalTokenCount": 42},
			"modelVersion":  "gemini-2.5-flash-001",
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestGeminiProvider_Generate(t *testing.T) {
	srv, captured := geminiStub(t, "hello from gemini")
	p := NewGeminiProvider("test-key", "gemini-2.5-flash", srv.URL)

	resp, err := p.Generate(context.Background(), "be terse", "say hi", Options{
		Temperature: 0.3,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "hello from gemini" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.TokensUsed != 42 || resp.StopReason != "STOP" {
		t.Errorf("tokens=%d stop=%q", resp.TokensUsed, resp.StopReason)
	}
	if resp.Model != "gemini-2.5-flash-001" {
		t.Errorf("model = %q", resp.Model)
	}

	req := *captured
	if _, ok := req["system_instruction"]; !ok {
		t.Error("expected system_instruction in request")
	}
	cfg := req["generationConfig"].(map[string]any)
	if cfg["temperature"].(float64) != 0.3 {
		t.Errorf("temperature = %v", cfg["temperature"])
	}
	if _, ok := cfg["responseMimeType"]; ok {
		t.Error("responseMimeType should be absent without JSONOutput")
	}
}

func TestGeminiProvider_JSONOutput(t *testing.T) {
	srv, captured := geminiStub(t, `{"ok":true}`)
	p := NewGeminiProvider("test-key", "", srv.URL)

	if _, err := p.Generate(context.Background(), "", "json please", Options{JSONOutput: true}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	cfg := (*captured)["generationConfig"].(map[string]any)
	if cfg["responseMimeType"] != "application/json" {
		t.Errorf("responseMimeType = %v", cfg["responseMimeType"])
	}
}

func TestGeminiProvider_Vision(t *testing.T) {
	srv, captured := geminiStub(t, `{"weight": 72.5}`)
	p := NewGeminiProvider("test-key", "", srv.URL)

	image := []byte{0x89, 0x50, 0x4e, 0x47}
	if _, err := p.GenerateVision(context.Background(), "extract", image, "image/png", Options{JSONOutput: true}); err != nil {
		t.Fatalf("vision: %v", err)
	}

	contents := (*captured)["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want text + inline image", len(parts))
	}
	inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
	if inline["mime_type"] != "image/png" {
		t.Errorf("mime_type = %v", inline["mime_type"])
	}
	if inline["data"] == "" {
		t.Error("expected base64 image data")
	}
}

func TestGeminiProvider_ChatRoleMapping(t *testing.T) {
	srv, captured := geminiStub(t, "reply")
	p := NewGeminiProvider("test-key", "", srv.URL)

	history := []Message{
		{Role: RoleUser, Content: "context"},
		{Role: RoleAssistant, Content: "ack"},
		{Role: RoleUser, Content: "question"},
	}
	if _, err := p.Chat(context.Background(), "", history, Options{}); err != nil {
		t.Fatalf("chat: %v", err)
	}

	contents := (*captured)["contents"].([]any)
	if len(contents) != 3 {
		t.Fatalf("contents = %d, want 3", len(contents))
	}
	// The assistant role must be sent as "model" on the wire.
	if role := contents[1].(map[string]any)["role"]; role != "model" {
		t.Errorf("assistant wire role = %v, want model", role)
	}
	if role := contents[2].(map[string]any)["role"]; role != "user" {
		t.Errorf("user wire role = %v", role)
	}
}

func TestGeminiProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"status":"RESOURCE_EXHAUSTED","message":"quota exceeded"}}`))
	}))
	defer srv.Close()
	p := NewGeminiProvider("test-key", "", srv.URL)

	_, err := p.Generate(context.Background(), "", "hi", Options{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.IsRateLimit() {
		t.Error("429 should report as rate limit")
	}
	if apiErr.Code != "RESOURCE_EXHAUSTED" || apiErr.Message != "quota exceeded" {
		t.Errorf("unexpected error detail: %+v", apiErr)
	}
}
