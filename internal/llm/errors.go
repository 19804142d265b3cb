package llm

import (
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from an LLM provider's API.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("llm: %s API error %d (%s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("llm: %s API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsRateLimit reports whether the provider rejected the call for quota or
// rate reasons.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// UserMessage returns a short, user-presentable description of the failure.
func (e *APIError) UserMessage() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return fmt.Sprintf("The %s API rejected the configured credentials. Please check the API key.", e.Provider)
	case e.IsRateLimit():
		return fmt.Sprintf("The %s API is rate limiting requests. Please wait a moment and try again.", e.Provider)
	case e.StatusCode >= 500:
		return fmt.Sprintf("The %s API is currently unavailable. Please try again later.", e.Provider)
	default:
		return fmt.Sprintf("The %s API returned an error: %s", e.Provider, e.Message)
	}
}
