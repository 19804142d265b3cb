// Package coach implements the AI coaching features: InBody scan
// extraction, weekly plan generation, post-workout advice, and the data
// coach chat. Each feature assembles its context from the store, builds a
// prompt, calls an llm.Provider, and strictly validates what comes back.
package coach

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError is returned when model output does not match the schema a
// feature demands. The output is never trusted as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "coach: invalid model output: " + e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// stripCodeFences removes Markdown code-fence wrapping that models sometimes
// add despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// extractJSON finds the first balanced JSON value in the text delimited by
// open/close (object or array), after stripping code fences.
func extractJSON(s string, open, close byte) []byte {
	s = stripCodeFences(s)

	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return []byte(candidate)
				}
				start = -1
			}
		}
	}
	return nil
}
