package coach

import "testing"

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"whitespace", "  \n```json\n{}\n```  \n", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		open  byte
		close byte
		want  string
	}{
		{"bare object", `{"a":1}`, '{', '}', `{"a":1}`},
		{"object in prose", `Here you go: {"a":1} hope it helps`, '{', '}', `{"a":1}`},
		{"nested object", `{"a":{"b":2}}`, '{', '}', `{"a":{"b":2}}`},
		{"brace inside string", `{"a":"}{"}`, '{', '}', `{"a":"}{"}`},
		{"array", "```json\n[1,2,3]\n```", '[', ']', `[1,2,3]`},
		{"array in prose", `Sure! [{"day":"Mon"}] Enjoy.`, '[', ']', `[{"day":"Mon"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON(tt.in, tt.open, tt.close)
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON_NoneFound(t *testing.T) {
	if got := extractJSON("sorry, I cannot help with that", '{', '}'); got != nil {
		t.Errorf("expected nil, got %q", got)
	}
	if got := extractJSON(`{"unterminated": `, '{', '}'); got != nil {
		t.Errorf("expected nil for unbalanced input, got %q", got)
	}
}
