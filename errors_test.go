package thinkspaces

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrLLMError(t *testing.T) {
	tests := []struct {
		provider string
		message  string
		want     string
	}{
		{"ollama", "failed to reach Ollama at http://localhost:11434", "ollama: failed to reach Ollama at http://localhost:11434"},
		{"openai", "context length exceeded", "openai: context length exceeded"},
	}
	for _, tt := range tests {
		e := &ErrLLM{Provider: tt.provider, Message: tt.message}
		if got := e.Error(); got != tt.want {
			t.Errorf("ErrLLM{%q, %q}.Error() = %q, want %q", tt.provider, tt.message, got, tt.want)
		}
	}
}

func TestErrLLMUnwrap(t *testing.T) {
	e := &ErrLLM{Provider: "openai", Message: "request failed", Err: errBoom}
	if !errors.Is(e, errBoom) {
		t.Error("ErrLLM should unwrap to its cause")
	}
}

func TestErrHTTPError(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   string
	}{
		{429, "too many requests", "http 429: too many requests"},
		{500, "internal server error", "http 500: internal server error"},
	}
	for _, tt := range tests {
		e := &ErrHTTP{Status: tt.status, Body: tt.body}
		if got := e.Error(); got != tt.want {
			t.Errorf("ErrHTTP{%d, %q}.Error() = %q, want %q", tt.status, tt.body, got, tt.want)
		}
	}
}

func TestErrProviderUnavailableMessage(t *testing.T) {
	e := &ErrProviderUnavailable{Name: "claude", Available: []string{"echo"}}
	if got, want := e.Error(), "provider 'claude' is not available"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrInvalidRequestMessage(t *testing.T) {
	if got := (&ErrInvalidRequest{Field: "prompt", Message: "must not be empty"}).Error(); got != "prompt: must not be empty" {
		t.Errorf("unexpected message %q", got)
	}
	if got := (&ErrInvalidRequest{Message: "bad"}).Error(); got != "bad" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"config", &ErrConfig{Provider: "openai", Message: "missing key"}, true},
		{"unavailable", &ErrProviderUnavailable{Name: "x"}, true},
		{"llm", &ErrLLM{Provider: "ollama", Message: "down"}, true},
		{"http", &ErrHTTP{Status: 502}, true},
		{"invalid", &ErrInvalidRequest{Field: "prompt"}, true},
		{"wrapped", fmt.Errorf("outer: %w", &ErrConfig{Provider: "groq"}), true},
		{"store", fmt.Errorf("store interaction: %w", errBoom), false},
		{"notfound", ErrNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClientError(tt.err); got != tt.want {
				t.Errorf("IsClientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
