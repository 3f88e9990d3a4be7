package openaicompat

import (
	"encoding/json"
	"testing"

	"github.com/thinkspaces/thinkspaces"
)

func TestBuildBody_SystemAndContext(t *testing.T) {
	req := thinkspaces.NewCompletionRequest("Hello", "You are helpful.", []string{"Artifact: A", "Artifact: B"}, nil)

	body := BuildBody(req, "llama3")

	if body.Model != "llama3" {
		t.Errorf("expected model 'llama3', got %q", body.Model)
	}
	if len(body.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(body.Messages))
	}
	want := []Message{
		{Role: "system", Content: "You are helpful."},
		{Role: "system", Content: "Context:\nArtifact: A\nArtifact: B"},
		{Role: "user", Content: "Hello"},
	}
	for i, m := range want {
		if body.Messages[i] != m {
			t.Errorf("message %d = %+v, want %+v", i, body.Messages[i], m)
		}
	}
}

func TestBuildBody_PromptOnly(t *testing.T) {
	body := BuildBody(thinkspaces.NewCompletionRequest("Hi", "", nil, nil), "m")

	if len(body.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(body.Messages))
	}
	if body.Messages[0].Role != "user" || body.Messages[0].Content != "Hi" {
		t.Errorf("unexpected message: %+v", body.Messages[0])
	}
}

func TestBuildBody_Options(t *testing.T) {
	body := BuildBody(thinkspaces.NewCompletionRequest("Hi", "", nil, nil), "m",
		WithTemperature(0.3), WithMaxTokens(100), WithStop("END"), WithSeed(7))

	if body.Temperature == nil || *body.Temperature != 0.3 {
		t.Errorf("expected temperature 0.3, got %v", body.Temperature)
	}
	if body.MaxTokens != 100 {
		t.Errorf("expected max_tokens 100, got %d", body.MaxTokens)
	}
	if len(body.Stop) != 1 || body.Stop[0] != "END" {
		t.Errorf("unexpected stop: %v", body.Stop)
	}
	if body.Seed == nil || *body.Seed != 7 {
		t.Errorf("expected seed 7, got %v", body.Seed)
	}
}

func TestBuildBody_OmitsUnsetParams(t *testing.T) {
	body := BuildBody(thinkspaces.NewCompletionRequest("Hi", "", nil, nil), "m")
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"temperature", "top_p", "max_tokens", "stop", "seed"} {
		if _, ok := fields[k]; ok {
			t.Errorf("expected %q to be omitted", k)
		}
	}
}

func TestBuildBody_RequestOptionsOverride(t *testing.T) {
	req := thinkspaces.NewCompletionRequest("Hi", "", nil, map[string]any{
		"model":       "ignored-here",
		"temperature": 0.9,
		"max_tokens":  float64(64),
		"stop":        []string{"a", "b"},
		"seed":        "not-a-number",
	})
	body := BuildBody(req, "m", WithTemperature(0.1), WithSeed(3))

	if body.Model != "m" {
		t.Errorf("model = %q, want m", body.Model)
	}
	if body.Temperature == nil || *body.Temperature != 0.9 {
		t.Errorf("request temperature should win, got %v", body.Temperature)
	}
	if body.MaxTokens != 64 {
		t.Errorf("max_tokens = %d, want 64", body.MaxTokens)
	}
	if len(body.Stop) != 2 {
		t.Errorf("stop = %v", body.Stop)
	}
	if body.Seed == nil || *body.Seed != 3 {
		t.Errorf("malformed seed should leave the default, got %v", body.Seed)
	}
}
