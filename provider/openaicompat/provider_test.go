package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thinkspaces/thinkspaces"
)

func TestProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content-type: %s", r.Header.Get("Content-Type"))
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "mixtral" {
			t.Errorf("expected request model to win, got %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatResponse{
			ID:      "chatcmpl-1",
			Choices: []Choice{{Message: &ChoiceMessage{Role: "assistant", Content: "Hello!"}}},
			Usage:   &Usage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7},
		})
	}))
	defer srv.Close()

	p := NewProvider("test-key", "llama3", srv.URL, WithName("groq"), WithMetadata(map[string]any{"provider": "groq"}))

	req := thinkspaces.NewCompletionRequest("Hi", "be brief", nil, map[string]any{"model": "mixtral"})
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp.Output != "Hello!" {
		t.Errorf("expected output 'Hello!', got %q", resp.Output)
	}
	if resp.Metadata["model"] != "mixtral" {
		t.Errorf("expected model mixtral, got %v", resp.Metadata["model"])
	}
	if resp.Metadata["provider"] != "groq" {
		t.Errorf("expected provider metadata, got %v", resp.Metadata["provider"])
	}
	if u := thinkspaces.UsageFromMetadata(resp.Metadata); u.TotalTokens != 7 {
		t.Errorf("unexpected usage: %+v", u)
	}
}

func TestProvider_Generate_ConstructorModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama3" {
			t.Errorf("expected constructor model, got %s", req.Model)
		}
		json.NewEncoder(w).Encode(ChatResponse{Choices: []Choice{{Message: &ChoiceMessage{Content: "ok"}}}})
	}))
	defer srv.Close()

	p := NewProvider("", "llama3", srv.URL)
	if _, err := p.Generate(context.Background(), thinkspaces.NewCompletionRequest("Hi", "", nil, nil)); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
}

func TestProvider_Generate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	p := NewProvider("bad-key", "m", srv.URL)

	_, err := p.Generate(context.Background(), thinkspaces.NewCompletionRequest("Hi", "", nil, nil))
	var httpErr *thinkspaces.ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *thinkspaces.ErrHTTP, got %T", err)
	}
	if httpErr.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", httpErr.Status)
	}
	if httpErr.Body != `{"error":"invalid api key"}` {
		t.Errorf("unexpected body: %q", httpErr.Body)
	}
	var llmErr *thinkspaces.ErrLLM
	if !errors.As(err, &llmErr) || llmErr.Provider != "openai" {
		t.Errorf("expected ErrLLM naming the provider, got %v", err)
	}
}

func TestProvider_Generate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewProvider("", "m", url, WithName("local"))
	_, err := p.Generate(context.Background(), thinkspaces.NewCompletionRequest("Hi", "", nil, nil))
	var llmErr *thinkspaces.ErrLLM
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected *thinkspaces.ErrLLM, got %T", err)
	}
	if llmErr.Provider != "local" {
		t.Errorf("expected provider 'local', got %q", llmErr.Provider)
	}
}

func TestProvider_Generate_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewProvider("", "m", srv.URL).Generate(context.Background(), thinkspaces.NewCompletionRequest("Hi", "", nil, nil))
	var llmErr *thinkspaces.ErrLLM
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected *thinkspaces.ErrLLM, got %T", err)
	}
}

func TestProvider_Name(t *testing.T) {
	p := NewProvider("key", "model", "http://localhost")
	if p.Name() != "openai" {
		t.Errorf("expected default name 'openai', got %q", p.Name())
	}

	p = NewProvider("key", "model", "http://localhost", WithName("groq"))
	if p.Name() != "groq" {
		t.Errorf("expected name 'groq', got %q", p.Name())
	}
}

func TestProvider_NoAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("expected no auth header for empty API key")
		}
		json.NewEncoder(w).Encode(ChatResponse{Choices: []Choice{{Message: &ChoiceMessage{Content: "OK"}}}})
	}))
	defer srv.Close()

	// Local servers such as vLLM don't need API keys.
	resp, err := NewProvider("", "llama3", srv.URL).Generate(context.Background(), thinkspaces.NewCompletionRequest("Hi", "", nil, nil))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp.Output != "OK" {
		t.Errorf("expected output 'OK', got %q", resp.Output)
	}
}

func TestProvider_WithOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Temperature == nil || *req.Temperature != 0.7 {
			t.Errorf("expected temperature 0.7, got %v", req.Temperature)
		}
		if req.MaxTokens != 2048 {
			t.Errorf("expected max_tokens 2048, got %d", req.MaxTokens)
		}
		json.NewEncoder(w).Encode(ChatResponse{Choices: []Choice{{Message: &ChoiceMessage{Content: "OK"}}}})
	}))
	defer srv.Close()

	p := NewProvider("key", "gpt-4o", srv.URL,
		WithOptions(WithTemperature(0.7), WithMaxTokens(2048)),
	)
	if _, err := p.Generate(context.Background(), thinkspaces.NewCompletionRequest("Hi", "", nil, nil)); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
}
