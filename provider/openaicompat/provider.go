package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/thinkspaces/thinkspaces"
)

// maxErrorBody caps how much of a failed response body is kept in ErrHTTP.
const maxErrorBody = 4 << 10

// Provider implements thinkspaces.Provider for any OpenAI-compatible API.
// It uses BuildBody and ParseResponse for the wire format.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	timeout time.Duration
	name    string
	opts    []Option
	extra   map[string]any
	logger  *slog.Logger
}

// NewProvider creates an OpenAI-compatible chat provider.
//
// baseURL is the API base (e.g. "https://api.groq.com/openai/v1",
// "http://localhost:8000/v1"). The /chat/completions path is appended
// automatically.
func NewProvider(apiKey, model, baseURL string, opts ...ProviderOption) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		timeout: DefaultTimeout,
		name:    "openai",
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: p.timeout}
	}
	return p
}

// Name returns the provider name (default "openai", configurable via WithName).
func (p *Provider) Name() string { return p.name }

// Model returns the model used when a request carries none.
func (p *Provider) Model() string { return p.model }

// Generate sends a non-streaming chat request and returns the completion.
// The request's "model" option takes precedence over the constructor model.
func (p *Provider) Generate(ctx context.Context, req thinkspaces.CompletionRequest) (thinkspaces.CompletionResponse, error) {
	model := req.Model()
	if model == "" {
		model = p.model
	}
	body := BuildBody(req, model, p.opts...)

	resp, err := p.sendHTTP(ctx, body)
	if err != nil {
		return thinkspaces.CompletionResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return thinkspaces.CompletionResponse{}, p.httpErr(resp)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return thinkspaces.CompletionResponse{}, &thinkspaces.ErrLLM{Provider: p.name, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}

	out := ParseResponse(chatResp, model)
	maps.Copy(out.Metadata, p.extra)
	p.logger.Debug("chat completion", "provider", p.name, "model", model, "status", resp.StatusCode)
	return out, nil
}

// sendHTTP marshals the request body and sends it to the chat completions endpoint.
func (p *Provider) sendHTTP(ctx context.Context, body ChatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &thinkspaces.ErrLLM{Provider: p.name, Message: fmt.Sprintf("marshal request: %v", err), Err: err}
	}

	url := p.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &thinkspaces.ErrLLM{Provider: p.name, Message: fmt.Sprintf("create request: %v", err), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &thinkspaces.ErrLLM{Provider: p.name, Message: fmt.Sprintf("request failed: %v", err), Err: err}
	}
	return resp, nil
}

// httpErr reads the response body and returns an ErrLLM naming this
// provider and wrapping the ErrHTTP.
func (p *Provider) httpErr(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	he := &thinkspaces.ErrHTTP{
		Status: resp.StatusCode,
		Body:   string(body),
	}
	return &thinkspaces.ErrLLM{Provider: p.name, Message: he.Error(), Err: he}
}

// Compile-time interface check.
var _ thinkspaces.Provider = (*Provider)(nil)
