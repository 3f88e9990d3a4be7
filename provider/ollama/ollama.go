// Package ollama implements a provider for a local Ollama server using its
// native /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/thinkspaces/thinkspaces"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "llama3"
	// DefaultBaseURL is used when OLLAMA_BASE_URL is unset.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultTimeout bounds each generate call.
	DefaultTimeout = 30 * time.Second
	// EnvBaseURL names the environment variable holding the server address.
	EnvBaseURL = "OLLAMA_BASE_URL"
)

const maxErrorBody = 4 << 10

// Provider sends flattened prompts to Ollama.
type Provider struct {
	model   string
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an Ollama provider.
type Option func(*Provider)

// WithBaseURL sets the server address instead of reading OLLAMA_BASE_URL.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithTimeout sets the per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
}

// WithHTTPClient sets a custom HTTP client. WithTimeout is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// New creates an Ollama provider. Construction never fails; an unreachable
// server surfaces on Generate.
func New(model string, opts ...Option) (*Provider, error) {
	if model == "" {
		model = DefaultModel
	}
	p := &Provider{
		model:   model,
		baseURL: os.Getenv(EnvBaseURL),
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	if p.baseURL == "" {
		p.baseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(p)
	}
	p.baseURL = strings.TrimRight(p.baseURL, "/")
	if p.client == nil {
		p.client = &http.Client{Timeout: p.timeout}
	}
	return p, nil
}

// Factory adapts New to thinkspaces.Factory, binding opts.
func Factory(opts ...Option) thinkspaces.Factory {
	return func(model string) (thinkspaces.Provider, error) {
		return New(model, opts...)
	}
}

// Name returns "ollama".
func (p *Provider) Name() string { return "ollama" }

// BaseURL returns the server address in use.
func (p *Provider) BaseURL() string { return p.baseURL }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Generate posts a non-streaming /api/generate request.
func (p *Provider) Generate(ctx context.Context, req thinkspaces.CompletionRequest) (thinkspaces.CompletionResponse, error) {
	model := req.Model()
	if model == "" {
		model = p.model
	}

	payload, err := json.Marshal(generateRequest{Model: model, Prompt: FlattenPrompt(req), Stream: false})
	if err != nil {
		return thinkspaces.CompletionResponse{}, p.wrapErr(fmt.Sprintf("marshal request: %v", err), err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return thinkspaces.CompletionResponse{}, p.wrapErr(fmt.Sprintf("create request: %v", err), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return thinkspaces.CompletionResponse{}, p.wrapErr(fmt.Sprintf("failed to reach Ollama at %s: %v", p.baseURL, err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return thinkspaces.CompletionResponse{}, p.wrapErr(fmt.Sprintf("read response: %v", err), err)
	}
	if resp.StatusCode != http.StatusOK {
		text := string(body)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return thinkspaces.CompletionResponse{}, p.wrapErr(
			fmt.Sprintf("Ollama returned status %d: %s", resp.StatusCode, text),
			&thinkspaces.ErrHTTP{Status: resp.StatusCode, Body: text},
		)
	}
	if !gjson.ValidBytes(body) {
		return thinkspaces.CompletionResponse{}, p.wrapErr("Ollama returned invalid JSON", nil)
	}

	out := parseResponse(body, model)
	p.logger.Debug("ollama generate", "model", out.Metadata["model"], "duration", time.Since(start))
	return out, nil
}

// FlattenPrompt renders system, context and prompt as one text prompt:
// "System:\n…", "Context:\n…" and the prompt, separated by blank lines.
func FlattenPrompt(req thinkspaces.CompletionRequest) string {
	var parts []string
	if req.System != "" {
		parts = append(parts, "System:\n"+req.System)
	}
	if len(req.Context) > 0 {
		parts = append(parts, "Context:\n"+strings.Join(req.Context, "\n"))
	}
	parts = append(parts, req.Prompt)
	return strings.Join(parts, "\n\n")
}

func parseResponse(body []byte, model string) thinkspaces.CompletionResponse {
	md := map[string]any{"model": model}
	if m := gjson.GetBytes(body, "model"); m.Exists() && m.String() != "" {
		md["model"] = m.String()
	}
	if c := gjson.GetBytes(body, "created_at"); c.Exists() {
		md["created_at"] = c.String()
	}

	in, out := gjson.GetBytes(body, "prompt_eval_count"), gjson.GetBytes(body, "eval_count")
	if in.Exists() || out.Exists() {
		md["usage"] = thinkspaces.Usage{
			InputTokens:  int(in.Int()),
			OutputTokens: int(out.Int()),
			TotalTokens:  int(in.Int() + out.Int()),
		}.Map()
	}
	if d := gjson.GetBytes(body, "total_duration"); d.Exists() {
		md["total_duration_ns"] = d.Int()
	}

	return thinkspaces.CompletionResponse{
		Output:   gjson.GetBytes(body, "response").String(),
		Metadata: md,
	}
}

func (p *Provider) wrapErr(msg string, err error) error {
	return &thinkspaces.ErrLLM{Provider: "ollama", Message: msg, Err: err}
}

var _ thinkspaces.Provider = (*Provider)(nil)
