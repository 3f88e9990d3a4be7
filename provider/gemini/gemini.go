// Package gemini implements the Google Gemini provider using the
// google.golang.org/genai SDK.
package gemini

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/thinkspaces/thinkspaces"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout bounds each request.
	DefaultTimeout = 30 * time.Second
	// EnvAPIKey names the environment variable read when no key is passed.
	EnvAPIKey = "GEMINI_API_KEY"
)

// Provider sends completions to the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
	temp   *float32
}

type config struct {
	apiKey      string
	baseURL     string
	timeout     time.Duration
	client      *http.Client
	temperature *float32
}

// Option configures a Gemini provider.
type Option func(*config)

// WithAPIKey sets the API key instead of reading GEMINI_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets the per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithHTTPClient sets a custom HTTP client. WithTimeout is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.client = hc }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *config) { c.temperature = &t }
}

// New creates a Gemini provider. It fails with *thinkspaces.ErrConfig when
// no API key is available or the SDK client cannot be built.
func New(model string, opts ...Option) (*Provider, error) {
	cfg := config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv(EnvAPIKey)
	}
	if cfg.apiKey == "" {
		return nil, &thinkspaces.ErrConfig{Provider: "gemini", Message: EnvAPIKey + " is not set"}
	}
	if model == "" {
		model = DefaultModel
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: cfg.timeout}
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.client,
	}
	if cfg.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.baseURL}
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, &thinkspaces.ErrConfig{Provider: "gemini", Message: "create client: " + err.Error()}
	}
	return &Provider{client: client, model: model, temp: cfg.temperature}, nil
}

// Factory adapts New to thinkspaces.Factory, binding opts.
func Factory(opts ...Option) thinkspaces.Factory {
	return func(model string) (thinkspaces.Provider, error) {
		return New(model, opts...)
	}
}

// Name returns "gemini".
func (p *Provider) Name() string { return "gemini" }

// Generate sends the prompt as the only user turn. The system prompt and
// the context block travel in the system instruction, in that order.
func (p *Provider) Generate(ctx context.Context, req thinkspaces.CompletionRequest) (thinkspaces.CompletionResponse, error) {
	model := req.Model()
	if model == "" {
		model = p.model
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents(req), p.generateConfig(req))
	if err != nil {
		return thinkspaces.CompletionResponse{}, &thinkspaces.ErrLLM{Provider: "gemini", Message: err.Error(), Err: err}
	}

	md := map[string]any{"model": model}
	if resp.ModelVersion != "" {
		md["model"] = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		md["usage"] = thinkspaces.Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}.Map()
	}
	return thinkspaces.CompletionResponse{Output: resp.Text(), Metadata: md}, nil
}

func contents(req thinkspaces.CompletionRequest) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
}

// systemInstruction returns nil when the request has neither a system
// prompt nor context.
func systemInstruction(req thinkspaces.CompletionRequest) *genai.Content {
	parts := make([]*genai.Part, 0, 2)
	if req.System != "" {
		parts = append(parts, genai.NewPartFromText(req.System))
	}
	if len(req.Context) > 0 {
		parts = append(parts, genai.NewPartFromText("Context:\n"+strings.Join(req.Context, "\n")))
	}
	if len(parts) == 0 {
		return nil
	}
	return genai.NewContentFromParts(parts, genai.RoleUser)
}

func (p *Provider) generateConfig(req thinkspaces.CompletionRequest) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:       p.temp,
		SystemInstruction: systemInstruction(req),
	}
}

var _ thinkspaces.Provider = (*Provider)(nil)
