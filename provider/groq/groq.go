// Package groq implements the Groq hosted inference provider on top of the
// OpenAI-compatible chat completions API.
package groq

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/thinkspaces/thinkspaces"
	"github.com/thinkspaces/thinkspaces/provider/openaicompat"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "llama-3.1-70b-versatile"
	// BaseURL is Groq's OpenAI-compatible endpoint.
	BaseURL = "https://api.groq.com/openai/v1"
	// EnvAPIKey names the environment variable read when no key is passed.
	EnvAPIKey = "GROQ_API_KEY"
)

// Provider sends completions to Groq.
type Provider struct {
	inner *openaicompat.Provider
}

type config struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
	opts    []openaicompat.Option
}

// Option configures a Groq provider.
type Option func(*config)

// WithAPIKey sets the API key instead of reading GROQ_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithBaseURL points the provider at a different endpoint, e.g. a proxy.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets the per-request HTTP timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.client = hc }
}

// WithRequestOptions applies generation parameters to every request.
func WithRequestOptions(opts ...openaicompat.Option) Option {
	return func(c *config) { c.opts = append(c.opts, opts...) }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New creates a Groq provider. It fails with *thinkspaces.ErrConfig when no
// API key is passed and GROQ_API_KEY is unset; no network call is made.
func New(model string, opts ...Option) (*Provider, error) {
	cfg := config{baseURL: BaseURL, timeout: openaicompat.DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv(EnvAPIKey)
	}
	if cfg.apiKey == "" {
		return nil, &thinkspaces.ErrConfig{Provider: "groq", Message: EnvAPIKey + " is not set"}
	}
	if model == "" {
		model = DefaultModel
	}

	popts := []openaicompat.ProviderOption{
		openaicompat.WithName("groq"),
		openaicompat.WithTimeout(cfg.timeout),
		openaicompat.WithMetadata(map[string]any{"provider": "groq"}),
	}
	if cfg.client != nil {
		popts = append(popts, openaicompat.WithHTTPClient(cfg.client))
	}
	if cfg.logger != nil {
		popts = append(popts, openaicompat.WithLogger(cfg.logger))
	}
	if len(cfg.opts) > 0 {
		popts = append(popts, openaicompat.WithOptions(cfg.opts...))
	}
	return &Provider{inner: openaicompat.NewProvider(cfg.apiKey, model, cfg.baseURL, popts...)}, nil
}

// Factory adapts New to thinkspaces.Factory, binding opts.
func Factory(opts ...Option) thinkspaces.Factory {
	return func(model string) (thinkspaces.Provider, error) {
		return New(model, opts...)
	}
}

// Name returns "groq".
func (p *Provider) Name() string { return "groq" }

// Generate sends the request as a chat completion. Non-200 responses are
// returned as *thinkspaces.ErrLLM wrapping *thinkspaces.ErrHTTP.
func (p *Provider) Generate(ctx context.Context, req thinkspaces.CompletionRequest) (thinkspaces.CompletionResponse, error) {
	return p.inner.Generate(ctx, req)
}

var _ thinkspaces.Provider = (*Provider)(nil)
