// Package openai implements the OpenAI chat completions provider using the
// official openai-go SDK.
package openai

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/thinkspaces/thinkspaces"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultTimeout bounds each request.
	DefaultTimeout = 30 * time.Second
	// EnvAPIKey names the environment variable read when no key is passed.
	EnvAPIKey = "OPENAI_API_KEY"
)

// Provider sends completions to OpenAI.
type Provider struct {
	client *openai.Client
	model  string
}

type config struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
	extra   []option.RequestOption
}

// Option configures an OpenAI provider.
type Option func(*config)

// WithAPIKey sets the API key instead of reading OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithBaseURL points the client at a compatible endpoint or proxy.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets the per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.client = hc }
}

// WithRequestOptions passes raw SDK options to the client.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *config) { c.extra = append(c.extra, opts...) }
}

// New creates an OpenAI provider. It fails with *thinkspaces.ErrConfig when
// no API key is passed and OPENAI_API_KEY is unset; no network call is made.
// The SDK's automatic retries are disabled.
func New(model string, opts ...Option) (*Provider, error) {
	cfg := config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv(EnvAPIKey)
	}
	if cfg.apiKey == "" {
		return nil, &thinkspaces.ErrConfig{Provider: "openai", Message: EnvAPIKey + " is not set"}
	}
	if model == "" {
		model = DefaultModel
	}

	ropts := []option.RequestOption{
		option.WithAPIKey(cfg.apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.timeout),
	}
	if cfg.baseURL != "" {
		ropts = append(ropts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.client != nil {
		ropts = append(ropts, option.WithHTTPClient(cfg.client))
	}
	ropts = append(ropts, cfg.extra...)

	return &Provider{client: openai.NewClient(ropts...), model: model}, nil
}

// Factory adapts New to thinkspaces.Factory, binding opts.
func Factory(opts ...Option) thinkspaces.Factory {
	return func(model string) (thinkspaces.Provider, error) {
		return New(model, opts...)
	}
}

// Name returns "openai".
func (p *Provider) Name() string { return "openai" }

// Generate sends one chat completion. SDK failures are wrapped in
// *thinkspaces.ErrLLM; API status errors additionally carry *thinkspaces.ErrHTTP.
func (p *Provider) Generate(ctx context.Context, req thinkspaces.CompletionRequest) (thinkspaces.CompletionResponse, error) {
	model := req.Model()
	if model == "" {
		model = p.model
	}

	chat, err := p.client.Chat.Completions.New(ctx, buildParams(req, model))
	if err != nil {
		return thinkspaces.CompletionResponse{}, wrapErr(err)
	}

	out := thinkspaces.CompletionResponse{Metadata: map[string]any{"model": model}}
	if chat.Model != "" {
		out.Metadata["model"] = chat.Model
	}
	if chat.ID != "" {
		out.Metadata["id"] = chat.ID
	}
	if len(chat.Choices) > 0 {
		out.Output = chat.Choices[0].Message.Content
		if fr := string(chat.Choices[0].FinishReason); fr != "" {
			out.Metadata["finish_reason"] = fr
		}
	}
	if u := chat.Usage; u.TotalTokens > 0 || u.PromptTokens > 0 || u.CompletionTokens > 0 {
		out.Metadata["usage"] = thinkspaces.Usage{
			InputTokens:  int(u.PromptTokens),
			OutputTokens: int(u.CompletionTokens),
			TotalTokens:  int(u.TotalTokens),
		}.Map()
	}
	return out, nil
}

func buildParams(req thinkspaces.CompletionRequest, model string) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 3)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	if len(req.Context) > 0 {
		msgs = append(msgs, openai.SystemMessage("Context:\n"+strings.Join(req.Context, "\n")))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	return openai.ChatCompletionNewParams{
		Messages: openai.F(msgs),
		Model:    openai.F(model),
	}
}

func wrapErr(err error) error {
	llm := &thinkspaces.ErrLLM{Provider: "openai", Message: err.Error(), Err: err}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		llm.Err = &thinkspaces.ErrHTTP{Status: apiErr.StatusCode, Body: err.Error()}
	}
	return llm
}

var _ thinkspaces.Provider = (*Provider)(nil)
