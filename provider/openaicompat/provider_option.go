package openaicompat

import (
	"log/slog"
	"maps"
	"net/http"
	"time"
)

// DefaultTimeout bounds each HTTP call unless WithHTTPClient or WithTimeout
// says otherwise.
const DefaultTimeout = 30 * time.Second

// ProviderOption configures a Provider instance.
type ProviderOption func(*Provider)

// WithName sets the provider name returned by Name() (default "openai").
// Use this to distinguish providers in logs and observability.
func WithName(name string) ProviderOption {
	return func(p *Provider) { p.name = name }
}

// WithHTTPClient sets a custom HTTP client (e.g. for proxies or tests).
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *Provider) { p.client = c }
}

// WithTimeout sets the per-request HTTP timeout. Ignored when a custom
// client is supplied.
func WithTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) { p.timeout = d }
}

// WithOptions appends request-level options (temperature, top_p, etc.)
// that are applied to every request made by this provider.
func WithOptions(opts ...Option) ProviderOption {
	return func(p *Provider) { p.opts = append(p.opts, opts...) }
}

// WithMetadata adds fixed keys to every response's metadata.
func WithMetadata(md map[string]any) ProviderOption {
	return func(p *Provider) {
		if p.extra == nil {
			p.extra = map[string]any{}
		}
		maps.Copy(p.extra, md)
	}
}

// WithLogger sets a structured logger. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}
