// Package echo implements a dependency-free provider that reflects its
// input back. It is the default for new agents and a deterministic test
// double.
package echo

import (
	"context"
	"strings"

	"github.com/thinkspaces/thinkspaces"
)

// DefaultModel is reported when no model is configured.
const DefaultModel = "echo"

// Provider echoes the system prompt, context and prompt.
type Provider struct {
	model string
}

// Option configures an echo provider.
type Option func(*Provider)

// New creates an echo provider. It never fails.
func New(model string, opts ...Option) (*Provider, error) {
	if model == "" {
		model = DefaultModel
	}
	p := &Provider{model: model}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Factory adapts New to thinkspaces.Factory.
func Factory(model string) (thinkspaces.Provider, error) {
	return New(model)
}

// Name returns "echo".
func (p *Provider) Name() string { return "echo" }

// Generate joins the non-empty parts "[system]\n<system>", the context
// lines and the prompt with newlines.
func (p *Provider) Generate(_ context.Context, req thinkspaces.CompletionRequest) (thinkspaces.CompletionResponse, error) {
	model := req.Model()
	if model == "" {
		model = p.model
	}

	var parts []string
	if req.System != "" {
		parts = append(parts, "[system]\n"+req.System)
	}
	if len(req.Context) > 0 {
		parts = append(parts, strings.Join(req.Context, "\n"))
	}
	parts = append(parts, req.Prompt)

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return thinkspaces.CompletionResponse{
		Output:   strings.Join(out, "\n"),
		Metadata: map[string]any{"model": model},
	}, nil
}

var _ thinkspaces.Provider = (*Provider)(nil)
