package thinkspaces

import "context"

// Provider abstracts an LLM backend that turns one CompletionRequest into a
// text completion.
type Provider interface {
	// Generate sends the request and returns the complete response.
	// It blocks on the remote or local inference call and honours ctx.
	Generate(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	// Name returns the registry name of the provider (e.g. "openai", "ollama").
	Name() string
}

// Factory constructs a ready-to-use Provider for the given model.
// An empty model selects the provider's default. Factories return *ErrConfig
// when required configuration (credentials, endpoints) is missing.
type Factory func(model string) (Provider, error)
