package openaicompat

import (
	"strings"

	"github.com/thinkspaces/thinkspaces"
)

// BuildBody converts a CompletionRequest into an OpenAI-format ChatRequest.
// The system prompt and the joined context each become a role:"system"
// message ahead of the user prompt. opts apply first; generation keys in
// req.Options override them.
func BuildBody(req thinkspaces.CompletionRequest, model string, opts ...Option) ChatRequest {
	msgs := make([]Message, 0, 3)
	if req.System != "" {
		msgs = append(msgs, Message{Role: "system", Content: req.System})
	}
	if len(req.Context) > 0 {
		msgs = append(msgs, Message{Role: "system", Content: "Context:\n" + strings.Join(req.Context, "\n")})
	}
	msgs = append(msgs, Message{Role: "user", Content: req.Prompt})

	out := ChatRequest{
		Model:    model,
		Messages: msgs,
	}
	for _, opt := range opts {
		opt(&out)
	}
	for _, opt := range RequestOptions(req.Options) {
		opt(&out)
	}
	return out
}
