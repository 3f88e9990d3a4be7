package openaicompat

import (
	"github.com/thinkspaces/thinkspaces"
)

// ParseResponse converts an OpenAI-format ChatResponse to a CompletionResponse.
// Content comes from choices[0]; an empty choice list yields empty output.
// model is reported when the response does not name one.
func ParseResponse(resp ChatResponse, model string) thinkspaces.CompletionResponse {
	out := thinkspaces.CompletionResponse{Metadata: map[string]any{"model": model}}
	if resp.Model != "" {
		out.Metadata["model"] = resp.Model
	}
	if resp.ID != "" {
		out.Metadata["id"] = resp.ID
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		if choice.Message != nil {
			out.Output = choice.Message.Content
		}
		if choice.FinishReason != "" {
			out.Metadata["finish_reason"] = choice.FinishReason
		}
	}

	if resp.Usage != nil {
		total := resp.Usage.TotalTokens
		if total == 0 {
			total = resp.Usage.PromptTokens + resp.Usage.CompletionTokens
		}
		out.Metadata["usage"] = thinkspaces.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  total,
		}.Map()
	}
	return out
}
