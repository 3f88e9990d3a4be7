package openaicompat

import (
	"testing"

	"github.com/thinkspaces/thinkspaces"
)

func TestParseResponse_TextResponse(t *testing.T) {
	resp := ChatResponse{
		ID:    "chatcmpl-123",
		Model: "llama-3.1-70b-versatile",
		Choices: []Choice{{
			Index:        0,
			Message:      &ChoiceMessage{Role: "assistant", Content: "Hello! How can I help you?"},
			FinishReason: "stop",
		}},
		Usage: &Usage{PromptTokens: 10, CompletionTokens: 8, TotalTokens: 18},
	}

	result := ParseResponse(resp, "requested")

	if result.Output != "Hello! How can I help you?" {
		t.Errorf("unexpected output: %q", result.Output)
	}
	if result.Metadata["model"] != "llama-3.1-70b-versatile" {
		t.Errorf("expected response model, got %v", result.Metadata["model"])
	}
	if result.Metadata["finish_reason"] != "stop" {
		t.Errorf("unexpected finish_reason: %v", result.Metadata["finish_reason"])
	}
	usage := thinkspaces.UsageFromMetadata(result.Metadata)
	if usage.InputTokens != 10 || usage.OutputTokens != 8 || usage.TotalTokens != 18 {
		t.Errorf("unexpected usage: %+v", usage)
	}
}

func TestParseResponse_FallsBackToRequestedModel(t *testing.T) {
	result := ParseResponse(ChatResponse{Choices: []Choice{{Message: &ChoiceMessage{Content: "x"}}}}, "requested")
	if result.Metadata["model"] != "requested" {
		t.Errorf("expected requested model, got %v", result.Metadata["model"])
	}
	if _, ok := result.Metadata["usage"]; ok {
		t.Error("usage should be omitted when unknown")
	}
}

func TestParseResponse_EmptyChoices(t *testing.T) {
	result := ParseResponse(ChatResponse{ID: "chatcmpl-empty"}, "m")
	if result.Output != "" {
		t.Errorf("expected empty output, got %q", result.Output)
	}
	if result.Metadata["id"] != "chatcmpl-empty" {
		t.Errorf("unexpected id: %v", result.Metadata["id"])
	}
}

func TestParseResponse_TotalDerived(t *testing.T) {
	result := ParseResponse(ChatResponse{Usage: &Usage{PromptTokens: 4, CompletionTokens: 6}}, "m")
	if got := thinkspaces.UsageFromMetadata(result.Metadata).TotalTokens; got != 10 {
		t.Errorf("expected derived total 10, got %d", got)
	}
}
