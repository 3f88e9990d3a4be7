package thinkspaces

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// --- Domain types (database records) ---

type Space struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	MemorySummary string `json:"memory_summary,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

type Artifact struct {
	ID        string   `json:"id"`
	SpaceID   string   `json:"space_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content,omitempty"`
	FileName  string   `json:"file_name,omitempty"`
	MimeType  string   `json:"mime_type,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"created_at"`
}

// Agent is a persona bound to a provider and model. Provider defaults to
// DefaultProvider when empty.
type Agent struct {
	ID           string `json:"id"`
	SpaceID      string `json:"space_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

// Interaction is one persisted prompt/response exchange. Provider and Model
// record what was resolved for the call, not the agent's current settings.
type Interaction struct {
	ID           string          `json:"id"`
	AgentID      string          `json:"agent_id"`
	SpaceID      string          `json:"space_id"`
	Prompt       string          `json:"prompt"`
	SystemPrompt string          `json:"system_prompt"`
	Response     string          `json:"response"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	Context      ContextSnapshot `json:"context"`
	CreatedAt    int64           `json:"created_at"`
}

// ArtifactContext is the display form of an artifact fed to a provider.
type ArtifactContext struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	ArtifactID string   `json:"artifact_id"`
}

// HistoryContext is a prior interaction reduced to what a provider sees.
type HistoryContext struct {
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	CreatedAt int64  `json:"created_at"`
}

// ContextSnapshot is the write-once record of what was sent with an interaction.
type ContextSnapshot struct {
	Artifacts    []ArtifactContext `json:"artifacts"`
	History      []HistoryContext  `json:"history"`
	SystemPrompt string            `json:"system_prompt"`
}

// --- Interaction request/result ---

const (
	// DefaultProvider is used for agents created without a provider.
	DefaultProvider = "echo"
	// DefaultContextLimit is the artifact limit applied when the caller omits one.
	DefaultContextLimit = 5
	// MaxContextLimit bounds the caller-supplied artifact limit.
	MaxContextLimit = 25
	// HistoryLimit is the number of prior agent interactions fed as context.
	HistoryLimit = 10
	// SummaryHistoryLimit is the number of space-wide interactions used by Summarize.
	SummaryHistoryLimit = 5
)

// InteractionRequest is the caller payload for one agent interaction.
// A non-nil System overrides the agent's prompt, even when empty.
type InteractionRequest struct {
	Prompt       string  `json:"prompt"`
	System       *string `json:"system,omitempty"`
	ContextLimit int     `json:"context_limit"`
}

// InteractionResult is produced once per call and consumed by both the API
// response and the persisted Interaction.
type InteractionResult struct {
	Output       string            `json:"output"`
	Metadata     map[string]any    `json:"metadata"`
	Provider     string            `json:"provider"`
	Model        string            `json:"model"`
	Artifacts    []ArtifactContext `json:"-"`
	History      []HistoryContext  `json:"-"`
	SystemPrompt string            `json:"-"`
}

// Snapshot returns the context breakdown in its persisted form.
func (r InteractionResult) Snapshot() ContextSnapshot {
	return ContextSnapshot{
		Artifacts:    nonNil(r.Artifacts),
		History:      nonNil(r.History),
		SystemPrompt: r.SystemPrompt,
	}
}

// Record builds the Interaction to persist for this result.
func (r InteractionResult) Record(agent Agent, prompt string) Interaction {
	return Interaction{
		ID:           NewID(),
		AgentID:      agent.ID,
		SpaceID:      agent.SpaceID,
		Prompt:       prompt,
		SystemPrompt: r.SystemPrompt,
		Response:     r.Output,
		Provider:     r.Provider,
		Model:        r.Model,
		Context:      r.Snapshot(),
		CreatedAt:    NowUnix(),
	}
}

// NewID returns the key for a new record: a UUIDv7, so keys created later
// sort after keys created earlier.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NowUnix is the clock behind every CreatedAt field.
func NowUnix() int64 {
	return time.Now().Unix()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// --- LLM protocol types ---

// CompletionRequest is the provider-agnostic input to Provider.Generate.
// Build it with NewCompletionRequest; treat it as immutable afterwards.
type CompletionRequest struct {
	Prompt  string
	System  string // empty means no system instruction
	Context []string
	Options map[string]any
}

// NewCompletionRequest copies context and options so later mutation by the
// caller cannot change a request that has already been built.
func NewCompletionRequest(prompt, system string, context []string, options map[string]any) CompletionRequest {
	return CompletionRequest{
		Prompt:  prompt,
		System:  system,
		Context: slices.Clone(context),
		Options: maps.Clone(options),
	}
}

// Model returns the "model" option, or "" when unset.
func (r CompletionRequest) Model() string {
	if m, ok := r.Options["model"].(string); ok {
		return m
	}
	return ""
}

// CompletionResponse is the provider-agnostic output of Provider.Generate.
// Metadata always carries "model"; other keys are provider-specific and
// omitted when unknown.
type CompletionResponse struct {
	Output   string
	Metadata map[string]any
}

// Usage is token accounting for one completion.
type Usage struct {
	InputTokens  int `json:"prompt_tokens"`
	OutputTokens int `json:"completion_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Map returns the metadata form stored under the "usage" key.
func (u Usage) Map() map[string]any {
	return map[string]any{
		"prompt_tokens":     u.InputTokens,
		"completion_tokens": u.OutputTokens,
		"total_tokens":      u.TotalTokens,
	}
}

// UsageFromMetadata extracts token usage written by Usage.Map.
// Missing or malformed entries yield zero counts.
func UsageFromMetadata(md map[string]any) Usage {
	raw, ok := md["usage"].(map[string]any)
	if !ok {
		return Usage{}
	}
	return Usage{
		InputTokens:  toInt(raw["prompt_tokens"]),
		OutputTokens: toInt(raw["completion_tokens"]),
		TotalTokens:  toInt(raw["total_tokens"]),
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
