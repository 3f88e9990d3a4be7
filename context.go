package thinkspaces

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultSystemPrompt is used when neither the caller nor the agent supplies one.
const DefaultSystemPrompt = `You are a thinking partner working inside a shared space of notes and files.
Ground every reply in the artifacts provided as context and cite them by title when you rely on them.
Ask one or two questions that move the work forward.
Keep answers concise and actionable.
If the context is insufficient to answer, say so plainly and name what is missing.`

// summaryFallbackRunes is how much artifact content stands in for a missing summary.
const summaryFallbackRunes = 160

// Context is the retrieval context assembled for one interaction.
type Context struct {
	Artifacts    []ArtifactContext
	History      []HistoryContext
	SystemPrompt string
}

// Blocks renders the context in the order it is sent to a provider: every
// history block as fetched (newest first), then every artifact block.
func (c Context) Blocks() []string {
	blocks := make([]string, 0, len(c.History)+len(c.Artifacts))
	for _, h := range c.History {
		blocks = append(blocks, FormatHistory(h))
	}
	for _, a := range c.Artifacts {
		if b := FormatArtifact(a); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// FormatArtifact renders an artifact context item, omitting empty lines.
func FormatArtifact(a ArtifactContext) string {
	var lines []string
	if a.Title != "" {
		lines = append(lines, "Artifact: "+a.Title)
	}
	if a.Summary != "" {
		lines = append(lines, "Summary: "+a.Summary)
	}
	if len(a.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(a.Tags, ", "))
	}
	return strings.Join(lines, "\n")
}

// FormatHistory renders a prior interaction.
func FormatHistory(h HistoryContext) string {
	return "Previous prompt: " + h.Prompt + "\nPrevious response: " + h.Response
}

// ResolveSystemPrompt applies the precedence override > agent > default.
// A non-nil override wins even when empty.
func ResolveSystemPrompt(override *string, agent Agent) string {
	if override != nil {
		return *override
	}
	if agent.SystemPrompt != "" {
		return agent.SystemPrompt
	}
	return DefaultSystemPrompt
}

// Assembler gathers artifacts and interaction history for an agent.
type Assembler struct {
	Artifacts    ArtifactReader
	Interactions InteractionReader
}

// NewAssembler returns an Assembler reading from the given sources.
func NewAssembler(artifacts ArtifactReader, interactions InteractionReader) *Assembler {
	return &Assembler{Artifacts: artifacts, Interactions: interactions}
}

// Assemble builds the context for one interaction with agent. A limit of 0
// skips the artifact query entirely; history is always fetched up to
// HistoryLimit.
func (a *Assembler) Assemble(ctx context.Context, agent Agent, limit int, override *string) (Context, error) {
	if err := validateLimit(limit); err != nil {
		return Context{}, err
	}

	out := Context{
		Artifacts:    []ArtifactContext{},
		History:      []HistoryContext{},
		SystemPrompt: ResolveSystemPrompt(override, agent),
	}

	if limit > 0 {
		artifacts, err := a.Artifacts.RecentArtifacts(ctx, agent.SpaceID, limit)
		if err != nil {
			return Context{}, fmt.Errorf("recent artifacts: %w", err)
		}
		for _, art := range artifacts {
			out.Artifacts = append(out.Artifacts, ArtifactItem(art))
		}
	}

	history, err := a.Interactions.RecentInteractions(ctx, agent.ID, HistoryLimit)
	if err != nil {
		return Context{}, fmt.Errorf("recent interactions: %w", err)
	}
	for _, in := range history {
		out.History = append(out.History, HistoryContext{
			Prompt:    in.Prompt,
			Response:  in.Response,
			CreatedAt: in.CreatedAt,
		})
	}
	return out, nil
}

// ArtifactItem derives the display context for an artifact. The summary
// falls back to the first 160 characters of content plus an ellipsis.
func ArtifactItem(a Artifact) ArtifactContext {
	summary := a.Summary
	if summary == "" && a.Content != "" {
		summary = excerpt(a.Content, summaryFallbackRunes) + "…"
	}
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return ArtifactContext{
		Title:      a.Title,
		Summary:    summary,
		Tags:       tags,
		ArtifactID: a.ID,
	}
}

// excerpt returns the first n characters of s after NFC normalization so
// that combining sequences count as the characters a reader sees.
func excerpt(s string, n int) string {
	r := []rune(norm.NFC.String(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}

func validateLimit(limit int) error {
	if limit < 0 || limit > MaxContextLimit {
		return &ErrInvalidRequest{
			Field:   "context_limit",
			Message: fmt.Sprintf("must be between 0 and %d", MaxContextLimit),
		}
	}
	return nil
}
