package thinkspaces

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SummarySystemPrompt instructs the provider during space summarization.
const SummarySystemPrompt = `You keep the working memory of a shared thinking space.
Summarize the artifacts and recent conversations as a short narrative a collaborator can read in under a minute.
Mention open questions and the most likely next step.
Do not invent facts that are not in the material.`

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets a structured logger for the executor. If not set, no logs
// are emitted.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// WithTimeout bounds every Generate call. Zero leaves the bound to the
// provider's own HTTP client.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// WithTracer enables spans for execution, context assembly and summarization.
func WithTracer(t Tracer) ExecutorOption {
	return func(e *Executor) { e.tracer = t }
}

// WithProviderWrapper decorates every provider the executor constructs,
// e.g. with observer.WrapProvider.
func WithProviderWrapper(w func(p Provider, model string) Provider) ExecutorOption {
	return func(e *Executor) { e.wrap = w }
}

// Executor runs single-turn agent interactions: resolve the provider,
// assemble context, generate, and hand back one typed result.
type Executor struct {
	registry  *Registry
	assembler *Assembler
	logger    *slog.Logger
	timeout   time.Duration
	tracer    Tracer
	wrap      func(Provider, string) Provider
}

// NewExecutor creates an Executor resolving providers from registry and
// reading context through assembler.
func NewExecutor(registry *Registry, assembler *Assembler, opts ...ExecutorOption) *Executor {
	e := &Executor{registry: registry, assembler: assembler, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the executor resolves providers from.
func (e *Executor) Registry() *Registry { return e.registry }

// Timeout returns the bound applied to each Generate call.
func (e *Executor) Timeout() time.Duration { return e.timeout }

// Execute runs one interaction for agent. Provider, configuration and
// transport failures are returned unchanged.
func (e *Executor) Execute(ctx context.Context, agent Agent, req InteractionRequest) (InteractionResult, error) {
	ctx, span := startSpan(ctx, e.tracer, "interaction.execute",
		StringAttr("agent.id", agent.ID),
		StringAttr("agent.provider", agent.Provider),
		StringAttr("agent.model", agent.Model),
		IntAttr("context.limit", req.ContextLimit),
	)
	defer span.End()

	result, err := e.execute(ctx, agent, req)
	if err != nil {
		span.Error(err)
		e.logger.Warn("interaction failed", "agent_id", agent.ID, "provider", agent.Provider, "model", agent.Model, "error", err)
		return InteractionResult{}, err
	}
	span.SetAttr(
		IntAttr("context.artifacts", len(result.Artifacts)),
		IntAttr("context.history", len(result.History)),
	)
	return result, nil
}

func (e *Executor) execute(ctx context.Context, agent Agent, req InteractionRequest) (InteractionResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return InteractionResult{}, &ErrInvalidRequest{Field: "prompt", Message: "must not be empty"}
	}
	if err := validateLimit(req.ContextLimit); err != nil {
		return InteractionResult{}, err
	}

	name := providerName(agent)
	provider, err := e.provider(name, agent.Model)
	if err != nil {
		return InteractionResult{}, err
	}

	actx, aspan := startSpan(ctx, e.tracer, "context.assemble")
	cctx, err := e.assembler.Assemble(actx, agent, req.ContextLimit, req.System)
	if err != nil {
		aspan.Error(err)
		aspan.End()
		return InteractionResult{}, err
	}
	aspan.End()

	creq := NewCompletionRequest(req.Prompt, cctx.SystemPrompt, cctx.Blocks(), map[string]any{"model": agent.Model})
	resp, err := e.generate(ctx, provider, creq)
	if err != nil {
		return InteractionResult{}, err
	}

	return InteractionResult{
		Output:       resp.Output,
		Metadata:     nonNilMap(resp.Metadata),
		Provider:     name,
		Model:        agent.Model,
		Artifacts:    cctx.Artifacts,
		History:      cctx.History,
		SystemPrompt: cctx.SystemPrompt,
	}, nil
}

// Interact executes one interaction and persists it through sink. Nothing
// is persisted when execution fails.
func (e *Executor) Interact(ctx context.Context, agent Agent, req InteractionRequest, sink InteractionWriter) (Interaction, InteractionResult, error) {
	result, err := e.Execute(ctx, agent, req)
	if err != nil {
		return Interaction{}, InteractionResult{}, err
	}
	rec := result.Record(agent, req.Prompt)
	if err := sink.CreateInteraction(ctx, rec); err != nil {
		return Interaction{}, InteractionResult{}, fmt.Errorf("store interaction: %w", err)
	}
	e.logger.Info("interaction recorded", "interaction_id", rec.ID, "agent_id", agent.ID,
		"provider", rec.Provider, "model", rec.Model,
		"artifacts", len(rec.Context.Artifacts), "history", len(rec.Context.History))
	return rec, result, nil
}

// Summarize asks the agent's provider for a narrative summary of the whole
// space: every artifact plus the most recent space-wide interactions.
func (e *Executor) Summarize(ctx context.Context, agent Agent) (string, error) {
	ctx, span := startSpan(ctx, e.tracer, "space.summarize",
		StringAttr("agent.id", agent.ID),
		StringAttr("space.id", agent.SpaceID),
	)
	defer span.End()

	out, err := e.summarize(ctx, agent)
	if err != nil {
		span.Error(err)
		e.logger.Warn("space summary failed", "space_id", agent.SpaceID, "agent_id", agent.ID, "error", err)
		return "", err
	}
	return out, nil
}

func (e *Executor) summarize(ctx context.Context, agent Agent) (string, error) {
	provider, err := e.provider(providerName(agent), agent.Model)
	if err != nil {
		return "", err
	}

	artifacts, err := e.assembler.Artifacts.ListArtifacts(ctx, agent.SpaceID)
	if err != nil {
		return "", fmt.Errorf("list artifacts: %w", err)
	}
	recent, err := e.assembler.Interactions.RecentSpaceInteractions(ctx, agent.SpaceID, SummaryHistoryLimit)
	if err != nil {
		return "", fmt.Errorf("recent space interactions: %w", err)
	}

	creq := NewCompletionRequest(summaryPrompt(artifacts, recent), SummarySystemPrompt, nil, map[string]any{"model": agent.Model})
	resp, err := e.generate(ctx, provider, creq)
	if err != nil {
		return "", err
	}
	return resp.Output, nil
}

func summaryPrompt(artifacts []Artifact, recent []Interaction) string {
	var b strings.Builder
	b.WriteString("Summarize the current state of this space.\n\nArtifacts:\n")
	if len(artifacts) == 0 {
		b.WriteString("(none)\n")
	}
	for _, a := range artifacts {
		b.WriteString(FormatArtifact(ArtifactItem(a)))
		b.WriteString("\n\n")
	}
	b.WriteString("\nRecent conversations:\n")
	if len(recent) == 0 {
		b.WriteString("(none)\n")
	}
	for _, in := range recent {
		b.WriteString(FormatHistory(HistoryContext{Prompt: in.Prompt, Response: in.Response}))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (e *Executor) provider(name, model string) (Provider, error) {
	p, err := e.registry.Create(name, model)
	if err != nil {
		return nil, err
	}
	if e.wrap != nil {
		p = e.wrap(p, model)
	}
	return p, nil
}

func (e *Executor) generate(ctx context.Context, p Provider, req CompletionRequest) (CompletionResponse, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return CompletionResponse{}, err
	}
	e.logger.Debug("generate ok", "provider", p.Name(), "model", req.Model(), "duration", time.Since(start))
	return resp, nil
}

func providerName(agent Agent) string {
	if strings.TrimSpace(agent.Provider) == "" {
		return DefaultProvider
	}
	return strings.ToLower(strings.TrimSpace(agent.Provider))
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
