package thinkspaces

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
)

// memStore is an in-memory ArtifactReader/InteractionReader/InteractionWriter
// that counts queries so tests can assert which lookups happened.
type memStore struct {
	mu           sync.Mutex
	artifacts    []Artifact
	interactions []Interaction

	artifactQueries    int
	interactionQueries int

	artifactErr error
	writeErr    error
}

func (m *memStore) RecentArtifacts(_ context.Context, spaceID string, limit int) ([]Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifactQueries++
	if m.artifactErr != nil {
		return nil, m.artifactErr
	}
	out := newestFirst(m.artifacts, func(a Artifact) bool { return a.SpaceID == spaceID }, func(a Artifact) (int64, string) { return a.CreatedAt, a.ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListArtifacts(_ context.Context, spaceID string) ([]Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifactQueries++
	return newestFirst(m.artifacts, func(a Artifact) bool { return a.SpaceID == spaceID }, func(a Artifact) (int64, string) { return a.CreatedAt, a.ID }), nil
}

func (m *memStore) RecentInteractions(_ context.Context, agentID string, limit int) ([]Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactionQueries++
	out := newestFirst(m.interactions, func(in Interaction) bool { return in.AgentID == agentID }, func(in Interaction) (int64, string) { return in.CreatedAt, in.ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) RecentSpaceInteractions(_ context.Context, spaceID string, limit int) ([]Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactionQueries++
	out := newestFirst(m.interactions, func(in Interaction) bool { return in.SpaceID == spaceID }, func(in Interaction) (int64, string) { return in.CreatedAt, in.ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CreateInteraction(_ context.Context, in Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.interactions = append(m.interactions, in)
	return nil
}

func newestFirst[T any](items []T, keep func(T) bool, key func(T) (int64, string)) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		at, aid := key(a)
		bt, bid := key(b)
		if at != bt {
			if at > bt {
				return -1
			}
			return 1
		}
		return -strings.Compare(aid, bid)
	})
	return out
}

// --- Provider mocks ---

// recordingProvider echoes the prompt and keeps the last request.
type recordingProvider struct {
	name string
	mu   sync.Mutex
	last CompletionRequest
	err  error
}

func (p *recordingProvider) Name() string { return p.name }

func (p *recordingProvider) Generate(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	p.mu.Lock()
	p.last = req
	p.mu.Unlock()
	if p.err != nil {
		return CompletionResponse{}, p.err
	}
	return CompletionResponse{
		Output:   "reply to " + req.Prompt,
		Metadata: map[string]any{"model": req.Model()},
	}, nil
}

func (p *recordingProvider) lastRequest() CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// testRegistry registers p under its name, plus a provider whose
// construction always fails under "broken".
func testRegistry(p *recordingProvider) *Registry {
	reg := NewRegistry()
	_ = reg.Register(p.name, func(string) (Provider, error) { return p, nil })
	_ = reg.Register("broken", func(string) (Provider, error) {
		return nil, &ErrConfig{Provider: "broken", Message: "BROKEN_API_KEY is not set"}
	})
	return reg
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }
