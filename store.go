package thinkspaces

import "context"

// ArtifactReader is the read side of artifact storage used by context assembly.
type ArtifactReader interface {
	// RecentArtifacts returns up to limit artifacts of a space, newest first.
	RecentArtifacts(ctx context.Context, spaceID string, limit int) ([]Artifact, error)
	// ListArtifacts returns every artifact of a space, newest first.
	ListArtifacts(ctx context.Context, spaceID string) ([]Artifact, error)
}

// InteractionReader is the read side of interaction storage used by context assembly.
type InteractionReader interface {
	// RecentInteractions returns up to limit interactions of an agent, newest first.
	RecentInteractions(ctx context.Context, agentID string, limit int) ([]Interaction, error)
	// RecentSpaceInteractions returns up to limit interactions of a space, newest first.
	RecentSpaceInteractions(ctx context.Context, spaceID string, limit int) ([]Interaction, error)
}

// InteractionWriter persists completed interactions.
type InteractionWriter interface {
	CreateInteraction(ctx context.Context, in Interaction) error
}

// Store abstracts the relational persistence behind the application.
// Get* methods return ErrNotFound for missing rows; creating a space with a
// taken name returns ErrConflict.
type Store interface {
	ArtifactReader
	InteractionReader
	InteractionWriter

	// --- Spaces ---
	CreateSpace(ctx context.Context, s Space) error
	GetSpace(ctx context.Context, id string) (Space, error)
	ListSpaces(ctx context.Context) ([]Space, error)
	UpdateSpace(ctx context.Context, s Space) error
	// DeleteSpace removes the space with its artifacts, agents and interactions.
	DeleteSpace(ctx context.Context, id string) error

	// --- Artifacts ---
	CreateArtifact(ctx context.Context, a Artifact) error
	GetArtifact(ctx context.Context, id string) (Artifact, error)
	// AllArtifacts lists artifacts across every space, newest first.
	AllArtifacts(ctx context.Context) ([]Artifact, error)
	// SearchArtifacts matches query case-insensitively against title,
	// content and file name. An empty spaceID searches every space.
	SearchArtifacts(ctx context.Context, query, spaceID string, limit int) ([]Artifact, error)
	UpdateArtifact(ctx context.Context, a Artifact) error
	DeleteArtifact(ctx context.Context, id string) error

	// --- Agents ---
	CreateAgent(ctx context.Context, a Agent) error
	GetAgent(ctx context.Context, id string) (Agent, error)
	// ListAgents lists agents newest first. An empty spaceID lists every agent.
	ListAgents(ctx context.Context, spaceID string) ([]Agent, error)
	UpdateAgent(ctx context.Context, a Agent) error
	// DeleteAgent removes the agent with its interactions.
	DeleteAgent(ctx context.Context, id string) error

	// --- Interactions ---
	GetInteraction(ctx context.Context, id string) (Interaction, error)

	// --- Lifecycle ---
	Init(ctx context.Context) error
	Close() error
}
