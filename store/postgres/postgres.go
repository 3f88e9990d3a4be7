// Package postgres implements thinkspaces.Store using PostgreSQL.
//
// Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thinkspaces/thinkspaces"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Store implements thinkspaces.Store backed by PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Option configures a PostgreSQL Store.
type Option func(*Store)

// WithLogger sets a structured logger for the store.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

var _ thinkspaces.Store = (*Store)(nil)

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init creates all required tables and indexes.
// Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS spaces (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			memory_summary TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			space_id TEXT NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			file_name TEXT NOT NULL DEFAULT '',
			mime_type TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS agents (
			id TEXT PRIMARY KEY,
			space_id TEXT NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL,
			provider TEXT NOT NULL,
			system_prompt TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
			space_id TEXT NOT NULL REFERENCES spaces(id) ON DELETE CASCADE,
			prompt TEXT NOT NULL,
			system_prompt TEXT NOT NULL DEFAULT '',
			response TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			context JSONB NOT NULL DEFAULT '{}',
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS artifacts_space_idx ON artifacts(space_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS agents_space_idx ON agents(space_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS interactions_agent_idx ON interactions(agent_id, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS interactions_space_idx ON interactions(space_id, created_at DESC, id DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: init: %w", err)
		}
	}
	s.logger.Debug("postgres: init ok", "duration", time.Since(start))
	return nil
}

// Close is a no-op: the caller owns the pool.
func (s *Store) Close() error { return nil }

// --- Spaces ---

func (s *Store) CreateSpace(ctx context.Context, sp thinkspaces.Space) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO spaces (id, name, description, memory_summary, created_at) VALUES ($1, $2, $3, $4, $5)`,
		sp.ID, sp.Name, sp.Description, sp.MemorySummary, sp.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create space: %w", mapErr(err))
	}
	return nil
}

func (s *Store) GetSpace(ctx context.Context, id string) (thinkspaces.Space, error) {
	var sp thinkspaces.Space
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, memory_summary, created_at FROM spaces WHERE id = $1`, id,
	).Scan(&sp.ID, &sp.Name, &sp.Description, &sp.MemorySummary, &sp.CreatedAt)
	if err != nil {
		return thinkspaces.Space{}, fmt.Errorf("postgres: get space: %w", mapErr(err))
	}
	return sp, nil
}

func (s *Store) ListSpaces(ctx context.Context) ([]thinkspaces.Space, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, memory_summary, created_at FROM spaces ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list spaces: %w", err)
	}
	defer rows.Close()

	spaces := []thinkspaces.Space{}
	for rows.Next() {
		var sp thinkspaces.Space
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Description, &sp.MemorySummary, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan space: %w", err)
		}
		spaces = append(spaces, sp)
	}
	return spaces, rows.Err()
}

func (s *Store) UpdateSpace(ctx context.Context, sp thinkspaces.Space) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE spaces SET name = $1, description = $2, memory_summary = $3 WHERE id = $4`,
		sp.Name, sp.Description, sp.MemorySummary, sp.ID)
	return checkTag("update space", tag, err)
}

// DeleteSpace removes a space; artifacts, agents and interactions follow
// through ON DELETE CASCADE.
func (s *Store) DeleteSpace(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM spaces WHERE id = $1`, id)
	return checkTag("delete space", tag, err)
}

// --- Artifacts ---

const artifactColumns = `id, space_id, title, content, file_name, mime_type, summary, tags, created_at`

func (s *Store) CreateArtifact(ctx context.Context, a thinkspaces.Artifact) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO artifacts (`+artifactColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.SpaceID, a.Title, a.Content, a.FileName, a.MimeType, a.Summary, nonNilTags(a.Tags), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create artifact: %w", mapErr(err))
	}
	return nil
}

func (s *Store) GetArtifact(ctx context.Context, id string) (thinkspaces.Artifact, error) {
	a, err := scanArtifact(s.pool.QueryRow(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = $1`, id))
	if err != nil {
		return thinkspaces.Artifact{}, fmt.Errorf("postgres: get artifact: %w", mapErr(err))
	}
	return a, nil
}

func (s *Store) RecentArtifacts(ctx context.Context, spaceID string, limit int) ([]thinkspaces.Artifact, error) {
	return s.queryArtifacts(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE space_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		spaceID, limit)
}

func (s *Store) ListArtifacts(ctx context.Context, spaceID string) ([]thinkspaces.Artifact, error) {
	return s.queryArtifacts(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE space_id = $1 ORDER BY created_at DESC, id DESC`, spaceID)
}

func (s *Store) AllArtifacts(ctx context.Context) ([]thinkspaces.Artifact, error) {
	return s.queryArtifacts(ctx, `SELECT `+artifactColumns+` FROM artifacts ORDER BY created_at DESC, id DESC`)
}

// SearchArtifacts uses ILIKE over title, content and file name.
func (s *Store) SearchArtifacts(ctx context.Context, query, spaceID string, limit int) ([]thinkspaces.Artifact, error) {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	pat := "%" + r.Replace(query) + "%"
	q := `SELECT ` + artifactColumns + ` FROM artifacts
		WHERE (title ILIKE $1 OR content ILIKE $1 OR file_name ILIKE $1)`
	args := []any{pat}
	if spaceID != "" {
		q += ` AND space_id = $2`
		args = append(args, spaceID)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)
	return s.queryArtifacts(ctx, q, args...)
}

func (s *Store) UpdateArtifact(ctx context.Context, a thinkspaces.Artifact) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE artifacts SET title = $1, content = $2, file_name = $3, mime_type = $4, summary = $5, tags = $6 WHERE id = $7`,
		a.Title, a.Content, a.FileName, a.MimeType, a.Summary, nonNilTags(a.Tags), a.ID)
	return checkTag("update artifact", tag, err)
}

func (s *Store) DeleteArtifact(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM artifacts WHERE id = $1`, id)
	return checkTag("delete artifact", tag, err)
}

func (s *Store) queryArtifacts(ctx context.Context, query string, args ...any) ([]thinkspaces.Artifact, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query artifacts: %w", err)
	}
	defer rows.Close()

	out := []thinkspaces.Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan artifact: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanArtifact(row pgx.Row) (thinkspaces.Artifact, error) {
	var a thinkspaces.Artifact
	if err := row.Scan(&a.ID, &a.SpaceID, &a.Title, &a.Content, &a.FileName, &a.MimeType, &a.Summary, &a.Tags, &a.CreatedAt); err != nil {
		return thinkspaces.Artifact{}, err
	}
	a.Tags = nonNilTags(a.Tags)
	return a, nil
}

// --- Agents ---

const agentColumns = `id, space_id, name, description, model, provider, system_prompt, created_at`

func (s *Store) CreateAgent(ctx context.Context, a thinkspaces.Agent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO agents (`+agentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.SpaceID, a.Name, a.Description, a.Model, a.Provider, a.SystemPrompt, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create agent: %w", mapErr(err))
	}
	return nil
}

func (s *Store) GetAgent(ctx context.Context, id string) (thinkspaces.Agent, error) {
	a, err := scanAgent(s.pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id))
	if err != nil {
		return thinkspaces.Agent{}, fmt.Errorf("postgres: get agent: %w", mapErr(err))
	}
	return a, nil
}

func (s *Store) ListAgents(ctx context.Context, spaceID string) ([]thinkspaces.Agent, error) {
	q := `SELECT ` + agentColumns + ` FROM agents`
	var args []any
	if spaceID != "" {
		q += ` WHERE space_id = $1`
		args = append(args, spaceID)
	}
	rows, err := s.pool.Query(ctx, q+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list agents: %w", err)
	}
	defer rows.Close()

	agents := []thinkspaces.Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (s *Store) UpdateAgent(ctx context.Context, a thinkspaces.Agent) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE agents SET name = $1, description = $2, model = $3, provider = $4, system_prompt = $5 WHERE id = $6`,
		a.Name, a.Description, a.Model, a.Provider, a.SystemPrompt, a.ID)
	return checkTag("update agent", tag, err)
}

// DeleteAgent removes an agent; its interactions follow through ON DELETE CASCADE.
func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	return checkTag("delete agent", tag, err)
}

func scanAgent(row pgx.Row) (thinkspaces.Agent, error) {
	var a thinkspaces.Agent
	err := row.Scan(&a.ID, &a.SpaceID, &a.Name, &a.Description, &a.Model, &a.Provider, &a.SystemPrompt, &a.CreatedAt)
	return a, err
}

// --- Interactions ---

const interactionColumns = `id, agent_id, space_id, prompt, system_prompt, response, provider, model, context, created_at`

func (s *Store) CreateInteraction(ctx context.Context, in thinkspaces.Interaction) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO interactions (`+interactionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		in.ID, in.AgentID, in.SpaceID, in.Prompt, in.SystemPrompt, in.Response, in.Provider, in.Model, in.Context, in.CreatedAt)
	if err != nil {
		s.logger.Error("postgres: create interaction failed", "id", in.ID, "error", err)
		return fmt.Errorf("postgres: create interaction: %w", mapErr(err))
	}
	return nil
}

func (s *Store) GetInteraction(ctx context.Context, id string) (thinkspaces.Interaction, error) {
	in, err := scanInteraction(s.pool.QueryRow(ctx, `SELECT `+interactionColumns+` FROM interactions WHERE id = $1`, id))
	if err != nil {
		return thinkspaces.Interaction{}, fmt.Errorf("postgres: get interaction: %w", mapErr(err))
	}
	return in, nil
}

func (s *Store) RecentInteractions(ctx context.Context, agentID string, limit int) ([]thinkspaces.Interaction, error) {
	return s.queryInteractions(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE agent_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		agentID, limit)
}

func (s *Store) RecentSpaceInteractions(ctx context.Context, spaceID string, limit int) ([]thinkspaces.Interaction, error) {
	return s.queryInteractions(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE space_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		spaceID, limit)
}

func (s *Store) queryInteractions(ctx context.Context, query string, args ...any) ([]thinkspaces.Interaction, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query interactions: %w", err)
	}
	defer rows.Close()

	out := []thinkspaces.Interaction{}
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan interaction: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func scanInteraction(row pgx.Row) (thinkspaces.Interaction, error) {
	var in thinkspaces.Interaction
	if err := row.Scan(&in.ID, &in.AgentID, &in.SpaceID, &in.Prompt, &in.SystemPrompt, &in.Response,
		&in.Provider, &in.Model, &in.Context, &in.CreatedAt); err != nil {
		return thinkspaces.Interaction{}, err
	}
	if in.Context.Artifacts == nil {
		in.Context.Artifacts = []thinkspaces.ArtifactContext{}
	}
	if in.Context.History == nil {
		in.Context.History = []thinkspaces.HistoryContext{}
	}
	return in, nil
}

// --- helpers ---

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return thinkspaces.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", thinkspaces.ErrConflict, pgErr.Detail)
	}
	return err
}

func checkTag(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return fmt.Errorf("postgres: %s: %w", op, mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: %s: %w", op, thinkspaces.ErrNotFound)
	}
	return nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
