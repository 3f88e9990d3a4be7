package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/thinkspaces/thinkspaces"
)

const agentColumns = `id, space_id, name, description, model, provider, system_prompt, created_at`

// CreateAgent inserts an agent.
func (s *Store) CreateAgent(ctx context.Context, a thinkspaces.Agent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (`+agentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SpaceID, a.Name, a.Description, a.Model, a.Provider, a.SystemPrompt, a.CreatedAt,
	)
	if err != nil {
		s.logger.Error("sqlite: create agent failed", "id", a.ID, "error", err)
		return fmt.Errorf("create agent: %w", err)
	}
	return nil
}

// GetAgent returns an agent by ID.
func (s *Store) GetAgent(ctx context.Context, id string) (thinkspaces.Agent, error) {
	a, err := scanAgent(s.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id))
	if err != nil {
		return thinkspaces.Agent{}, fmt.Errorf("get agent: %w", notFound(err))
	}
	return a, nil
}

// ListAgents returns agents newest first; an empty spaceID lists all.
func (s *Store) ListAgents(ctx context.Context, spaceID string) ([]thinkspaces.Agent, error) {
	start := time.Now()
	q := `SELECT ` + agentColumns + ` FROM agents`
	var args []any
	if spaceID != "" {
		q += ` WHERE space_id = ?`
		args = append(args, spaceID)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	agents := []thinkspaces.Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	s.logger.Debug("sqlite: list agents ok", "space_id", spaceID, "count", len(agents), "duration", time.Since(start))
	return agents, rows.Err()
}

// UpdateAgent overwrites the mutable agent fields. Existing interactions
// keep the provider and model they were recorded with.
func (s *Store) UpdateAgent(ctx context.Context, a thinkspaces.Agent) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE agents SET name = ?, description = ?, model = ?, provider = ?, system_prompt = ? WHERE id = ?`,
		a.Name, a.Description, a.Model, a.Provider, a.SystemPrompt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update agent: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("update agent: %w", err)
	}
	return nil
}

// DeleteAgent removes an agent and its interactions.
func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE agent_id = ?`, id); err != nil {
		return fmt.Errorf("delete agent interactions: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	s.logger.Debug("sqlite: delete agent ok", "id", id)
	return nil
}

func scanAgent(row scanner) (thinkspaces.Agent, error) {
	var a thinkspaces.Agent
	err := row.Scan(&a.ID, &a.SpaceID, &a.Name, &a.Description, &a.Model, &a.Provider, &a.SystemPrompt, &a.CreatedAt)
	return a, err
}
