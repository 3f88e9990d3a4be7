package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thinkspaces/thinkspaces"
)

const interactionColumns = `id, agent_id, space_id, prompt, system_prompt, response, provider, model, context, created_at`

// CreateInteraction inserts a completed interaction.
func (s *Store) CreateInteraction(ctx context.Context, in thinkspaces.Interaction) error {
	snapshot, err := json.Marshal(in.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interactions (`+interactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.AgentID, in.SpaceID, in.Prompt, in.SystemPrompt, in.Response, in.Provider, in.Model, string(snapshot), in.CreatedAt,
	)
	if err != nil {
		s.logger.Error("sqlite: create interaction failed", "id", in.ID, "agent_id", in.AgentID, "error", err)
		return fmt.Errorf("create interaction: %w", err)
	}
	s.logger.Debug("sqlite: create interaction ok", "id", in.ID, "agent_id", in.AgentID)
	return nil
}

// GetInteraction returns an interaction by ID.
func (s *Store) GetInteraction(ctx context.Context, id string) (thinkspaces.Interaction, error) {
	in, err := scanInteraction(s.db.QueryRowContext(ctx, `SELECT `+interactionColumns+` FROM interactions WHERE id = ?`, id))
	if err != nil {
		return thinkspaces.Interaction{}, fmt.Errorf("get interaction: %w", notFound(err))
	}
	return in, nil
}

// RecentInteractions returns up to limit interactions of an agent, newest first.
func (s *Store) RecentInteractions(ctx context.Context, agentID string, limit int) ([]thinkspaces.Interaction, error) {
	return s.queryInteractions(ctx, "recent interactions",
		`SELECT `+interactionColumns+` FROM interactions WHERE agent_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		agentID, limit)
}

// RecentSpaceInteractions returns up to limit interactions of a space, newest first.
func (s *Store) RecentSpaceInteractions(ctx context.Context, spaceID string, limit int) ([]thinkspaces.Interaction, error) {
	return s.queryInteractions(ctx, "recent space interactions",
		`SELECT `+interactionColumns+` FROM interactions WHERE space_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		spaceID, limit)
}

func (s *Store) queryInteractions(ctx context.Context, op, query string, args ...any) ([]thinkspaces.Interaction, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("sqlite: "+op+" failed", "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []thinkspaces.Interaction{}
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, in)
	}
	s.logger.Debug("sqlite: "+op+" ok", "count", len(out), "duration", time.Since(start))
	return out, rows.Err()
}

func scanInteraction(row scanner) (thinkspaces.Interaction, error) {
	var in thinkspaces.Interaction
	var snapshot string
	if err := row.Scan(&in.ID, &in.AgentID, &in.SpaceID, &in.Prompt, &in.SystemPrompt, &in.Response,
		&in.Provider, &in.Model, &snapshot, &in.CreatedAt); err != nil {
		return thinkspaces.Interaction{}, err
	}
	if err := json.Unmarshal([]byte(snapshot), &in.Context); err != nil {
		return thinkspaces.Interaction{}, fmt.Errorf("interaction %s: decode context: %w", in.ID, err)
	}
	if in.Context.Artifacts == nil {
		in.Context.Artifacts = []thinkspaces.ArtifactContext{}
	}
	if in.Context.History == nil {
		in.Context.History = []thinkspaces.HistoryContext{}
	}
	return in, nil
}
