package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/thinkspaces/thinkspaces"
)

// CreateSpace inserts a space. A taken name returns thinkspaces.ErrConflict.
func (s *Store) CreateSpace(ctx context.Context, sp thinkspaces.Space) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO spaces (id, name, description, memory_summary, created_at) VALUES (?, ?, ?, ?, ?)`,
		sp.ID, sp.Name, sp.Description, sp.MemorySummary, sp.CreatedAt,
	)
	if err != nil {
		s.logger.Error("sqlite: create space failed", "id", sp.ID, "error", err)
		return fmt.Errorf("create space: %w", conflict(err))
	}
	s.logger.Debug("sqlite: create space ok", "id", sp.ID, "name", sp.Name)
	return nil
}

// GetSpace returns a space by ID.
func (s *Store) GetSpace(ctx context.Context, id string) (thinkspaces.Space, error) {
	var sp thinkspaces.Space
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, memory_summary, created_at FROM spaces WHERE id = ?`, id,
	).Scan(&sp.ID, &sp.Name, &sp.Description, &sp.MemorySummary, &sp.CreatedAt)
	if err != nil {
		return thinkspaces.Space{}, fmt.Errorf("get space: %w", notFound(err))
	}
	return sp, nil
}

// ListSpaces returns every space, newest first.
func (s *Store) ListSpaces(ctx context.Context) ([]thinkspaces.Space, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, memory_summary, created_at FROM spaces ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	spaces := []thinkspaces.Space{}
	for rows.Next() {
		var sp thinkspaces.Space
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Description, &sp.MemorySummary, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, sp)
	}
	s.logger.Debug("sqlite: list spaces ok", "count", len(spaces), "duration", time.Since(start))
	return spaces, rows.Err()
}

// UpdateSpace overwrites name, description and memory summary.
func (s *Store) UpdateSpace(ctx context.Context, sp thinkspaces.Space) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE spaces SET name = ?, description = ?, memory_summary = ? WHERE id = ?`,
		sp.Name, sp.Description, sp.MemorySummary, sp.ID,
	)
	if err != nil {
		return fmt.Errorf("update space: %w", conflict(err))
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("update space: %w", err)
	}
	return nil
}

// DeleteSpace removes a space and everything in it in one transaction.
func (s *Store) DeleteSpace(ctx context.Context, id string) error {
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{
		`DELETE FROM interactions WHERE space_id = ?`,
		`DELETE FROM agents WHERE space_id = ?`,
		`DELETE FROM artifacts WHERE space_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			s.logger.Error("sqlite: delete space contents failed", "id", id, "error", err)
			return fmt.Errorf("delete space contents: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM spaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete space: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("delete space: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	s.logger.Debug("sqlite: delete space ok", "id", id, "duration", time.Since(start))
	return nil
}
