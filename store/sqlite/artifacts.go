package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/thinkspaces/thinkspaces"
)

const artifactColumns = `id, space_id, title, content, file_name, mime_type, summary, tags, created_at`

// CreateArtifact inserts an artifact.
func (s *Store) CreateArtifact(ctx context.Context, a thinkspaces.Artifact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (`+artifactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SpaceID, a.Title, a.Content, a.FileName, a.MimeType, a.Summary, encodeTags(a.Tags), a.CreatedAt,
	)
	if err != nil {
		s.logger.Error("sqlite: create artifact failed", "id", a.ID, "error", err)
		return fmt.Errorf("create artifact: %w", err)
	}
	return nil
}

// GetArtifact returns an artifact by ID.
func (s *Store) GetArtifact(ctx context.Context, id string) (thinkspaces.Artifact, error) {
	a, err := scanArtifact(s.db.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id))
	if err != nil {
		return thinkspaces.Artifact{}, fmt.Errorf("get artifact: %w", notFound(err))
	}
	return a, nil
}

// RecentArtifacts returns up to limit artifacts of a space, newest first.
func (s *Store) RecentArtifacts(ctx context.Context, spaceID string, limit int) ([]thinkspaces.Artifact, error) {
	return s.queryArtifacts(ctx, "recent artifacts",
		`SELECT `+artifactColumns+` FROM artifacts WHERE space_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		spaceID, limit)
}

// ListArtifacts returns every artifact of a space, newest first.
func (s *Store) ListArtifacts(ctx context.Context, spaceID string) ([]thinkspaces.Artifact, error) {
	return s.queryArtifacts(ctx, "list artifacts",
		`SELECT `+artifactColumns+` FROM artifacts WHERE space_id = ? ORDER BY created_at DESC, id DESC`,
		spaceID)
}

// AllArtifacts returns every artifact across spaces, newest first.
func (s *Store) AllArtifacts(ctx context.Context) ([]thinkspaces.Artifact, error) {
	return s.queryArtifacts(ctx, "all artifacts",
		`SELECT `+artifactColumns+` FROM artifacts ORDER BY created_at DESC, id DESC`)
}

// SearchArtifacts matches query case-insensitively against title, content
// and file name. Both sides go through Unicode case folding, so "ÉTÉ"
// finds "été".
func (s *Store) SearchArtifacts(ctx context.Context, query, spaceID string, limit int) ([]thinkspaces.Artifact, error) {
	pat := likePattern(query)
	q := `SELECT ` + artifactColumns + ` FROM artifacts
		WHERE (casefold(title) LIKE ? ESCAPE '\' OR casefold(content) LIKE ? ESCAPE '\' OR casefold(file_name) LIKE ? ESCAPE '\')`
	args := []any{pat, pat, pat}
	if spaceID != "" {
		q += ` AND space_id = ?`
		args = append(args, spaceID)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)
	return s.queryArtifacts(ctx, "search artifacts", q, args...)
}

// UpdateArtifact overwrites the mutable artifact fields.
func (s *Store) UpdateArtifact(ctx context.Context, a thinkspaces.Artifact) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE artifacts SET title = ?, content = ?, file_name = ?, mime_type = ?, summary = ?, tags = ? WHERE id = ?`,
		a.Title, a.Content, a.FileName, a.MimeType, a.Summary, encodeTags(a.Tags), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update artifact: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("update artifact: %w", err)
	}
	return nil
}

// DeleteArtifact removes an artifact.
func (s *Store) DeleteArtifact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

func (s *Store) queryArtifacts(ctx context.Context, op, query string, args ...any) ([]thinkspaces.Artifact, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("sqlite: "+op+" failed", "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []thinkspaces.Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		out = append(out, a)
	}
	s.logger.Debug("sqlite: "+op+" ok", "count", len(out), "duration", time.Since(start))
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row scanner) (thinkspaces.Artifact, error) {
	var a thinkspaces.Artifact
	var tags string
	if err := row.Scan(&a.ID, &a.SpaceID, &a.Title, &a.Content, &a.FileName, &a.MimeType, &a.Summary, &tags, &a.CreatedAt); err != nil {
		return thinkspaces.Artifact{}, err
	}
	decoded, err := decodeTags(tags)
	if err != nil {
		return thinkspaces.Artifact{}, fmt.Errorf("artifact %s: %w", a.ID, err)
	}
	a.Tags = decoded
	return a, nil
}
