package store

import (
	"context"
	"fmt"
	"time"

	"github.com/holon/witness/internal/engine"
)

// ArchivedThought is one persisted recursion step.
type ArchivedThought struct {
	ID              string    `json:"id"`
	ContemplationID string    `json:"contemplation_id"`
	Depth           int       `json:"depth"`
	Input           string    `json:"input"`
	Output          string    `json:"output"`
	Mode            string    `json:"mode"`
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
}

// InsertThought persists one thought. Satisfies engine.Archiver.
func (s *Store) InsertThought(ctx context.Context, contemplationID string, t engine.Thought, model string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO thoughts (id, contemplation_id, depth, input, output, mode, model)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)`,
		contemplationID, t.Depth, t.Input, t.Output, string(t.Mode), model,
	)
	if err != nil {
		return fmt.Errorf("insert thought: %w", err)
	}
	return nil
}

// CountThoughts returns the number of archived thoughts.
func (s *Store) CountThoughts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM thoughts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count thoughts: %w", err)
	}
	return n, nil
}

// RecentThoughts returns the most recent archived thoughts, newest first.
func (s *Store) RecentThoughts(ctx context.Context, limit int) ([]ArchivedThought, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, contemplation_id, depth, input, output, mode, model, created_at
		FROM thoughts
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent thoughts: %w", err)
	}
	defer rows.Close()

	var out []ArchivedThought
	for rows.Next() {
		var t ArchivedThought
		if err := rows.Scan(&t.ID, &t.ContemplationID, &t.Depth, &t.Input,
			&t.Output, &t.Mode, &t.Model, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan thought: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
