package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the case and message tables when they do not exist.
// The diagnostic engine itself is in-memory; these tables only record what
// happened per case and allow a snapshot to be rehydrated after a restart.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS diagnostic_cases (
			case_id          text PRIMARY KEY,
			procedure_system text,
			completed_steps  text[] NOT NULL DEFAULT '{}',
			unable_steps     text[] NOT NULL DEFAULT '{}',
			legacy_topics    text[] NOT NULL DEFAULT '{}',
			pivoted          boolean NOT NULL DEFAULT false,
			pivot_finding    text,
			updated_at       timestamptz NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS case_messages (
			id         uuid PRIMARY KEY,
			case_id    text NOT NULL,
			role       text NOT NULL,
			content    text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS case_messages_case_id_idx ON case_messages (case_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
