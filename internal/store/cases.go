package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/protech-rv/protech/internal/registry"
)

// InsertMessage appends one chat message to the case transcript.
func (s *Store) InsertMessage(ctx context.Context, caseID, role, content string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO case_messages (id, case_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		id, caseID, role, content,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert message: %w", err)
	}
	return id, nil
}

// UpsertCaseSnapshot writes the post-turn registry state for a case.
func (s *Store) UpsertCaseSnapshot(ctx context.Context, snap registry.Snapshot) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO diagnostic_cases
			(case_id, procedure_system, completed_steps, unable_steps, legacy_topics, pivoted, pivot_finding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (case_id) DO UPDATE SET
			procedure_system = EXCLUDED.procedure_system,
			completed_steps  = EXCLUDED.completed_steps,
			unable_steps     = EXCLUDED.unable_steps,
			legacy_topics    = EXCLUDED.legacy_topics,
			pivoted          = EXCLUDED.pivoted,
			pivot_finding    = EXCLUDED.pivot_finding,
			updated_at       = now()`,
		snap.CaseID,
		snap.ProcedureSystem,
		setToSlice(snap.CompletedStepIDs),
		setToSlice(snap.UnableToVerifyIDs),
		snap.LegacyTopics,
		snap.Pivoted,
		snap.PivotFinding,
	)
	if err != nil {
		return fmt.Errorf("upsert case snapshot: %w", err)
	}
	return nil
}

// GetCaseSnapshot loads the persisted state for a case; (nil, nil) when the
// case has never been written.
func (s *Store) GetCaseSnapshot(ctx context.Context, caseID string) (*registry.Snapshot, error) {
	var (
		system    string
		completed []string
		unable    []string
		topics    []string
		pivoted   bool
		finding   string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(procedure_system, ''), completed_steps, unable_steps,
		       legacy_topics, pivoted, COALESCE(pivot_finding, '')
		FROM diagnostic_cases WHERE case_id = $1`,
		caseID,
	).Scan(&system, &completed, &unable, &topics, &pivoted, &finding)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load case snapshot: %w", err)
	}

	return &registry.Snapshot{
		CaseID:            caseID,
		Assigned:          true,
		ProcedureSystem:   system,
		CompletedStepIDs:  sliceToSet(completed),
		UnableToVerifyIDs: sliceToSet(unable),
		LegacyTopics:      topics,
		Pivoted:           pivoted,
		PivotFinding:      finding,
	}, nil
}

func setToSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id, ok := range set {
		if ok {
			out = append(out, id)
		}
	}
	return out
}

func sliceToSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
