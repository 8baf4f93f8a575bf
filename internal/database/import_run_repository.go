package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/estatelink/property-importer/internal/domain"
)

// ImportRunRepository persists run records for operator history.
type ImportRunRepository struct {
	db *sqlx.DB
}

// NewImportRunRepository creates a new import-run repository.
func NewImportRunRepository(db *sqlx.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

// Create inserts a new run record in the running state and fills its ID.
func (r *ImportRunRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	const query = `
		INSERT INTO import_runs (triggered_by, status, started_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, run.TriggeredBy, string(run.Status), run.StartedAt).
		Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}

	return nil
}

// Finish records the final counters and status of a run.
func (r *ImportRunRepository) Finish(ctx context.Context, run *domain.ImportRun) error {
	const query = `
		UPDATE import_runs
		SET status = $2, processed = $3, created = $4, duplicates = $5,
		    failed = $6, error = $7, finished_at = $8
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, string(run.Status), run.Processed, run.Created,
		run.Duplicates, run.Failed, run.Error, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to finish import run: %w", err)
	}

	return nil
}

// ListRecent returns the most recent runs, newest first.
func (r *ImportRunRepository) ListRecent(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	const query = `
		SELECT id, triggered_by, status, processed, created, duplicates,
		       failed, error, started_at, finished_at
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []domain.ImportRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}

	return runs, nil
}
