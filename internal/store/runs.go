package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobboard-api/pkg/models"
)

const runColumns = `id, source, query, location, job_limit, status,
	total_fetched, saved, duplicate, failed, error,
	created_at, started_at, completed_at`

// RunStore persists scrape run records so operators can poll outcomes
// after the HTTP trigger has already returned.
type RunStore struct {
	pool *pgxpool.Pool
}

func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

// CreateRun inserts a new run record in its initial status
func (s *RunStore) CreateRun(ctx context.Context, run *models.ScrapeRun) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO scrape_runs (id, source, query, location, job_limit, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		run.ID, run.Source, run.Query, run.Location, run.Limit, run.Status,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("createRun: %w", err)
	}
	return nil
}

// MarkRunProcessing records that a worker picked the run up
func (s *RunStore) MarkRunProcessing(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE scrape_runs SET status = $2, started_at = NOW() WHERE id = $1`,
		id, models.RunStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("markRunProcessing: %w", err)
	}
	return nil
}

// CompleteRun writes the terminal status and counters of a finished run
func (s *RunStore) CompleteRun(ctx context.Context, run *models.ScrapeRun) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE scrape_runs
		 SET status = $2, total_fetched = $3, saved = $4, duplicate = $5,
		     failed = $6, error = $7, completed_at = NOW()
		 WHERE id = $1`,
		run.ID, run.Status, run.TotalFetched, run.Saved, run.Duplicate,
		run.Failed, run.Error,
	)
	if err != nil {
		return fmt.Errorf("completeRun: %w", err)
	}
	return nil
}

// GetRun returns one run by id, or ErrNotFound
func (s *RunStore) GetRun(ctx context.Context, id string) (*models.ScrapeRun, error) {
	var run models.ScrapeRun
	err := s.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM scrape_runs WHERE id = $1`, id,
	).Scan(
		&run.ID, &run.Source, &run.Query, &run.Location, &run.Limit, &run.Status,
		&run.TotalFetched, &run.Saved, &run.Duplicate, &run.Failed, &run.Error,
		&run.CreatedAt, &run.StartedAt, &run.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getRun: %w", err)
	}
	return &run, nil
}

// DeleteRunsOlderThan removes terminal runs older than the retention age
// and returns how many rows were deleted
func (s *RunStore) DeleteRunsOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM scrape_runs
		 WHERE status IN ($1, $2) AND created_at < NOW() - make_interval(secs => $3)`,
		models.RunStatusSuccess, models.RunStatusFailure, age.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("deleteRunsOlderThan: %w", err)
	}
	return tag.RowsAffected(), nil
}
