package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobboard-api/internal/ingest"
	"jobboard-api/pkg/models"
)

const jobColumns = `id, title, company, description, location, salary_range,
	application_url, status, is_scraped, external_url, posted_by_id,
	created_at, updated_at`

// JobStore persists canonical job postings.
type JobStore struct {
	pool *pgxpool.Pool
}

// NewJobStore returns a job store backed by the given pool
func NewJobStore(pool *pgxpool.Pool) *JobStore {
	return &JobStore{pool: pool}
}

// WithTx runs fn inside one transaction. Any error from fn rolls the
// whole transaction back.
func (s *JobStore) WithTx(ctx context.Context, fn func(tx ingest.JobTx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&jobTx{tx: tx})
	})
}

// jobTx exposes the lookups and inserts the committer runs inside a batch
// transaction. Reads go through the same tx so earlier inserts in the
// batch are visible to later duplicate checks.
type jobTx struct {
	tx pgx.Tx
}

func (t *jobTx) FindJobByTitleCompany(ctx context.Context, title, company string) (*models.Job, error) {
	var job models.Job
	err := t.tx.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE title = $1 AND company = $2 LIMIT 1`,
		title, company,
	).Scan(scanTargets(&job)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("findJobByTitleCompany: %w", err)
	}
	return &job, nil
}

func (t *jobTx) InsertJob(ctx context.Context, job *models.Job) (*models.Job, error) {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO jobs (title, company, description, location, salary_range,
		                   application_url, status, is_scraped, external_url, posted_by_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		job.Title, job.Company, job.Description, job.Location, job.SalaryRange,
		job.ApplicationURL, job.Status, job.IsScraped, job.ExternalURL, job.PostedByID,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insertJob: %w", err)
	}
	return job, nil
}

// CreateJob inserts a manually posted job
func (s *JobStore) CreateJob(ctx context.Context, job *models.Job) (*models.Job, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, company, description, location, salary_range,
		                   application_url, status, is_scraped, external_url, posted_by_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		job.Title, job.Company, job.Description, job.Location, job.SalaryRange,
		job.ApplicationURL, job.Status, job.IsScraped, job.ExternalURL, job.PostedByID,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("createJob: %w", err)
	}
	return job, nil
}

// GetJob returns one job by id, or ErrNotFound
func (s *JobStore) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	var job models.Job
	err := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id,
	).Scan(scanTargets(&job)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getJob: %w", err)
	}
	return &job, nil
}

// ListJobs returns jobs matching the filter, newest first
func (s *JobStore) ListJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	args := make([]interface{}, 0, 5)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		query += fmt.Sprintf(" AND location ILIKE $%d", len(args))
	}
	if filter.Company != "" {
		args = append(args, "%"+filter.Company+"%")
		query += fmt.Sprintf(" AND company ILIKE $%d", len(args))
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]models.Job, 0)
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(scanTargets(&job)...); err != nil {
			return nil, fmt.Errorf("listJobs scan: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateJob applies non-nil fields from the request to an existing job
func (s *JobStore) UpdateJob(ctx context.Context, id int64, req *models.UpdateJobRequest) (*models.Job, error) {
	var job models.Job
	err := s.pool.QueryRow(ctx,
		`UPDATE jobs SET
		   title           = COALESCE($2, title),
		   company         = COALESCE($3, company),
		   description     = COALESCE($4, description),
		   location        = COALESCE($5, location),
		   salary_range    = COALESCE($6, salary_range),
		   application_url = COALESCE($7, application_url),
		   status          = COALESCE($8, status),
		   updated_at      = NOW()
		 WHERE id = $1
		 RETURNING `+jobColumns,
		id, req.Title, req.Company, req.Description, req.Location,
		req.SalaryRange, req.ApplicationURL, req.Status,
	).Scan(scanTargets(&job)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updateJob: %w", err)
	}
	return &job, nil
}

// CloseJob marks a job closed instead of deleting the row, keeping the
// natural key visible to future duplicate checks.
func (s *JobStore) CloseJob(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, models.JobStatusClosed,
	)
	if err != nil {
		return fmt.Errorf("closeJob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountJobs returns total and scraped job counts for the stats endpoint
func (s *JobStore) CountJobs(ctx context.Context) (total, scraped int64, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_scraped) FROM jobs`,
	).Scan(&total, &scraped)
	if err != nil {
		return 0, 0, fmt.Errorf("countJobs: %w", err)
	}
	return total, scraped, nil
}

func scanTargets(job *models.Job) []interface{} {
	return []interface{}{
		&job.ID, &job.Title, &job.Company, &job.Description, &job.Location,
		&job.SalaryRange, &job.ApplicationURL, &job.Status, &job.IsScraped,
		&job.ExternalURL, &job.PostedByID, &job.CreatedAt, &job.UpdatedAt,
	}
}
