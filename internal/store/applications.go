package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobboard-api/pkg/models"
)

// ErrDuplicateApplication is returned when an applicant applies to the
// same job twice.
var ErrDuplicateApplication = errors.New("application already exists")

// ApplicationStore persists job applications.
type ApplicationStore struct {
	pool *pgxpool.Pool
}

func NewApplicationStore(pool *pgxpool.Pool) *ApplicationStore {
	return &ApplicationStore{pool: pool}
}

// CreateApplication inserts an application, enforcing one per
// (job, applicant) pair
func (s *ApplicationStore) CreateApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, applicant_id, cover_letter, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (job_id, applicant_id) DO NOTHING
		 RETURNING id, created_at, updated_at`,
		app.JobID, app.ApplicantID, app.CoverLetter, app.Status,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDuplicateApplication
	}
	if err != nil {
		return nil, fmt.Errorf("createApplication: %w", err)
	}
	return app, nil
}

// ListApplicationsByJob returns all applications for a job, newest first
func (s *ApplicationStore) ListApplicationsByJob(ctx context.Context, jobID int64) ([]models.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, applicant_id, cover_letter, status, created_at, updated_at
		 FROM applications WHERE job_id = $1 ORDER BY created_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("listApplicationsByJob query: %w", err)
	}
	defer rows.Close()

	apps := make([]models.Application, 0)
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(
			&app.ID, &app.JobID, &app.ApplicantID, &app.CoverLetter,
			&app.Status, &app.CreatedAt, &app.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("listApplicationsByJob scan: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}
