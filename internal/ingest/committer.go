package ingest

import (
	"context"
	"fmt"
	"strings"

	"jobboard-api/internal/logging"
	"jobboard-api/pkg/models"
)

// JobTx is the slice of the job store visible inside one commit
// transaction.
type JobTx interface {
	// FindJobByTitleCompany looks up a job by its natural key with exact,
	// case-sensitive matching. Returns (nil, nil) when absent.
	FindJobByTitleCompany(ctx context.Context, title, company string) (*models.Job, error)

	// InsertJob inserts a new canonical job and returns it with its id set
	InsertJob(ctx context.Context, job *models.Job) (*models.Job, error)
}

// JobStore runs a function inside a single transaction. An error return
// rolls the whole batch back.
type JobStore interface {
	WithTx(ctx context.Context, fn func(tx JobTx) error) error
}

// CommitSummary reports the outcome of one commit batch
type CommitSummary struct {
	Saved     int `json:"saved"`
	Duplicate int `json:"duplicate"`
	Failed    int `json:"failed"`
}

// Committer dedupes candidate records against the canonical store and
// persists the new ones atomically.
type Committer struct {
	jobs   JobStore
	logger logging.Logger
}

// NewCommitter creates a committer over the given job store
func NewCommitter(jobs JobStore, logger logging.Logger) *Committer {
	return &Committer{jobs: jobs, logger: logger}
}

// Commit processes the batch inside one transaction. Records matching an
// existing (title, company) pair are discarded as duplicates; malformed
// records are skipped and counted failed without aborting the batch. A
// store failure rolls everything back, in which case every record in the
// batch is reported failed and the error is surfaced.
func (c *Committer) Commit(ctx context.Context, records []models.CandidateRecord, postedByID *int64) (CommitSummary, error) {
	var summary CommitSummary
	if len(records) == 0 {
		return summary, nil
	}

	err := c.jobs.WithTx(ctx, func(tx JobTx) error {
		for _, rec := range records {
			if rec.Title == "" || rec.Company == "" {
				summary.Failed++
				c.logger.Warn("skipping malformed candidate", map[string]interface{}{
					"source":  rec.SourceName,
					"title":   rec.Title,
					"company": rec.Company,
				})
				continue
			}

			existing, err := tx.FindJobByTitleCompany(ctx, rec.Title, rec.Company)
			if err != nil {
				return fmt.Errorf("lookup %q / %q: %w", rec.Title, rec.Company, err)
			}
			if existing != nil {
				// First-seen record wins; re-scrapes never refresh fields
				summary.Duplicate++
				continue
			}

			job := &models.Job{
				Title:       rec.Title,
				Company:     rec.Company,
				Description: rec.Description,
				Location:    rec.Location,
				SalaryRange: rec.SalaryRange,
				Status:      models.JobStatusActive,
				IsScraped:   true,
				ExternalURL: rec.ExternalURL,
				PostedByID:  postedByID,
			}
			if _, err := tx.InsertJob(ctx, job); err != nil {
				return fmt.Errorf("insert %q / %q: %w", rec.Title, rec.Company, err)
			}
			summary.Saved++
		}
		return nil
	})
	if err != nil {
		// The batch rolled back: nothing landed, everything failed
		return CommitSummary{Failed: len(records)}, fmt.Errorf("commit batch: %w", err)
	}

	return summary, nil
}

// NormalizeKey folds a natural-key component for fuzzy duplicate matching
// (trim + case-fold). Deliberately not wired into Commit: the reference
// dedup is whitespace- and case-exact, and switching would reclassify
// existing rows. Available for a future migration.
func NormalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
