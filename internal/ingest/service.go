package ingest

import (
	"context"
	"fmt"
	"time"

	"jobboard-api/internal/config"
	"jobboard-api/internal/ingest/source"
	"jobboard-api/internal/logging"
	"jobboard-api/pkg/models"
)

// SourceStore is the slice of the store the ingestion service needs for
// per-source configuration and telemetry.
type SourceStore interface {
	// GetSourceConfig returns the stored config for a source, or
	// (nil, nil) when no row exists and builtin defaults apply
	GetSourceConfig(ctx context.Context, name string) (*models.SourceConfig, error)

	// RecordRunTelemetry updates last_scraped_at, total_jobs_scraped and
	// last_error after a run
	RecordRunTelemetry(ctx context.Context, name string, scraped int, lastError *string) error
}

// IngestSummary is the outcome of one complete ingestion run
type IngestSummary struct {
	Source       string `json:"source"`
	TotalFetched int    `json:"total_fetched"`
	Saved        int    `json:"saved"`
	Duplicate    int    `json:"duplicate"`
	Failed       int    `json:"failed"`

	// FetchError carries a page-level failure that truncated the run
	// without failing it
	FetchError string `json:"fetch_error,omitempty"`
}

// Service owns the full pipeline for both preview (no persistence) and
// ingestion runs.
type Service struct {
	cfg       *config.Config
	registry  *source.Registry
	committer *Committer
	sources   SourceStore
	logger    logging.Logger
}

// NewService creates the ingestion service
func NewService(cfg *config.Config, registry *source.Registry, jobs JobStore, sources SourceStore, logger logging.Logger) *Service {
	return &Service{
		cfg:       cfg,
		registry:  registry,
		committer: NewCommitter(jobs, logger),
		sources:   sources,
		logger:    logger,
	}
}

// Registry exposes the source registry for the API surface
func (s *Service) Registry() *source.Registry {
	return s.registry
}

// resolveActive resolves the source runtime and enforces is_active using
// the freshest available config. Checked once per run, before paging.
func (s *Service) resolveActive(ctx context.Context, name string) (*source.Runtime, error) {
	rt, err := s.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	isActive := rt.Config.IsActive
	if stored, err := s.sources.GetSourceConfig(ctx, name); err != nil {
		s.logger.Warn("failed to load stored source config, using registry defaults", map[string]interface{}{
			"source": name,
			"error":  err.Error(),
		})
	} else if stored != nil {
		isActive = stored.IsActive
	}

	if !isActive {
		return nil, fmt.Errorf("%w: %s", ErrSourceDisabled, name)
	}
	return rt, nil
}

// Preview runs the fetch/extract pipeline synchronously and returns the
// candidate records without touching the store.
func (s *Service) Preview(ctx context.Context, name, query, location string, limit int) ([]models.CandidateRecord, error) {
	rt, err := s.resolveActive(ctx, name)
	if err != nil {
		return nil, err
	}

	limit = s.clampLimit(rt, limit, s.cfg.Scraper.PreviewLimit)

	result, err := runPages(ctx, rt, query, location, limit, s.logger)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// Ingest runs the full pipeline for one source and commits the result.
// Source telemetry is recorded regardless of outcome.
func (s *Service) Ingest(ctx context.Context, name, query, location string, limit int, postedByID *int64) (*IngestSummary, error) {
	rt, err := s.resolveActive(ctx, name)
	if err != nil {
		return nil, err
	}

	limit = s.clampLimit(rt, limit, s.cfg.Scraper.DefaultLimit)

	started := time.Now()
	result, err := runPages(ctx, rt, query, location, limit, s.logger)
	if err != nil {
		s.recordTelemetry(name, 0, err)
		return nil, err
	}

	summary := &IngestSummary{Source: name, TotalFetched: result.TotalFetched}
	if result.FetchErr != nil {
		summary.FetchError = result.FetchErr.Error()
	}

	commit, commitErr := s.committer.Commit(ctx, result.Records, postedByID)
	summary.Saved = commit.Saved
	summary.Duplicate = commit.Duplicate
	summary.Failed = commit.Failed

	s.recordTelemetry(name, commit.Saved, firstError(result.FetchErr, commitErr))

	s.logger.Info("ingestion run finished", map[string]interface{}{
		"source":    name,
		"query":     query,
		"location":  location,
		"fetched":   summary.TotalFetched,
		"saved":     summary.Saved,
		"duplicate": summary.Duplicate,
		"failed":    summary.Failed,
		"duration":  time.Since(started).String(),
	})

	if commitErr != nil {
		return summary, commitErr
	}
	return summary, nil
}

func (s *Service) clampLimit(rt *source.Runtime, limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if max := rt.Config.MaxJobsPerScrape; max > 0 && limit > max {
		limit = max
	}
	return limit
}

// recordTelemetry is best-effort: telemetry must never mask a run outcome
func (s *Service) recordTelemetry(name string, scraped int, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var lastError *string
	if runErr != nil {
		msg := runErr.Error()
		lastError = &msg
	}

	if err := s.sources.RecordRunTelemetry(ctx, name, scraped, lastError); err != nil {
		s.logger.Error("failed to record source telemetry", map[string]interface{}{
			"source": name,
			"error":  err.Error(),
		})
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
