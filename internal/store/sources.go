package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobboard-api/pkg/models"
)

const sourceColumns = `id, name, display_name, base_url, is_active,
	rate_limit_seconds, max_jobs_per_scrape, last_scraped_at,
	total_jobs_scraped, last_error`

// SourceStore persists per-source configuration and run telemetry.
type SourceStore struct {
	pool *pgxpool.Pool
}

func NewSourceStore(pool *pgxpool.Pool) *SourceStore {
	return &SourceStore{pool: pool}
}

// GetSourceConfig returns the stored config for a source name, or
// (nil, nil) when no row exists
func (s *SourceStore) GetSourceConfig(ctx context.Context, name string) (*models.SourceConfig, error) {
	var cfg models.SourceConfig
	err := s.pool.QueryRow(ctx,
		`SELECT `+sourceColumns+` FROM scraping_sources WHERE name = $1`, name,
	).Scan(
		&cfg.ID, &cfg.Name, &cfg.DisplayName, &cfg.BaseURL, &cfg.IsActive,
		&cfg.RateLimitSeconds, &cfg.MaxJobsPerScrape, &cfg.LastScrapedAt,
		&cfg.TotalJobsScraped, &cfg.LastError,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getSourceConfig: %w", err)
	}
	return &cfg, nil
}

// ListSourceConfigs returns all stored source configs ordered by name
func (s *SourceStore) ListSourceConfigs(ctx context.Context) ([]models.SourceConfig, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sourceColumns+` FROM scraping_sources ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listSourceConfigs query: %w", err)
	}
	defer rows.Close()

	configs := make([]models.SourceConfig, 0)
	for rows.Next() {
		var cfg models.SourceConfig
		if err := rows.Scan(
			&cfg.ID, &cfg.Name, &cfg.DisplayName, &cfg.BaseURL, &cfg.IsActive,
			&cfg.RateLimitSeconds, &cfg.MaxJobsPerScrape, &cfg.LastScrapedAt,
			&cfg.TotalJobsScraped, &cfg.LastError,
		); err != nil {
			return nil, fmt.Errorf("listSourceConfigs scan: %w", err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// RecordRunTelemetry updates telemetry after a run. Missing rows are a
// no-op so builtin sources without a stored row never fail a run.
func (s *SourceStore) RecordRunTelemetry(ctx context.Context, name string, scraped int, lastError *string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE scraping_sources
		 SET last_scraped_at    = NOW(),
		     total_jobs_scraped = total_jobs_scraped + $2,
		     last_error         = $3
		 WHERE name = $1`,
		name, scraped, lastError,
	)
	if err != nil {
		return fmt.Errorf("recordRunTelemetry: %w", err)
	}
	return nil
}
