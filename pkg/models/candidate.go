package models

import "time"

// CandidateRecord is a normalized, not-yet-persisted job listing produced
// by the field extractor. It lives only for the duration of one ingestion
// run before being handed to deduplication.
type CandidateRecord struct {
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	SalaryRange     *string   `json:"salary_range,omitempty"`
	Description     string    `json:"description"`
	SourceName      string    `json:"source"`
	ExternalURL     *string   `json:"external_url,omitempty"`
	ScrapedAt       time.Time `json:"scraped_at"`
	ConfidenceScore int       `json:"confidence_score"`
}

// SourceConfig holds per-source operational parameters and telemetry.
// It is read before an ingestion run (is_active, rate limit) and updated
// after the run completes.
type SourceConfig struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	DisplayName      string     `json:"display_name"`
	BaseURL          string     `json:"base_url"`
	IsActive         bool       `json:"is_active"`
	RateLimitSeconds int        `json:"rate_limit_seconds"`
	MaxJobsPerScrape int        `json:"max_jobs_per_scrape"`
	LastScrapedAt    *time.Time `json:"last_scraped_at,omitempty"`
	TotalJobsScraped int        `json:"total_jobs_scraped"`
	LastError        *string    `json:"last_error,omitempty"`
}

// RateLimit returns the minimum inter-request interval for the source
func (c *SourceConfig) RateLimit() time.Duration {
	if c.RateLimitSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.RateLimitSeconds) * time.Second
}
