package models

import "time"

// TriggerScrapeResponse is the immediate acknowledgment returned by the
// trigger endpoint. The run executes in the background; actual outcome is
// observable via the run record.
type TriggerScrapeResponse struct {
	ProcessID string `json:"processId"`
	Source    string `json:"source"`
	Query     string `json:"query"`
	Location  string `json:"location"`
	Limit     int    `json:"limit"`
	Status    string `json:"status"`
}

// PreviewScrapeResponse is the synchronous preview result, never persisted
type PreviewScrapeResponse struct {
	Preview  bool              `json:"preview"`
	Source   string            `json:"source"`
	Query    string            `json:"query"`
	Location string            `json:"location"`
	Count    int               `json:"count"`
	Jobs     []CandidateRecord `json:"jobs"`
}

// ScrapingStatsResponse summarizes the canonical job store
type ScrapingStatsResponse struct {
	TotalJobs   int64 `json:"total_jobs"`
	ScrapedJobs int64 `json:"scraped_jobs"`
	ManualJobs  int64 `json:"manual_jobs"`
}

// SourceInfo describes one configured source on the sources listing
type SourceInfo struct {
	Name             string `json:"name"`
	DisplayName      string `json:"display_name"`
	BaseURL          string `json:"base_url"`
	IsActive         bool   `json:"is_active"`
	RateLimitSeconds int    `json:"rate_limit_seconds"`
	MaxJobsPerScrape int    `json:"max_jobs_per_scrape"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
