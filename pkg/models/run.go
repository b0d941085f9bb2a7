package models

import "time"

// RunStatus represents the status of a background ingestion run
type RunStatus string

const (
	RunStatusAccepted   RunStatus = "ACCEPTED"
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusSuccess    RunStatus = "SUCCESS"
	RunStatusFailure    RunStatus = "FAILURE"
)

// ScrapeRun is the durable record of one ingestion run. It is created when
// a trigger is accepted and updated as the run progresses, so operators can
// poll the outcome instead of digging through process logs.
type ScrapeRun struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	Query        string     `json:"query"`
	Location     string     `json:"location"`
	Limit        int        `json:"limit"`
	Status       RunStatus  `json:"status"`
	TotalFetched int        `json:"total_fetched"`
	Saved        int        `json:"saved"`
	Duplicate    int        `json:"duplicate"`
	Failed       int        `json:"failed"`
	Error        *string    `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the run has finished, successfully or not
func (r *ScrapeRun) IsTerminal() bool {
	return r.Status == RunStatusSuccess || r.Status == RunStatusFailure
}
