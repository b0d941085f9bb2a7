package models

import "time"

// JobStatus represents the lifecycle state of a job posting
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

// IsValid reports whether the status is one of the known lifecycle states
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusActive, JobStatusClosed, JobStatusDraft:
		return true
	}
	return false
}

// Job represents a canonical job posting stored by the system.
// Rows are created either by a human poster (is_scraped=false) or by the
// ingestion pipeline (is_scraped=true). The (title, company) pair is the
// natural key used to detect duplicates against scraped candidates.
type Job struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	SalaryRange    *string   `json:"salary_range,omitempty"`
	ApplicationURL *string   `json:"application_url,omitempty"`
	Status         JobStatus `json:"status"`
	IsScraped      bool      `json:"is_scraped"`
	ExternalURL    *string   `json:"external_url,omitempty"`
	PostedByID     *int64    `json:"posted_by_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// JobFilter narrows job listing queries
type JobFilter struct {
	Location string
	Company  string
	Status   JobStatus
	Offset   int
	Limit    int
}

// Application represents a user's application against a job posting
type Application struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"job_id"`
	ApplicantID int64     `json:"applicant_id"`
	CoverLetter string    `json:"cover_letter,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
