package models

// TriggerScrapeRequest carries the validated parameters of a scraping
// trigger. Bound from path and query parameters by the handler.
type TriggerScrapeRequest struct {
	Source   string `json:"source" validate:"required"`
	Query    string `json:"query" validate:"required"`
	Location string `json:"location"`
	Limit    int    `json:"limit" validate:"min=1,max=100"`
}

// CreateJobRequest is the payload for creating a job posting manually
type CreateJobRequest struct {
	Title          string  `json:"title" validate:"required,max=255"`
	Company        string  `json:"company" validate:"required,max=255"`
	Description    string  `json:"description" validate:"required"`
	Location       string  `json:"location" validate:"max=255"`
	SalaryRange    *string `json:"salary_range,omitempty"`
	ApplicationURL *string `json:"application_url,omitempty" validate:"omitempty,url"`
	PostedByID     *int64  `json:"posted_by_id,omitempty"`
}

// UpdateJobRequest is the payload for a partial job update. Nil fields are
// left untouched.
type UpdateJobRequest struct {
	Title          *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Company        *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Description    *string `json:"description,omitempty"`
	Location       *string `json:"location,omitempty" validate:"omitempty,max=255"`
	SalaryRange    *string `json:"salary_range,omitempty"`
	ApplicationURL *string `json:"application_url,omitempty" validate:"omitempty,url"`
	Status         *string `json:"status,omitempty" validate:"omitempty,oneof=active closed draft"`
}

// CreateApplicationRequest is the payload for applying to a job
type CreateApplicationRequest struct {
	ApplicantID int64  `json:"applicant_id" validate:"required"`
	CoverLetter string `json:"cover_letter,omitempty"`
}
