package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobboard-api/internal/store"
	"jobboard-api/pkg/models"
	"jobboard-api/pkg/utils"
)

// CreateApplicationHandler records an application against a job. The job
// must exist and be active.
func CreateApplicationHandler(jobs *store.JobStore, apps *store.ApplicationStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		id, err := jobID(c)
		if err != nil {
			return badRequest(c, requestID, "id must be an integer")
		}

		var req models.CreateApplicationRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "invalid request format")
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		ctx := c.Request().Context()
		job, err := jobs.GetJob(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error:     "job_not_found",
					Message:   "no job with the given id",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "lookup_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		if job.Status != models.JobStatusActive {
			return c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:     "job_not_active",
				Message:   "applications are only accepted for active jobs",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		app := &models.Application{
			JobID:       job.ID,
			ApplicantID: req.ApplicantID,
			CoverLetter: req.CoverLetter,
			Status:      "submitted",
		}
		created, err := apps.CreateApplication(ctx, app)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateApplication) {
				return c.JSON(http.StatusConflict, models.ErrorResponse{
					Error:     "duplicate_application",
					Message:   "applicant has already applied to this job",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "create_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		return c.JSON(http.StatusCreated, created)
	}
}

// ListApplicationsHandler lists applications for a job
func ListApplicationsHandler(apps *store.ApplicationStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		id, err := jobID(c)
		if err != nil {
			return badRequest(c, requestID, "id must be an integer")
		}

		result, err := apps.ListApplicationsByJob(c.Request().Context(), id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "list_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		return c.JSON(http.StatusOK, result)
	}
}
