package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"jobboard-api/internal/store"
	"jobboard-api/pkg/models"
	"jobboard-api/pkg/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func badRequest(c echo.Context, requestID, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     "invalid_request",
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}

func jobID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// ListJobsHandler returns jobs matching the filter query parameters
func ListJobsHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		filter := models.JobFilter{
			Location: c.QueryParam("location"),
			Company:  c.QueryParam("company"),
			Status:   models.JobStatus(c.QueryParam("status")),
			Limit:    defaultPageSize,
		}
		if filter.Status != "" && !filter.Status.IsValid() {
			return badRequest(c, requestID, "status must be one of active, closed, draft")
		}
		if raw := c.QueryParam("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				return badRequest(c, requestID, "limit must be a positive integer")
			}
			if limit > maxPageSize {
				limit = maxPageSize
			}
			filter.Limit = limit
		}
		if raw := c.QueryParam("offset"); raw != "" {
			offset, err := strconv.Atoi(raw)
			if err != nil || offset < 0 {
				return badRequest(c, requestID, "offset must be a non-negative integer")
			}
			filter.Offset = offset
		}

		result, err := jobs.ListJobs(c.Request().Context(), filter)
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

// GetJobHandler returns one job by id
func GetJobHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		id, err := jobID(c)
		if err != nil {
			return badRequest(c, requestID, "id must be an integer")
		}

		job, err := jobs.GetJob(c.Request().Context(), id)
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
		return c.JSON(http.StatusOK, job)
	}
}

// CreateJobHandler creates a manually posted job
func CreateJobHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		var req models.CreateJobRequest
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

		job := &models.Job{
			Title:          req.Title,
			Company:        req.Company,
			Description:    req.Description,
			Location:       req.Location,
			SalaryRange:    req.SalaryRange,
			ApplicationURL: req.ApplicationURL,
			Status:         models.JobStatusActive,
			IsScraped:      false,
			PostedByID:     req.PostedByID,
		}
		created, err := jobs.CreateJob(c.Request().Context(), job)
		if err != nil {
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

// UpdateJobHandler applies a partial update to a job
func UpdateJobHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		id, err := jobID(c)
		if err != nil {
			return badRequest(c, requestID, "id must be an integer")
		}

		var req models.UpdateJobRequest
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

		job, err := jobs.UpdateJob(c.Request().Context(), id, &req)
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
				Error:     "update_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		return c.JSON(http.StatusOK, job)
	}
}

// CloseJobHandler marks a job closed. The row is kept so its natural key
// still participates in duplicate detection.
func CloseJobHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		id, err := jobID(c)
		if err != nil {
			return badRequest(c, requestID, "id must be an integer")
		}

		if err := jobs.CloseJob(c.Request().Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error:     "job_not_found",
					Message:   "no job with the given id",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "close_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		return c.NoContent(http.StatusNoContent)
	}
}
