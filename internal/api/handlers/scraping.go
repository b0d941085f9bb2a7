package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"jobboard-api/internal/background"
	"jobboard-api/internal/config"
	"jobboard-api/internal/ingest"
	"jobboard-api/internal/ingest/source"
	"jobboard-api/internal/logging"
	"jobboard-api/internal/store"
	"jobboard-api/pkg/models"
	"jobboard-api/pkg/utils"
)

var validate = validator.New()

// TriggerScrapeHandler accepts a scraping trigger and hands it to the
// background task manager. The response is an immediate acknowledgment;
// the outcome is observable through the run record.
func TriggerScrapeHandler(cfg *config.Config, svc *ingest.Service, taskManager *background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		req := models.TriggerScrapeRequest{
			Source:   c.Param("source"),
			Query:    utils.GetStringOrDefault(c.QueryParam("q"), cfg.Scraper.DefaultQuery),
			Location: utils.GetStringOrDefault(c.QueryParam("location"), cfg.Scraper.DefaultLocation),
			Limit:    cfg.Scraper.DefaultLimit,
		}
		if raw := c.QueryParam("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				return c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Error:     "invalid_request",
					Message:   "limit must be an integer",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			req.Limit = limit
		}

		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		// Unknown sources are rejected up front so the caller gets a 400
		// instead of a failed background run
		if _, err := svc.Registry().Resolve(req.Source); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "unknown_source",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		run, err := taskManager.SubmitIngestRun(c.Request().Context(), req)
		if err != nil {
			if errors.Is(err, background.ErrSourceBusy) {
				return c.JSON(http.StatusConflict, models.ErrorResponse{
					Error:     "source_busy",
					Message:   err.Error(),
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			logger.Error("Failed to submit ingestion run", map[string]interface{}{
				"request_id": requestID,
				"source":     req.Source,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:     "submission_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusAccepted, models.TriggerScrapeResponse{
			ProcessID: run.ID,
			Source:    run.Source,
			Query:     run.Query,
			Location:  run.Location,
			Limit:     run.Limit,
			Status:    string(run.Status),
		})
	}
}

// PreviewScrapeHandler runs a small synchronous scrape and returns the
// extracted candidates without persisting anything
func PreviewScrapeHandler(cfg *config.Config, svc *ingest.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		name := c.Param("source")
		query := utils.GetStringOrDefault(c.QueryParam("q"), cfg.Scraper.DefaultQuery)
		location := utils.GetStringOrDefault(c.QueryParam("location"), cfg.Scraper.DefaultLocation)

		limit := cfg.Scraper.PreviewLimit
		if raw := c.QueryParam("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				return c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Error:     "invalid_request",
					Message:   "limit must be a positive integer",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			limit = parsed
		}

		records, err := svc.Preview(c.Request().Context(), name, query, location, limit)
		if err != nil {
			switch {
			case errors.Is(err, source.ErrUnknownSource):
				return c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Error:     "unknown_source",
					Message:   err.Error(),
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			case errors.Is(err, ingest.ErrSourceDisabled):
				return c.JSON(http.StatusConflict, models.ErrorResponse{
					Error:     "source_disabled",
					Message:   err.Error(),
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			default:
				return c.JSON(http.StatusBadGateway, models.ErrorResponse{
					Error:     "preview_failed",
					Message:   err.Error(),
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
		}

		return c.JSON(http.StatusOK, models.PreviewScrapeResponse{
			Preview:  true,
			Source:   name,
			Query:    query,
			Location: location,
			Count:    len(records),
			Jobs:     records,
		})
	}
}

// RunStatusHandler returns the run record for a process id
func RunStatusHandler(taskManager *background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		run, err := taskManager.GetRun(c.Request().Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error:     "run_not_found",
					Message:   "no run record for the given id",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "run_lookup_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, run)
	}
}

// ScrapingStatsHandler summarizes the canonical job store
func ScrapingStatsHandler(jobs *store.JobStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		total, scraped, err := jobs.CountJobs(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "stats_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, models.ScrapingStatsResponse{
			TotalJobs:   total,
			ScrapedJobs: scraped,
			ManualJobs:  total - scraped,
		})
	}
}

// ListSourcesHandler lists the configured sources. Stored configs take
// precedence over compiled-in defaults.
func ListSourcesHandler(svc *ingest.Service, sources *store.SourceStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		configs := svc.Registry().Configs()
		stored, err := sources.ListSourceConfigs(c.Request().Context())
		if err != nil {
			logging.GetGlobalLogger().Warn("Failed to load stored source configs, serving registry defaults", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
		}

		byName := make(map[string]models.SourceConfig, len(stored))
		for _, cfg := range stored {
			byName[cfg.Name] = cfg
		}

		infos := make([]models.SourceInfo, 0, len(configs))
		for _, cfg := range configs {
			if overlay, ok := byName[cfg.Name]; ok {
				cfg = overlay
			}
			infos = append(infos, models.SourceInfo{
				Name:             cfg.Name,
				DisplayName:      cfg.DisplayName,
				BaseURL:          cfg.BaseURL,
				IsActive:         cfg.IsActive,
				RateLimitSeconds: cfg.RateLimitSeconds,
				MaxJobsPerScrape: cfg.MaxJobsPerScrape,
			})
		}

		return c.JSON(http.StatusOK, infos)
	}
}
