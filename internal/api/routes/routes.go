package routes

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobboard-api/internal/api/handlers"
	"jobboard-api/internal/api/middleware"
	"jobboard-api/internal/background"
	"jobboard-api/internal/config"
	"jobboard-api/internal/ingest"
	"jobboard-api/internal/store"
)

// Stores bundles the persistence layers the HTTP surface needs
type Stores struct {
	Pool         *pgxpool.Pool
	Jobs         *store.JobStore
	Sources      *store.SourceStore
	Applications *store.ApplicationStore
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, stores Stores, svc *ingest.Service, taskManager *background.TaskManager) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig(cfg.Server.AllowedOrigins))
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(stores.Pool))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(taskManager, svc))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		// Job board surface
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", handlers.ListJobsHandler(stores.Jobs))
			jobs.POST("", handlers.CreateJobHandler(stores.Jobs))
			jobs.GET("/:id", handlers.GetJobHandler(stores.Jobs))
			jobs.PATCH("/:id", handlers.UpdateJobHandler(stores.Jobs))
			jobs.DELETE("/:id", handlers.CloseJobHandler(stores.Jobs))

			jobs.POST("/:id/applications", handlers.CreateApplicationHandler(stores.Jobs, stores.Applications))
			jobs.GET("/:id/applications", handlers.ListApplicationsHandler(stores.Applications))
		}

		// Ingestion admin surface
		scraping := v1.Group("/admin/scraping")
		{
			scraping.POST("/trigger/:source", handlers.TriggerScrapeHandler(cfg, svc, taskManager))
			scraping.GET("/preview/:source", handlers.PreviewScrapeHandler(cfg, svc))
			scraping.GET("/runs/:id", handlers.RunStatusHandler(taskManager))
			scraping.GET("/stats", handlers.ScrapingStatsHandler(stores.Jobs))
			scraping.GET("/sources", handlers.ListSourcesHandler(svc, stores.Sources))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Job Board API",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
