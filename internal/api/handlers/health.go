package handlers

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"jobboard-api/internal/background"
	"jobboard-api/internal/ingest"
	"jobboard-api/internal/logging"
	"jobboard-api/pkg/models"
	"jobboard-api/pkg/utils"
)

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	requestID := utils.GenerateRequestID()
	logger := logging.GetGlobalLogger()

	logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler handles readiness probe requests. The service is ready
// only when the database answers a ping.
func ReadinessHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{"api": "ok"}
		status := "ready"
		code := http.StatusOK

		ctx := c.Request().Context()
		if err := pool.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			status = "not_ready"
			code = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
	})
}

// StatusHandler provides detailed service status
func StatusHandler(taskManager *background.TaskManager, svc *ingest.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"service":   "Job Board API",
			"version":   "1.0.0",
			"status":    "running",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
			"task_manager": map[string]interface{}{
				"healthy": taskManager.IsHealthy(),
			},
			"sources": svc.Registry().Names(),
		})
	}
}
