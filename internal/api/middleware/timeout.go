package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// TimeoutConfig returns timeout middleware that cuts off slow handlers with
// the API's JSON error shape. Health probes are exempt so readiness checks
// are never masked by the request deadline.
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout:      timeout,
		ErrorMessage: `{"error":"request_timeout","message":"request exceeded the configured server timeout"}`,
		Skipper: func(c echo.Context) bool {
			path := c.Path()
			return path == "/health" || path == "/health/ready" || path == "/health/live"
		},
	})
}
