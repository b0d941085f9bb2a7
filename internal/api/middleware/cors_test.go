package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func corsEcho(allowOrigins []string) *echo.Echo {
	e := echo.New()
	e.Use(CORSConfig(allowOrigins))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func preflight(e *echo.Echo, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set(echo.HeaderOrigin, origin)
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	e := corsEcho([]string{"https://app.example.com"})

	rec := preflight(e, "https://app.example.com")
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "https://app.example.com" {
		t.Errorf("allow-origin = %q, want configured origin", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	e := corsEcho([]string{"https://app.example.com"})

	rec := preflight(e, "https://other.example.com")
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "" {
		t.Errorf("allow-origin = %q, want empty for unlisted origin", got)
	}
}

func TestCORSDefaultsToAnyOrigin(t *testing.T) {
	e := corsEcho(nil)

	rec := preflight(e, "https://anywhere.example.com")
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Errorf("allow-origin = %q, want wildcard when no origins configured", got)
	}
}
