package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Scraper.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", cfg.Scraper.MaxRetries)
	}
	if cfg.Scraper.BackoffBase != time.Second {
		t.Errorf("backoff base = %v, want 1s", cfg.Scraper.BackoffBase)
	}
	if cfg.BackgroundTasks.PoolSize != 4 {
		t.Errorf("pool size = %d, want 4", cfg.BackgroundTasks.PoolSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
scraper:
  max_retries: 5
  default_query: "data engineer"
background_tasks:
  pool_size: 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Scraper.MaxRetries != 5 {
		t.Errorf("max retries = %d, want 5", cfg.Scraper.MaxRetries)
	}
	if cfg.Scraper.DefaultQuery != "data engineer" {
		t.Errorf("default query = %q", cfg.Scraper.DefaultQuery)
	}
	if cfg.BackgroundTasks.PoolSize != 8 {
		t.Errorf("pool size = %d, want 8", cfg.BackgroundTasks.PoolSize)
	}
	// Untouched keys keep their defaults
	if cfg.Scraper.DefaultLimit != 10 {
		t.Errorf("default limit = %d, want 10", cfg.Scraper.DefaultLimit)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_URL", "postgres://localhost/jobs")

	got := expandEnvVars("url: ${TEST_DB_URL}")
	if got != "url: postgres://localhost/jobs" {
		t.Errorf("expanded = %q", got)
	}

	// Unset variables stay as-is
	got = expandEnvVars("url: ${TOTALLY_UNSET_VAR}")
	if got != "url: ${TOTALLY_UNSET_VAR}" {
		t.Errorf("unset expansion = %q", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://db.internal/jobs")
	t.Setenv("REDIS_URL", "redis://cache.internal:6379")
	t.Setenv("SCRAPER_MAX_RETRIES", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://db.internal/jobs" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
	if !cfg.Redis.Enabled {
		t.Error("setting REDIS_URL should enable redis")
	}
	if cfg.Scraper.MaxRetries != 7 {
		t.Errorf("max retries = %d, want 7", cfg.Scraper.MaxRetries)
	}
	wantOrigins := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.Server.AllowedOrigins) != len(wantOrigins) {
		t.Fatalf("allowed origins = %v, want %v", cfg.Server.AllowedOrigins, wantOrigins)
	}
	for i, want := range wantOrigins {
		if cfg.Server.AllowedOrigins[i] != want {
			t.Errorf("allowed origins[%d] = %q, want %q", i, cfg.Server.AllowedOrigins[i], want)
		}
	}
}
