package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		Host           string        `yaml:"host"`
		ReadTimeout    time.Duration `yaml:"read_timeout"`
		WriteTimeout   time.Duration `yaml:"write_timeout"`
		IdleTimeout    time.Duration `yaml:"idle_timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"server"`

	Database struct {
		URL            string        `yaml:"url"`
		ConnectTimeout time.Duration `yaml:"connect_timeout"`
	} `yaml:"database"`

	Redis struct {
		URL     string        `yaml:"url"`
		Enabled bool          `yaml:"enabled"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"redis"`

	Scraper struct {
		UserAgent       string        `yaml:"user_agent"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		MaxRetries      int           `yaml:"max_retries"`
		BackoffBase     time.Duration `yaml:"backoff_base"`
		DefaultQuery    string        `yaml:"default_query"`
		DefaultLocation string        `yaml:"default_location"`
		DefaultLimit    int           `yaml:"default_limit"`
		PreviewLimit    int           `yaml:"preview_limit"`
		LockTTL         time.Duration `yaml:"lock_ttl"`
	} `yaml:"scraper"`

	BackgroundTasks struct {
		PoolSize        int           `yaml:"pool_size"`
		QueueSize       int           `yaml:"queue_size"`
		TaskTimeout     time.Duration `yaml:"task_timeout"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
		MaxRunAge       time.Duration `yaml:"max_run_age"`
	} `yaml:"background_tasks"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.AllowedOrigins = []string{"*"}

	config.Database.ConnectTimeout = 10 * time.Second

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Timeout = 5 * time.Second

	config.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	config.Scraper.RequestTimeout = 10 * time.Second
	config.Scraper.MaxRetries = 3
	config.Scraper.BackoffBase = 1 * time.Second
	config.Scraper.DefaultQuery = "software engineer"
	config.Scraper.DefaultLocation = "San Francisco, CA"
	config.Scraper.DefaultLimit = 10
	config.Scraper.PreviewLimit = 5
	config.Scraper.LockTTL = 15 * time.Minute

	config.BackgroundTasks.PoolSize = 4
	config.BackgroundTasks.QueueSize = 50
	config.BackgroundTasks.TaskTimeout = 300 * time.Second
	config.BackgroundTasks.CleanupInterval = 1 * time.Hour
	config.BackgroundTasks.MaxRunAge = 24 * time.Hour

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Database.URL = dbURL
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
		c.Redis.Enabled = true
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if userAgent := os.Getenv("SCRAPER_USER_AGENT"); userAgent != "" {
		c.Scraper.UserAgent = userAgent
	}

	if timeout := os.Getenv("SCRAPER_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Scraper.RequestTimeout = d
		}
	}

	if retries := os.Getenv("SCRAPER_MAX_RETRIES"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil {
			c.Scraper.MaxRetries = n
		}
	}

	if poolSize := os.Getenv("TASK_POOL_SIZE"); poolSize != "" {
		if n, err := strconv.Atoi(poolSize); err == nil {
			c.BackgroundTasks.PoolSize = n
		}
	}
}
