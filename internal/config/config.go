package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                    string
	DBPath                  string
	LogLevel                string
	LogFormat               string
	GitHubAPIURL            string
	GitHubToken             string
	GitHubTimeoutSeconds    int
	GitHubRequestsPerSecond float64
	AnalyticsWorkerCount    int
	AnalyticsQueueSize      int
	SearchWorkerCount       int
	SearchQueueSize         int
	SessionTTLMinutes       int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                    envOr("ADDR", ":8080"),
		DBPath:                  envOr("DB_PATH", "file:ghmutuals.db"),
		LogLevel:                envOr("LOG_LEVEL", "INFO"),
		LogFormat:               envOr("LOG_FORMAT", "text"),
		GitHubAPIURL:            envOr("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:             os.Getenv("GITHUB_TOKEN"),
		GitHubTimeoutSeconds:    envIntOr("GITHUB_TIMEOUT_SECONDS", 15),
		GitHubRequestsPerSecond: envFloatOr("GITHUB_REQUESTS_PER_SECOND", 0),
		AnalyticsWorkerCount:    envIntOr("ANALYTICS_WORKER_COUNT", 1),
		AnalyticsQueueSize:      envIntOr("ANALYTICS_QUEUE_SIZE", 256),
		SearchWorkerCount:       envIntOr("SEARCH_WORKER_COUNT", 4),
		SearchQueueSize:         envIntOr("SEARCH_QUEUE_SIZE", 32),
		SessionTTLMinutes:       envIntOr("SESSION_TTL_MINUTES", 60),
	}
}

// Validate reports every invalid setting in a single error.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if u, err := url.Parse(c.GitHubAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("GITHUB_API_URL must be an absolute URL, got %q", c.GitHubAPIURL))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.GitHubTimeoutSeconds <= 0 {
		problems = append(problems, "GITHUB_TIMEOUT_SECONDS must be positive")
	}
	if c.GitHubRequestsPerSecond < 0 {
		problems = append(problems, "GITHUB_REQUESTS_PER_SECOND cannot be negative")
	}
	if c.AnalyticsWorkerCount <= 0 {
		problems = append(problems, "ANALYTICS_WORKER_COUNT must be positive")
	}
	if c.AnalyticsQueueSize <= 0 {
		problems = append(problems, "ANALYTICS_QUEUE_SIZE must be positive")
	}
	if c.SearchWorkerCount <= 0 {
		problems = append(problems, "SEARCH_WORKER_COUNT must be positive")
	}
	if c.SearchQueueSize <= 0 {
		problems = append(problems, "SEARCH_QUEUE_SIZE must be positive")
	}
	if c.SessionTTLMinutes <= 0 {
		problems = append(problems, "SESSION_TTL_MINUTES must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) GitHubTimeout() time.Duration {
	return time.Duration(c.GitHubTimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}
