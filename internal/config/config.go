package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	DB         DatabaseConfig
	Redis      RedisConfig
	SMTP       SMTPConfig
	Competitor CompetitorConfig
	Scraper    ScraperConfig
	Worker     WorkerConfig
	Report     ReportConfig

	CORSOrigins []string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SMTPConfig contains mail transport parameters. When User is empty the
// mailer sends without authentication (local relay).
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// CompetitorConfig describes the competitor seeded at startup. The current
// deployment tracks a single competitor site.
type CompetitorConfig struct {
	Code    string
	Name    string
	BaseURL string
}

// ScraperConfig contains settings for the competitor site client.
type ScraperConfig struct {
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// WorkerConfig contains settings for background processing.
type WorkerConfig struct {
	ScheduleRefreshInterval time.Duration
	MatchConcurrency        int
}

// ReportConfig contains settings for generated report artifacts.
type ReportConfig struct {
	OutputDir string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
	}

	// Mail transport
	cfg.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", "localhost"),
		User:     getEnv("SMTP_USER", ""),
		Password: getEnv("SMTP_PASS", ""),
		From:     getEnv("SMTP_FROM", "no-reply@pricewatch.local"),
	}

	// Competitor seed
	cfg.Competitor = CompetitorConfig{
		Code:    getEnv("COMPETITOR_CODE", "praktiker"),
		Name:    getEnv("COMPETITOR_NAME", "Praktiker"),
		BaseURL: getEnv("COMPETITOR_BASE_URL", "https://praktiker.bg"),
	}

	// Scraper
	cfg.Scraper = ScraperConfig{
		UserAgent: getEnv("SCRAPER_USER_AGENT", "PriceWatchBot/1.0 (+contact@pricewatch.local)"),
	}

	// Reports
	cfg.Report = ReportConfig{
		OutputDir: getEnv("REPORT_OUTPUT_DIR", os.TempDir()),
	}

	// CORS
	cfg.CORSOrigins = splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))

	// Durations and limits
	var err error
	if cfg.Redis.DB, err = parseIntEnv("REDIS_DB", 0); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.SMTP.Port, err = parseIntEnv("SMTP_PORT", 25); err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	if cfg.Scraper.Timeout, err = parseDurationEnv("SCRAPER_TIMEOUT", "20s"); err != nil {
		return nil, fmt.Errorf("invalid SCRAPER_TIMEOUT: %w", err)
	}
	if cfg.Scraper.CacheTTL, err = parseDurationEnv("SCRAPER_CACHE_TTL", "6h"); err != nil {
		return nil, fmt.Errorf("invalid SCRAPER_CACHE_TTL: %w", err)
	}
	if cfg.Worker.ScheduleRefreshInterval, err = parseDurationEnv("SCHEDULE_REFRESH_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_REFRESH_INTERVAL: %w", err)
	}
	if cfg.Worker.MatchConcurrency, err = parseIntEnv("MATCH_CONCURRENCY", 4); err != nil {
		return nil, fmt.Errorf("invalid MATCH_CONCURRENCY: %w", err)
	}
	if cfg.Worker.MatchConcurrency <= 0 {
		return nil, errors.New("MATCH_CONCURRENCY must be a positive integer")
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseIntEnv reads an environment variable as an integer. An empty value
// falls back to the default; a malformed one is an error.
func parseIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
