package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-level configuration read from the environment.
// Screening thresholds live in internal/screenconfig (YAML), not here.
type Config struct {
	Env string // development, staging, production

	// Redis (optional shared limiter and snapshot cache)
	Redis RedisConfig

	// External data sources
	NSE   NSEConfig
	Yahoo YahooConfig

	// Snapshot cache TTL (only used when Redis is enabled)
	CacheTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// NSEConfig holds National Stock Exchange endpoints
type NSEConfig struct {
	BaseURL    string // quote / shareholding API host
	ArchiveURL string // index constituent CSV host
	UserAgent  string
}

// YahooConfig holds Yahoo Finance endpoints
type YahooConfig struct {
	BaseURL   string // fundamentals-timeseries host
	UserAgent string
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Load reads configuration from environment variables.
// This is the only place that calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	userAgent := getEnv("HTTP_USER_AGENT", defaultUserAgent)

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		NSE: NSEConfig{
			BaseURL:    getEnv("NSE_BASE_URL", "https://www.nseindia.com"),
			ArchiveURL: getEnv("NSE_ARCHIVE_URL", "https://archives.nseindia.com"),
			UserAgent:  userAgent,
		},

		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			UserAgent: userAgent,
		},

		CacheTTL: getEnvAsDuration("CACHE_TTL", "12h"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" && c.Env != "test" {
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	if c.NSE.BaseURL == "" || c.NSE.ArchiveURL == "" {
		return fmt.Errorf("NSE_BASE_URL and NSE_ARCHIVE_URL are required")
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
