// Package config loads application configuration from environment variables.
// All variables use the QUIZ_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Content  ContentConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// ContentConfig holds content tree settings.
type ContentConfig struct {
	// Dir is the content root; quiz material lives under <Dir>/themes.
	Dir string
	// WatchDebounce is the settle window applied to file change events
	// before a reload is attempted.
	WatchDebounce time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// progress persistence; the server still serves content and grades quizzes.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// aggregate report cache.
type CacheConfig struct {
	URL string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with QUIZ_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("QUIZ_SERVER_PORT", 3000),
			Host: envStr("QUIZ_SERVER_HOST", "0.0.0.0"),
		},
		Content: ContentConfig{
			Dir:           envStr("QUIZ_CONTENT_DIR", "./content"),
			WatchDebounce: time.Duration(envInt("QUIZ_WATCH_DEBOUNCE_MS", 200)) * time.Millisecond,
		},
		Database: DatabaseConfig{
			URL:      envStr("QUIZ_DATABASE_URL", ""),
			MaxConns: envInt("QUIZ_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("QUIZ_DATABASE_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			URL: envStr("QUIZ_CACHE_URL", ""),
		},
		Log: LogConfig{
			Level:  envStr("QUIZ_LOG_LEVEL", "info"),
			Format: envStr("QUIZ_LOG_FORMAT", "json"),
		},
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("QUIZ_SERVER_PORT must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Content.Dir == "" {
		return fmt.Errorf("QUIZ_CONTENT_DIR must not be empty")
	}
	if c.Content.WatchDebounce <= 0 {
		return fmt.Errorf("QUIZ_WATCH_DEBOUNCE_MS must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("QUIZ_LOG_LEVEL must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	return nil
}

// HasDatabase reports whether progress persistence is configured.
func (c *Config) HasDatabase() bool { return c.Database.URL != "" }

// HasCache reports whether the aggregate cache is configured.
func (c *Config) HasCache() bool { return c.Cache.URL != "" }

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
