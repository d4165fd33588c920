// Package config provides configuration for the application
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	LearnAPI   LearnAPIConfig
	Server     ServerConfig
	Logging    LoggingConfig
	CORS       CORSConfig
	Completion CompletionConfig
	Session    SessionConfig
}

// LearnAPIConfig holds settings of the remote learn API
type LearnAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int
	RateLimitPerMinute int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// CompletionConfig holds the pacing delays of the step completion flow
type CompletionConfig struct {
	RefreshDelay  time.Duration
	CollapseDelay time.Duration
	AdvanceDelay  time.Duration
}

// SessionConfig holds browser session settings
type SessionConfig struct {
	IdleTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Learn API configuration
	baseURL := os.Getenv("LEARN_API_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("LEARN_API_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid LEARN_API_BASE_URL: %w", err)
	}
	cfg.LearnAPI.BaseURL = strings.TrimRight(baseURL, "/")

	timeout, err := durationFromEnv("LEARN_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.LearnAPI.Timeout = timeout

	// Server configuration
	serverPort, err := intFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	rateLimit, err := intFromEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	if rateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	cfg.Server.RateLimitPerMinute = rateLimit

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Completion flow pacing
	if cfg.Completion.RefreshDelay, err = durationFromEnv("PROGRESS_REFRESH_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Completion.CollapseDelay, err = durationFromEnv("STEP_COLLAPSE_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.Completion.AdvanceDelay, err = durationFromEnv("STEP_ADVANCE_DELAY", time.Second); err != nil {
		return nil, err
	}

	// Session configuration
	idleTimeout, err := durationFromEnv("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	if idleTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	cfg.Session.IdleTimeout = idleTimeout

	return cfg, nil
}

// parseOrigins parses comma-separated origins, defaulting to allow all
func parseOrigins(raw string) []string {
	if raw == "" {
		// Default to allow all origins if not specified (for development)
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, origin := range parts {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	// If no valid origins found, default to allow all
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func intFromEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
