package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests.
// Tests start their own fake learn API, so LearnAPI.BaseURL is left empty.
// Completion delays are shortened so the follow-up of a completion settles quickly.
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	// Try both possible paths
	_ = godotenv.Load("./../../configs/.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.LearnAPI.Timeout = 5 * time.Second
	cfg.Server.RateLimitPerMinute = 1000
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.Session.IdleTimeout = time.Hour

	cfg.Logging.Level = os.Getenv("TEST_LOG_LEVEL")
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	var err error
	if cfg.Completion.RefreshDelay, err = durationFromEnv("TEST_PROGRESS_REFRESH_DELAY", 10*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Completion.CollapseDelay, err = durationFromEnv("TEST_STEP_COLLAPSE_DELAY", 20*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Completion.AdvanceDelay, err = durationFromEnv("TEST_STEP_ADVANCE_DELAY", 20*time.Millisecond); err != nil {
		return nil, err
	}

	return cfg, nil
}
