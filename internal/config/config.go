// Package config loads client configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jeanogram/storefront-cli/internal/session"
)

// Config holds all client configuration.
type Config struct {
	// BaseURL is the backend API root, e.g. https://localhost:7255/api.
	BaseURL string
	// Timeout applies to every HTTP call. Zero keeps transport defaults.
	Timeout time.Duration
	// ConfigDir holds the persisted session slot.
	ConfigDir string
	// Debug enables verbose logging.
	Debug bool
}

// Load reads configuration from the environment. A .env file is honored if
// present; its absence is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:   getEnv("JEANOGRAM_API_URL", "https://localhost:7255/api"),
		ConfigDir: getEnv("JEANOGRAM_CONFIG_DIR", session.DefaultDir()),
		Debug:     os.Getenv("JEANOGRAM_DEBUG") != "",
	}

	if v := os.Getenv("JEANOGRAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, err
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
