// Package config loads the application configuration from the
// environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the engine and client take. Credentials
// are an ordered list owned by the client instance; there is no
// process-wide key.
type Config struct {
	// APIKeys is the ordered OpenRouter credential list. Empty means
	// offline mode: all content comes from the deterministic fallback.
	APIKeys []string `env:"ARISE_API_KEYS" envSeparator:","`
	// GeminiKeys switches the client to the Gemini transport when set.
	GeminiKeys []string `env:"ARISE_GEMINI_KEYS" envSeparator:","`

	Model    string `env:"ARISE_MODEL"`
	Endpoint string `env:"ARISE_ENDPOINT"`

	SaveDir string `env:"ARISE_SAVE_DIR" envDefault:".arise"`

	SkillFloor       int           `env:"ARISE_SKILL_FLOOR" envDefault:"5"`
	FailureThreshold int           `env:"ARISE_FAILURE_THRESHOLD" envDefault:"3"`
	CacheTTL         time.Duration `env:"ARISE_CACHE_TTL" envDefault:"1h"`
	MaxRetries       int           `env:"ARISE_MAX_RETRIES" envDefault:"2"`
	RetryBackoff     time.Duration `env:"ARISE_RETRY_BACKOFF" envDefault:"2s"`
	RequestTimeout   time.Duration `env:"ARISE_REQUEST_TIMEOUT" envDefault:"30s"`

	// MaintenanceEvery is the TUI's maintenance tick interval.
	MaintenanceEvery time.Duration `env:"ARISE_MAINTENANCE_EVERY" envDefault:"1m"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.SkillFloor <= 0 {
		cfg.SkillFloor = 5
	}
	return &cfg, nil
}
