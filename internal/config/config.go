package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port int `env:"PORT" envDefault:"8090"`

	// AuthorityBaseURL points at the banking Authority's REST API
	AuthorityBaseURL  string `env:"AUTHORITY_BASE_URL" envDefault:"http://localhost:5000"`
	AuthorityEmail    string `env:"AUTHORITY_EMAIL"`
	AuthorityPassword string `env:"AUTHORITY_PASSWORD"`

	// TokenPath persists the bearer token between runs; empty keeps it in memory
	TokenPath string `env:"TOKEN_PATH" envDefault:".bankflow-token"`

	// RefreshSchedule drives the periodic account cache refresh (cron syntax)
	RefreshSchedule string `env:"ACCOUNT_REFRESH_SCHEDULE" envDefault:"@every 30s"`

	// MaxOtpRetries caps failed passcode attempts per challenge; negative disables the cap
	MaxOtpRetries int `env:"MAX_OTP_RETRIES" envDefault:"3"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DevMode  bool   `env:"DEV_MODE" envDefault:"false"`
}

// Load reads configuration from the environment, preceded by a .env file
// if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.AuthorityBaseURL == "" {
		return fmt.Errorf("AUTHORITY_BASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	return nil
}
