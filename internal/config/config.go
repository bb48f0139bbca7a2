package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"jobfit"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"jobfit"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	// Free-tier admission limits. Pro and admin identities are unrestricted.
	FreeLifetimeLimit int `envconfig:"FREE_LIFETIME_LIMIT" default:"25"`
	FreeDailyLimit    int `envconfig:"FREE_DAILY_LIMIT" default:"3"`

	// Inference retry policy.
	AnalysisMaxAttempts int `envconfig:"ANALYSIS_MAX_ATTEMPTS" default:"3"`
	AnalysisRetryBaseMS int `envconfig:"ANALYSIS_RETRY_BASE_MS" default:"2000"`

	// Content fetching.
	ScrapeTimeoutSeconds int `envconfig:"SCRAPE_TIMEOUT_SECONDS" default:"30"`
	ScrapeMinContentLen  int `envconfig:"SCRAPE_MIN_CONTENT_LEN" default:"50"`
	ScrapeMaxContentLen  int `envconfig:"SCRAPE_MAX_CONTENT_LEN" default:"20000"`

	// Server
	ServerPort    int    `envconfig:"SERVER_PORT" default:"8081"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root.
	// Ignore errors, as env vars might be set in the shell.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.FreeLifetimeLimit < 0 || c.FreeDailyLimit < 0 {
		return fmt.Errorf("%w: admission limits must not be negative", ErrMissingRequired)
	}
	if c.AnalysisMaxAttempts < 1 {
		return fmt.Errorf("%w: ANALYSIS_MAX_ATTEMPTS must be at least 1", ErrMissingRequired)
	}
	if c.AnalysisRetryBaseMS < 1 {
		return fmt.Errorf("%w: ANALYSIS_RETRY_BASE_MS must be positive", ErrMissingRequired)
	}
	return nil
}
