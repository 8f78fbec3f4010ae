// Package config holds runtime configuration, loaded from defaults, an
// optional .env file and environment variables, in that order.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	// Output settings
	OutputDir        string
	FormatPreference string // auto | epub | azw3

	// Remote image fetch settings
	FetchBlocking    bool
	FetchTimeoutSec  int
	FetchConcurrency int

	// Conversion journal
	JournalPath string
}

// Default returns default configuration
func Default() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	dataDir := filepath.Join(homeDir, ".kindle-newsletter")

	return &Config{
		OutputDir:        "./output",
		FormatPreference: "auto",
		FetchBlocking:    true,
		FetchTimeoutSec:  10,
		FetchConcurrency: 4,
		JournalPath:      filepath.Join(dataDir, "conversions.db"),
	}
}

// Load returns the defaults overridden by .env (when present) and then the
// process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := Default()
	if v := os.Getenv("NEWSLETTER_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("NEWSLETTER_FORMAT"); v != "" {
		cfg.FormatPreference = v
	}
	if v := os.Getenv("NEWSLETTER_FETCH_BLOCKING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.FetchBlocking = b
		}
	}
	if v := os.Getenv("NEWSLETTER_FETCH_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchTimeoutSec = n
		}
	}
	if v := os.Getenv("NEWSLETTER_FETCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchConcurrency = n
		}
	}
	if v := os.Getenv("NEWSLETTER_JOURNAL_PATH"); v != "" {
		cfg.JournalPath = v
	}
	return cfg
}
