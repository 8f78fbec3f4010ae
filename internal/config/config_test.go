package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "auto", cfg.FormatPreference)
	assert.True(t, cfg.FetchBlocking)
	assert.Equal(t, 10, cfg.FetchTimeoutSec)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.NotEmpty(t, cfg.JournalPath)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("NEWSLETTER_OUTPUT_DIR", "/tmp/books")
	t.Setenv("NEWSLETTER_FORMAT", "azw3")
	t.Setenv("NEWSLETTER_FETCH_BLOCKING", "false")
	t.Setenv("NEWSLETTER_FETCH_TIMEOUT", "30")
	t.Setenv("NEWSLETTER_FETCH_CONCURRENCY", "8")

	cfg := Load()

	assert.Equal(t, "/tmp/books", cfg.OutputDir)
	assert.Equal(t, "azw3", cfg.FormatPreference)
	assert.False(t, cfg.FetchBlocking)
	assert.Equal(t, 30, cfg.FetchTimeoutSec)
	assert.Equal(t, 8, cfg.FetchConcurrency)
}

func TestLoad_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("NEWSLETTER_FETCH_TIMEOUT", "not-a-number")
	t.Setenv("NEWSLETTER_FETCH_CONCURRENCY", "-3")

	cfg := Load()

	assert.Equal(t, 10, cfg.FetchTimeoutSec)
	assert.Equal(t, 4, cfg.FetchConcurrency)
}
