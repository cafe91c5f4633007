package testsupport

import (
	"path/filepath"
	"testing"

	"brickmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Amazon.APIKey = "test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Batch.RecordDelayMs = 0
	cfg.Batch.PauseSeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBrandKeywords overrides the relevance filter keywords on the test config.
func WithBrandKeywords(keywords ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.BrandKeywords = keywords
	}
}

// WithMaxAttempts sets the retry cap on the test config.
func WithMaxAttempts(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.MaxAttempts = limit
	}
}
