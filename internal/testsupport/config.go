package testsupport

import (
	"path/filepath"
	"testing"

	"scoop/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.SnapshotDir = filepath.Join(base, "snapshots")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithThreshold overrides the fuzzy-match acceptance threshold.
func WithThreshold(threshold int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.Threshold = threshold
	}
}

// WithSuggestionCutoff overrides the review-suggestion similarity cutoff.
func WithSuggestionCutoff(cutoff float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.SuggestionCutoff = cutoff
	}
}
