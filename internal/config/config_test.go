package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scoop/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "scoop")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Matching.Threshold != 80 {
		t.Fatalf("unexpected default threshold: %d", cfg.Matching.Threshold)
	}
	if cfg.Matching.SuggestionCutoff != 0.7 {
		t.Fatalf("unexpected default suggestion cutoff: %g", cfg.Matching.SuggestionCutoff)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected default log format: %q", cfg.Logging.Format)
	}
	if got := cfg.DatabasePath(); got != filepath.Join(wantData, "catalog.db") {
		t.Fatalf("unexpected database path: %q", got)
	}
}

func TestLoadParsesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		"",
		"[matching]",
		"threshold = 90",
		"",
		"[logging]",
		`format = "json"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Matching.Threshold != 90 {
		t.Fatalf("expected threshold override, got %d", cfg.Matching.Threshold)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
	// Missing keys keep their defaults.
	if cfg.Matching.SuggestionCutoff != 0.7 {
		t.Fatalf("expected default suggestion cutoff, got %g", cfg.Matching.SuggestionCutoff)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "threshold out of range",
			mutate: func(c *config.Config) { c.Matching.Threshold = 150 },
			want:   "matching.threshold",
		},
		{
			name:   "cutoff out of range",
			mutate: func(c *config.Config) { c.Matching.SuggestionCutoff = 2 },
			want:   "matching.suggestion_cutoff",
		},
		{
			name:   "unknown log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected sample config on disk: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when overwriting existing config")
	}
}
