// Package config loads and validates the scoop configuration file.
//
// Configuration lives in a TOML file (default ~/.config/scoop/config.toml)
// with sections for paths, matching thresholds, and logging. Load applies
// defaults for missing keys, expands ~ in path fields, and validates the
// result, so callers always receive a usable configuration.
package config
