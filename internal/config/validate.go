package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 100 {
		problems = append(problems, fmt.Sprintf("matching.threshold must be between 0 and 100, got %d", c.Matching.Threshold))
	}
	if c.Matching.SuggestionCutoff < 0 || c.Matching.SuggestionCutoff > 1 {
		problems = append(problems, fmt.Sprintf("matching.suggestion_cutoff must be between 0 and 1, got %g", c.Matching.SuggestionCutoff))
	}
	if c.Matching.VariantOverlap < 0 || c.Matching.VariantOverlap > 1 {
		problems = append(problems, fmt.Sprintf("matching.variant_overlap must be between 0 and 1, got %g", c.Matching.VariantOverlap))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
