package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.SnapshotDir, err = expandPath(c.Paths.SnapshotDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}

	if c.Matching.Threshold == 0 {
		c.Matching.Threshold = defaultMatchThreshold
	}
	if c.Matching.SuggestionCutoff == 0 {
		c.Matching.SuggestionCutoff = defaultSuggestionCutoff
	}
	if c.Matching.VariantOverlap == 0 {
		c.Matching.VariantOverlap = defaultVariantOverlap
	}
	return nil
}
