package config

const (
	defaultDataDir          = "~/.local/share/scoop"
	defaultSnapshotDir      = "~/.local/share/scoop/snapshots"
	defaultLogDir           = "~/.local/share/scoop/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultMatchThreshold   = 80
	defaultSuggestionCutoff = 0.7
	defaultVariantOverlap   = 0.5
)

// Default returns a configuration populated with every default value.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			SnapshotDir: defaultSnapshotDir,
			LogDir:      defaultLogDir,
		},
		Matching: Matching{
			Threshold:        defaultMatchThreshold,
			SuggestionCutoff: defaultSuggestionCutoff,
			VariantOverlap:   defaultVariantOverlap,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
