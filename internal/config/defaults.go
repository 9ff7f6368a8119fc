package config

const (
	defaultConfigPath     = "~/.config/takeoutfix/config.toml"
	defaultSourceDir      = "~/Downloads"
	defaultStateDir       = "~/.local/share/takeoutfix"
	defaultArchivePattern = "takeout-*.zip"
	defaultFailedDir      = "FAILED"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			StateDir:  defaultStateDir,
		},
		Archives: Archives{
			Extract: true,
			Pattern: defaultArchivePattern,
		},
		Output: Output{
			CopySidecars: true,
			FailedDir:    defaultFailedDir,
			WriteLists:   true,
		},
		Enrich: Enrich{
			ApplyTimestamps: true,
			InspectEXIF:     true,
			WriteEXIF:       true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
