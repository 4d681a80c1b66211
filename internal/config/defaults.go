package config

const (
	defaultResourceName     = "my_pack"
	defaultBuildMode        = ModeMerge
	defaultClassifyMaxBytes = 800_000
	defaultLogDir           = "~/.local/share/fivepack/logs"
	defaultHistoryDB        = "~/.local/share/fivepack/history.db"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultConfigPath       = "~/.config/fivepack/config.toml"
	projectConfigName       = "fivepack.toml"
)

// Build modes.
const (
	ModeMerge   = "merge"
	ModeReplace = "replace"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Build: Build{
			Mode:             defaultBuildMode,
			ClassifyMaxBytes: defaultClassifyMaxBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
