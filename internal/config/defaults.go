package config

const (
	defaultDataDir            = "~/.local/share/atelier"
	defaultLogDir             = "~/.local/share/atelier/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultSessionTitle       = "New Conversation"
	defaultSaveDebounceMS     = 1500
	defaultLocalCacheFilename = "session-history-cache.json"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Workspace: Workspace{
			DefaultSessionTitle: defaultSessionTitle,
			SaveDebounceMS:      defaultSaveDebounceMS,
			LocalCacheFilename:  defaultLocalCacheFilename,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
