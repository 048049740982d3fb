package testsupport

import (
	"path/filepath"
	"testing"

	"atelier/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithDebounceMS overrides the save debounce on the test config.
func WithDebounceMS(ms int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workspace.SaveDebounceMS = ms
	}
}

// WithDefaultTitle overrides the default session title on the test config.
func WithDefaultTitle(title string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workspace.DefaultSessionTitle = title
	}
}
