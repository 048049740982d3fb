package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkspace(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if !filepath.IsAbs(c.Paths.DataDir) {
		return fmt.Errorf("paths.data_dir must be absolute after expansion, got %q", c.Paths.DataDir)
	}
	return nil
}

func (c *Config) validateWorkspace() error {
	if c.Workspace.SaveDebounceMS < 100 {
		return fmt.Errorf("workspace.save_debounce_ms must be at least 100, got %d", c.Workspace.SaveDebounceMS)
	}
	if strings.ContainsAny(c.Workspace.LocalCacheFilename, "/\\") {
		return fmt.Errorf("workspace.local_cache_filename must be a bare filename, got %q", c.Workspace.LocalCacheFilename)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
