package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkspace()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkspace() {
	c.Workspace.DefaultSessionTitle = strings.TrimSpace(c.Workspace.DefaultSessionTitle)
	if c.Workspace.DefaultSessionTitle == "" {
		c.Workspace.DefaultSessionTitle = defaultSessionTitle
	}
	if c.Workspace.SaveDebounceMS <= 0 {
		c.Workspace.SaveDebounceMS = defaultSaveDebounceMS
	}
	c.Workspace.LocalCacheFilename = strings.TrimSpace(c.Workspace.LocalCacheFilename)
	if c.Workspace.LocalCacheFilename == "" {
		c.Workspace.LocalCacheFilename = defaultLocalCacheFilename
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
