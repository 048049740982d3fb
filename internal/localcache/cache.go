package localcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"atelier/internal/logging"
)

// Cache is a mutex-guarded string key-value store persisted as a JSON file.
// If path is empty the cache is non-functional and all operations are no-ops.
type Cache struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	values map[string]string
}

// New creates a cache backed by the given file. Existing contents are loaded
// once; a load failure starts the cache empty and is logged, not returned.
func New(path string, logger *slog.Logger) *Cache {
	logger = logging.NewComponentLogger(logger, "localcache")

	c := &Cache{
		path:   path,
		logger: logger,
		values: make(map[string]string),
	}

	if path == "" {
		return c
	}

	if err := c.load(); err != nil {
		logger.Warn("failed to load local cache, starting empty",
			logging.Error(err),
			logging.String("path", path))
	}
	return c
}

// Get returns the value for key and whether it was present.
func (c *Cache) Get(key string) (string, bool) {
	if key == "" || c.path == "" {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.values[key]
	return value, ok
}

// Set stores a value and persists the cache to disk.
func (c *Cache) Set(key, value string) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// Remove deletes a key and persists the change. Removing a missing key is
// not an error.
func (c *Cache) Remove(key string) error {
	if key == "" || c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.values[key]; !ok {
		return nil
	}
	delete(c.values, key)
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	c.values = values
	if c.values == nil {
		c.values = make(map[string]string)
	}

	c.logger.Debug("loaded local cache",
		logging.Int("key_count", len(c.values)),
		logging.String("path", c.path))
	return nil
}

// save writes the cache to disk atomically. Callers hold c.mu.
func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
