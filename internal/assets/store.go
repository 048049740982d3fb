package assets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"atelier/internal/logging"
)

// Store manages session-scoped asset files under a root directory.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore returns a store rooted at dir. The directory is created on
// first write, not here.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{root: dir, logger: logging.NewComponentLogger(logger, "assets")}
}

// SessionDir returns the directory holding a session's assets.
func (s *Store) SessionDir(sessionID string) (string, error) {
	cleaned, err := sanitizeComponent(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, cleaned), nil
}

// Save writes an asset for the session and returns its absolute path.
func (s *Store) Save(sessionID, name string, data []byte) (string, error) {
	dir, err := s.SessionDir(sessionID)
	if err != nil {
		return "", err
	}
	cleanedName, err := sanitizeComponent(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create asset directory: %w", err)
	}
	path := filepath.Join(dir, cleanedName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return path, nil
}

// List returns the asset file names stored for a session, sorted.
// A session with no assets yields an empty list.
func (s *Store) List(sessionID string) ([]string, error) {
	dir, err := s.SessionDir(sessionID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// RemoveSessionAssets deletes every asset stored for the session.
// Missing directories are not an error.
func (s *Store) RemoveSessionAssets(sessionID string) error {
	dir, err := s.SessionDir(sessionID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove session assets: %w", err)
	}
	s.logger.Debug("removed session assets", logging.String(logging.FieldSessionID, sessionID))
	return nil
}

func sanitizeComponent(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errors.New("asset path component is empty")
	}
	if strings.ContainsAny(trimmed, "/\\") || trimmed == "." || trimmed == ".." {
		return "", fmt.Errorf("invalid asset path component %q", value)
	}
	return trimmed, nil
}
