package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"atelier/internal/config"
	"atelier/internal/logging"
	"atelier/internal/snapshot"
)

// Store manages session persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the session database and applies
// migrations. Any failure here means the durable engine is unavailable and
// the caller should fail over to the in-memory repository.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   dbPath,
		logger: logging.NewComponentLogger(logger, "history"),
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const recordColumns = "id, title, created_at, updated_at"

// List returns all session records ordered newest CreatedAt first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM sessions ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Search returns records whose titles contain a token starting with term,
// matched case-insensitively through the FTS index, newest first. A blank
// term lists everything.
func (s *Store) Search(ctx context.Context, term string) ([]Record, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM sessions
         WHERE rowid IN (SELECT rowid FROM sessions_fts WHERE sessions_fts MATCH ?)
         ORDER BY created_at DESC, rowid DESC`,
		prefixQuery(term),
	)
	if err != nil {
		return nil, fmt.Errorf("search sessions: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Load fetches a session and its snapshot by id. An unknown id yields
// (nil, nil); a corrupt snapshot blob yields the empty snapshot.
func (s *Store) Load(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+`, snapshot FROM sessions WHERE id = ? LIMIT 1`,
		id,
	)

	var (
		record  Record
		created string
		updated string
		blob    string
	)
	if err := row.Scan(&record.ID, &record.Title, &created, &updated, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	record.CreatedAt = parseTimeString(created)
	record.UpdatedAt = parseTimeString(updated)

	return &Entry{
		Record:   record,
		Snapshot: snapshot.DecodeLenient([]byte(blob), s.logger),
	}, nil
}

// Upsert inserts or replaces a session row keyed by record.ID. The FTS index
// follows through the schema triggers, so the row and its index entry move
// together in one statement.
func (s *Store) Upsert(ctx context.Context, record Record, snap snapshot.Snapshot) error {
	blob, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (id, title, created_at, updated_at, snapshot)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             title = excluded.title,
             created_at = excluded.created_at,
             updated_at = excluded.updated_at,
             snapshot = excluded.snapshot`,
		record.ID,
		record.Title,
		formatTime(record.CreatedAt),
		formatTime(record.UpdatedAt),
		string(blob),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Rename updates a session title and bumps UpdatedAt. Renaming an unknown id
// is a no-op.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?`,
		title,
		formatTime(time.Now().UTC()),
		id,
	)
	if err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	return nil
}

// Delete removes a session row (the FTS trigger removes the index entry).
// Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DatabaseHealth captures diagnostic information about the session database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalSessions    int
	Error            string
}

// CheckHealth returns diagnostic information about the session database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat session database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("session database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping session database: %w", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'sessions'")
	if err := row.Scan(&tableName); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM sessions")
		if err := row.Scan(&health.TotalSessions); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count sessions: %w", err)
		}
	}

	var integrity string
	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	if err := row.Scan(&integrity); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrity, "ok")

	return health, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			record  Record
			created string
			updated string
		)
		if err := rows.Scan(&record.ID, &record.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		record.CreatedAt = parseTimeString(created)
		record.UpdatedAt = parseTimeString(updated)
		records = append(records, record)
	}
	return records, rows.Err()
}

// prefixQuery builds an FTS5 prefix match expression from raw user input.
// The term is quoted so FTS query syntax in user input cannot alter the
// match, then suffixed with * for token-prefix semantics.
func prefixQuery(term string) string {
	escaped := strings.ReplaceAll(term, `"`, `""`)
	return `"` + escaped + `"*`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	return time.Time{}
}
