package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"atelier/internal/localcache"
	"atelier/internal/logging"
	"atelier/internal/snapshot"
)

// mirrorKey is the localcache key carrying the serialized session list. The
// value format matches the original client's browser-local cache so old
// mirrors stay readable.
const mirrorKey = "session-history-local-cache"

// MemoryStore is the degraded-mode repository: a process-local map mirrored
// best-effort into a localcache file on every write. It has no durability
// guarantee beyond that mirror and exists purely so the workspace stays
// functional when the session database is unavailable.
type MemoryStore struct {
	cache  *localcache.Cache
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates a fallback repository, reloading any previously
// mirrored sessions from cache. A nil cache disables mirroring.
func NewMemoryStore(cache *localcache.Cache, logger *slog.Logger) *MemoryStore {
	m := &MemoryStore{
		cache:   cache,
		logger:  logging.NewComponentLogger(logger, "history.memory"),
		entries: make(map[string]Entry),
	}
	m.restore()
	return m
}

// List returns all records, newest CreatedAt first.
func (m *MemoryStore) List(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedRecordsLocked(), nil
}

// Search matches titles by case-insensitive substring. Full-text indexing is
// not worth carrying at fallback scale.
func (m *MemoryStore) Search(ctx context.Context, term string) ([]Record, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return m.List(ctx)
	}

	needle := strings.ToLower(term)
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.sortedRecordsLocked()
	matched := records[:0]
	for _, record := range records {
		if strings.Contains(strings.ToLower(record.Title), needle) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// Load returns a deep copy of the stored entry, or (nil, nil) for an unknown id.
func (m *MemoryStore) Load(ctx context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &Entry{Record: entry.Record, Snapshot: snapshot.Clone(entry.Snapshot)}, nil
}

// Upsert stores a deep copy of the snapshot and mirrors the whole store to
// the local cache.
func (m *MemoryStore) Upsert(ctx context.Context, record Record, snap snapshot.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[record.ID] = Entry{Record: record, Snapshot: snapshot.Clone(snap)}
	m.mirrorLocked()
	return nil
}

// Rename updates a title and UpdatedAt. Renaming an unknown id is a no-op.
func (m *MemoryStore) Rename(ctx context.Context, id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil
	}
	entry.Record.Title = title
	entry.Record.UpdatedAt = time.Now().UTC()
	m.entries[id] = entry
	m.mirrorLocked()
	return nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return nil
	}
	delete(m.entries, id)
	m.mirrorLocked()
	return nil
}

func (m *MemoryStore) sortedRecordsLocked() []Record {
	records := make([]Record, 0, len(m.entries))
	for _, entry := range m.entries {
		records = append(records, entry.Record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
	return records
}

// mirrorEntry is the cache wire shape, kept compatible with the original
// client's localStorage format (camelCase, millisecond timestamps).
type mirrorEntry struct {
	Record struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		CreatedAt int64  `json:"createdAt"`
		UpdatedAt int64  `json:"updatedAt"`
	} `json:"record"`
	Snapshot snapshot.Snapshot `json:"snapshot"`
}

// mirrorLocked writes the current store to the local cache. Failures are
// logged and swallowed; in-memory state stays correct either way.
func (m *MemoryStore) mirrorLocked() {
	if m.cache == nil {
		return
	}

	mirrored := make([]mirrorEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		var me mirrorEntry
		me.Record.ID = entry.Record.ID
		me.Record.Title = entry.Record.Title
		me.Record.CreatedAt = entry.Record.CreatedAt.UnixMilli()
		me.Record.UpdatedAt = entry.Record.UpdatedAt.UnixMilli()
		me.Snapshot = entry.Snapshot
		mirrored = append(mirrored, me)
	}
	sort.Slice(mirrored, func(i, j int) bool {
		return mirrored[i].Record.ID < mirrored[j].Record.ID
	})

	data, err := json.Marshal(mirrored)
	if err != nil {
		m.logger.Warn("unable to serialize session mirror", logging.Error(err))
		return
	}
	if err := m.cache.Set(mirrorKey, string(data)); err != nil {
		m.logger.Warn("unable to persist session mirror", logging.Error(err))
	}
}

// restore reloads mirrored sessions once at construction.
func (m *MemoryStore) restore() {
	if m.cache == nil {
		return
	}
	raw, ok := m.cache.Get(mirrorKey)
	if !ok || raw == "" {
		return
	}

	var mirrored []mirrorEntry
	if err := json.Unmarshal([]byte(raw), &mirrored); err != nil {
		m.logger.Warn("failed to parse session mirror, discarding it",
			logging.Error(err))
		if err := m.cache.Remove(mirrorKey); err != nil {
			m.logger.Warn("failed to drop corrupt session mirror", logging.Error(err))
		}
		return
	}

	for _, me := range mirrored {
		if me.Record.ID == "" {
			continue
		}
		m.entries[me.Record.ID] = Entry{
			Record: Record{
				ID:        me.Record.ID,
				Title:     me.Record.Title,
				CreatedAt: time.UnixMilli(me.Record.CreatedAt).UTC(),
				UpdatedAt: time.UnixMilli(me.Record.UpdatedAt).UTC(),
			},
			Snapshot: snapshot.Normalize(me.Snapshot),
		}
	}
	if len(m.entries) > 0 {
		m.logger.Debug("restored mirrored sessions", logging.Int("session_count", len(m.entries)))
	}
}

var (
	_ Repository = (*MemoryStore)(nil)
	_ Repository = (*Store)(nil)
)
