package history_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"atelier/internal/history"
	"atelier/internal/localcache"
	"atelier/internal/logging"
	"atelier/internal/snapshot"
)

func newTestCache(t *testing.T) (*localcache.Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	return localcache.New(path, logging.NewNop()), path
}

func TestMemoryStoreCRUD(t *testing.T) {
	store := history.NewMemoryStore(nil, logging.NewNop())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := newRecordAt("a", "First Draft", base)
	second := newRecordAt("b", "Second Draft", base.Add(time.Hour))

	if err := store.Upsert(ctx, first, snapshot.Empty()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, second, snapshot.Empty()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 || records[0].ID != "b" || records[1].ID != "a" {
		t.Fatalf("expected newest-first [b a], got %#v", records)
	}

	if err := store.Rename(ctx, "a", "Renamed"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	entry, err := store.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry == nil || entry.Record.Title != "Renamed" {
		t.Fatalf("unexpected entry after rename: %#v", entry)
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	entry, err = store.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry != nil {
		t.Fatal("expected deleted session to be gone")
	}

	// Missing-id operations are no-ops.
	if err := store.Rename(ctx, "missing", "x"); err != nil {
		t.Fatalf("Rename of unknown id: %v", err)
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete of unknown id: %v", err)
	}
}

func TestMemoryStoreSearchSubstring(t *testing.T) {
	store := history.NewMemoryStore(nil, logging.NewNop())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"Campaign Alpha", "alpha version notes", "Beta Review"} {
		record := newRecordAt(string(rune('a'+i)), title, base.Add(time.Duration(i)*time.Hour))
		if err := store.Upsert(ctx, record, snapshot.Empty()); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	records, err := store.Search(ctx, "ALPHA")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 matches, got %#v", records)
	}

	records, err = store.Search(ctx, "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("blank term should list all, got %d", len(records))
	}
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	store := history.NewMemoryStore(nil, logging.NewNop())
	ctx := context.Background()

	snap := snapshot.Empty()
	snap.Messages = []snapshot.Message{{ID: "m1", Role: snapshot.RoleUser, Content: "original"}}
	if err := store.Upsert(ctx, newRecordAt("a", "Session", time.Now().UTC()), snap); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	entry, err := store.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	entry.Snapshot.Messages[0].Content = "mutated"

	again, err := store.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if again.Snapshot.Messages[0].Content != "original" {
		t.Fatal("Load must return an independent copy")
	}
}

func TestMemoryStoreMirrorRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	store := history.NewMemoryStore(cache, logging.NewNop())
	ctx := context.Background()

	snap := snapshot.Empty()
	snap.Messages = []snapshot.Message{{ID: "m1", Role: snapshot.RoleUser, Content: "mirrored"}}
	record := newRecordAt("a", "Mirrored Session", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if err := store.Upsert(ctx, record, snap); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// A fresh store over the same cache restores the mirrored sessions.
	restored := history.NewMemoryStore(cache, logging.NewNop())
	entry, err := restored.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry == nil {
		t.Fatal("expected restored session")
	}
	if entry.Record.Title != "Mirrored Session" {
		t.Fatalf("unexpected restored title %q", entry.Record.Title)
	}
	if !entry.Record.CreatedAt.Equal(record.CreatedAt) {
		t.Fatalf("restored CreatedAt mismatch: %v vs %v", entry.Record.CreatedAt, record.CreatedAt)
	}
	if len(entry.Snapshot.Messages) != 1 || entry.Snapshot.Messages[0].Content != "mirrored" {
		t.Fatalf("unexpected restored snapshot: %#v", entry.Snapshot)
	}
}

func TestMemoryStoreDiscardsCorruptMirror(t *testing.T) {
	cache, path := newTestCache(t)
	if err := cache.Set("session-history-local-cache", "{definitely not json"); err != nil {
		t.Fatalf("seed corrupt mirror: %v", err)
	}

	store := history.NewMemoryStore(cache, logging.NewNop())
	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("corrupt mirror should yield empty store, got %#v", records)
	}

	// The corrupt value is dropped from the cache file.
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("cache file missing: %v", statErr)
	}
	if _, ok := cache.Get("session-history-local-cache"); ok {
		t.Fatal("corrupt mirror entry should have been removed")
	}
}
