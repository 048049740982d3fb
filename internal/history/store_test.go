package history_test

import (
	"context"
	"testing"
	"time"

	"atelier/internal/history"
	"atelier/internal/snapshot"
	"atelier/internal/testsupport"
)

func newRecordAt(id, title string, created time.Time) history.Record {
	return history.Record{
		ID:        id,
		Title:     title,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func mustUpsert(t *testing.T, store *history.Store, record history.Record, snap snapshot.Snapshot) {
	t.Helper()
	if err := store.Upsert(context.Background(), record, snap); err != nil {
		t.Fatalf("Upsert %s: %v", record.ID, err)
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.TableExists || !health.IntegrityCheck {
		t.Fatalf("unexpected health: %#v", health)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mustUpsert(t, store, newRecordAt("a", "Oldest", base), snapshot.Empty())
	mustUpsert(t, store, newRecordAt("b", "Middle", base.Add(time.Hour)), snapshot.Empty())
	mustUpsert(t, store, newRecordAt("c", "Newest", base.Add(2*time.Hour)), snapshot.Empty())

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"c", "b", "a"} {
		if records[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, records[i].ID)
		}
	}
}

func TestSearchMatchesTokenPrefixes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mustUpsert(t, store, newRecordAt("a", "Campaign Alpha", base), snapshot.Empty())
	mustUpsert(t, store, newRecordAt("b", "alpha version notes", base.Add(time.Hour)), snapshot.Empty())
	mustUpsert(t, store, newRecordAt("c", "Beta Review", base.Add(2*time.Hour)), snapshot.Empty())

	records, err := store.Search(ctx, "Al")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 matches for 'Al', got %d: %#v", len(records), records)
	}
	if records[0].ID != "b" || records[1].ID != "a" {
		t.Fatalf("expected newest-first [b a], got [%s %s]", records[0].ID, records[1].ID)
	}

	records, err = store.Search(ctx, "bet")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "c" {
		t.Fatalf("expected only 'Beta Review' for 'bet', got %#v", records)
	}

	records, err = store.Search(ctx, "zzz")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no matches, got %#v", records)
	}
}

func TestSearchBlankTermListsEverything(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	mustUpsert(t, store, newRecordAt("a", "Only One", time.Now().UTC()), snapshot.Empty())

	records, err := store.Search(ctx, "   ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected blank search to list all, got %d", len(records))
	}
}

func TestSearchQuotesUserInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	mustUpsert(t, store, newRecordAt("a", "Quarterly Plan", time.Now().UTC()), snapshot.Empty())

	// FTS operators in user input must not produce a syntax error.
	for _, term := range []string{`plan AND`, `"plan`, `plan*`, `NEAR(plan)`} {
		if _, err := store.Search(ctx, term); err != nil {
			t.Fatalf("Search(%q) failed: %v", term, err)
		}
	}
}

func TestLoadRoundTripsSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	snap := snapshot.Empty()
	snap.Messages = []snapshot.Message{
		{ID: "m1", Role: snapshot.RoleUser, Content: "draft the brief", Timestamp: 1700000000000},
	}
	snap.Content.Constraints = []snapshot.Constraint{
		{ID: "k1", Text: "warm colors only", Source: snapshot.SourceUser, Active: true},
	}
	record := newRecordAt("s1", "Brief", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	mustUpsert(t, store, record, snap)

	entry, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry == nil {
		t.Fatal("expected entry, got nil")
	}
	if entry.Record.Title != "Brief" {
		t.Fatalf("unexpected title %q", entry.Record.Title)
	}
	if !entry.Record.CreatedAt.Equal(record.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", entry.Record.CreatedAt, record.CreatedAt)
	}
	if !snapshot.Equal(entry.Snapshot, snap) {
		t.Fatalf("snapshot mismatch: %#v", entry.Snapshot)
	}
}

func TestLoadUnknownIDReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	entry, err := store.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil entry for unknown id, got %#v", entry)
	}
}

func TestUpsertReplacesAndReindexes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := newRecordAt("s1", "Mood Board Draft", time.Now().UTC())
	mustUpsert(t, store, record, snapshot.Empty())

	record.Title = "Palette Exploration"
	mustUpsert(t, store, record, snapshot.Empty())

	records, err := store.Search(ctx, "palette")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Palette Exploration" {
		t.Fatalf("expected reindexed title, got %#v", records)
	}

	records, err = store.Search(ctx, "mood")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("old title should no longer match, got %#v", records)
	}
}

func TestRenameBumpsUpdatedAt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mustUpsert(t, store, newRecordAt("s1", "Before", created), snapshot.Empty())

	if err := store.Rename(ctx, "s1", "After"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	entry, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry.Record.Title != "After" {
		t.Fatalf("expected renamed title, got %q", entry.Record.Title)
	}
	if !entry.Record.UpdatedAt.After(created) {
		t.Fatalf("expected UpdatedAt after %v, got %v", created, entry.Record.UpdatedAt)
	}
	if !entry.Record.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt must not change on rename, got %v", entry.Record.CreatedAt)
	}

	// Renaming an unknown id is a no-op, not an error.
	if err := store.Rename(ctx, "missing", "Whatever"); err != nil {
		t.Fatalf("Rename of unknown id: %v", err)
	}
}

func TestDeleteRemovesRowAndIndexEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	mustUpsert(t, store, newRecordAt("s1", "Disposable", time.Now().UTC()), snapshot.Empty())

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	entry, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entry != nil {
		t.Fatal("expected session to be gone")
	}

	records, err := store.Search(ctx, "disposable")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("FTS entry should be gone, got %#v", records)
	}

	// Idempotent.
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("repeat Delete failed: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mustUpsert(t, store, newRecordAt("s1", "Persisted", time.Now().UTC()), snapshot.Empty())
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	records, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("List after reopen failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "s1" {
		t.Fatalf("expected persisted record after reopen, got %#v", records)
	}
}
