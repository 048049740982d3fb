package assets_test

import (
	"os"
	"path/filepath"
	"testing"

	"atelier/internal/assets"
	"atelier/internal/logging"
)

func TestSaveAndList(t *testing.T) {
	store := assets.NewStore(t.TempDir(), logging.NewNop())

	path, err := store.Save("session-1", "board.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved asset: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected asset contents %q", data)
	}

	if _, err := store.Save("session-1", "alt.png", []byte("x")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	names, err := store.List("session-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 || names[0] != "alt.png" || names[1] != "board.png" {
		t.Fatalf("unexpected listing %#v", names)
	}
}

func TestListUnknownSessionIsEmpty(t *testing.T) {
	store := assets.NewStore(t.TempDir(), logging.NewNop())

	names, err := store.List("never-saved")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty listing, got %#v", names)
	}
}

func TestRemoveSessionAssets(t *testing.T) {
	root := t.TempDir()
	store := assets.NewStore(root, logging.NewNop())

	if _, err := store.Save("session-1", "board.png", []byte("x")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.RemoveSessionAssets("session-1"); err != nil {
		t.Fatalf("RemoveSessionAssets failed: %v", err)
	}

	dir, err := store.SessionDir("session-1")
	if err != nil {
		t.Fatalf("SessionDir failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected session directory gone, stat err=%v", err)
	}

	// Removing again is fine.
	if err := store.RemoveSessionAssets("session-1"); err != nil {
		t.Fatalf("repeat RemoveSessionAssets failed: %v", err)
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	root := t.TempDir()
	store := assets.NewStore(filepath.Join(root, "images"), logging.NewNop())

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		if _, err := store.Save(id, "file.png", []byte("x")); err == nil {
			t.Fatalf("expected rejection for session id %q", id)
		}
	}
	if _, err := store.Save("session-1", "../escape.png", []byte("x")); err == nil {
		t.Fatal("expected rejection for traversal in asset name")
	}
}
