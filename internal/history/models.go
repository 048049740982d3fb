package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"atelier/internal/snapshot"
)

// Record identifies one stored session. The id is generated once and never
// reused; UpdatedAt is bumped on every persist or rename.
type Record struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord mints a session record with a fresh id and both timestamps set
// to now.
func NewRecord(title string) Record {
	now := time.Now().UTC()
	return Record{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Entry pairs a session record with its loaded snapshot.
type Entry struct {
	Record   Record
	Snapshot snapshot.Snapshot
}

// Repository is the session persistence contract shared by the durable
// SQLite store and the in-memory fallback.
type Repository interface {
	// List returns all session records, newest CreatedAt first.
	List(ctx context.Context) ([]Record, error)
	// Search returns records whose titles match term, newest first. A blank
	// term is identical to List.
	Search(ctx context.Context, term string) ([]Record, error)
	// Load returns the record and snapshot for id, or (nil, nil) when the id
	// is unknown.
	Load(ctx context.Context, id string) (*Entry, error)
	// Upsert inserts or replaces the record and its snapshot blob atomically.
	Upsert(ctx context.Context, record Record, snap snapshot.Snapshot) error
	// Rename updates the title and UpdatedAt. Renaming a missing id is a no-op.
	Rename(ctx context.Context, id, title string) error
	// Delete removes the session. Deleting a missing id is a no-op.
	Delete(ctx context.Context, id string) error
}
