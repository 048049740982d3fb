// Package history persists workspace sessions and exposes the repository
// contract the lifecycle controller drives.
//
// The SQLite-backed Store is the durable engine: one sessions table keyed by
// session id carrying the title, timestamps, and the serialized snapshot
// blob, plus an FTS5 index over titles that is kept consistent through
// triggers on every insert, update, and delete. The MemoryStore implements
// the same contract on a process-local map mirrored best-effort into a
// localcache file; the controller fails over to it permanently the first
// time the durable engine errors.
//
// Not-found is a valid outcome, not an error: Load returns (nil, nil) for an
// unknown id and Rename/Delete are no-ops. Treat this package as the single
// source of truth for session storage semantics; schema changes go through
// the embedded migrations.
package history
