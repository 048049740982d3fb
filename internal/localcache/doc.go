// Package localcache provides a small file-backed string key-value store.
//
// It is the Go rendering of the browser localStorage surface the workspace
// relies on for degraded-mode persistence: the in-memory fallback repository
// mirrors its contents here on every write so session history survives a
// restart even when the session database never opens. Writes are best-effort
// and atomic (temp file + rename); a missing or corrupt cache file is treated
// as an empty cache.
package localcache
