// Package content holds the live generated-content state for the active
// session: mood board, storyboard, color palette, constraints, summary, and
// final outputs.
//
// The store is the content-state provider the lifecycle controller consumes.
// Every mutation bumps a monotonically increasing version counter and
// notifies subscribers, which is how upstream edits translate into debounced
// persists. Hydration replaces the whole state at once.
package content
