// Package logging assembles the structured slog loggers used across Atelier.
//
// It owns the console/JSON handler selection, centralizes level and output
// plumbing, and exposes small attribute helpers plus a no-op logger for tests
// and wiring code that cannot fail. Components tag their lines through
// NewComponentLogger so the console handler can prefix messages consistently.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
