// Package main hosts the atelier CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces session maintenance against the
// local workspace database: listing and searching the session history,
// inspecting and exporting snapshots, renames and deletes, plus
// configuration scaffolding. Configuration resolution and the workspace
// lock are centralized here so subcommands stay declarative.
package main
