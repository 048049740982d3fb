// Package assets stores per-session binary artifacts such as mood board
// images under the workspace data directory. Files live in one directory
// per session id so deleting a session can drop them in a single call.
package assets
