// Package workspace coordinates the session lifecycle: it owns the active
// session id, debounces persists of the live chat and content state, and
// hydrates providers when the user switches sessions. Persistence goes to
// the durable repository until the first failure, after which the
// controller fails over to the in-memory fallback for the rest of the run.
package workspace
