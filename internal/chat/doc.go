// Package chat holds the live message transcript for the active session.
//
// The store is the chat-state provider the lifecycle controller consumes:
// ordered messages, a change subscription used to schedule persists, and the
// wholesale replace/clear operations hydration needs. Messages are
// append-only except for in-place content updates to the message being
// streamed.
package chat
