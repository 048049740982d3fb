package workspace

import "atelier/internal/snapshot"

// ChatState is the live message state the controller persists and hydrates.
type ChatState interface {
	Messages() []snapshot.Message
	SetMessages(messages []snapshot.Message)
	Subscribe(fn func()) func()
}

// ContentState is the live content state the controller persists and
// hydrates.
type ContentState interface {
	Snapshot() snapshot.Content
	HydrateFromSnapshot(content snapshot.Content)
	Subscribe(fn func()) func()
}

// AssetCleaner removes a session's stored binary assets when the session is
// deleted. Cleanup failures are logged, never fatal.
type AssetCleaner interface {
	RemoveSessionAssets(sessionID string) error
}
