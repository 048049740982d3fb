package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"atelier/internal/snapshot"
)

// Store is an in-memory ordered message list with change notifications.
// Mutations notify subscribers after the store's own lock is released, so a
// subscriber may call back into the store.
type Store struct {
	mu       sync.RWMutex
	messages []snapshot.Message

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewStore returns an empty chat store.
func NewStore() *Store {
	return &Store{subs: make(map[int]func())}
}

// Messages returns a copy of the current transcript in order.
func (s *Store) Messages() []snapshot.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]snapshot.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Add appends a message with a fresh id and the current timestamp and
// returns it.
func (s *Store) Add(role snapshot.Role, content string, metadata *snapshot.MessageMetadata) snapshot.Message {
	msg := snapshot.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		Metadata:  metadata,
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.notify()
	return msg
}

// UpdateContent replaces the content of the identified message wholesale.
// Streaming updates to the most recent assistant message come through here.
// It reports whether the message was found.
func (s *Store) UpdateContent(id, content string) bool {
	s.mu.Lock()
	found := false
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Content = content
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.notify()
	}
	return found
}

// SetMessages replaces the transcript wholesale. Used on hydration.
func (s *Store) SetMessages(messages []snapshot.Message) {
	replacement := make([]snapshot.Message, len(messages))
	copy(replacement, messages)

	s.mu.Lock()
	s.messages = replacement
	s.mu.Unlock()

	s.notify()
}

// Clear drops the transcript.
func (s *Store) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()

	s.notify()
}

// Subscribe registers a change callback and returns its cancel function.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	callbacks := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.subMu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
