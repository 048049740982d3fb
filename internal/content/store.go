package content

import (
	"sync"

	"atelier/internal/snapshot"
)

// Store is the in-memory content state with a change-version counter.
// Mutations notify subscribers after the store's own lock is released.
type Store struct {
	mu      sync.RWMutex
	content snapshot.Content
	version uint64

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewStore returns a store holding the empty content state.
func NewStore() *Store {
	return &Store{
		content: snapshot.Empty().Content,
		subs:    make(map[int]func()),
	}
}

// Snapshot returns a deep copy of the current content state.
func (s *Store) Snapshot() snapshot.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneContent(s.content)
}

// Version returns the current change version. It increases on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SetMoodBoard replaces the mood board section.
func (s *Store) SetMoodBoard(images []snapshot.MoodBoardImage) {
	s.mutate(func(c *snapshot.Content) { c.MoodBoard = images })
}

// SetStoryboard replaces the storyboard section.
func (s *Store) SetStoryboard(scenes []snapshot.StoryboardScene) {
	s.mutate(func(c *snapshot.Content) { c.Storyboard = scenes })
}

// SetHexCodes replaces the color palette section.
func (s *Store) SetHexCodes(colors []snapshot.HexColor) {
	s.mutate(func(c *snapshot.Content) { c.HexCodes = colors })
}

// SetConstraints replaces the constraints section.
func (s *Store) SetConstraints(constraints []snapshot.Constraint) {
	s.mutate(func(c *snapshot.Content) { c.Constraints = constraints })
}

// AddConstraint prepends one constraint.
func (s *Store) AddConstraint(constraint snapshot.Constraint) {
	s.mutate(func(c *snapshot.Content) {
		c.Constraints = append([]snapshot.Constraint{constraint}, c.Constraints...)
	})
}

// RemoveConstraint drops a constraint by id. Unknown ids are ignored.
func (s *Store) RemoveConstraint(id string) {
	s.mutate(func(c *snapshot.Content) {
		kept := c.Constraints[:0]
		for _, constraint := range c.Constraints {
			if constraint.ID != id {
				kept = append(kept, constraint)
			}
		}
		c.Constraints = kept
	})
}

// SetSummary replaces the summary document (nil clears it).
func (s *Store) SetSummary(summary *snapshot.SummaryDoc) {
	s.mutate(func(c *snapshot.Content) { c.Summary = summary })
}

// AddFinalOutput prepends a final output, keeping the newest-first order.
func (s *Store) AddFinalOutput(output snapshot.FinalOutput) {
	s.mutate(func(c *snapshot.Content) {
		c.FinalOutputs = append([]snapshot.FinalOutput{output}, c.FinalOutputs...)
	})
}

// SetFinalOutputs replaces the final output list.
func (s *Store) SetFinalOutputs(outputs []snapshot.FinalOutput) {
	s.mutate(func(c *snapshot.Content) { c.FinalOutputs = outputs })
}

// HydrateFromSnapshot replaces the whole content state from a loaded
// snapshot. The version still advances so stale readers notice the change.
func (s *Store) HydrateFromSnapshot(content snapshot.Content) {
	s.mutate(func(c *snapshot.Content) { *c = cloneContent(content) })
}

// Clear resets every section to the empty state.
func (s *Store) Clear() {
	s.mutate(func(c *snapshot.Content) { *c = snapshot.Empty().Content })
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

func (s *Store) mutate(apply func(*snapshot.Content)) {
	s.mu.Lock()
	apply(&s.content)
	s.version++
	s.mu.Unlock()

	s.notify()
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

func cloneContent(c snapshot.Content) snapshot.Content {
	return snapshot.Clone(snapshot.Snapshot{Content: c}).Content
}
