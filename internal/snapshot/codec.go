package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Empty returns the canonical zero-value snapshot: every section present and
// empty, summary absent.
func Empty() Snapshot {
	return Snapshot{
		Messages: []Message{},
		Content: Content{
			MoodBoard:    []MoodBoardImage{},
			Storyboard:   []StoryboardScene{},
			HexCodes:     []HexColor{},
			Constraints:  []Constraint{},
			Summary:      nil,
			FinalOutputs: []FinalOutput{},
		},
	}
}

// Encode serializes a snapshot to its canonical JSON form. The snapshot is
// normalized first so that encoding the same logical state always yields the
// same bytes.
func Encode(s Snapshot) ([]byte, error) {
	normalized := Normalize(s)
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot blob. The result is normalized; callers that need
// empty-on-failure semantics should use DecodeLenient instead.
func Decode(data []byte) (Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{}, fmt.Errorf("decode snapshot: empty blob")
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return Normalize(s), nil
}

// DecodeLenient parses a snapshot blob and substitutes the empty snapshot on
// any failure. The failure is logged, never returned; a session with a
// corrupt blob simply appears empty.
func DecodeLenient(data []byte, logger *slog.Logger) Snapshot {
	s, err := Decode(data)
	if err != nil {
		if logger != nil {
			logger.Warn("session snapshot blob is unreadable, substituting empty snapshot",
				slog.Any("error", err),
				slog.Int("blob_bytes", len(data)))
		}
		return Empty()
	}
	return s
}

// Clone returns a deep copy of the snapshot.
func Clone(s Snapshot) Snapshot {
	data, err := json.Marshal(Normalize(s))
	if err != nil {
		// Snapshot contains only JSON-representable types.
		return Empty()
	}
	var out Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		return Empty()
	}
	return Normalize(out)
}

// Equal reports whether two snapshots carry the same logical state.
func Equal(a, b Snapshot) bool {
	left, err := Encode(a)
	if err != nil {
		return false
	}
	right, err := Encode(b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}

// IsEmpty reports whether the snapshot carries no content at all.
func IsEmpty(s Snapshot) bool {
	return len(s.Messages) == 0 &&
		len(s.Content.MoodBoard) == 0 &&
		len(s.Content.Storyboard) == 0 &&
		len(s.Content.HexCodes) == 0 &&
		len(s.Content.Constraints) == 0 &&
		s.Content.Summary == nil &&
		len(s.Content.FinalOutputs) == 0
}

// Normalize repairs the structural invariants of a snapshot: sections are
// never nil and every section list is unique by item id (first occurrence
// wins, order otherwise preserved).
func Normalize(s Snapshot) Snapshot {
	s.Messages = dedupeMessages(s.Messages)
	s.Content.MoodBoard = dedupeByID(s.Content.MoodBoard, func(v MoodBoardImage) string { return v.ID })
	s.Content.Storyboard = dedupeByID(s.Content.Storyboard, func(v StoryboardScene) string { return v.ID })
	s.Content.HexCodes = dedupeByID(s.Content.HexCodes, func(v HexColor) string { return v.ID })
	s.Content.Constraints = dedupeByID(s.Content.Constraints, func(v Constraint) string { return v.ID })
	s.Content.FinalOutputs = dedupeByID(s.Content.FinalOutputs, func(v FinalOutput) string { return v.ID })
	return s
}

func dedupeMessages(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, msg := range messages {
		if msg.ID != "" {
			if _, dup := seen[msg.ID]; dup {
				continue
			}
			seen[msg.ID] = struct{}{}
		}
		if !validRole(msg.Role) {
			msg.Role = RoleAssistant
		}
		out = append(out, msg)
	}
	return out
}

func validRole(role Role) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

func dedupeByID[T any](items []T, id func(T) string) []T {
	out := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := id(item)
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}
