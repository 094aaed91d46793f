package richtext

import (
	"github.com/google/uuid"

	"github.com/dshills/richtext/internal/engine/textrun"
)

// FragmentSnapshot is an immutable copy of one fragment.
type FragmentSnapshot struct {
	ID    uuid.UUID
	Text  string
	Spans []textrun.Span
}

// Snapshot is an immutable copy of a Text, safe to share across goroutines.
type Snapshot struct {
	Fragments []FragmentSnapshot
}

// Index returns the position of the fragment with the given ID, or -1.
func (s Snapshot) Index(id uuid.UUID) int {
	for i, f := range s.Fragments {
		if f.ID == id {
			return i
		}
	}
	return -1
}
