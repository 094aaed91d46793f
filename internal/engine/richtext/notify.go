package richtext

import (
	"sync"

	"github.com/google/uuid"
)

// ChangeKind categorizes a change to a Text.
type ChangeKind uint8

const (
	ChangeEdit           ChangeKind = iota // Text inserted and/or erased
	ChangeRestyle                          // Metadata changed, text unchanged
	ChangeSplit                            // Fragment split in two
	ChangeMerge                            // Successor merged into fragment
	ChangeInsertFragment                   // New fragment inserted
	ChangeRemoveFragment                   // Fragment removed
	ChangeClosed                           // Text torn down
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeEdit:
		return "edit"
	case ChangeRestyle:
		return "restyle"
	case ChangeSplit:
		return "split"
	case ChangeMerge:
		return "merge"
	case ChangeInsertFragment:
		return "insert-fragment"
	case ChangeRemoveFragment:
		return "remove-fragment"
	case ChangeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Change describes a completed mutation. Observers receive it after the
// text's lock has been released, so they may read the text.
type Change struct {
	Kind     ChangeKind
	Fragment uuid.UUID
	// NewFragment is the created fragment for splits and the absorbed one
	// for merges.
	NewFragment uuid.UUID
	// Index is the fragment's position at the time of the change.
	Index    int
	Offset   int
	Removed  int
	Inserted int
}

// Observer is called after every change.
type Observer func(Change)

// Subscription represents an active observer.
type Subscription struct {
	id   uint64
	text *Text
	once sync.Once
}

// Unsubscribe removes the observer. It is safe to call more than once, from
// any goroutine.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.text.obsMu.Lock()
		delete(s.text.observers, s.id)
		s.text.obsMu.Unlock()
	})
}

// Subscribe registers fn to be called after every change.
func (t *Text) Subscribe(fn Observer) *Subscription {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.nextObsID++
	t.observers[t.nextObsID] = fn
	return &Subscription{id: t.nextObsID, text: t}
}

func (t *Text) notify(c Change) {
	t.obsMu.RLock()
	observers := make([]Observer, 0, len(t.observers))
	for _, fn := range t.observers {
		observers = append(observers, fn)
	}
	t.obsMu.RUnlock()

	for _, fn := range observers {
		fn(c)
	}
}
