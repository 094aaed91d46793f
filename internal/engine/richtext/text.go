package richtext

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/engine/textrun"
)

// Text is the layout container: it exclusively owns an ordered list of
// fragments and the lock that guards them and every location pointing into
// them.
type Text struct {
	mu        sync.RWMutex
	fragments []*Fragment
	state     Lifecycle

	defaultStyle style.Style
	logger       zerolog.Logger

	obsMu     sync.RWMutex
	observers map[uint64]Observer
	nextObsID uint64
}

// New creates a text holding a single empty fragment.
func New(opts ...Option) *Text {
	t := &Text{
		defaultStyle: style.Default(),
		logger:       zerolog.Nop(),
		observers:    make(map[uint64]Observer),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.fragments = []*Fragment{newFragment(t, textrun.New("", t.defaultStyle))}
	return t
}

// NewFromString creates a text with one fragment per line of s, styled with
// the default style.
func NewFromString(s string, opts ...Option) *Text {
	t := New(opts...)
	lines := strings.Split(s, "\n")
	t.fragments = t.fragments[:0]
	for _, line := range lines {
		t.fragments = append(t.fragments, newFragment(t, textrun.New(line, t.defaultStyle)))
	}
	return t
}

// State returns the text's lifecycle state.
func (t *Text) State() Lifecycle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Fragments returns the fragments in order.
func (t *Text) Fragments() []*Fragment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Fragment, len(t.fragments))
	copy(out, t.fragments)
	return out
}

// Fragment returns the fragment at index i.
func (t *Text) Fragment(i int) (*Fragment, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.fragments) {
		return nil, fmt.Errorf("fragment %d of %d: %w", i, len(t.fragments), ErrUnknownFragment)
	}
	return t.fragments[i], nil
}

// Count returns the number of fragments.
func (t *Text) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.fragments)
}

// String returns the full text with fragments joined by newlines.
func (t *Text) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	parts := make([]string, len(t.fragments))
	for i, f := range t.fragments {
		parts[i] = f.run.Text()
	}
	return strings.Join(parts, "\n")
}

// ApplyEdit applies edit to f. See Fragment.ApplyEdit.
func (t *Text) ApplyEdit(f *Fragment, edit Edit) error {
	if f == nil || f.text != t {
		return ErrUnknownFragment
	}
	return f.ApplyEdit(edit)
}

// InsertFragment creates a fragment holding text at index, shifting later
// fragments down.
func (t *Text) InsertFragment(index int, text string, meta style.Style) (*Fragment, error) {
	t.mu.Lock()
	if t.state != Active {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	if index < 0 || index > len(t.fragments) {
		n := len(t.fragments)
		t.mu.Unlock()
		return nil, fmt.Errorf("insert fragment at %d of %d: %w", index, n, ErrOffsetOutOfRange)
	}
	f := newFragment(t, textrun.New(text, meta))
	t.fragments = append(t.fragments, nil)
	copy(t.fragments[index+1:], t.fragments[index:])
	t.fragments[index] = f
	t.mu.Unlock()

	t.notify(Change{Kind: ChangeInsertFragment, Fragment: f.id, Index: index})
	return f, nil
}

// Split splits f at k. Text from k onwards moves into a new fragment placed
// right after f, and locations migrate per their policy.
func (t *Text) Split(f *Fragment, k int) (*Fragment, error) {
	t.mu.Lock()
	if err := t.checkFragmentLocked(f); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if k < 0 || k > f.run.Len() {
		n := f.run.Len()
		t.mu.Unlock()
		return nil, fmt.Errorf("split at %d of fragment of length %d: %w", k, n, ErrOffsetOutOfRange)
	}

	right, err := f.run.Split(k)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	nf := newFragment(t, right)
	idx := t.indexLocked(f)
	t.fragments = append(t.fragments, nil)
	copy(t.fragments[idx+2:], t.fragments[idx+1:])
	t.fragments[idx+1] = nf

	moved := 0
	for _, loc := range f.slots {
		if loc == nil {
			continue
		}
		stays, off := migrateSplit(loc.offset, k, loc.policy)
		if stays {
			loc.offset = off
			continue
		}
		f.moveLocation(loc, nf, off)
		moved++
	}
	t.logger.Debug().
		Str("fragment", f.id.String()).
		Str("new_fragment", nf.id.String()).
		Int("offset", k).
		Int("moved", moved).
		Msg("split fragment")
	t.mu.Unlock()

	t.notify(Change{Kind: ChangeSplit, Fragment: f.id, NewFragment: nf.id, Index: idx, Offset: k})
	return nf, nil
}

// Merge appends the fragment following f onto f and destroys it. Its
// locations move to f, offset by f's previous length.
func (t *Text) Merge(f *Fragment) error {
	t.mu.Lock()
	if err := t.checkFragmentLocked(f); err != nil {
		t.mu.Unlock()
		return err
	}
	idx := t.indexLocked(f)
	if idx+1 >= len(t.fragments) {
		t.mu.Unlock()
		return ErrNoSuccessor
	}
	next := t.fragments[idx+1]
	base := f.run.Len()

	f.run.Append(next.run)
	moved := 0
	for _, loc := range next.slots {
		if loc == nil {
			continue
		}
		next.moveLocation(loc, f, base+loc.offset)
		moved++
	}
	t.fragments = append(t.fragments[:idx+1], t.fragments[idx+2:]...)
	next.beginTeardown()
	next.finishTeardown()

	t.logger.Debug().
		Str("fragment", f.id.String()).
		Str("absorbed", next.id.String()).
		Int("moved", moved).
		Msg("merged fragments")
	t.mu.Unlock()

	t.notify(Change{Kind: ChangeMerge, Fragment: f.id, NewFragment: next.id, Index: idx, Offset: base})
	return nil
}

// Remove destroys f. Its locations move to the end of the previous fragment,
// or to the start of the next one when f is first.
func (t *Text) Remove(f *Fragment) error {
	t.mu.Lock()
	if err := t.checkFragmentLocked(f); err != nil {
		t.mu.Unlock()
		return err
	}
	if len(t.fragments) == 1 {
		t.mu.Unlock()
		return ErrLastFragment
	}
	idx := t.indexLocked(f)

	var dst *Fragment
	dstOffset := 0
	if idx > 0 {
		dst = t.fragments[idx-1]
		dstOffset = dst.run.Len()
	} else {
		dst = t.fragments[1]
	}
	moved := 0
	for _, loc := range f.slots {
		if loc == nil {
			continue
		}
		f.moveLocation(loc, dst, dstOffset)
		moved++
	}
	t.fragments = append(t.fragments[:idx], t.fragments[idx+1:]...)
	f.beginTeardown()
	f.finishTeardown()

	t.logger.Debug().
		Str("fragment", f.id.String()).
		Int("moved", moved).
		Msg("removed fragment")
	t.mu.Unlock()

	t.notify(Change{Kind: ChangeRemoveFragment, Fragment: f.id, Index: idx})
	return nil
}

// Close tears down every fragment. Locations still pointing into them are
// detached; closing their owners afterwards is a no-op.
func (t *Text) Close() {
	t.mu.Lock()
	if t.state != Active {
		t.mu.Unlock()
		return
	}
	t.state = TearingDown
	for _, f := range t.fragments {
		f.beginTeardown()
	}
	detached := 0
	for _, f := range t.fragments {
		detached += f.finishTeardown()
	}
	n := len(t.fragments)
	t.fragments = nil
	t.state = Destroyed
	t.logger.Debug().
		Int("fragments", n).
		Int("detached", detached).
		Msg("text closed")
	t.mu.Unlock()

	t.notify(Change{Kind: ChangeClosed, Index: -1})
}

// Snapshot returns an immutable copy of every fragment's text and spans.
func (t *Text) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := Snapshot{Fragments: make([]FragmentSnapshot, len(t.fragments))}
	for i, f := range t.fragments {
		snap.Fragments[i] = FragmentSnapshot{
			ID:    f.id,
			Text:  f.run.Text(),
			Spans: f.run.Spans(),
		}
	}
	return snap
}

// checkFragmentLocked validates that f is a live fragment of t.
func (t *Text) checkFragmentLocked(f *Fragment) error {
	if f == nil || f.text != t {
		return ErrUnknownFragment
	}
	if f.state != Active {
		return ErrDestroyed
	}
	return nil
}

// indexLocked returns f's index, or -1 if it is no longer listed.
func (t *Text) indexLocked(f *Fragment) int {
	for i, ff := range t.fragments {
		if ff == f {
			return i
		}
	}
	return -1
}
