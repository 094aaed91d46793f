package richtext

import (
	"fmt"
	"runtime"

	"github.com/rivo/uniseg"
)

// location is a renumbering-aware reference into a fragment. It is owned by
// exactly one CursorOwner and referenced (non-owning) by its fragment's slot
// table.
type location struct {
	frag     *Fragment
	slot     int
	offset   int
	policy   Policy
	attached bool
}

func (l *location) detach() {
	l.attached = false
	l.slot = -1
}

// Position is a copy of a location's target taken under the text's lock.
type Position struct {
	Fragment *Fragment
	Index    int
	Offset   int
	Policy   Policy
}

// String returns a compact representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("Position(%d:%d %s)", p.Index, p.Offset, p.Policy)
}

// CursorOwner exclusively owns one cursor location. It is the only code
// allowed to set the location's offset directly; edits elsewhere migrate it
// through the fragment.
//
// Close must be called when the owner is no longer needed. Owners that are
// garbage collected without Close are deregistered by a runtime cleanup.
type CursorOwner struct {
	text    *Text
	loc     *location
	closed  bool
	cleanup runtime.Cleanup
}

// NewCursor creates an owner whose location targets offset in f.
func (t *Text) NewCursor(f *Fragment, offset int, policy Policy) (*CursorOwner, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkFragmentLocked(f); err != nil {
		return nil, err
	}
	if offset < 0 || offset > f.run.Len() {
		return nil, fmt.Errorf("cursor at %d in fragment of length %d: %w", offset, f.run.Len(), ErrOffsetOutOfRange)
	}
	return t.newOwnerLocked(f, offset, policy), nil
}

func (t *Text) newOwnerLocked(f *Fragment, offset int, policy Policy) *CursorOwner {
	loc := &location{offset: offset, policy: policy, slot: -1}
	f.register(loc)

	o := &CursorOwner{text: t, loc: loc}
	o.cleanup = runtime.AddCleanup(o, releaseLocation, orphan{text: t, loc: loc})
	return o
}

// orphan carries what a runtime cleanup needs without referencing the owner.
type orphan struct {
	text *Text
	loc  *location
}

func releaseLocation(o orphan) {
	o.text.mu.Lock()
	defer o.text.mu.Unlock()
	if o.loc.attached {
		o.loc.frag.deregister(o.loc)
		o.loc.detach()
	}
}

// Clone creates an independent owner at the same fragment, offset and policy.
func (o *CursorOwner) Clone() (*CursorOwner, error) {
	t := o.text
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := o.checkLocked(); err != nil {
		return nil, err
	}
	return t.newOwnerLocked(o.loc.frag, o.loc.offset, o.loc.policy), nil
}

// Close deregisters the location from its fragment. It is idempotent and
// does nothing to a fragment that is already being torn down.
func (o *CursorOwner) Close() {
	t := o.text
	t.mu.Lock()
	defer t.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	o.cleanup.Stop()
	if o.loc.attached {
		o.loc.frag.deregister(o.loc)
	}
	o.loc.detach()
}

// Closed returns true once Close has been called.
func (o *CursorOwner) Closed() bool {
	o.text.mu.RLock()
	defer o.text.mu.RUnlock()
	return o.closed
}

// Position returns a copy of the location's current target.
func (o *CursorOwner) Position() (Position, error) {
	g := o.text.Read()
	defer g.Release()
	return g.Position(o)
}

// MoveTo sets the location's offset within its current fragment.
func (o *CursorOwner) MoveTo(offset int) error {
	t := o.text
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := o.checkLocked(); err != nil {
		return err
	}
	if offset < 0 || offset > o.loc.frag.run.Len() {
		return fmt.Errorf("move to %d in fragment of length %d: %w", offset, o.loc.frag.run.Len(), ErrOffsetOutOfRange)
	}
	o.loc.offset = offset
	return nil
}

// SetPolicy changes the location's tie-break policy.
func (o *CursorOwner) SetPolicy(policy Policy) error {
	t := o.text
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := o.checkLocked(); err != nil {
		return err
	}
	o.loc.policy = policy
	return nil
}

// MoveGraphemes moves the location by n grapheme clusters (negative moves
// backwards), clamped to the fragment. It returns the new offset.
func (o *CursorOwner) MoveGraphemes(n int) (int, error) {
	t := o.text
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := o.checkLocked(); err != nil {
		return 0, err
	}

	bounds := graphemeBoundaries(o.loc.frag.run.Text())
	// Index of the last boundary at or before the current offset.
	cur := 0
	for i, b := range bounds {
		if b > o.loc.offset {
			break
		}
		cur = i
	}
	// From the middle of a cluster, reaching either edge of it is one step.
	if bounds[cur] < o.loc.offset {
		switch {
		case n > 0:
			n--
			cur++
		case n < 0:
			n++
		}
	}
	target := cur + n
	if target < 0 {
		target = 0
	}
	if target > len(bounds)-1 {
		target = len(bounds) - 1
	}
	o.loc.offset = bounds[target]
	return o.loc.offset, nil
}

// graphemeBoundaries returns the rune offsets of every grapheme cluster
// boundary in s, including 0 and the rune length of s.
func graphemeBoundaries(s string) []int {
	bounds := []int{0}
	pos := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		pos += len(g.Runes())
		bounds = append(bounds, pos)
	}
	return bounds
}

// checkLocked validates the owner for use with the lock held.
func (o *CursorOwner) checkLocked() error {
	if o.closed {
		return ErrClosed
	}
	if !o.loc.attached || o.loc.frag.state != Active {
		return ErrDetached
	}
	return nil
}
