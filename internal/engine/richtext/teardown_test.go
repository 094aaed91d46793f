package richtext

import (
	"errors"
	"testing"
)

func TestCursorOwner_CloseDuringFragmentTeardown(t *testing.T) {
	txt := NewFromString("hello")
	f := txt.Fragments()[0]
	a, err := txt.NewCursor(f, 1, PolicyBefore)
	if err != nil {
		t.Fatal(err)
	}
	b, err := txt.NewCursor(f, 4, PolicyAfter)
	if err != nil {
		t.Fatal(err)
	}

	txt.mu.Lock()
	started := f.beginTeardown()
	txt.mu.Unlock()
	if !started {
		t.Fatal("beginTeardown() = false on an active fragment")
	}

	// Closing during teardown is a no-op and must not panic.
	a.Close()
	a.Close()
	if s := f.State(); s != TearingDown {
		t.Errorf("State() = %v, want TearingDown", s)
	}

	txt.mu.Lock()
	f.finishTeardown()
	txt.mu.Unlock()

	if n := f.Registered(); n != 0 {
		t.Errorf("Registered() = %d, want 0", n)
	}
	txt.mu.RLock()
	slots := len(f.slots)
	txt.mu.RUnlock()
	if slots != 0 {
		t.Errorf("slot table size = %d, want 0", slots)
	}

	if _, err := b.Position(); !errors.Is(err, ErrDetached) {
		t.Errorf("Position() error = %v, want ErrDetached", err)
	}
	b.Close()
	if _, err := b.Position(); !errors.Is(err, ErrClosed) {
		t.Errorf("Position() after Close error = %v, want ErrClosed", err)
	}
}

func TestText_CloseDetachesCursors(t *testing.T) {
	txt := NewFromString("a\nb")
	frags := txt.Fragments()
	c := newCursor(t, txt, frags[1], 1, PolicyAfter)

	txt.Close()
	txt.Close()

	if s := txt.State(); s != Destroyed {
		t.Errorf("State() = %v, want Destroyed", s)
	}
	if n := txt.Count(); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
	for i, f := range frags {
		if f.State() != Destroyed || f.Registered() != 0 {
			t.Errorf("fragment %d: state %v, registered %d; want Destroyed, 0", i, f.State(), f.Registered())
		}
	}

	if _, err := c.Position(); !errors.Is(err, ErrDetached) {
		t.Errorf("Position() error = %v, want ErrDetached", err)
	}
	if _, err := c.Clone(); !errors.Is(err, ErrDetached) {
		t.Errorf("Clone() error = %v, want ErrDetached", err)
	}
	if _, err := c.MoveGraphemes(1); !errors.Is(err, ErrDetached) {
		t.Errorf("MoveGraphemes() error = %v, want ErrDetached", err)
	}

	if _, err := txt.NewCursor(frags[0], 0, PolicyBefore); !errors.Is(err, ErrDestroyed) {
		t.Errorf("NewCursor() error = %v, want ErrDestroyed", err)
	}
	if err := frags[0].Insert(0, "x"); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Insert() error = %v, want ErrDestroyed", err)
	}
	if _, err := frags[0].MetadataAt(0); !errors.Is(err, ErrDestroyed) {
		t.Errorf("MetadataAt() error = %v, want ErrDestroyed", err)
	}
	if _, err := txt.InsertFragment(0, "x", bold); !errors.Is(err, ErrClosed) {
		t.Errorf("InsertFragment() error = %v, want ErrClosed", err)
	}
}

func TestFragment_DeregisterIgnoresForeignSlot(t *testing.T) {
	txt := NewFromString("ab")
	f := txt.Fragments()[0]
	c := newCursor(t, txt, f, 0, PolicyBefore)

	txt.mu.Lock()
	f.deregister(&location{slot: 0})
	txt.mu.Unlock()

	if n := f.Registered(); n != 1 {
		t.Errorf("Registered() = %d, want 1", n)
	}
	if got := offsetOf(t, c); got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}
}

func TestReleaseLocation_DeregistersOrphan(t *testing.T) {
	txt := NewFromString("ab")
	f := txt.Fragments()[0]

	txt.mu.Lock()
	loc := &location{slot: -1}
	f.register(loc)
	txt.mu.Unlock()
	if n := f.Registered(); n != 1 {
		t.Fatalf("Registered() = %d, want 1", n)
	}

	releaseLocation(orphan{text: txt, loc: loc})
	if n := f.Registered(); n != 0 {
		t.Errorf("Registered() = %d, want 0", n)
	}
	if loc.attached {
		t.Error("orphan still attached")
	}
}
