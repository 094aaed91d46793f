package richtext

import (
	"errors"
	"testing"
)

func expectPosition(t *testing.T, c *CursorOwner, frag *Fragment, off int) {
	t.Helper()
	pos := positionOf(t, c)
	if pos.Fragment != frag {
		t.Errorf("cursor fragment = %s, want %s", pos.Fragment.ID(), frag.ID())
	}
	if pos.Offset != off {
		t.Errorf("cursor offset = %d, want %d", pos.Offset, off)
	}
}

// Split Tests

func TestText_SplitAtCursorFollowsPolicy(t *testing.T) {
	txt := NewFromString("0123456789")
	f := txt.Fragments()[0]
	before := newCursor(t, txt, f, 5, PolicyBefore)
	after := newCursor(t, txt, f, 5, PolicyAfter)
	early := newCursor(t, txt, f, 2, PolicyAfter)
	late := newCursor(t, txt, f, 8, PolicyBefore)

	nf, err := txt.Split(f, 5)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	if f.String() != "01234" || nf.String() != "56789" {
		t.Errorf("split = %q | %q, want \"01234\" | \"56789\"", f.String(), nf.String())
	}
	if frags := txt.Fragments(); len(frags) != 2 || frags[0] != f || frags[1] != nf {
		t.Errorf("Fragments() = %v, want [f nf]", frags)
	}

	expectPosition(t, before, f, 5)
	expectPosition(t, after, nf, 0)
	expectPosition(t, early, f, 2)
	expectPosition(t, late, nf, 3)

	if f.Registered() != 2 || nf.Registered() != 2 {
		t.Errorf("Registered() = %d, %d; want 2, 2", f.Registered(), nf.Registered())
	}
}

func TestText_SplitKeepsStyles(t *testing.T) {
	txt := NewFromString("abcdef")
	f := txt.Fragments()[0]
	if err := f.SetMetadata(2, 6, bold); err != nil {
		t.Fatal(err)
	}

	nf, err := txt.Split(f, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := metaAt(t, nf, 0); got != bold {
		t.Errorf("new fragment style = %v, want bold", got)
	}
}

func TestText_SplitEmptyFragmentWithMixedPolicies(t *testing.T) {
	txt := New()
	f := txt.Fragments()[0]
	b1 := newCursor(t, txt, f, 0, PolicyBefore)
	a1 := newCursor(t, txt, f, 0, PolicyAfter)
	b2 := newCursor(t, txt, f, 0, PolicyBefore)

	nf, err := txt.Split(f, 0)
	if err != nil {
		t.Fatal(err)
	}

	expectPosition(t, b1, f, 0)
	expectPosition(t, b2, f, 0)
	expectPosition(t, a1, nf, 0)
}

func TestText_SplitOutOfRange(t *testing.T) {
	txt := NewFromString("abc")
	f := txt.Fragments()[0]
	if _, err := txt.Split(f, 4); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Split(4) error = %v, want ErrOffsetOutOfRange", err)
	}
	if n := txt.Count(); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestText_SplitThenEditMigratesIndependently(t *testing.T) {
	txt := NewFromString("ABCDEF")
	f := txt.Fragments()[0]
	c := newCursor(t, txt, f, 4, PolicyAfter)

	nf, err := txt.Split(f, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Insert(0, "zzz"); err != nil {
		t.Fatal(err)
	}
	if got := offsetOf(t, c); got != 1 {
		t.Errorf("cursor = %d, want 1 (edits to the old fragment leave it alone)", got)
	}

	if err := nf.Insert(0, "!"); err != nil {
		t.Fatal(err)
	}
	if got := offsetOf(t, c); got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}
}

// Merge and Remove Tests

func TestText_Merge(t *testing.T) {
	txt := NewFromString("abc\ndefg")
	frags := txt.Fragments()
	first, second := frags[0], frags[1]
	c1 := newCursor(t, txt, first, 3, PolicyAfter)
	c2 := newCursor(t, txt, second, 0, PolicyBefore)
	c3 := newCursor(t, txt, second, 4, PolicyAfter)

	if err := txt.Merge(first); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	if got := first.String(); got != "abcdefg" {
		t.Errorf("merged text = %q, want %q", got, "abcdefg")
	}
	if n := txt.Count(); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
	if s := second.State(); s != Destroyed {
		t.Errorf("absorbed state = %v, want Destroyed", s)
	}
	if second.Registered() != 0 || first.Registered() != 3 {
		t.Errorf("Registered() = %d, %d; want 3, 0", first.Registered(), second.Registered())
	}

	expectPosition(t, c1, first, 3)
	expectPosition(t, c2, first, 3)
	expectPosition(t, c3, first, 7)

	if err := txt.Merge(first); !errors.Is(err, ErrNoSuccessor) {
		t.Errorf("Merge(last) error = %v, want ErrNoSuccessor", err)
	}
	if err := second.Insert(0, "x"); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Insert on absorbed error = %v, want ErrDestroyed", err)
	}
}

func TestText_SplitThenMergeRestoresText(t *testing.T) {
	txt := NewFromString("hello world")
	f := txt.Fragments()[0]
	c := newCursor(t, txt, f, 8, PolicyBefore)

	if _, err := txt.Split(f, 5); err != nil {
		t.Fatal(err)
	}
	if err := txt.Merge(f); err != nil {
		t.Fatal(err)
	}

	if got := f.String(); got != "hello world" {
		t.Errorf("text = %q, want %q", got, "hello world")
	}
	if got := offsetOf(t, c); got != 8 {
		t.Errorf("cursor = %d, want 8", got)
	}
}

func TestText_RemoveMigratesToNeighbour(t *testing.T) {
	txt := NewFromString("one\ntwo\nthree")
	frags := txt.Fragments()
	c := newCursor(t, txt, frags[1], 2, PolicyAfter)

	if err := txt.Remove(frags[1]); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	expectPosition(t, c, frags[0], 3)

	c2 := newCursor(t, txt, frags[0], 1, PolicyAfter)
	if err := txt.Remove(frags[0]); err != nil {
		t.Fatalf("Remove(first) error = %v", err)
	}
	expectPosition(t, c, frags[2], 0)
	expectPosition(t, c2, frags[2], 0)

	if err := txt.Remove(frags[2]); !errors.Is(err, ErrLastFragment) {
		t.Errorf("Remove(last) error = %v, want ErrLastFragment", err)
	}
	if err := txt.Remove(frags[0]); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Remove(destroyed) error = %v, want ErrDestroyed", err)
	}
	if got := txt.String(); got != "three" {
		t.Errorf("text = %q, want %q", got, "three")
	}
}

func TestText_InsertFragment(t *testing.T) {
	txt := NewFromString("a\nc")
	f, err := txt.InsertFragment(1, "b", bold)
	if err != nil {
		t.Fatalf("InsertFragment() error = %v", err)
	}
	if got := txt.String(); got != "a\nb\nc" {
		t.Errorf("text = %q, want %q", got, "a\nb\nc")
	}

	got, err := txt.Fragment(1)
	if err != nil {
		t.Fatal(err)
	}
	if got != f {
		t.Error("Fragment(1) is not the inserted fragment")
	}

	if _, err := txt.InsertFragment(9, "x", bold); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("InsertFragment(9) error = %v, want ErrOffsetOutOfRange", err)
	}
	if _, err := txt.Fragment(9); !errors.Is(err, ErrUnknownFragment) {
		t.Errorf("Fragment(9) error = %v, want ErrUnknownFragment", err)
	}
}

func TestText_Snapshot(t *testing.T) {
	txt := NewFromString("ab\ncd")
	frags := txt.Fragments()
	if err := frags[1].SetMetadata(1, 2, bold); err != nil {
		t.Fatal(err)
	}

	snap := txt.Snapshot()
	if len(snap.Fragments) != 2 {
		t.Fatalf("snapshot fragments = %d, want 2", len(snap.Fragments))
	}
	if got := snap.Fragments[1].Text; got != "cd" {
		t.Errorf("snapshot text = %q, want %q", got, "cd")
	}
	if n := len(snap.Fragments[1].Spans); n != 2 {
		t.Errorf("snapshot spans = %d, want 2", n)
	}
	if i := snap.Index(frags[1].ID()); i != 1 {
		t.Errorf("Index() = %d, want 1", i)
	}

	if err := frags[1].Insert(0, "zz"); err != nil {
		t.Fatal(err)
	}
	if got := snap.Fragments[1].Text; got != "cd" {
		t.Errorf("snapshot text after edit = %q, want unchanged", got)
	}
}
