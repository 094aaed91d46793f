package richtext

import (
	"errors"
	"testing"

	"github.com/dshills/richtext/internal/engine/style"
)

var (
	bold   = style.Default().WithAttributes(style.AttrBold)
	italic = style.Default().WithAttributes(style.AttrItalic)
)

func newCursor(t *testing.T, txt *Text, f *Fragment, off int, p Policy) *CursorOwner {
	t.Helper()
	c, err := txt.NewCursor(f, off, p)
	if err != nil {
		t.Fatalf("NewCursor(%d, %v) error = %v", off, p, err)
	}
	t.Cleanup(c.Close)
	return c
}

func positionOf(t *testing.T, c *CursorOwner) Position {
	t.Helper()
	pos, err := c.Position()
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	return pos
}

func offsetOf(t *testing.T, c *CursorOwner) int {
	t.Helper()
	return positionOf(t, c).Offset
}

func metaAt(t *testing.T, f *Fragment, off int) style.Style {
	t.Helper()
	m, err := f.MetadataAt(off)
	if err != nil {
		t.Fatalf("MetadataAt(%d) error = %v", off, err)
	}
	return m
}

func mustEdit(t *testing.T, f *Fragment, e Edit) {
	t.Helper()
	if err := f.ApplyEdit(e); err != nil {
		t.Fatalf("ApplyEdit(%s) error = %v", e, err)
	}
}

func TestFragment_InsertAtCursorFollowsPolicy(t *testing.T) {
	txt := NewFromString("ABCDEF")
	f := txt.Fragments()[0]
	before := newCursor(t, txt, f, 3, PolicyBefore)
	after := newCursor(t, txt, f, 3, PolicyAfter)

	mustEdit(t, f, NewInsert(3, "XY"))

	if got := f.String(); got != "ABCXYDEF" {
		t.Errorf("text = %q, want %q", got, "ABCXYDEF")
	}
	if got := offsetOf(t, before); got != 3 {
		t.Errorf("before cursor = %d, want 3", got)
	}
	if got := offsetOf(t, after); got != 5 {
		t.Errorf("after cursor = %d, want 5", got)
	}
}

func TestFragment_InsertShiftsLaterCursors(t *testing.T) {
	txt := NewFromString("ABCDEF")
	f := txt.Fragments()[0]
	early := newCursor(t, txt, f, 1, PolicyAfter)
	late := newCursor(t, txt, f, 6, PolicyBefore)

	if err := f.Insert(2, "日本語"); err != nil {
		t.Fatal(err)
	}

	if got := offsetOf(t, early); got != 1 {
		t.Errorf("early cursor = %d, want 1", got)
	}
	if got := offsetOf(t, late); got != 9 {
		t.Errorf("late cursor = %d, want 9", got)
	}
}

func TestFragment_EraseCollapsesCoveredCursor(t *testing.T) {
	txt := NewFromString("ABCDEFGH")
	f := txt.Fragments()[0]
	inside := newCursor(t, txt, f, 4, PolicyAfter)
	atEnd := newCursor(t, txt, f, 6, PolicyBefore)
	after := newCursor(t, txt, f, 7, PolicyBefore)

	if err := f.Erase(2, 4); err != nil {
		t.Fatal(err)
	}

	if got := f.String(); got != "ABGH" {
		t.Errorf("text = %q, want %q", got, "ABGH")
	}
	for _, tt := range []struct {
		name string
		c    *CursorOwner
		want int
	}{
		{"inside", inside, 2},
		{"at range end", atEnd, 2},
		{"after range", after, 3},
	} {
		if got := offsetOf(t, tt.c); got != tt.want {
			t.Errorf("%s cursor = %d, want %d", tt.name, got, tt.want)
		}
	}

	// Policy survives the collapse.
	if p := positionOf(t, inside).Policy; p != PolicyAfter {
		t.Errorf("policy = %v, want after", p)
	}
}

func TestFragment_ReplaceMovesCoveredCursorByPolicy(t *testing.T) {
	txt := NewFromString("ABCDEF")
	f := txt.Fragments()[0]
	before := newCursor(t, txt, f, 3, PolicyBefore)
	after := newCursor(t, txt, f, 3, PolicyAfter)

	mustEdit(t, f, NewReplace(2, 3, "xyz!"))

	if got := f.String(); got != "ABxyz!F" {
		t.Errorf("text = %q, want %q", got, "ABxyz!F")
	}
	if got := offsetOf(t, before); got != 2 {
		t.Errorf("before cursor = %d, want 2", got)
	}
	if got := offsetOf(t, after); got != 6 {
		t.Errorf("after cursor = %d, want 6", got)
	}
}

func TestFragment_OutOfRangeEditIsRejectedAtomically(t *testing.T) {
	txt := NewFromString("ABCDEF")
	f := txt.Fragments()[0]
	c := newCursor(t, txt, f, 4, PolicyAfter)

	for _, e := range []Edit{
		NewReplace(4, 5, "zz"),
		NewInsert(7, "zz"),
		NewErase(-1, 1),
	} {
		if err := f.ApplyEdit(e); !errors.Is(err, ErrOffsetOutOfRange) {
			t.Errorf("ApplyEdit(%s) error = %v, want ErrOffsetOutOfRange", e, err)
		}
	}

	if got := f.String(); got != "ABCDEF" {
		t.Errorf("text = %q, want unchanged", got)
	}
	if got := offsetOf(t, c); got != 4 {
		t.Errorf("cursor = %d, want 4", got)
	}
}

func TestFragment_InsertInheritsStyle(t *testing.T) {
	txt := NewFromString("abcd")
	f := txt.Fragments()[0]
	if err := f.SetMetadata(2, 4, bold); err != nil {
		t.Fatal(err)
	}

	if err := f.Insert(4, "ef"); err != nil {
		t.Fatal(err)
	}
	if got := metaAt(t, f, 5); got != bold {
		t.Errorf("appended text style = %v, want the preceding bold", got)
	}

	mustEdit(t, f, NewInsert(0, "Z").WithMeta(italic))
	if got := metaAt(t, f, 0); got != italic {
		t.Errorf("MetadataAt(0) = %v, want italic", got)
	}
	if got := metaAt(t, f, 1); got != style.Default() {
		t.Errorf("MetadataAt(1) = %v, want default", got)
	}
}

func TestFragment_MetadataAtSparse(t *testing.T) {
	txt := NewFromString("0123456789")
	f := txt.Fragments()[0]
	if err := f.SetMetadata(0, 4, bold); err != nil {
		t.Fatal(err)
	}
	if err := f.SetMetadata(4, 10, italic); err != nil {
		t.Fatal(err)
	}

	if got := metaAt(t, f, 2); got != bold {
		t.Errorf("MetadataAt(2) = %v, want bold", got)
	}
	if got := metaAt(t, f, 7); got != italic {
		t.Errorf("MetadataAt(7) = %v, want italic", got)
	}
}

func TestFragment_InsertIntoEmptyUsesDefaultStyle(t *testing.T) {
	txt := New(WithDefaultStyle(italic))
	f := txt.Fragments()[0]

	if _, err := f.MetadataAt(0); !errors.Is(err, ErrNotFound) {
		t.Errorf("MetadataAt(0) on empty error = %v, want ErrNotFound", err)
	}

	if err := f.Insert(0, "hi"); err != nil {
		t.Fatal(err)
	}
	if got := metaAt(t, f, 0); got != italic {
		t.Errorf("MetadataAt(0) = %v, want italic", got)
	}
}

func TestFragment_NoOpEditDoesNotNotify(t *testing.T) {
	txt := NewFromString("abc")
	f := txt.Fragments()[0]
	calls := 0
	sub := txt.Subscribe(func(Change) { calls++ })
	defer sub.Unsubscribe()

	mustEdit(t, f, Edit{Offset: 1})
	if calls != 0 {
		t.Errorf("observer calls = %d, want 0", calls)
	}
}

func TestEdit_String(t *testing.T) {
	tests := []struct {
		edit Edit
		want string
	}{
		{NewInsert(1, "x"), `Insert(1, "x")`},
		{NewErase(1, 2), "Erase(1, 2)"},
		{NewReplace(1, 2, "y"), `Replace(1, 2, "y")`},
	}
	for _, tt := range tests {
		if got := tt.edit.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestText_ApplyEditRejectsForeignFragment(t *testing.T) {
	a := NewFromString("a")
	b := NewFromString("b")

	if err := a.ApplyEdit(b.Fragments()[0], NewInsert(0, "x")); !errors.Is(err, ErrUnknownFragment) {
		t.Errorf("foreign fragment error = %v, want ErrUnknownFragment", err)
	}
	if err := a.ApplyEdit(nil, NewInsert(0, "x")); !errors.Is(err, ErrUnknownFragment) {
		t.Errorf("nil fragment error = %v, want ErrUnknownFragment", err)
	}
	if got := a.String(); got != "a" {
		t.Errorf("text = %q, want unchanged", got)
	}
}
