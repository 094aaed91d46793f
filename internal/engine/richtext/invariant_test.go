package richtext

import (
	"errors"
	"math/rand/v2"
	"testing"
)

// Every live cursor must stay within [0, len] of a live fragment of the text
// for any sequence of edits, splits, merges and removals.
func TestCursorsStayInBoundsUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))
	txt := NewFromString("The quick brown fox\njumps over\nthe lazy dog")

	var cursors []*CursorOwner
	defer func() {
		for _, c := range cursors {
			c.Close()
		}
	}()

	randFragment := func() *Fragment {
		frags := txt.Fragments()
		return frags[rng.IntN(len(frags))]
	}

	for step := 0; step < 2000; step++ {
		f := randFragment()
		n := f.Len()
		var err error
		switch op := rng.IntN(9); op {
		case 0, 1:
			var c *CursorOwner
			c, err = txt.NewCursor(f, rng.IntN(n+1), Policy(rng.IntN(2)))
			if err == nil {
				cursors = append(cursors, c)
			}
		case 2, 3:
			err = f.Insert(rng.IntN(n+1), "xyz"[:1+rng.IntN(3)])
		case 4, 5:
			off := rng.IntN(n + 1)
			err = f.Erase(off, rng.IntN(n-off+1))
		case 6:
			_, err = txt.Split(f, rng.IntN(n+1))
		case 7:
			if err = txt.Merge(f); errors.Is(err, ErrNoSuccessor) {
				err = nil
			}
		case 8:
			if len(cursors) > 0 && rng.IntN(2) == 0 {
				i := rng.IntN(len(cursors))
				if rng.IntN(2) == 0 {
					var c *CursorOwner
					c, err = cursors[i].Clone()
					if err == nil {
						cursors = append(cursors, c)
					}
				} else {
					cursors[i].Close()
					cursors = append(cursors[:i], cursors[i+1:]...)
				}
			} else if txt.Count() > 1 {
				err = txt.Remove(f)
			}
		}
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}

		g := txt.Read()
		frags, err := g.Fragments()
		if err != nil {
			g.Release()
			t.Fatalf("step %d: Fragments() error = %v", step, err)
		}
		registered := 0
		for _, fr := range frags {
			registered += fr.live
		}
		for _, c := range cursors {
			pos, err := g.Position(c)
			if err != nil {
				g.Release()
				t.Fatalf("step %d: Position() error = %v", step, err)
			}
			length, err := g.Len(pos.Fragment)
			if err != nil {
				g.Release()
				t.Fatalf("step %d: Len() error = %v", step, err)
			}
			if pos.Index < 0 || pos.Offset < 0 || pos.Offset > length {
				g.Release()
				t.Fatalf("step %d: %v out of bounds (len %d)", step, pos, length)
			}
		}
		g.Release()
		if registered != len(cursors) {
			t.Fatalf("step %d: registered = %d, want %d", step, registered, len(cursors))
		}
	}
}
