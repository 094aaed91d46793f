package richtext

import (
	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/engine/textrun"
)

// Guard holds the text's read lock. Values obtained through it are only
// consistent until Release; edits cannot run while a guard is held.
type Guard struct {
	t        *Text
	released bool
}

// Read acquires the read lock and returns a Guard. Callers must Release it.
//
//	g := txt.Read()
//	defer g.Release()
//	pos, err := g.Position(cursor)
func (t *Text) Read() *Guard {
	t.mu.RLock()
	return &Guard{t: t}
}

// Release drops the read lock. Further calls are no-ops.
func (g *Guard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.t.mu.RUnlock()
}

// Position returns the fragment and offset o currently targets.
func (g *Guard) Position(o *CursorOwner) (Position, error) {
	if g.released {
		return Position{}, ErrGuardReleased
	}
	if o.text != g.t {
		return Position{}, ErrUnknownFragment
	}
	if err := o.checkLocked(); err != nil {
		return Position{}, err
	}
	return Position{
		Fragment: o.loc.frag,
		Index:    g.t.indexLocked(o.loc.frag),
		Offset:   o.loc.offset,
		Policy:   o.loc.policy,
	}, nil
}

// Fragments returns the fragments in order.
func (g *Guard) Fragments() ([]*Fragment, error) {
	if g.released {
		return nil, ErrGuardReleased
	}
	out := make([]*Fragment, len(g.t.fragments))
	copy(out, g.t.fragments)
	return out, nil
}

// Text returns f's text.
func (g *Guard) Text(f *Fragment) (string, error) {
	if err := g.check(f); err != nil {
		return "", err
	}
	return f.run.Text(), nil
}

// Len returns f's length in runes.
func (g *Guard) Len(f *Fragment) (int, error) {
	if err := g.check(f); err != nil {
		return 0, err
	}
	return f.run.Len(), nil
}

// MetadataAt returns the style in effect at offset in f.
func (g *Guard) MetadataAt(f *Fragment, offset int) (style.Style, error) {
	if err := g.check(f); err != nil {
		return style.Style{}, err
	}
	return f.run.MetadataAt(offset)
}

// Spans returns f's style spans.
func (g *Guard) Spans(f *Fragment) ([]textrun.Span, error) {
	if err := g.check(f); err != nil {
		return nil, err
	}
	return f.run.Spans(), nil
}

func (g *Guard) check(f *Fragment) error {
	if g.released {
		return ErrGuardReleased
	}
	return g.t.checkFragmentLocked(f)
}
