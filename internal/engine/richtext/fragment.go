package richtext

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/engine/textrun"
)

// Fragment is a contiguous run of styled text plus the set of cursor
// locations that point into it. Fragments are created and owned by a Text.
type Fragment struct {
	id   uuid.UUID
	text *Text
	run  *textrun.TextRun

	// Registered locations. A nil slot is free and listed in free.
	slots []*location
	free  []int
	live  int

	state Lifecycle
}

func newFragment(t *Text, run *textrun.TextRun) *Fragment {
	return &Fragment{
		id:   uuid.New(),
		text: t,
		run:  run,
	}
}

// ID returns the fragment's stable identifier.
func (f *Fragment) ID() uuid.UUID {
	return f.id
}

// Len returns the fragment length in runes.
func (f *Fragment) Len() int {
	f.text.mu.RLock()
	defer f.text.mu.RUnlock()
	return f.run.Len()
}

// String returns the fragment's text.
func (f *Fragment) String() string {
	f.text.mu.RLock()
	defer f.text.mu.RUnlock()
	return f.run.Text()
}

// State returns the fragment's lifecycle state.
func (f *Fragment) State() Lifecycle {
	f.text.mu.RLock()
	defer f.text.mu.RUnlock()
	return f.state
}

// Registered returns the number of locations targeting the fragment.
func (f *Fragment) Registered() int {
	f.text.mu.RLock()
	defer f.text.mu.RUnlock()
	return f.live
}

// MetadataAt returns the style in effect at offset.
func (f *Fragment) MetadataAt(offset int) (style.Style, error) {
	f.text.mu.RLock()
	defer f.text.mu.RUnlock()
	if f.state != Active {
		return style.Style{}, ErrDestroyed
	}
	return f.run.MetadataAt(offset)
}

// ApplyEdit mutates the fragment's text and migrates every registered
// location in one critical section. Out-of-range edits are rejected before
// anything changes.
func (f *Fragment) ApplyEdit(edit Edit) error {
	t := f.text
	t.mu.Lock()
	change, err := f.applyEditLocked(edit)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	if change != nil {
		t.notify(*change)
	}
	return nil
}

// Insert inserts text at offset, inheriting the surrounding style.
func (f *Fragment) Insert(offset int, text string) error {
	return f.ApplyEdit(NewInsert(offset, text))
}

// Erase removes count characters at offset.
func (f *Fragment) Erase(offset, count int) error {
	return f.ApplyEdit(NewErase(offset, count))
}

// SetMetadata restyles [start, end). Locations are unaffected.
func (f *Fragment) SetMetadata(start, end int, meta style.Style) error {
	t := f.text
	t.mu.Lock()
	if f.state != Active {
		t.mu.Unlock()
		return ErrDestroyed
	}
	err := f.run.SetMetadata(start, end, meta)
	idx := t.indexLocked(f)
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("restyle [%d:%d): %w", start, end, err)
	}
	t.notify(Change{Kind: ChangeRestyle, Fragment: f.id, Index: idx, Offset: start, Removed: end - start, Inserted: end - start})
	return nil
}

// applyEditLocked performs ApplyEdit with the text's write lock held.
// A nil change means the edit was a no-op.
func (f *Fragment) applyEditLocked(edit Edit) (*Change, error) {
	if f.state != Active {
		return nil, ErrDestroyed
	}
	n := f.run.Len()
	if edit.Offset < 0 || edit.Erase < 0 || edit.Offset+edit.Erase > n {
		return nil, fmt.Errorf("%s on fragment of length %d: %w", edit, n, ErrOffsetOutOfRange)
	}
	if edit.IsNoOp() {
		return nil, nil
	}

	meta := f.insertMetaLocked(edit)
	if edit.Erase > 0 {
		if err := f.run.Erase(edit.Offset, edit.Erase); err != nil {
			return nil, err
		}
	}
	inserted := utf8.RuneCountInString(edit.Insert)
	if inserted > 0 {
		if err := f.run.Insert(edit.Offset, edit.Insert, meta); err != nil {
			return nil, err
		}
	}

	for _, loc := range f.slots {
		if loc == nil {
			continue
		}
		if edit.Erase > 0 {
			loc.offset = migrateErase(loc.offset, edit.Offset, edit.Erase)
		}
		if inserted > 0 {
			loc.offset = migrateInsert(loc.offset, edit.Offset, inserted, loc.policy)
		}
	}

	return &Change{
		Kind:     ChangeEdit,
		Fragment: f.id,
		Index:    f.text.indexLocked(f),
		Offset:   edit.Offset,
		Removed:  edit.Erase,
		Inserted: inserted,
	}, nil
}

// insertMetaLocked picks the style for inserted text.
func (f *Fragment) insertMetaLocked(edit Edit) style.Style {
	if edit.Meta != nil {
		return *edit.Meta
	}
	probe := edit.Offset
	if edit.Erase == 0 && probe > 0 {
		probe--
	}
	if m, err := f.run.MetadataAt(probe); err == nil {
		return m
	}
	return f.text.defaultStyle
}

// register adds loc to the slot table and points it at f.
func (f *Fragment) register(loc *location) {
	var slot int
	if n := len(f.free); n > 0 {
		slot = f.free[n-1]
		f.free = f.free[:n-1]
		f.slots[slot] = loc
	} else {
		slot = len(f.slots)
		f.slots = append(f.slots, loc)
	}
	loc.frag = f
	loc.slot = slot
	loc.attached = true
	f.live++
}

// deregister removes loc from the slot table. It does nothing once teardown
// has begun.
func (f *Fragment) deregister(loc *location) {
	if f.state != Active {
		return
	}
	if loc.slot < 0 || loc.slot >= len(f.slots) || f.slots[loc.slot] != loc {
		return
	}
	f.slots[loc.slot] = nil
	f.free = append(f.free, loc.slot)
	f.live--
	loc.slot = -1
}

// moveLocation transfers loc from f to dst at offset.
func (f *Fragment) moveLocation(loc *location, dst *Fragment, offset int) {
	f.deregister(loc)
	dst.register(loc)
	loc.offset = offset
}

// beginTeardown marks the fragment as being destroyed.
func (f *Fragment) beginTeardown() bool {
	if f.state != Active {
		return false
	}
	f.state = TearingDown
	return true
}

// finishTeardown detaches remaining locations and empties the slot table.
func (f *Fragment) finishTeardown() int {
	detached := 0
	for _, loc := range f.slots {
		if loc == nil {
			continue
		}
		if loc.attached {
			detached++
		}
		loc.detach()
	}
	f.slots = nil
	f.free = nil
	f.live = 0
	f.state = Destroyed
	return detached
}
