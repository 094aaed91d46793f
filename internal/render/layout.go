package render

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/richtext/internal/engine/richtext"
	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/engine/visibility"
)

// Cell is one screen cell produced by layout.
type Cell struct {
	Rune   rune
	Comb   []rune // Zero-width runes drawn on top of Rune
	Width  int    // 1 or 2 for wide characters
	Col    int
	Offset int // Rune offset in the fragment
	Style  style.Style
}

// Row is one visual row. A fragment occupies one or more rows.
type Row struct {
	Fragment int
	Cells    []Cell
}

// Width returns the number of columns the row's cells occupy.
func (r Row) Width() int {
	if len(r.Cells) == 0 {
		return 0
	}
	last := r.Cells[len(r.Cells)-1]
	return last.Col + last.Width
}

type point struct {
	row, col, width int
}

type fragLayout struct {
	firstRow int
	// pos[i] is where a cursor at offset i is drawn; len(pos) == len(text)+1.
	pos []point
}

// Layout is the wrapped visual form of a snapshot.
type Layout struct {
	wrap  int
	rows  []Row
	frags []fragLayout
	index map[uuid.UUID]int
}

// NewLayout wraps every fragment of snap at wrap columns. A wrap of zero or
// less disables wrapping.
func NewLayout(snap richtext.Snapshot, wrap int) *Layout {
	l := &Layout{
		wrap:  wrap,
		frags: make([]fragLayout, len(snap.Fragments)),
		index: make(map[uuid.UUID]int, len(snap.Fragments)),
	}
	for i, fs := range snap.Fragments {
		l.index[fs.ID] = i
		l.layoutFragment(i, fs)
	}
	return l
}

func (l *Layout) layoutFragment(fi int, fs richtext.FragmentSnapshot) {
	text := []rune(fs.Text)
	styles := make([]style.Style, len(text))
	for _, sp := range fs.Spans {
		for off := sp.Start; off < sp.End && off < len(text); off++ {
			styles[off] = sp.Meta
		}
	}

	fl := fragLayout{firstRow: len(l.rows), pos: make([]point, len(text)+1)}
	row := Row{Fragment: fi}
	rowIdx, col := fl.firstRow, 0

	for off, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 && len(row.Cells) > 0 {
			last := &row.Cells[len(row.Cells)-1]
			last.Comb = append(last.Comb, r)
			fl.pos[off] = point{row: rowIdx, col: col, width: 1}
			continue
		}
		if w == 0 {
			w = 1
		}
		if l.wrap > 0 && col > 0 && col+w > l.wrap {
			l.rows = append(l.rows, row)
			row = Row{Fragment: fi}
			rowIdx++
			col = 0
		}
		fl.pos[off] = point{row: rowIdx, col: col, width: w}
		row.Cells = append(row.Cells, Cell{
			Rune:   r,
			Width:  w,
			Col:    col,
			Offset: off,
			Style:  styles[off],
		})
		col += w
	}
	fl.pos[len(text)] = point{row: rowIdx, col: col, width: 1}
	l.rows = append(l.rows, row)
	l.frags[fi] = fl
}

// Rows returns the visual rows.
func (l *Layout) Rows() []Row {
	return l.rows
}

// Height returns the number of visual rows.
func (l *Layout) Height() int {
	return len(l.rows)
}

// Width returns the widest row, or the wrap width when wrapping is enabled.
func (l *Layout) Width() int {
	if l.wrap > 0 {
		return l.wrap
	}
	w := 0
	for _, r := range l.rows {
		w = max(w, r.Width())
	}
	return w
}

// FragmentRows returns the first row and row count of fragment i.
func (l *Layout) FragmentRows(i int) (first, count int) {
	if i < 0 || i >= len(l.frags) {
		return 0, 0
	}
	first = l.frags[i].firstRow
	end := len(l.rows)
	if i+1 < len(l.frags) {
		end = l.frags[i+1].firstRow
	}
	return first, end - first
}

// Locate implements visibility.Locator.
func (l *Layout) Locate(pos richtext.Position) (visibility.Rect, error) {
	if pos.Fragment == nil {
		return visibility.Rect{}, ErrNotVisible
	}
	return l.LocateOffset(pos.Fragment.ID(), pos.Offset)
}

// LocateOffset returns the rectangle of offset in the fragment with id.
func (l *Layout) LocateOffset(id uuid.UUID, offset int) (visibility.Rect, error) {
	fi, ok := l.index[id]
	if !ok {
		return visibility.Rect{}, fmt.Errorf("fragment %s: %w", id, ErrNotVisible)
	}
	fl := l.frags[fi]
	if offset < 0 || offset >= len(fl.pos) {
		return visibility.Rect{}, fmt.Errorf("offset %d: %w", offset, ErrNotVisible)
	}
	p := fl.pos[offset]
	return visibility.Rect{X: p.col, Y: p.row, Width: p.width, Height: 1}, nil
}
