package textrun

import (
	"fmt"
	"sort"

	"github.com/dshills/richtext/internal/engine/style"
)

// Entry is a metadata change point: Meta applies from Offset up to the next
// entry (or the end of the run).
type Entry struct {
	Offset int
	Meta   style.Style
}

// Span is a maximal range [Start, End) sharing one style.
type Span struct {
	Start int
	End   int
	Meta  style.Style
}

// TextRun is a rune sequence with sparse per-offset style metadata.
type TextRun struct {
	text    []rune
	entries []Entry
}

// New creates a run holding text, styled entirely with meta.
func New(text string, meta style.Style) *TextRun {
	r := &TextRun{text: []rune(text)}
	if len(r.text) > 0 {
		r.entries = []Entry{{Offset: 0, Meta: meta}}
	}
	return r
}

// NewWithEntries creates a run from text and an offset-to-style map.
// A non-empty run requires an entry at offset 0; entries must lie within
// [0, length).
func NewWithEntries(text string, entries map[int]style.Style) (*TextRun, error) {
	r := &TextRun{text: []rune(text)}
	if len(r.text) == 0 {
		if len(entries) > 0 {
			return nil, fmt.Errorf("entries for empty run: %w", ErrOffsetOutOfRange)
		}
		return r, nil
	}
	if _, ok := entries[0]; !ok {
		return nil, ErrMissingLeadingEntry
	}
	for off, meta := range entries {
		if off < 0 || off >= len(r.text) {
			return nil, fmt.Errorf("entry at %d: %w", off, ErrOffsetOutOfRange)
		}
		r.entries = append(r.entries, Entry{Offset: off, Meta: meta})
	}
	sort.Slice(r.entries, func(i, j int) bool {
		return r.entries[i].Offset < r.entries[j].Offset
	})
	r.coalesce()
	return r, nil
}

// Len returns the length of the run in runes.
func (r *TextRun) Len() int {
	return len(r.text)
}

// IsEmpty returns true if the run holds no characters.
func (r *TextRun) IsEmpty() bool {
	return len(r.text) == 0
}

// Text returns the run's content.
func (r *TextRun) Text() string {
	return string(r.text)
}

// Slice returns the text in [start, end).
func (r *TextRun) Slice(start, end int) (string, error) {
	if start < 0 || start > end || end > len(r.text) {
		return "", ErrOffsetOutOfRange
	}
	return string(r.text[start:end]), nil
}

// RuneAt returns the rune at offset.
func (r *TextRun) RuneAt(offset int) (rune, error) {
	if offset < 0 || offset >= len(r.text) {
		return 0, ErrOffsetOutOfRange
	}
	return r.text[offset], nil
}

// Entries returns a copy of the metadata entries.
func (r *TextRun) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Spans returns the run split into maximal equally-styled ranges.
func (r *TextRun) Spans() []Span {
	spans := make([]Span, 0, len(r.entries))
	for i, e := range r.entries {
		end := len(r.text)
		if i+1 < len(r.entries) {
			end = r.entries[i+1].Offset
		}
		spans = append(spans, Span{Start: e.Offset, End: end, Meta: e.Meta})
	}
	return spans
}

// MetadataAt returns the style in effect at offset: the last entry whose
// offset is at or before it. Offsets past the end resolve to the last entry.
func (r *TextRun) MetadataAt(offset int) (style.Style, error) {
	if len(r.entries) == 0 {
		return style.Style{}, ErrNotFound
	}
	if offset < 0 {
		return style.Style{}, ErrOffsetOutOfRange
	}
	return r.entries[r.entryIndex(offset)].Meta, nil
}

// entryIndex returns the index of the entry governing offset.
// Requires a non-empty entry list and offset >= 0.
func (r *TextRun) entryIndex(offset int) int {
	i := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].Offset > offset
	})
	return i - 1
}

// Insert inserts text at offset styled with meta. Entries at or after offset
// shift right by the inserted length; the character previously at offset
// keeps its style.
func (r *TextRun) Insert(offset int, text string, meta style.Style) error {
	if offset < 0 || offset > len(r.text) {
		return ErrOffsetOutOfRange
	}
	ins := []rune(text)
	n := len(ins)
	if n == 0 {
		return nil
	}

	var tail style.Style
	hasTail := offset < len(r.text)
	if hasTail {
		tail = r.entries[r.entryIndex(offset)].Meta
	}

	entries := make([]Entry, 0, len(r.entries)+2)
	for _, e := range r.entries {
		if e.Offset < offset {
			entries = append(entries, e)
		}
	}
	entries = append(entries, Entry{Offset: offset, Meta: meta})
	shiftedAtEnd := false
	for _, e := range r.entries {
		if e.Offset >= offset {
			if e.Offset == offset {
				shiftedAtEnd = true
			}
			entries = append(entries, Entry{Offset: e.Offset + n, Meta: e.Meta})
		}
	}
	if hasTail && !shiftedAtEnd {
		// The following character inherited its style from an earlier entry;
		// pin it so the inserted style does not leak into it.
		entries = insertEntry(entries, Entry{Offset: offset + n, Meta: tail})
	}

	buf := make([]rune, 0, len(r.text)+n)
	buf = append(buf, r.text[:offset]...)
	buf = append(buf, ins...)
	buf = append(buf, r.text[offset:]...)

	r.text = buf
	r.entries = entries
	r.coalesce()
	return nil
}

// Erase removes count characters at offset. Entries inside the erased range
// are discarded and entries after it shift left; the character following the
// erased range keeps its style.
func (r *TextRun) Erase(offset, count int) error {
	if offset < 0 || count < 0 || offset+count > len(r.text) {
		return ErrOffsetOutOfRange
	}
	if count == 0 {
		return nil
	}
	end := offset + count

	var tail style.Style
	hasTail := end < len(r.text)
	if hasTail {
		tail = r.entries[r.entryIndex(end)].Meta
	}

	entries := make([]Entry, 0, len(r.entries)+1)
	for _, e := range r.entries {
		if e.Offset < offset {
			entries = append(entries, e)
		}
	}
	if hasTail {
		entries = append(entries, Entry{Offset: offset, Meta: tail})
	}
	for _, e := range r.entries {
		if e.Offset > end {
			entries = append(entries, Entry{Offset: e.Offset - count, Meta: e.Meta})
		}
	}

	r.text = append(r.text[:offset:offset], r.text[end:]...)
	if len(r.text) == 0 {
		entries = nil
	}
	r.entries = entries
	r.coalesce()
	return nil
}

// SetMetadata applies meta to [start, end) without changing the text.
func (r *TextRun) SetMetadata(start, end int, meta style.Style) error {
	if start < 0 || start > end || end > len(r.text) {
		return ErrOffsetOutOfRange
	}
	if start == end {
		return nil
	}

	var tail style.Style
	hasTail := end < len(r.text)
	if hasTail {
		tail = r.entries[r.entryIndex(end)].Meta
	}

	entries := make([]Entry, 0, len(r.entries)+2)
	for _, e := range r.entries {
		if e.Offset < start {
			entries = append(entries, e)
		}
	}
	entries = append(entries, Entry{Offset: start, Meta: meta})
	if hasTail {
		entries = append(entries, Entry{Offset: end, Meta: tail})
	}
	for _, e := range r.entries {
		if e.Offset > end {
			entries = append(entries, e)
		}
	}

	r.entries = entries
	r.coalesce()
	return nil
}

// Split truncates the run at k and returns a new run holding the text that
// followed k, with its metadata rebased to offset 0.
func (r *TextRun) Split(k int) (*TextRun, error) {
	if k < 0 || k > len(r.text) {
		return nil, ErrOffsetOutOfRange
	}

	right := &TextRun{text: append([]rune(nil), r.text[k:]...)}
	if len(right.text) > 0 {
		right.entries = append(right.entries, Entry{Offset: 0, Meta: r.entries[r.entryIndex(k)].Meta})
		for _, e := range r.entries {
			if e.Offset > k {
				right.entries = append(right.entries, Entry{Offset: e.Offset - k, Meta: e.Meta})
			}
		}
	}

	left := r.entries[:0:0]
	for _, e := range r.entries {
		if e.Offset < k {
			left = append(left, e)
		}
	}
	r.text = r.text[:k:k]
	r.entries = left
	return right, nil
}

// Append concatenates other onto the end of r. other is left unchanged.
func (r *TextRun) Append(other *TextRun) {
	base := len(r.text)
	r.text = append(r.text, other.text...)
	for _, e := range other.entries {
		r.entries = append(r.entries, Entry{Offset: e.Offset + base, Meta: e.Meta})
	}
	r.coalesce()
}

// Clone returns an independent copy of the run.
func (r *TextRun) Clone() *TextRun {
	return &TextRun{
		text:    append([]rune(nil), r.text...),
		entries: r.Entries(),
	}
}

// coalesce drops entries that repeat the previous entry's style.
func (r *TextRun) coalesce() {
	if len(r.entries) < 2 {
		return
	}
	out := r.entries[:1]
	for _, e := range r.entries[1:] {
		if e.Meta == out[len(out)-1].Meta {
			continue
		}
		out = append(out, e)
	}
	r.entries = out
}

// insertEntry inserts e into a sorted entry list.
func insertEntry(entries []Entry, e Entry) []Entry {
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].Offset >= e.Offset
	})
	entries = append(entries, Entry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = e
	return entries
}
