package richtext

import (
	"fmt"

	"github.com/dshills/richtext/internal/engine/style"
)

// Edit describes a change to one fragment: erase Erase characters at Offset,
// then insert Insert at Offset.
type Edit struct {
	Offset int
	Erase  int
	Insert string

	// Meta styles the inserted text. Nil inherits the style of the replaced
	// text, or of the character before Offset.
	Meta *style.Style
}

// NewInsert creates an Edit that inserts text at offset.
func NewInsert(offset int, text string) Edit {
	return Edit{Offset: offset, Insert: text}
}

// NewErase creates an Edit that erases count characters at offset.
func NewErase(offset, count int) Edit {
	return Edit{Offset: offset, Erase: count}
}

// NewReplace creates an Edit that replaces count characters at offset.
func NewReplace(offset, count int, text string) Edit {
	return Edit{Offset: offset, Erase: count, Insert: text}
}

// WithMeta returns a copy of the edit whose inserted text uses meta.
func (e Edit) WithMeta(meta style.Style) Edit {
	e.Meta = &meta
	return e
}

// IsNoOp returns true if the edit changes nothing.
func (e Edit) IsNoOp() bool {
	return e.Erase == 0 && e.Insert == ""
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	switch {
	case e.Erase == 0:
		return fmt.Sprintf("Insert(%d, %q)", e.Offset, e.Insert)
	case e.Insert == "":
		return fmt.Sprintf("Erase(%d, %d)", e.Offset, e.Erase)
	default:
		return fmt.Sprintf("Replace(%d, %d, %q)", e.Offset, e.Erase, e.Insert)
	}
}
