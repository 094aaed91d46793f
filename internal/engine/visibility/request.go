package visibility

import (
	"fmt"

	"github.com/dshills/richtext/internal/engine/richtext"
)

// Rect is a rectangle in cell coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// String returns a human-readable representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Request asks the enclosing scrollable containers to show Rect. When Entire
// is false, showing part of the rectangle's neighbourhood is enough.
type Request struct {
	Rect   Rect
	Entire bool
}

// Locator maps a cursor position to the rectangle it occupies on screen.
type Locator interface {
	Locate(pos richtext.Position) (Rect, error)
}

// ForCursor builds the request for a cursor owner's current location.
// The position is read under the text's lock; the locator runs after it is
// released.
func ForCursor(owner *richtext.CursorOwner, loc Locator) (Request, error) {
	pos, err := owner.Position()
	if err != nil {
		return Request{}, fmt.Errorf("cursor position: %w", err)
	}
	rect, err := loc.Locate(pos)
	if err != nil {
		return Request{}, fmt.Errorf("locate %s: %w", pos, err)
	}
	return Request{Rect: rect, Entire: false}, nil
}

// ForElement builds the request issued by an element receiving focus.
func ForElement(bounds Rect) Request {
	return Request{Rect: bounds, Entire: true}
}
