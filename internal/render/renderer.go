package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/engine/visibility"
)

// Renderer draws layouts onto a tcell screen.
type Renderer struct {
	mu     sync.Mutex
	screen tcell.Screen
	base   style.Style
}

// NewRenderer creates a renderer for screen. Cells whose style is the zero
// value are drawn with base.
func NewRenderer(screen tcell.Screen, base style.Style) *Renderer {
	return &Renderer{screen: screen, base: base}
}

// Screen returns the underlying screen.
func (r *Renderer) Screen() tcell.Screen {
	return r.screen
}

// Draw clears the screen and paints the part of l inside view at the
// screen's top-left corner.
func (r *Renderer) Draw(l *Layout, view visibility.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.screen.Clear()
	rows := l.Rows()
	for sy := 0; sy < view.Height; sy++ {
		y := view.Y + sy
		if y < 0 || y >= len(rows) {
			continue
		}
		for _, c := range rows[y].Cells {
			sx := c.Col - view.X
			if sx < 0 || sx+c.Width > view.Width {
				continue
			}
			st := c.Style
			if st == (style.Style{}) {
				st = r.base
			}
			r.screen.SetContent(sx, sy, c.Rune, c.Comb, convertStyle(st))
		}
	}
}

// ShowCursor places the terminal cursor on rect, translated into view.
// It hides the cursor and returns false when rect is outside view.
func (r *Renderer) ShowCursor(rect, view visibility.Rect) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, y := rect.X-view.X, rect.Y-view.Y
	if x < 0 || y < 0 || x >= view.Width || y >= view.Height {
		r.screen.HideCursor()
		return false
	}
	r.screen.ShowCursor(x, y)
	return true
}

// Show flushes pending changes to the terminal.
func (r *Renderer) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screen.Show()
}

// CellAt reads back the rune and style drawn at (x, y).
func (r *Renderer) CellAt(x, y int) (rune, style.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mainc, _, st, _ := r.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return mainc, convertTcellStyle(st)
}

// convertStyle converts a text style to tcell.Style.
func convertStyle(s style.Style) tcell.Style {
	ts := tcell.StyleDefault.
		Foreground(convertColor(s.Foreground)).
		Background(convertColor(s.Background))

	for _, m := range attrMap {
		if s.Attributes.Has(m.attr) {
			ts = m.set(ts)
		}
	}
	return ts
}

func convertColor(c style.Color) tcell.Color {
	switch {
	case c.IsDefault():
		return tcell.ColorDefault
	case c.Indexed:
		return tcell.PaletteColor(int(c.R))
	default:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
}

var attrMap = []struct {
	attr style.Attribute
	mask tcell.AttrMask
	set  func(tcell.Style) tcell.Style
}{
	{style.AttrBold, tcell.AttrBold, func(s tcell.Style) tcell.Style { return s.Bold(true) }},
	{style.AttrDim, tcell.AttrDim, func(s tcell.Style) tcell.Style { return s.Dim(true) }},
	{style.AttrItalic, tcell.AttrItalic, func(s tcell.Style) tcell.Style { return s.Italic(true) }},
	{style.AttrUnderline, tcell.AttrUnderline, func(s tcell.Style) tcell.Style { return s.Underline(true) }},
	{style.AttrBlink, tcell.AttrBlink, func(s tcell.Style) tcell.Style { return s.Blink(true) }},
	{style.AttrReverse, tcell.AttrReverse, func(s tcell.Style) tcell.Style { return s.Reverse(true) }},
	{style.AttrStrikethrough, tcell.AttrStrikeThrough, func(s tcell.Style) tcell.Style { return s.StrikeThrough(true) }},
}

// convertTcellStyle converts tcell.Style back to a text style.
func convertTcellStyle(ts tcell.Style) style.Style {
	fg, bg, attrs := ts.Decompose()
	s := style.Style{
		Foreground: convertTcellColor(fg),
		Background: convertTcellColor(bg),
	}
	for _, m := range attrMap {
		if attrs&m.mask != 0 {
			s.Attributes |= m.attr
		}
	}
	return s
}

func convertTcellColor(tc tcell.Color) style.Color {
	if tc == tcell.ColorDefault {
		return style.ColorDefault
	}
	if tc >= tcell.ColorValid && tc < tcell.ColorIsRGB {
		return style.ColorFromIndex(uint8(tc - tcell.ColorValid))
	}
	r, g, b := tc.RGB()
	return style.ColorFromRGB(uint8(r), uint8(g), uint8(b))
}
