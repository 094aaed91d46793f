package visibility

import "sync"

// MarginConfig holds scroll margin configuration.
type MarginConfig struct {
	Top    int // Rows to keep above a cursor
	Bottom int // Rows to keep below a cursor
	Left   int // Columns to keep left of a cursor
	Right  int // Columns to keep right of a cursor
}

// DefaultMargins returns sensible default margins.
func DefaultMargins() MarginConfig {
	return MarginConfig{Top: 2, Bottom: 2, Left: 5, Right: 5}
}

// NoMargins returns zero margins (cursor can go to edge).
func NoMargins() MarginConfig {
	return MarginConfig{}
}

// maxMarginRatio limits margins to 1/3 of the peephole dimension so there is
// always usable space in the center.
const maxMarginRatio = 3

// Peephole is a scrollable viewport onto content of a given size. Origin is
// where the peephole sits inside its parent's content.
type Peephole struct {
	mu sync.RWMutex

	originX, originY int
	width, height    int

	// Scroll position: the content coordinate shown at the top-left.
	left, top int

	contentWidth, contentHeight int

	margins MarginConfig
}

// NewPeephole creates a peephole of the given size.
// Width and height are clamped to a minimum of 1.
func NewPeephole(width, height int) *Peephole {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Peephole{
		width:   width,
		height:  height,
		margins: DefaultMargins(),
	}
}

// SetOrigin places the peephole inside its parent's content.
func (p *Peephole) SetOrigin(x, y int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.originX, p.originY = x, y
}

// SetMargins sets the scroll margins used for cursor requests.
func (p *Peephole) SetMargins(m MarginConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.margins = m
}

// SetContentSize bounds scrolling. Zero means unbounded.
func (p *Peephole) SetContentSize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contentWidth, p.contentHeight = width, height
	p.left, p.top = p.clampLeft(p.left), p.clampTop(p.top)
}

// Resize updates the peephole size.
func (p *Peephole) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	p.width, p.height = width, height
	p.left, p.top = p.clampLeft(p.left), p.clampTop(p.top)
}

// Size returns the peephole size.
func (p *Peephole) Size() (width, height int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.width, p.height
}

// Scroll returns the content coordinate shown at the top-left corner.
func (p *Peephole) Scroll() (left, top int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.left, p.top
}

// ScrollTo sets the scroll position, clamped to the content size.
func (p *Peephole) ScrollTo(left, top int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.left, p.top = p.clampLeft(left), p.clampTop(top)
}

// Visible returns the content rectangle currently shown.
func (p *Peephole) Visible() Rect {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Rect{X: p.left, Y: p.top, Width: p.width, Height: p.height}
}

// Ensure scrolls minimally so the request's rectangle is shown. It returns
// true if the scroll position changed.
func (p *Peephole) Ensure(req Request) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := NoMargins()
	if !req.Entire {
		m = p.effectiveMargins()
	}
	left := reveal(p.left, p.width, req.Rect.X, req.Rect.Width, m.Left, m.Right)
	top := reveal(p.top, p.height, req.Rect.Y, req.Rect.Height, m.Top, m.Bottom)
	left, top = p.clampLeft(left), p.clampTop(top)

	changed := left != p.left || top != p.top
	p.left, p.top = left, top
	return changed
}

// ToParent converts a rectangle in this peephole's content coordinates to
// its parent's content coordinates.
func (p *Peephole) ToParent(r Rect) Rect {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return r.Translate(p.originX-p.left, p.originY-p.top)
}

// reveal computes a new scroll position along one axis so [pos, pos+size)
// plus the margins is inside [scroll, scroll+extent). When it cannot fit,
// the start of the range wins.
func reveal(scroll, extent, pos, size, marginBefore, marginAfter int) int {
	if size < 1 {
		size = 1
	}
	start := pos - marginBefore
	end := pos + size + marginAfter
	if end-start > extent {
		return pos
	}
	if start < scroll {
		return start
	}
	if end > scroll+extent {
		return end - extent
	}
	return scroll
}

// effectiveMargins returns margins clamped to the peephole size (no lock).
func (p *Peephole) effectiveMargins() MarginConfig {
	m := p.margins
	maxV := p.height / maxMarginRatio
	maxH := p.width / maxMarginRatio
	m.Top = min(m.Top, maxV)
	m.Bottom = min(m.Bottom, maxV)
	m.Left = min(m.Left, maxH)
	m.Right = min(m.Right, maxH)
	return m
}

func (p *Peephole) clampLeft(left int) int {
	if p.contentWidth > 0 && left > p.contentWidth-p.width {
		left = p.contentWidth - p.width
	}
	return max(left, 0)
}

func (p *Peephole) clampTop(top int) int {
	if p.contentHeight > 0 && top > p.contentHeight-p.height {
		top = p.contentHeight - p.height
	}
	return max(top, 0)
}
