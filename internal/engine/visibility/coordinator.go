package visibility

// Coordinator walks a chain of peepholes from the innermost outwards,
// scrolling each so the requested rectangle becomes visible.
type Coordinator struct {
	chain []*Peephole
}

// NewCoordinator creates a coordinator for the given chain, innermost first.
func NewCoordinator(chain ...*Peephole) *Coordinator {
	return &Coordinator{chain: chain}
}

// Ensure applies req to every peephole in the chain. The rectangle is
// translated into each parent's coordinates after the inner peephole
// scrolls. It returns true if any peephole scrolled.
func (c *Coordinator) Ensure(req Request) bool {
	scrolled := false
	for _, p := range c.chain {
		if p.Ensure(req) {
			scrolled = true
		}
		req.Rect = p.ToParent(req.Rect)
	}
	return scrolled
}
