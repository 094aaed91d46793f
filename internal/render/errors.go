package render

import "errors"

// ErrNotVisible is returned when a position is not part of the layout.
var ErrNotVisible = errors.New("position not in layout")
