package richtext

import (
	"github.com/rs/zerolog"

	"github.com/dshills/richtext/internal/engine/style"
)

// Option is a functional option for configuring a Text.
type Option func(*Text)

// WithLogger sets the logger used for structural changes (split, merge,
// removal, teardown). The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Text) {
		t.logger = logger
	}
}

// WithDefaultStyle sets the style given to text inserted into an empty
// fragment without explicit metadata.
func WithDefaultStyle(s style.Style) Option {
	return func(t *Text) {
		t.defaultStyle = s
	}
}
