package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/richtext/internal/engine/richtext"
	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/engine/visibility"
	"github.com/dshills/richtext/internal/logging"
)

// Environment variables that override file settings.
const (
	EnvLogLevel  = "RICHTEXT_LOG_LEVEL"
	EnvLogFormat = "RICHTEXT_LOG_FORMAT"
	EnvWrapWidth = "RICHTEXT_WRAP_WIDTH"
)

// Config is the complete configuration.
type Config struct {
	Text     TextConfig             `toml:"text"`
	Styles   map[string]StyleConfig `toml:"styles"`
	Peephole PeepholeConfig         `toml:"peephole"`
	Log      LogConfig              `toml:"log"`
}

// TextConfig controls layout and new cursors.
type TextConfig struct {
	WrapWidth     int    `toml:"wrap_width"`
	DefaultPolicy string `toml:"default_policy"`
	DefaultStyle  string `toml:"default_style"`
}

// StyleConfig is one named entry of the stylesheet.
type StyleConfig struct {
	Fg    string   `toml:"fg"`
	Bg    string   `toml:"bg"`
	Attrs []string `toml:"attrs"`
}

// PeepholeConfig holds scroll margins.
type PeepholeConfig struct {
	MarginTop    int `toml:"margin_top"`
	MarginBottom int `toml:"margin_bottom"`
	MarginLeft   int `toml:"margin_left"`
	MarginRight  int `toml:"margin_right"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	m := visibility.DefaultMargins()
	return &Config{
		Text: TextConfig{
			WrapWidth:     80,
			DefaultPolicy: richtext.PolicyBefore.String(),
		},
		Styles: map[string]StyleConfig{},
		Peephole: PeepholeConfig{
			MarginTop:    m.Top,
			MarginBottom: m.Bottom,
			MarginLeft:   m.Left,
			MarginRight:  m.Right,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes TOML data on top of the defaults and validates the result.
// Unknown keys are rejected. source names the data in errors.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, newParseError(source, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, nil
}

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var derr *toml.DecodeError
	var serr *toml.StrictMissingError
	switch {
	case errors.As(err, &derr):
		pe.Line, pe.Column = derr.Position()
	case errors.As(err, &serr):
		if len(serr.Errors) > 0 {
			first := serr.Errors[0]
			pe.Line, pe.Column = first.Position()
			pe.Message = fmt.Sprintf("unknown key %q", strings.Join(first.Key(), "."))
		}
	}
	return pe
}

// ApplyEnv applies environment overrides. lookup is normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvWrapWidth); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvWrapWidth, v, ErrInvalidValue)
		}
		c.Text.WrapWidth = n
	}
	return c.Validate()
}

// Validate checks every setting that can be checked without I/O.
func (c *Config) Validate() error {
	if c.Text.WrapWidth < 0 {
		return fmt.Errorf("text.wrap_width %d: %w", c.Text.WrapWidth, ErrInvalidValue)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := c.Stylesheet(); err != nil {
		return err
	}
	if _, err := c.DefaultStyle(); err != nil {
		return err
	}
	if _, err := c.Logging(); err != nil {
		return err
	}
	p := c.Peephole
	if p.MarginTop < 0 || p.MarginBottom < 0 || p.MarginLeft < 0 || p.MarginRight < 0 {
		return fmt.Errorf("peephole margins must not be negative: %w", ErrInvalidValue)
	}
	return nil
}

// Policy returns the policy for new cursors.
func (c *Config) Policy() (richtext.Policy, error) {
	p, err := richtext.ParsePolicy(c.Text.DefaultPolicy)
	if err != nil {
		return p, fmt.Errorf("text.default_policy: %w", err)
	}
	return p, nil
}

// Stylesheet resolves the [styles] table.
func (c *Config) Stylesheet() (Stylesheet, error) {
	sheet := make(Stylesheet, len(c.Styles))
	for name, sc := range c.Styles {
		s, err := sc.Resolve()
		if err != nil {
			return nil, fmt.Errorf("styles.%s: %w", name, err)
		}
		sheet[name] = s
	}
	return sheet, nil
}

// DefaultStyle returns the style named by text.default_style, or the
// terminal default when none is named.
func (c *Config) DefaultStyle() (style.Style, error) {
	if c.Text.DefaultStyle == "" {
		return style.Default(), nil
	}
	sc, ok := c.Styles[c.Text.DefaultStyle]
	if !ok {
		return style.Style{}, fmt.Errorf("text.default_style %q: %w", c.Text.DefaultStyle, ErrUnknownStyle)
	}
	return sc.Resolve()
}

// Margins returns the peephole margins.
func (c *Config) Margins() visibility.MarginConfig {
	return visibility.MarginConfig{
		Top:    c.Peephole.MarginTop,
		Bottom: c.Peephole.MarginBottom,
		Left:   c.Peephole.MarginLeft,
		Right:  c.Peephole.MarginRight,
	}
}

// Logging returns the logger configuration.
func (c *Config) Logging() (logging.Config, error) {
	cfg := logging.DefaultConfig()
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return cfg, fmt.Errorf("log.level: %w", err)
	}
	format, err := logging.ParseFormat(c.Log.Format)
	if err != nil {
		return cfg, fmt.Errorf("log.format: %w", err)
	}
	cfg.Level = level
	cfg.Format = format
	return cfg, nil
}

// Resolve parses the entry into a style. Empty colours mean the default.
func (sc StyleConfig) Resolve() (style.Style, error) {
	fg, err := style.ParseColor(sc.Fg)
	if err != nil {
		return style.Style{}, fmt.Errorf("fg: %w", err)
	}
	bg, err := style.ParseColor(sc.Bg)
	if err != nil {
		return style.Style{}, fmt.Errorf("bg: %w", err)
	}
	attrs, err := style.ParseAttributes(sc.Attrs)
	if err != nil {
		return style.Style{}, fmt.Errorf("attrs: %w", err)
	}
	return style.Style{Foreground: fg, Background: bg, Attributes: attrs}, nil
}

// Stylesheet maps style names to resolved styles.
type Stylesheet map[string]style.Style

// Lookup returns the named style.
func (s Stylesheet) Lookup(name string) (style.Style, error) {
	st, ok := s[name]
	if !ok {
		return style.Style{}, fmt.Errorf("%q: %w", name, ErrUnknownStyle)
	}
	return st, nil
}

// Names returns the style names in sorted order.
func (s Stylesheet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
