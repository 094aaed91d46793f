// Package cli provides the cobra commands of the richtext tool.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/richtext/internal/config"
	"github.com/dshills/richtext/internal/engine/richtext"
	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/logging"
)

// App holds what every command needs: configuration and a logger.
type App struct {
	ConfigPath string
	Config     *config.Config
	Styles     config.Stylesheet
	Policy     richtext.Policy
	Base       style.Style
	Logger     zerolog.Logger

	logLevel string
}

// NewApp loads configuration from path (which may be empty), applies
// environment overrides and an optional log level override, and builds the
// logger writing to logOut.
func NewApp(path, logLevel string, logOut io.Writer) (*App, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	app := &App{ConfigPath: path, logLevel: logLevel}
	if err := app.overrides(cfg); err != nil {
		return nil, err
	}
	if err := app.apply(cfg); err != nil {
		return nil, err
	}
	lc, err := cfg.Logging()
	if err != nil {
		return nil, err
	}
	app.Logger = logging.New(lc, logOut)
	return app, nil
}

// overrides applies the environment and command line on top of a loaded
// configuration. Reloads go through it too.
func (a *App) overrides(cfg *config.Config) error {
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	return nil
}

// apply resolves cfg and installs it. The previous values stay on error.
func (a *App) apply(cfg *config.Config) error {
	sheet, err := cfg.Stylesheet()
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	base, err := cfg.DefaultStyle()
	if err != nil {
		return err
	}
	a.Config, a.Styles, a.Policy, a.Base = cfg, sheet, policy, base
	return nil
}

// NewText builds a text with one fragment per line of content.
func (a *App) NewText(content string) *richtext.Text {
	content = strings.TrimSuffix(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	return richtext.NewFromString(content,
		richtext.WithLogger(a.Logger.With().Str("component", "richtext").Logger()),
		richtext.WithDefaultStyle(a.Base),
	)
}

// LoadText reads path into a new text. An empty path yields an empty text.
func (a *App) LoadText(path string) (*richtext.Text, error) {
	if path == "" {
		return a.NewText(""), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return a.NewText(string(data)), nil
}
