package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadHandler receives the reloaded configuration, or the error that
// prevented the reload. The previous configuration stays in effect on error.
type ReloadHandler func(cfg *Config, err error)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the delay used to coalesce bursts of writes.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger used for reload diagnostics.
func WithWatcherLogger(log zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = log
	}
}

// WithOverrides sets a function applied to every reloaded configuration,
// so environment and flag overrides survive a reload. The result is
// validated again afterwards.
func WithOverrides(fn func(*Config) error) WatcherOption {
	return func(w *Watcher) {
		w.overrides = fn
	}
}

// Watcher reloads a configuration file whenever it changes.
//
// The parent directory is watched rather than the file, so editors that
// save by writing a temporary file and renaming it are still seen.
type Watcher struct {
	path      string
	handler   ReloadHandler
	debounce  time.Duration
	logger    zerolog.Logger
	overrides func(*Config) error

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher starts watching path. handler runs on the watcher's goroutine.
func NewWatcher(path string, handler ReloadHandler, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		handler:  handler,
		debounce: 100 * time.Millisecond,
		logger:   zerolog.Nop(),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and waits for a pending reload to finish.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("config changed")
			if w.debounce == 0 {
				w.reload()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

// reload re-reads the file. A missing file is skipped: renames and removals
// leave the current configuration in place until the file is created again.
func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug().Str("path", w.path).Msg("config file missing, keeping current config")
		return
	}
	if err != nil {
		w.handler(nil, fmt.Errorf("reading config file %s: %w", w.path, err))
		return
	}

	cfg, err := Parse(w.path, data)
	if err == nil && w.overrides != nil {
		if err = w.overrides(cfg); err == nil {
			err = cfg.Validate()
		}
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			w.logger.Warn().Str("path", pe.Path).Int("line", pe.Line).Msg(pe.Message)
		}
		w.handler(nil, err)
		return
	}
	w.logger.Info().Str("path", w.path).Msg("config reloaded")
	w.handler(cfg, nil)
}
