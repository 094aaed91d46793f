package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richtext/internal/engine/richtext"
	"github.com/dshills/richtext/internal/engine/style"
)

// ErrSessionClosed is returned when running code on a closed session.
var ErrSessionClosed = errors.New("script session closed")

// Option configures a Session.
type Option func(*Session)

// WithStyles sets the named styles scripts may refer to.
func WithStyles(styles map[string]style.Style) Option {
	return func(s *Session) {
		s.styles = styles
	}
}

// WithPolicy sets the policy used by rt.cursor when none is given.
func WithPolicy(p richtext.Policy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = log
	}
}

// Session runs Lua code against one text.
//
// gopher-lua states are not goroutine-safe; the session serializes Run
// calls with its own mutex.
type Session struct {
	mu sync.Mutex

	L      *lua.LState
	text   *richtext.Text
	styles map[string]style.Style
	policy richtext.Policy
	out    io.Writer
	logger zerolog.Logger

	cursors map[*richtext.CursorOwner]struct{}
	closed  bool
}

// NewSession creates a sandboxed session for text.
func NewSession(text *richtext.Text, opts ...Option) *Session {
	s := &Session{
		text:    text,
		styles:  map[string]style.Style{},
		out:     os.Stdout,
		logger:  zerolog.Nop(),
		cursors: make(map[*richtext.CursorOwner]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.installPrint()
	s.register()
	return s
}

// openSafeLibraries opens only libraries without file or process access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}
}

func (s *Session) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		for i := 1; i <= n; i++ {
			if i > 1 {
				fmt.Fprint(s.out, "\t")
			}
			fmt.Fprint(s.out, L.ToStringMeta(L.Get(i)).String())
		}
		fmt.Fprintln(s.out)
		return 0
	}))
}

// Run executes code. name identifies the chunk in error messages.
// Cancelling ctx aborts the script.
func (s *Session) Run(ctx context.Context, name, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	fn, err := s.L.Load(strings.NewReader(code), name)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}

	s.L.SetContext(ctx)
	defer s.L.RemoveContext()
	defer s.L.SetTop(0)

	s.L.Push(fn)
	if err := s.doWithRecovery(func() error { return s.L.PCall(0, lua.MultRet, nil) }); err != nil {
		s.logger.Debug().Err(err).Str("chunk", name).Msg("script failed")
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// RunFile reads and executes a Lua file.
func (s *Session) RunFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script %s: %w", path, err)
	}
	return s.Run(ctx, path, string(data))
}

// doWithRecovery executes a function with panic recovery.
func (s *Session) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// OpenCursors returns the number of cursors created by scripts and not yet
// closed.
func (s *Session) OpenCursors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cursors)
}

// Close closes every cursor still open and releases the Lua state.
// Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for c := range s.cursors {
		c.Close()
	}
	clear(s.cursors)
	s.L.Close()
}
