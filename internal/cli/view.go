package cli

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/richtext/internal/config"
	"github.com/dshills/richtext/internal/engine/richtext"
	"github.com/dshills/richtext/internal/engine/visibility"
	"github.com/dshills/richtext/internal/render"
)

func newViewCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view [file]",
		Short: "Edit a file in the terminal",
		Long: `Open a file in a minimal terminal editor.

Arrow keys move the cursor, Enter splits the current fragment, Backspace and
Delete join fragments at their edges. Esc or Ctrl-C quits; nothing is saved.
When --config is given, the file is watched and style changes apply live.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			app := getApp()
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			txt, err := app.LoadText(path)
			if err != nil {
				return err
			}
			defer txt.Close()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init screen: %w", err)
			}
			defer screen.Fini()

			v, err := newViewer(app, txt, screen)
			if err != nil {
				return err
			}
			defer v.close()

			if app.ConfigPath != "" {
				w, err := config.NewWatcher(app.ConfigPath, func(cfg *config.Config, err error) {
					_ = screen.PostEvent(tcell.NewEventInterrupt(reloadResult{cfg: cfg, err: err}))
				}, config.WithWatcherLogger(app.Logger), config.WithOverrides(app.overrides))
				if err != nil {
					app.Logger.Warn().Err(err).Msg("config watch disabled")
				} else {
					defer w.Close()
				}
			}
			return v.run()
		},
	}
}

type reloadResult struct {
	cfg *config.Config
	err error
}

// viewer is the interactive editing loop. It runs on one goroutine; config
// reloads arrive as interrupt events.
type viewer struct {
	app      *App
	text     *richtext.Text
	screen   tcell.Screen
	renderer *render.Renderer
	peephole *visibility.Peephole
	coord    *visibility.Coordinator
	cursor   *richtext.CursorOwner
	layout   *render.Layout
}

func newViewer(app *App, txt *richtext.Text, screen tcell.Screen) (*viewer, error) {
	w, h := screen.Size()
	p := visibility.NewPeephole(w, h)
	p.SetMargins(app.Config.Margins())

	f, err := txt.Fragment(0)
	if err != nil {
		return nil, err
	}
	// Typing inserts at the cursor, so it must move past inserted text.
	c, err := txt.NewCursor(f, 0, richtext.PolicyAfter)
	if err != nil {
		return nil, err
	}

	v := &viewer{
		app:      app,
		text:     txt,
		screen:   screen,
		renderer: render.NewRenderer(screen, app.Base),
		peephole: p,
		coord:    visibility.NewCoordinator(p),
		cursor:   c,
	}
	v.draw()
	return v, nil
}

func (v *viewer) close() {
	v.cursor.Close()
}

func (v *viewer) run() error {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		quit, err := v.handle(ev)
		if err != nil {
			v.app.Logger.Warn().Err(err).Msg("edit rejected")
		}
		if quit {
			return nil
		}
		v.draw()
	}
}

// handle applies one event. It reports whether the viewer should exit.
func (v *viewer) handle(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		v.peephole.Resize(w, h)
		v.screen.Sync()
	case *tcell.EventInterrupt:
		if r, ok := ev.Data().(reloadResult); ok {
			return false, v.reload(r)
		}
	}
	return false, nil
}

func (v *viewer) reload(r reloadResult) error {
	if r.err != nil {
		return fmt.Errorf("reload config: %w", r.err)
	}
	if err := v.app.apply(r.cfg); err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	v.peephole.SetMargins(r.cfg.Margins())
	v.renderer = render.NewRenderer(v.screen, v.app.Base)
	return nil
}

func (v *viewer) handleKey(ev *tcell.EventKey) (bool, error) {
	pos, err := v.cursor.Position()
	if err != nil {
		return true, err
	}
	f := pos.Fragment

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true, nil
	case tcell.KeyRune:
		return false, v.text.ApplyEdit(f, richtext.NewInsert(pos.Offset, string(ev.Rune())))
	case tcell.KeyEnter:
		_, err := v.text.Split(f, pos.Offset)
		return false, err
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if pos.Offset > 0 {
			prev := pos.Offset
			if _, err := v.cursor.MoveGraphemes(-1); err != nil {
				return false, err
			}
			np, err := v.cursor.Position()
			if err != nil {
				return false, err
			}
			return false, v.text.ApplyEdit(f, richtext.NewErase(np.Offset, prev-np.Offset))
		}
		if pos.Index == 0 {
			return false, nil
		}
		prev, err := v.text.Fragment(pos.Index - 1)
		if err != nil {
			return false, err
		}
		return false, v.text.Merge(prev)
	case tcell.KeyDelete:
		if pos.Offset < f.Len() {
			end, err := v.graphemeEnd()
			if err != nil {
				return false, err
			}
			return false, v.text.ApplyEdit(f, richtext.NewErase(pos.Offset, end-pos.Offset))
		}
		err := v.text.Merge(f)
		if errors.Is(err, richtext.ErrNoSuccessor) {
			return false, nil
		}
		return false, err
	case tcell.KeyLeft:
		if pos.Offset == 0 && pos.Index > 0 {
			return false, v.jump(pos.Index-1, -1)
		}
		_, err := v.cursor.MoveGraphemes(-1)
		return false, err
	case tcell.KeyRight:
		if pos.Offset == f.Len() && pos.Index+1 < v.text.Count() {
			return false, v.jump(pos.Index+1, 0)
		}
		_, err := v.cursor.MoveGraphemes(1)
		return false, err
	case tcell.KeyUp:
		if pos.Index > 0 {
			return false, v.jump(pos.Index-1, pos.Offset)
		}
	case tcell.KeyDown:
		if pos.Index+1 < v.text.Count() {
			return false, v.jump(pos.Index+1, pos.Offset)
		}
	}
	return false, nil
}

// graphemeEnd returns the offset one grapheme cluster after the cursor
// without moving it.
func (v *viewer) graphemeEnd() (int, error) {
	probe, err := v.cursor.Clone()
	if err != nil {
		return 0, err
	}
	defer probe.Close()
	return probe.MoveGraphemes(1)
}

// jump moves the cursor to fragment index at offset, clamped to the
// fragment. A negative offset means the end of the fragment.
func (v *viewer) jump(index, offset int) error {
	f, err := v.text.Fragment(index)
	if err != nil {
		return err
	}
	n := f.Len()
	if offset < 0 || offset > n {
		offset = n
	}
	c, err := v.text.NewCursor(f, offset, richtext.PolicyAfter)
	if err != nil {
		return err
	}
	v.cursor.Close()
	v.cursor = c
	return nil
}

func (v *viewer) draw() {
	v.layout = render.NewLayout(v.text.Snapshot(), v.app.Config.Text.WrapWidth)
	v.peephole.SetContentSize(v.layout.Width()+1, v.layout.Height())

	req, err := visibility.ForCursor(v.cursor, v.layout)
	if err == nil {
		v.coord.Ensure(req)
	}

	view := v.peephole.Visible()
	v.renderer.Draw(v.layout, view)
	if err == nil {
		v.renderer.ShowCursor(req.Rect, view)
	}
	v.renderer.Show()
}
