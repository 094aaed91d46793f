package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/richtext/internal/engine/richtext"
	"github.com/dshills/richtext/internal/engine/visibility"
	"github.com/dshills/richtext/internal/render"
)

func newRenderCmd(getApp func() *App) *cobra.Command {
	var (
		width  int
		cursor string
	)
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Print the wrapped layout of a file",
		Long: `Lay out a file the way the viewer does and print one line per row.

With --cursor F:O, also print the rectangle a cursor at fragment F (1-based)
and rune offset O would ask the viewport to reveal.

Examples:
  richtext render notes.txt
  richtext render -w 40 notes.txt
  richtext render --cursor 2:10 notes.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()
			txt, err := app.LoadText(args[0])
			if err != nil {
				return err
			}
			defer txt.Close()

			if !cmd.Flags().Changed("width") {
				width = app.Config.Text.WrapWidth
			}
			out := cmd.OutOrStdout()
			if err := writeLayout(out, txt, width); err != nil {
				return err
			}
			if cursor == "" {
				return nil
			}
			return writeCursorRect(out, txt, cursor, app.Policy, width)
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 0, "wrap width (0 disables wrapping)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "cursor position as fragment:offset")
	return cmd
}

func writeLayout(w io.Writer, txt *richtext.Text, width int) error {
	l := render.NewLayout(txt.Snapshot(), width)
	for _, row := range l.Rows() {
		var b strings.Builder
		for _, c := range row.Cells {
			b.WriteRune(c.Rune)
			for _, r := range c.Comb {
				b.WriteRune(r)
			}
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeCursorRect(w io.Writer, txt *richtext.Text, spec string, policy richtext.Policy, width int) error {
	fi, off, err := parseCursorSpec(spec)
	if err != nil {
		return err
	}
	f, err := txt.Fragment(fi - 1)
	if err != nil {
		return fmt.Errorf("cursor fragment %d: %w", fi, err)
	}
	c, err := txt.NewCursor(f, off, policy)
	if err != nil {
		return fmt.Errorf("cursor %s: %w", spec, err)
	}
	defer c.Close()

	req, err := visibility.ForCursor(c, render.NewLayout(txt.Snapshot(), width))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "cursor %s at %s\n", spec, req.Rect)
	return err
}

func parseCursorSpec(spec string) (fragment, offset int, err error) {
	fpart, opart, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, 0, fmt.Errorf("cursor %q: want fragment:offset", spec)
	}
	if fragment, err = strconv.Atoi(fpart); err != nil {
		return 0, 0, fmt.Errorf("cursor %q: %w", spec, err)
	}
	if offset, err = strconv.Atoi(opart); err != nil {
		return 0, 0, fmt.Errorf("cursor %q: %w", spec, err)
	}
	return fragment, offset, nil
}
