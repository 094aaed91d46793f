package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/richtext/internal/engine/richtext"
	"github.com/dshills/richtext/internal/script"
)

const defaultReplayTimeout = 5 * time.Second

func newReplayCmd(getApp func() *App) *cobra.Command {
	var (
		input   string
		timeout time.Duration
		wrapped bool
	)
	cmd := &cobra.Command{
		Use:   "replay <script.lua>",
		Short: "Run a Lua edit script and print the resulting text",
		Long: `Run a Lua edit script against a text and print the result.

The text starts empty, or with the contents of --input (one fragment per
line). Scripts use the global table rt; see the script package for the API.

Examples:
  richtext replay edits.lua                 # Start from an empty text
  richtext replay -i notes.txt edits.lua    # Start from a file
  richtext replay --wrapped edits.lua       # Print the wrapped layout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()
			txt, err := app.LoadText(input)
			if err != nil {
				return err
			}
			defer txt.Close()

			s := script.NewSession(txt,
				script.WithStyles(app.Styles),
				script.WithPolicy(app.Policy),
				script.WithOutput(cmd.OutOrStdout()),
				script.WithLogger(app.Logger.With().Str("component", "script").Logger()),
			)
			defer s.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := s.RunFile(ctx, args[0]); err != nil {
				return err
			}
			app.Logger.Debug().Int("fragments", txt.Count()).Int("open_cursors", s.OpenCursors()).Msg("replay finished")

			if wrapped {
				return writeLayout(cmd.OutOrStdout(), txt, app.Config.Text.WrapWidth)
			}
			return writeText(cmd.OutOrStdout(), txt)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "initial text file")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultReplayTimeout, "abort the script after this long")
	cmd.Flags().BoolVar(&wrapped, "wrapped", false, "print the wrapped layout instead of raw text")
	return cmd
}

func writeText(w io.Writer, txt *richtext.Text) error {
	_, err := fmt.Fprintln(w, txt.String())
	return err
}
