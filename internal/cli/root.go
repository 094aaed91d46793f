package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// BuildInfo carries version information set via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCmd builds the command tree.
func NewRootCmd(info BuildInfo) *cobra.Command {
	var (
		configPath string
		logLevel   string
		app        *App
	)

	root := &cobra.Command{
		Use:   "richtext",
		Short: "Styled text fragments with cursors that survive edits",
		Long: `richtext edits styled text split into fragments (one per line) while
keeping cursor locations anchored across inserts, erases, splits and merges.

Use 'richtext replay' to run a Lua edit script, 'richtext render' to print
the wrapped layout of a file, or 'richtext view' to edit a file in the
terminal.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}
			a, err := NewApp(configPath, logLevel, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			app = a
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	getApp := func() *App { return app }
	root.AddCommand(
		newReplayCmd(getApp),
		newRenderCmd(getApp),
		newViewCmd(getApp),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(info BuildInfo, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(info)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// Main is the entry point used by cmd/richtext.
func Main(info BuildInfo) int {
	return Execute(info, os.Args[1:], os.Stdout, os.Stderr)
}
