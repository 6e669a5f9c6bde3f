package main

import (
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cmtcode/internal/version"
)

// newRootCmd assembles the command tree. Every call returns fresh commands
// with their own flag sets.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cmtcode",
		Short: "Find commented-out Java code",
		Long: `cmtcode scans Java sources for comments that look like disabled code
and reports them with the probability the heuristic assigned.`,
		Version:      version.Current().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			traceCleanup = cleanup
			traceCleanupOnce = sync.Once{}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			runTraceCleanup()
		},
	}

	root.AddCommand(newCheckCmd())
	root.AddCommand(newExplainCmd())
	root.AddCommand(newCommentsCmd())
	root.AddCommand(newFixCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics per file (0=unlimited)")
	addTraceFlags(root)
	addProfilingFlags(root)
	return root
}

// main executes the root command. If execution returns an error, the process
// exits with the code carried by the error (1 by default).
func main() {
	if err := newRootCmd().Execute(); err != nil {
		runTraceCleanup()
		os.Exit(exitCodeOf(err))
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color against the output stream.
func useColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		f, ok := cmd.OutOrStdout().(*os.File)
		return ok && isTerminal(f), nil
	default:
		return false, errInvalidFlag("color", colorFlag, "auto|on|off")
	}
}
