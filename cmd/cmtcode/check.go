package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cmtcode/internal/diag"
	"cmtcode/internal/diagfmt"
	"cmtcode/internal/driver"
	"cmtcode/internal/observ"
	"cmtcode/internal/version"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [path...]",
		Short: "Report comments that look like commented-out code",
		Long: `Check Java source files, or every matching file under the given
directories, for comments that look like disabled code. Pass "-" to read a
single file from stdin.`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheck,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	cmd.Flags().Bool("cache", false, "reuse results of unchanged files from the disk cache")
	cmd.Flags().String("cache-dir", "", "disk cache location (default: $XDG_CACHE_HOME/cmtcode)")
	cmd.Flags().Bool("clear-cache", false, "drop cached results before checking (implies --cache)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	cmd.Flags().Bool("preview", false, "show the source after each suggested fix")
	cmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	cmd.Flags().Bool("no-warnings", false, "drop warnings from the output")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("fail-on-findings", false, "exit with status 1 when commented-out code is found")
	cmd.Flags().String("stdin-filename", "stdin.java", "file name reported for input read from stdin")
	addSettingsFlags(cmd)
	return cmd
}

// checkFlags holds the parsed output and exit-code flags of `check`.
type checkFlags struct {
	format           string
	jobs             int
	ui               uiMode
	cache            bool
	cacheDir         string
	clearCache       bool
	withNotes        bool
	suggest          bool
	preview          bool
	pathMode         diagfmt.PathMode
	noWarnings       bool
	warningsAsErrors bool
	failOnFindings   bool
	stdinName        string
	maxDiagnostics   int
	timings          bool
	quiet            bool
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var f checkFlags
	var err error
	flags := cmd.Flags()

	if f.format, err = flags.GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f.format {
	case "pretty", "json", "sarif", "short":
	default:
		return f, errInvalidFlag("format", f.format, "pretty|json|sarif|short")
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiStr); err != nil {
		return f, err
	}
	if f.cache, err = flags.GetBool("cache"); err != nil {
		return f, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if f.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return f, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if f.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return f, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	f.cache = f.cache || f.clearCache
	if f.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.suggest, err = flags.GetBool("suggest"); err != nil {
		return f, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if f.preview, err = flags.GetBool("preview"); err != nil {
		return f, fmt.Errorf("failed to get preview flag: %w", err)
	}
	pathModeStr, err := flags.GetString("path-mode")
	if err != nil {
		return f, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if f.pathMode, ok = diagfmt.ParsePathMode(pathModeStr); !ok {
		return f, errInvalidFlag("path-mode", pathModeStr, "auto|absolute|relative|basename")
	}
	if f.noWarnings, err = flags.GetBool("no-warnings"); err != nil {
		return f, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if f.warningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
		return f, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if f.noWarnings && f.warningsAsErrors {
		return f, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	if f.failOnFindings, err = flags.GetBool("fail-on-findings"); err != nil {
		return f, fmt.Errorf("failed to get fail-on-findings flag: %w", err)
	}
	if f.stdinName, err = flags.GetString("stdin-filename"); err != nil {
		return f, fmt.Errorf("failed to get stdin-filename flag: %w", err)
	}

	root := cmd.Root().PersistentFlags()
	if f.maxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return f, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if f.timings, err = root.GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if f.quiet, err = root.GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	return f, nil
}

// runCheck executes `check`: it resolves settings for the first path, runs
// the driver over every path (or stdin), renders the diagnostics in the
// chosen format and turns errors, and optionally findings, into exit code 1.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}
	fromStdin := len(args) == 1 && args[0] == "-"
	if !fromStdin {
		for _, a := range args {
			if a == "-" {
				return fmt.Errorf("\"-\" cannot be combined with other paths")
			}
		}
	}

	settingsTarget := args[0]
	if fromStdin {
		settingsTarget = "."
	}
	settings, err := resolveSettings(cmd, settingsTarget)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Settings:       settings,
		MaxDiagnostics: flags.maxDiagnostics,
		Jobs:           flags.jobs,
	}
	if flags.timings {
		opts.Timer = observ.NewTimer()
	}
	if flags.cache {
		if flags.cacheDir != "" {
			opts.Cache, err = driver.NewDiskCache(flags.cacheDir)
		} else {
			opts.Cache, err = driver.OpenDiskCache("cmtcode")
		}
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if flags.clearCache {
			if err := opts.Cache.DropAll(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
		}
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var result *driver.Result
	switch {
	case fromStdin:
		content, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("failed to read stdin: %w", readErr)
		}
		result, err = driver.CheckSource(cmd.Context(), flags.stdinName, content, opts)
	case shouldUseTUI(flags.ui, flags.format):
		files, listErr := driver.ListFiles(args, settings)
		if listErr != nil {
			return listErr
		}
		result, err = runCheckWithUI(cmd.Context(), "cmtcode check", files, opts)
	default:
		result, err = driver.CheckPaths(cmd.Context(), args, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	bag := result.Bag
	if flags.noWarnings {
		bag.Filter(func(d *diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	}
	if flags.warningsAsErrors {
		promoteWarnings(bag)
	}
	if flags.timings {
		driver.AppendTimings(bag, "check", "", result.Timings)
	}

	if err := renderBag(cmd, bag, result, flags, append([]string{cmd.CommandPath()}, args...)); err != nil {
		return err
	}
	if !flags.quiet && flags.format == "pretty" {
		printSummary(cmd.ErrOrStderr(), result)
	}

	if bag.HasErrors() || (flags.failOnFindings && result.Findings() > 0) {
		cmd.SilenceErrors = true
		return silentExit(1)
	}
	return nil
}

// promoteWarnings rewrites every warning in bag into an error.
func promoteWarnings(bag *diag.Bag) {
	for _, d := range bag.Items() {
		if d.Severity == diag.SevWarning {
			d.Severity = diag.SevError
		}
	}
}

func renderBag(cmd *cobra.Command, bag *diag.Bag, result *driver.Result, flags checkFlags, invocation []string) error {
	out := cmd.OutOrStdout()
	showFixes := flags.suggest || flags.preview

	switch flags.format {
	case "pretty":
		colored, err := useColor(cmd)
		if err != nil {
			return err
		}
		diagfmt.Pretty(out, bag, result.FileSet, diagfmt.PrettyOpts{
			Color:       colored,
			Context:     2,
			PathMode:    flags.pathMode,
			ShowNotes:   flags.withNotes,
			ShowFixes:   showFixes,
			ShowPreview: flags.preview,
		})
	case "short":
		output := diag.FormatShortDiagnostics(bag.Items(), result.FileSet, flags.withNotes)
		if output != "" {
			fmt.Fprintln(out, output)
		}
	case "json":
		err := diagfmt.JSON(out, bag, result.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         flags.pathMode,
			IncludeNotes:     flags.withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  flags.preview,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		err := diagfmt.Sarif(out, bag, result.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "cmtcode",
			ToolVersion:    version.Current().Version,
			InvocationArgs: invocation,
			PathMode:       flags.pathMode,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}

func printSummary(w io.Writer, result *driver.Result) {
	var b strings.Builder
	fmt.Fprintf(&b, "checked %d file(s), %d comment(s): %d finding(s)",
		len(result.Files), result.Comments(), result.Findings())
	if n := result.CachedFiles(); n > 0 {
		fmt.Fprintf(&b, ", %d from cache", n)
	}
	fmt.Fprintln(w, b.String())
}
