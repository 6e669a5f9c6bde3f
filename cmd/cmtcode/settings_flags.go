package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cmtcode/internal/config"
)

// addSettingsFlags registers the classifier overrides shared by check, fix,
// explain and comments.
func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("threshold", 0, "classification threshold in (0,1] (default from cmtcode.toml or 0.85)")
	cmd.Flags().String("skip-sequence", "", "marker that exempts a comment from the check (default \"cmt\")")
	cmd.Flags().Bool("skip-javadocs", true, "do not inspect /** ... */ comments")
	cmd.Flags().String("severity", "", "severity of findings (error|warning|info)")
	cmd.Flags().String("message", "", "rule message placed before the probability details")
	cmd.Flags().Bool("merge-line-comments", false, "treat consecutive // lines as one comment")
	cmd.Flags().String("config", "", "path to cmtcode.toml (default: searched upwards from the target)")
}

// flagOverrides collects the settings flags the user actually set.
func flagOverrides(cmd *cobra.Command) (config.Overrides, error) {
	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		v, err := flags.GetFloat64("threshold")
		if err != nil {
			return o, err
		}
		o.Threshold = &v
	}
	if flags.Changed("skip-sequence") {
		v, err := flags.GetString("skip-sequence")
		if err != nil {
			return o, err
		}
		o.SkipSequence = &v
	}
	if flags.Changed("skip-javadocs") {
		v, err := flags.GetBool("skip-javadocs")
		if err != nil {
			return o, err
		}
		o.SkipJavaDocs = &v
	}
	if flags.Changed("severity") {
		v, err := flags.GetString("severity")
		if err != nil {
			return o, err
		}
		o.Severity = &v
	}
	if flags.Changed("message") {
		v, err := flags.GetString("message")
		if err != nil {
			return o, err
		}
		o.Message = &v
	}
	if flags.Changed("merge-line-comments") {
		v, err := flags.GetBool("merge-line-comments")
		if err != nil {
			return o, err
		}
		o.MergeLineComments = &v
	}
	return o, nil
}

// resolveSettings layers defaults, cmtcode.toml, CMTCODE_* and flags, in
// that order. target is the first path argument; the manifest is searched
// from there unless --config names one.
func resolveSettings(cmd *cobra.Command, target string) (config.Settings, error) {
	manifestPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Settings{}, err
	}

	var settings config.Settings
	if manifestPath != "" {
		settings, err = config.LoadFile(manifestPath)
	} else {
		start := target
		if start == "" || start == "-" {
			start = "."
		}
		settings, err = config.Load(start)
	}
	if err != nil {
		return config.Settings{}, err
	}

	o, err := flagOverrides(cmd)
	if err != nil {
		return config.Settings{}, err
	}
	if err := settings.Apply(o); err != nil {
		return config.Settings{}, fmt.Errorf("flags: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, fmt.Errorf("flags: %w", err)
	}
	return settings, nil
}
