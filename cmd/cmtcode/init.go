package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cmtcode/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default cmtcode.toml",
		Long: `Create cmtcode.toml with the default classifier settings in [dir], or in
the current directory when omitted. The directory is created if needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("force", false, "overwrite an existing cmtcode.toml")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	path, err := config.WriteDefault(target, force)
	if errors.Is(err, config.ErrManifestExists) {
		return fmt.Errorf("already initialized: %s exists (use --force to overwrite)", path)
	}
	if err != nil {
		return err
	}

	rel := path
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, path); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", rel)
	return nil
}
