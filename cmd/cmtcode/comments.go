package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cmtcode/internal/classify"
	"cmtcode/internal/diag"
	"cmtcode/internal/driver"
)

func newCommentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments [flags] <file>",
		Short: "List the comments found in a file with their verdicts",
		Args:  cobra.ExactArgs(1),
		RunE:  runComments,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("code-only", false, "only list comments classified as code")
	addSettingsFlags(cmd)
	return cmd
}

type commentJSON struct {
	Kind        string  `json:"kind"`
	StartLine   uint32  `json:"start_line"`
	EndLine     uint32  `json:"end_line"`
	Start       uint32  `json:"start"`
	End         uint32  `json:"end"`
	IsCode      bool    `json:"is_code"`
	Probability float64 `json:"probability"`
	Reason      string  `json:"reason"`
	Text        string  `json:"text"`
}

func runComments(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return errInvalidFlag("format", format, "pretty|json")
	}
	codeOnly, err := cmd.Flags().GetBool("code-only")
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, args[0])
	if err != nil {
		return err
	}

	result, err := driver.CheckFile(cmd.Context(), args[0], driver.Options{
		Settings:     settings,
		KeepVerdicts: true,
	})
	if err != nil {
		return err
	}
	file := result.Files[0]
	verdicts := file.Verdicts
	if codeOnly {
		kept := verdicts[:0:0]
		for _, v := range verdicts {
			if v.Result.IsCode {
				kept = append(kept, v)
			}
		}
		verdicts = kept
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		out := make([]commentJSON, 0, len(verdicts))
		for _, v := range verdicts {
			out = append(out, commentJSON{
				Kind:        v.Block.Kind.String(),
				StartLine:   v.Block.StartLine,
				EndLine:     v.Block.EndLine,
				Start:       v.Block.Span.Start,
				End:         v.Block.Span.End,
				IsCode:      v.Result.IsCode,
				Probability: v.Result.Probability,
				Reason:      v.Result.Reason.String(),
				Text:        v.Block.Text,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		writeCommentsPretty(w, args[0], verdicts)
	}

	// ошибки сканера (незакрытый комментарий) печатаем отдельно
	if file.Bag.HasErrors() {
		output := diag.FormatShortDiagnostics(file.Bag.Items(), result.FileSet, false)
		fmt.Fprintln(cmd.ErrOrStderr(), output)
		cmd.SilenceErrors = true
		return silentExit(1)
	}
	return nil
}

func writeCommentsPretty(w io.Writer, path string, verdicts []driver.Verdict) {
	if len(verdicts) == 0 {
		fmt.Fprintf(w, "%s: no comments\n", path)
		return
	}
	for _, v := range verdicts {
		var verdict string
		switch v.Result.Reason {
		case classify.ReasonScored:
			verdict = "code " + classify.FormatProbability(v.Result.Probability)
		case classify.ReasonBelowThreshold:
			verdict = "text"
		default:
			verdict = v.Result.Reason.String()
		}
		first, _, _ := strings.Cut(v.Block.Text, "\n")
		if !v.Block.SingleLine() {
			first += " …"
		}
		fmt.Fprintf(w, "%s:%s\t%-5s\t%-13s\t%s\n", path, lineSpan(v.Block), v.Block.Kind, verdict, clipText(first, 60))
	}
}
