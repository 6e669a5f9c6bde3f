package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"cmtcode/internal/classify"
	"cmtcode/internal/comment"
	"cmtcode/internal/diag"
	"cmtcode/internal/lexer"
	"cmtcode/internal/source"
)

func newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [flags] <file|->",
		Short: "Show the per-line evidence behind each verdict",
		Long: `Extract the comments of a file (or stdin) and print, for each one, the
verdict and the score every line got from the five heuristics. With --raw
the whole input is treated as a single comment.`,
		Args: cobra.ExactArgs(1),
		RunE: runExplain,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Int("line", 0, "only explain the comment covering this 1-based line")
	cmd.Flags().Bool("raw", false, "treat the input as one comment instead of a source file")
	cmd.Flags().Bool("all", false, "include comments that are not flagged")
	addSettingsFlags(cmd)
	return cmd
}

// explanation is one comment with its verdict and line breakdown.
type explanation struct {
	Block   comment.Block
	Verdict classify.Result
	Lines   []classify.LineReport
	Message string
}

func runExplain(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return errInvalidFlag("format", format, "pretty|json")
	}
	onlyLine, err := cmd.Flags().GetInt("line")
	if err != nil {
		return err
	}
	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return err
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	settings, err := resolveSettings(cmd, args[0])
	if err != nil {
		return err
	}
	content, name, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	cls := classify.New(settings.Classify)
	var blocks []comment.Block
	if raw {
		text := string(content)
		n := uint32(max(len(classify.SplitLines(text)), 1))
		blocks = []comment.Block{{Kind: comment.KindBlock, Text: text, StartLine: 1, EndLine: n}}
		all = true
	} else {
		blocks, err = extractBlocks(name, content, settings.MergeLineComments)
		if err != nil {
			return err
		}
	}

	var out []explanation
	for _, b := range blocks {
		if onlyLine > 0 && (uint32(onlyLine) < b.StartLine || uint32(onlyLine) > b.EndLine) {
			continue
		}
		res := cls.Classify(b)
		if !all && onlyLine == 0 && !res.IsCode {
			continue
		}
		e := explanation{Block: b, Verdict: res, Lines: cls.Explain(b.Text)}
		if res.IsCode {
			e.Message = cls.Message(settings.Message, res)
		}
		out = append(out, e)
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		return writeExplainJSON(w, name, cls.Config(), out)
	}
	writeExplainPretty(w, name, cls.Config(), out)
	return nil
}

// readInput reads a file, or stdin for "-". The content is normalised the
// same way the checker normalises files.
func readInput(cmd *cobra.Command, arg string) ([]byte, string, error) {
	var raw []byte
	var err error
	name := arg
	if arg == "-" {
		name = "stdin"
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	content, _, err := source.Normalize(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", name, err)
	}
	return content, name, nil
}

// extractBlocks runs the comment scanner over content. Scanner errors are
// reported but do not stop the explanation.
func extractBlocks(name string, content []byte, merge bool) ([]comment.Block, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, content)
	bag := diag.NewBag(0)
	blocks := lexer.Extract(fs.Get(id), lexer.Options{
		Reporter:          diag.BagReporter{Bag: bag},
		MergeLineComments: merge,
	})
	if bag.HasErrors() {
		d := bag.Items()[0]
		start, _ := fs.Resolve(d.Primary)
		return blocks, fmt.Errorf("%s:%d:%d: %s", name, start.Line, start.Col, d.Message)
	}
	return blocks, nil
}

func writeExplainPretty(w io.Writer, name string, cfg classify.Config, out []explanation) {
	title := lipgloss.NewStyle().Bold(true)
	if len(out) == 0 {
		fmt.Fprintf(w, "%s: no matching comments\n", name)
		return
	}
	for i, e := range out {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, title.Render(fmt.Sprintf("%s:%s (%s comment): %s",
			name, lineSpan(e.Block), e.Block.Kind, verdictLabel(e.Verdict))))
		if e.Message != "" {
			fmt.Fprintln(w, e.Message)
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("line", "term", "logic", "kw", "flow", "camel", "P", "", "text")
		for _, r := range e.Lines {
			mark := ""
			switch {
			case r.Triggered:
				mark = ">="
			case r.Skipped:
				mark = "skip"
			}
			row := []string{strconv.FormatUint(uint64(e.Block.StartLine)+uint64(r.Index), 10)}
			for s := range classify.NumSignals {
				row = append(row, formatEvidence(r.Evidence, classify.Signal(s)))
			}
			row = append(row, fmt.Sprintf("%.3f", r.Probability), mark, clipText(r.Text, 48))
			t.Row(row...)
		}
		fmt.Fprintln(w, t.Render())
		fmt.Fprintf(w, "threshold %s, skip sequence %q\n", classify.FormatProbability(cfg.Threshold), cfg.SkipSequence)
	}
}

// lineSpan renders "7" or "7-9".
func lineSpan(b comment.Block) string {
	if b.SingleLine() {
		return strconv.FormatUint(uint64(b.StartLine), 10)
	}
	return fmt.Sprintf("%d-%d", b.StartLine, b.EndLine)
}

func formatEvidence(ev classify.Evidence, s classify.Signal) string {
	if ev.Counts[s] == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%s", ev.Counts[s], classify.FormatProbability(ev.P[s]))
}

func verdictLabel(res classify.Result) string {
	if res.IsCode {
		return "code (p=" + classify.FormatProbability(res.Probability) + ")"
	}
	return "not code (" + res.Reason.String() + ")"
}

func clipText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

type explainLineJSON struct {
	Line        uint32             `json:"line"`
	Text        string             `json:"text"`
	Counts      map[string]int     `json:"counts"`
	Evidence    map[string]float64 `json:"evidence"`
	Probability float64            `json:"probability"`
	Skipped     bool               `json:"skipped,omitempty"`
	Triggered   bool               `json:"triggered,omitempty"`
}

type explainCommentJSON struct {
	Kind        string            `json:"kind"`
	StartLine   uint32            `json:"start_line"`
	EndLine     uint32            `json:"end_line"`
	IsCode      bool              `json:"is_code"`
	Probability float64           `json:"probability"`
	Reason      string            `json:"reason"`
	Message     string            `json:"message,omitempty"`
	Lines       []explainLineJSON `json:"lines"`
}

type explainOutputJSON struct {
	File         string               `json:"file"`
	Threshold    float64              `json:"threshold"`
	SkipSequence string               `json:"skip_sequence"`
	Comments     []explainCommentJSON `json:"comments"`
}

func writeExplainJSON(w io.Writer, name string, cfg classify.Config, out []explanation) error {
	doc := explainOutputJSON{
		File:         name,
		Threshold:    cfg.Threshold,
		SkipSequence: cfg.SkipSequence,
		Comments:     make([]explainCommentJSON, 0, len(out)),
	}
	for _, e := range out {
		c := explainCommentJSON{
			Kind:        e.Block.Kind.String(),
			StartLine:   e.Block.StartLine,
			EndLine:     e.Block.EndLine,
			IsCode:      e.Verdict.IsCode,
			Probability: e.Verdict.Probability,
			Reason:      e.Verdict.Reason.String(),
			Message:     e.Message,
			Lines:       make([]explainLineJSON, 0, len(e.Lines)),
		}
		for _, r := range e.Lines {
			l := explainLineJSON{
				Line:        e.Block.StartLine + uint32(r.Index),
				Text:        r.Text,
				Counts:      make(map[string]int, classify.NumSignals),
				Evidence:    make(map[string]float64, classify.NumSignals),
				Probability: r.Probability,
				Skipped:     r.Skipped,
				Triggered:   r.Triggered,
			}
			for s := range classify.NumSignals {
				sig := classify.Signal(s)
				l.Counts[sig.String()] = r.Evidence.Counts[sig]
				l.Evidence[sig.String()] = r.Evidence.P[sig]
			}
			c.Lines = append(c.Lines, l)
		}
		doc.Comments = append(doc.Comments, c)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
