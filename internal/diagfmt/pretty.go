package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

// maxSnippetLines ограничивает число строк основного span в выводе;
// длинные блоки показываются головой и хвостом.
const maxSnippetLines = 6

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, caret   *color.Color
	note, fix       *color.Color
	added, removed  *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:     mk(color.FgRed, color.Bold),
		warn:    mk(color.FgYellow, color.Bold),
		info:    mk(color.FgCyan, color.Bold),
		code:    mk(color.Bold),
		path:    mk(color.Bold),
		gutter:  mk(color.FgBlue),
		caret:   mk(color.FgMagenta, color.Bold),
		note:    mk(color.FgCyan),
		fix:     mk(color.FgGreen),
		added:   mk(color.FgGreen),
		removed: mk(color.FgRed),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sev := p.severity(d.Severity).Sprint(d.Severity.String())
	code := p.code.Sprint(d.Code.ID())

	if !located(fs, d) {
		fmt.Fprintf(w, "%s %s: %s\n", sev, code, d.Message)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			}
		}
		return
	}

	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	loc := fmt.Sprintf("%s:%d:%d", formatPath(fs, file, opts.PathMode), start.Line, start.Col)
	fmt.Fprintf(w, "%s: %s %s: %s\n", p.path.Sprint(loc), sev, code, d.Message)

	writeSnippet(w, file, d.Primary, opts, p)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			if nf := fs.Get(n.Span.File); nf != nil {
				ns, _ := fs.Resolve(n.Span)
				fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
					formatPath(fs, nf, opts.PathMode), ns.Line, ns.Col, n.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
		}
	}

	if opts.ShowFixes {
		for i, f := range orderedFixes(d.Fixes) {
			writeFix(w, fs, i+1, f, opts, p)
		}
	}
}

func writeSnippet(w io.Writer, file *source.File, span source.Span, opts PrettyOpts, p palette) {
	if len(file.Content) == 0 {
		return
	}
	first, last := file.LineRange(span)
	ctx := uint32(max(opts.Context, 0))
	from := first - min(ctx, first-1)
	to := max(min(last+ctx, file.LineCount()), last)

	lines := make([]uint32, 0, to-from+1)
	for n := from; n <= to; n++ {
		lines = append(lines, n)
	}
	// длинный блок: голова и хвост, середина схлопывается в "..."
	gap := -1
	if last-first+1 > maxSnippetLines {
		head := first + maxSnippetLines/2
		tail := last - maxSnippetLines/2 + 1
		trimmed := lines[:0]
		for _, n := range lines {
			if n >= head && n < tail {
				if gap < 0 {
					gap = len(trimmed)
				}
				continue
			}
			trimmed = append(trimmed, n)
		}
		lines = trimmed
	}

	width := len(strconv.FormatUint(uint64(to), 10))
	blank := p.gutter.Sprint(strings.Repeat(" ", width) + " |")
	for i, n := range lines {
		if i == gap {
			fmt.Fprintf(w, "%s\n", p.gutter.Sprint(strings.Repeat(" ", width)+" ..."))
		}
		text := file.GetLine(n)
		shown := clip(text, opts.Width)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, n), shown)
		if n == first {
			startCol := int(span.Start) - lineStart(file, n)
			endCol := len(text)
			if first == last {
				endCol = int(span.End) - lineStart(file, n)
			}
			if u := underline(text, startCol, endCol, opts.Width); u != "" {
				fmt.Fprintf(w, "%s %s\n", blank, p.caret.Sprint(u))
			}
		}
	}
}

// underline builds "^~~~" under text[start:end]; tabs in the prefix are kept
// so the caret lines up in a terminal.
func underline(text string, start, end int, width uint8) string {
	start = min(max(start, 0), len(text))
	end = min(max(end, start), len(text))

	var b strings.Builder
	for _, r := range text[:start] {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	n := max(runewidth.StringWidth(text[start:end]), 1)
	if width > 0 {
		room := int(width) - runewidth.StringWidth(text[:start])
		if room <= 0 {
			return ""
		}
		n = min(n, room)
	}
	b.WriteByte('^')
	b.WriteString(strings.Repeat("~", n-1))
	return b.String()
}

func clip(text string, width uint8) string {
	if width == 0 {
		return text
	}
	return runewidth.Truncate(text, int(width), "…")
}

func lineStart(file *source.File, line uint32) int {
	if line <= 1 {
		return 0
	}
	if idx := int(line) - 2; idx < len(file.LineIdx) {
		return int(file.LineIdx[idx]) + 1
	}
	return len(file.Content)
}

func writeFix(w io.Writer, fs *source.FileSet, n int, f *diag.Fix, opts PrettyOpts, p palette) {
	header := fmt.Sprintf("fix #%d: %s", n, f.Title)
	meta := []string{f.Kind.String(), f.Applicability.String()}
	if f.IsPreferred {
		meta = append(meta, "preferred")
	}
	fmt.Fprintf(w, "  %s [%s]", p.fix.Sprint(header), strings.Join(meta, ", "))
	if f.ID != "" {
		fmt.Fprintf(w, " id=%s", f.ID)
	}
	fmt.Fprintln(w)

	for _, e := range f.Edits {
		ef := fs.Get(e.Span.File)
		if ef == nil {
			continue
		}
		s, en := fs.Resolve(e.Span)
		fmt.Fprintf(w, "    edit %s:%d:%d-%d:%d apply=%q", formatPath(fs, ef, opts.PathMode),
			s.Line, s.Col, en.Line, en.Col, e.NewText)
		if e.OldText != "" {
			fmt.Fprintf(w, " expect=%q", e.OldText)
		}
		fmt.Fprintln(w)

		if !opts.ShowPreview {
			continue
		}
		preview, err := previewEdit(fs, e)
		if err != nil {
			continue
		}
		fmt.Fprintln(w, "    preview:")
		for _, line := range preview.before {
			fmt.Fprintf(w, "      %s\n", p.removed.Sprint("- "+line))
		}
		for _, line := range preview.after {
			fmt.Fprintf(w, "      %s\n", p.added.Sprint("+ "+line))
		}
	}
}

// orderedFixes returns fixes preferred first, then by applicability, kind,
// title and ID. The input is not modified.
func orderedFixes(in []*diag.Fix) []*diag.Fix {
	fixes := make([]*diag.Fix, 0, len(in))
	for _, f := range in {
		if f != nil {
			fixes = append(fixes, f)
		}
	}
	sort.SliceStable(fixes, func(i, j int) bool {
		fi, fj := fixes[i], fixes[j]
		if fi.IsPreferred != fj.IsPreferred {
			return fi.IsPreferred && !fj.IsPreferred
		}
		if fi.Applicability != fj.Applicability {
			return fi.Applicability < fj.Applicability
		}
		if fi.Kind != fj.Kind {
			return fi.Kind < fj.Kind
		}
		if fi.Title != fj.Title {
			return fi.Title < fj.Title
		}
		return fi.ID < fj.ID
	})
	return fixes
}
