package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"cmtcode/internal/source"
)

// shortLine is one row of the short format.
type shortLine struct {
	label string // severity in lower case, or "note"
	code  string
	path  string
	pos   source.LineCol
	msg   string
}

func (l shortLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.label, l.code, l.path, l.pos.Line, l.pos.Col, l.msg)
}

// FormatShortDiagnostics renders one diagnostic per line,
// "<severity> <CODE> <path>:<line>:<col> <message>", ordered by position so
// the output can be diffed between runs. With includeNotes every note gets a
// "note" row of its own. Run-wide diagnostics (timings) have no position and
// are left out, as is anything pointing at a file fs does not know.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil {
		return ""
	}
	var rows []shortLine
	add := func(label string, code Code, span source.Span, msg string) {
		file := fs.Get(span.File)
		if file == nil {
			return
		}
		start, _ := fs.Resolve(span)
		rows = append(rows, shortLine{
			label: label,
			code:  code.ID(),
			path:  slashPath(file.FormatPath("relative", fs.BaseDir())),
			pos:   start,
			msg:   oneLine(msg),
		})
	}
	for _, d := range diags {
		if d == nil || d.Code.Global() {
			continue
		}
		add(strings.ToLower(d.Severity.String()), d.Code, d.Primary, d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			add("note", d.Code, n.Span, n.Msg)
		}
	}

	slices.SortStableFunc(rows, func(a, b shortLine) int {
		return cmp.Or(
			strings.Compare(a.path, b.path),
			cmp.Compare(a.pos.Line, b.pos.Line),
			cmp.Compare(a.pos.Col, b.pos.Col),
			strings.Compare(a.label, b.label),
			strings.Compare(a.code, b.code),
			strings.Compare(a.msg, b.msg),
		)
	})

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String()
	}
	return strings.Join(out, "\n")
}

func slashPath(p string) string {
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

// oneLine folds a multi-line message into a single line.
func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
