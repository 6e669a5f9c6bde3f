package diagfmt

import (
	"encoding/json"
	"io"

	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

// LocationJSON is a span in JSON output. Line and column fields are only
// filled with JSONOpts.IncludePositions.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Kind          string        `json:"kind"`
	Applicability string        `json:"applicability"`
	IsPreferred   bool          `json:"is_preferred,omitempty"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON: Location отсутствует у глобальных диагностик (тайминги).
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
	Fixes    []FixJSON     `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the single document written per run.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (jb jsonBuilder) location(span source.Span) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	if jb.fs == nil {
		return loc
	}
	f := jb.fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = formatPath(jb.fs, f, jb.opts.PathMode)
	if jb.opts.IncludePositions {
		start, end := jb.fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (jb jsonBuilder) diagnostic(d *diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Title:    d.Code.Title(),
		Message:  d.Message,
	}
	hasLoc := located(jb.fs, d)
	if hasLoc {
		loc := jb.location(d.Primary)
		out.Location = &loc
	}
	// у таймингов вся полезная нагрузка лежит в заметке
	if jb.opts.IncludeNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			note := NoteJSON{Message: n.Msg}
			if hasLoc {
				note.Location = jb.location(n.Span)
			}
			out.Notes = append(out.Notes, note)
		}
	}
	if jb.opts.IncludeFixes {
		for _, f := range orderedFixes(d.Fixes) {
			out.Fixes = append(out.Fixes, jb.fix(f))
		}
	}
	return out
}

func (jb jsonBuilder) fix(f *diag.Fix) FixJSON {
	out := FixJSON{
		ID:            f.ID,
		Title:         f.Title,
		Kind:          f.Kind.String(),
		Applicability: f.Applicability.String(),
		IsPreferred:   f.IsPreferred,
	}
	for _, e := range f.Edits {
		ej := FixEditJSON{Location: jb.location(e.Span), NewText: e.NewText, OldText: e.OldText}
		if jb.opts.IncludePreviews {
			if p, err := previewEdit(jb.fs, e); err == nil {
				ej.BeforeLines, ej.AfterLines = p.before, p.after
			}
		}
		out.Edits = append(out.Edits, ej)
	}
	return out
}

// BuildDiagnosticsOutput converts bag without serialising it. At most
// opts.Max diagnostics are included when Max > 0.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	if bag == nil {
		return out, nil
	}
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	jb := jsonBuilder{fs: fs, opts: opts}
	for _, d := range items {
		out.Diagnostics = append(out.Diagnostics, jb.diagnostic(d))
	}
	out.Count = len(out.Diagnostics)
	return out, nil
}

// JSON writes bag as one indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	out, err := BuildDiagnosticsOutput(bag, fs, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
