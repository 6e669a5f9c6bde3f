package diag

import "cmtcode/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) *Diagnostic {
	return &Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func (d *Diagnostic) WithNote(sp source.Span, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// WithFixSuggestion appends fix; nil is ignored.
func (d *Diagnostic) WithFixSuggestion(fix *Fix) *Diagnostic {
	if fix != nil {
		d.Fixes = append(d.Fixes, fix)
	}
	return d
}
