package diag

import "cmtcode/internal/source"

// Reporter принимает диагностики от лексера и проверки комментариев.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []*Fix)
}

// BagReporter складывает всё в Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []*Fix) {
	if r.Bag == nil {
		return
	}
	d := New(sev, code, primary, msg)
	d.Notes, d.Fixes = notes, fixes
	r.Bag.Add(d)
}

// ReportBuilder collects notes and fixes of one diagnostic and hands the
// result to a Reporter on Emit. A nil Reporter swallows the diagnostic.
type ReportBuilder struct {
	to   Reporter
	d    *Diagnostic
	sent bool
}

func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, primary, msg)}
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	b.d.WithNote(sp, msg)
	return b
}

func (b *ReportBuilder) WithFixSuggestion(fix *Fix) *ReportBuilder {
	b.d.WithFixSuggestion(fix)
	return b
}

// Emit reports the diagnostic; calls after the first do nothing.
func (b *ReportBuilder) Emit() {
	if b.sent {
		return
	}
	b.sent = true
	if b.to != nil {
		d := b.d
		b.to.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes, d.Fixes)
	}
}
