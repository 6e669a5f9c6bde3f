package fix

import (
	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

// Option tweaks a fix while it is being built.
type Option func(*diag.Fix)

// WithID sets the identifier `cmtcode fix --id` matches against.
func WithID(id string) Option {
	return func(f *diag.Fix) { f.ID = id }
}

// WithApplicability overrides the default always-safe applicability.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) { f.Applicability = app }
}

// Preferred marks the fix shown first among the suggestions of a diagnostic.
func Preferred() Option {
	return func(f *diag.Fix) { f.IsPreferred = true }
}

func build(title string, edit diag.TextEdit, opts []Option) *diag.Fix {
	f := &diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         []diag.TextEdit{edit},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// InsertText inserts text at at.Start; the end of at is ignored.
func InsertText(title string, at source.Span, text string, opts ...Option) *diag.Fix {
	at.End = at.Start
	return build(title, diag.TextEdit{Span: at, NewText: text}, opts)
}

// DeleteSpan removes span. expect is compared with the current bytes of the
// span before anything is written, so a file edited after the check is left
// alone.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) *diag.Fix {
	return build(title, diag.TextEdit{Span: span, OldText: expect}, opts)
}
