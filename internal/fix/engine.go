// Package fix applies the text edits attached to diagnostics back to disk.
package fix

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

// ErrNoFixes is returned when nothing was applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode selects which of the collected fixes are applied.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first always-safe fix, or the first fix at all.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies every always-safe fix that does not conflict.
	ApplyModeAll
	// ApplyModeID applies the single fix whose ID equals TargetID.
	ApplyModeID
)

type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun computes the new contents without touching the files.
	DryRun bool
	// Backup keeps the previous content next to each file as <path>.bak.
	Backup bool
}

// AppliedFix describes a fix whose edits made it into the output.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix is a fix left out, with the reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange is the outcome for one rewritten file.
type FileChange struct {
	Path      string
	EditCount int
	// Before and After hold the whole file content around the change.
	Before []byte
	After  []byte
}

type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

func (r *ApplyResult) skip(f *diag.Fix, reason string) {
	r.Skipped = append(r.Skipped, SkippedFix{ID: f.ID, Title: f.Title, Reason: reason})
}

// Apply picks fixes out of diagnostics according to opts and writes the
// edited files. Selected fixes are tried in source order; a fix whose edits
// overlap an already accepted one, or whose expected text no longer matches,
// is skipped as a whole. ErrNoFixes is returned together with the result
// when nothing was applied.
func Apply(fs *source.FileSet, diagnostics []*diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	res := &ApplyResult{
		Applied:     []AppliedFix{},
		Skipped:     []SkippedFix{},
		FileChanges: []FileChange{},
	}
	if fs == nil {
		return res, fmt.Errorf("fix: FileSet is nil")
	}

	cands, skipped := gatherCandidates(fs, diagnostics)
	res.Skipped = append(res.Skipped, skipped...)
	orderCandidates(cands)
	chosen := choose(cands, opts, res)

	editors := make(map[source.FileID]*fileEditor)
	for _, c := range chosen {
		if reason := stage(fs, editors, c.fix); reason != "" {
			res.skip(c.fix, reason)
			continue
		}
		res.Applied = append(res.Applied, AppliedFix{
			ID:            c.fix.ID,
			Title:         c.fix.Title,
			Code:          c.diag.Code,
			Message:       c.diag.Message,
			Applicability: c.fix.Applicability,
			PrimaryPath:   primaryPath(fs, c.diag.Primary.File),
			EditCount:     len(c.fix.Edits),
		})
	}
	if len(res.Applied) == 0 {
		return res, ErrNoFixes
	}

	dirty := make([]*fileEditor, 0, len(editors))
	for _, ed := range editors {
		if len(ed.accepted) > 0 {
			dirty = append(dirty, ed)
		}
	}
	rel := func(ed *fileEditor) string { return ed.file.FormatPath("relative", fs.BaseDir()) }
	slices.SortFunc(dirty, func(a, b *fileEditor) int { return strings.Compare(rel(a), rel(b)) })

	for _, ed := range dirty {
		after := ed.render()
		if !opts.DryRun {
			if err := writeFile(ed.file.Path, denormalize(ed.file.Flags, after), opts.Backup); err != nil {
				return res, err
			}
		}
		res.FileChanges = append(res.FileChanges, FileChange{
			Path:      rel(ed),
			EditCount: len(ed.accepted),
			Before:    ed.file.Content,
			After:     after,
		})
	}
	return res, nil
}

// stage checks every edit of f against the files' editors and accepts them
// all, or none. The returned reason is empty on success.
func stage(fs *source.FileSet, editors map[source.FileID]*fileEditor, f *diag.Fix) string {
	for _, e := range f.Edits {
		ed, ok := editors[e.Span.File]
		if !ok {
			ed = &fileEditor{file: fs.Get(e.Span.File)}
			editors[e.Span.File] = ed
		}
		if reason := ed.check(e, fs.BaseDir()); reason != "" {
			return reason
		}
	}
	// правки одного fix между собой тоже не должны пересекаться
	for i, a := range f.Edits {
		for _, b := range f.Edits[i+1:] {
			if a.Span.File == b.Span.File && spansConflict(a, b) {
				return "fix contains overlapping edits"
			}
		}
	}
	for _, e := range f.Edits {
		editors[e.Span.File].accept(e)
	}
	return ""
}

func primaryPath(fs *source.FileSet, id source.FileID) string {
	if f := fs.Get(id); f != nil {
		return f.FormatPath("auto", fs.BaseDir())
	}
	return ""
}
