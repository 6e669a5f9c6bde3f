package driver

import (
	"cmtcode/internal/classify"
	"cmtcode/internal/comment"
	"cmtcode/internal/diag"
	"cmtcode/internal/observ"
	"cmtcode/internal/source"
)

// Verdict pairs an extracted comment with its classification.
type Verdict struct {
	Block  comment.Block
	Result classify.Result
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	Path   string
	FileID source.FileID
	// Loaded is false when the file could not be read; Bag then holds the IO error.
	Loaded bool
	Cached bool
	// Comments is the number of comment blocks extracted from the file.
	Comments int
	// Verdicts holds flagged comments only, or every comment with
	// Options.KeepVerdicts.
	Verdicts []Verdict
	Bag      *diag.Bag
}

// Findings returns how many comments were reported as commented-out code.
func (r *FileResult) Findings() int {
	if r == nil || r.Bag == nil {
		return 0
	}
	return r.Bag.Count(diag.CmtCommentedOutCode)
}

// Result aggregates a check run.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
	// Bag holds the diagnostics of all files, sorted.
	Bag     *diag.Bag
	Timings observ.Report
}

// Findings returns the total number of commented-out code reports.
func (r *Result) Findings() int {
	if r == nil || r.Bag == nil {
		return 0
	}
	return r.Bag.Count(diag.CmtCommentedOutCode)
}

// Comments returns the number of comment blocks seen across all files.
func (r *Result) Comments() int {
	n := 0
	for i := range r.Files {
		n += r.Files[i].Comments
	}
	return n
}

// CachedFiles returns how many files were answered from the disk cache.
func (r *Result) CachedFiles() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].Cached {
			n++
		}
	}
	return n
}

// collect merges the per-file bags into r.Bag in a deterministic order.
func (r *Result) collect() {
	r.Bag = diag.NewBag(0)
	for i := range r.Files {
		r.Bag.Merge(r.Files[i].Bag)
	}
	r.Bag.Sort()
}
