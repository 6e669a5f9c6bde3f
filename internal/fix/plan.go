package fix

import (
	"cmp"
	"fmt"
	"slices"

	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

type candidate struct {
	diag *diag.Diagnostic
	fix  *diag.Fix
	seq  int
}

// gatherCandidates flattens the fixes of diagnostics. Fixes without edits,
// fixes aimed at files outside fs and repeated IDs are reported as skipped.
// A fix without ID gets a synthetic one; the diagnostic is not modified.
func gatherCandidates(fs *source.FileSet, diagnostics []*diag.Diagnostic) ([]candidate, []SkippedFix) {
	var (
		out   []candidate
		skips []SkippedFix
	)
	seen := make(map[string]bool)
	drop := func(f *diag.Fix, reason string) {
		skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: reason})
	}

	for _, d := range diagnostics {
		if d == nil {
			continue
		}
		for i, f := range d.Fixes {
			switch {
			case f == nil:
				continue
			case len(f.Edits) == 0:
				drop(f, "fix has no edits")
				continue
			case !knownFiles(fs, f.Edits):
				drop(f, "fix targets an unknown file")
				continue
			}
			if f.ID == "" {
				named := *f
				named.ID = fmt.Sprintf("%s@%d:%d#%d", d.Code.ID(), d.Primary.File, d.Primary.Start, i)
				f = &named
			}
			if seen[f.ID] {
				drop(f, "duplicate fix id")
				continue
			}
			seen[f.ID] = true
			out = append(out, candidate{diag: d, fix: f, seq: len(out)})
		}
	}
	return out, skips
}

func knownFiles(fs *source.FileSet, edits []diag.TextEdit) bool {
	for _, e := range edits {
		if fs.Get(e.Span.File) == nil {
			return false
		}
	}
	return true
}

// orderCandidates puts candidates in source order of their diagnostics.
// Ties keep the gathering order, with preferred fixes first.
func orderCandidates(cands []candidate) {
	slices.SortStableFunc(cands, func(a, b candidate) int {
		pa, pb := a.diag.Primary, b.diag.Primary
		if c := cmp.Compare(pa.File, pb.File); c != 0 {
			return c
		}
		if c := cmp.Compare(pa.Start, pb.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(pa.End, pb.End); c != 0 {
			return c
		}
		if a.fix.IsPreferred != b.fix.IsPreferred {
			if a.fix.IsPreferred {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

// choose applies the selection mode. Candidates passed over for a reason the
// user should see are recorded in res.
func choose(cands []candidate, opts ApplyOptions, res *ApplyResult) []candidate {
	switch opts.Mode {
	case ApplyModeID:
		i := slices.IndexFunc(cands, func(c candidate) bool { return c.fix.ID == opts.TargetID })
		if i < 0 {
			res.Skipped = append(res.Skipped, SkippedFix{ID: opts.TargetID, Reason: "fix id not found"})
			return nil
		}
		return cands[i : i+1]

	case ApplyModeAll:
		var picked []candidate
		for _, c := range cands {
			if c.fix.Applicability != diag.FixApplicabilityAlwaysSafe {
				res.skip(c.fix, "applicability is "+c.fix.Applicability.String())
				continue
			}
			picked = append(picked, c)
		}
		return picked

	case ApplyModeOnce:
		if len(cands) == 0 {
			return nil
		}
		i := slices.IndexFunc(cands, func(c candidate) bool {
			return c.fix.Applicability == diag.FixApplicabilityAlwaysSafe
		})
		if i < 0 {
			i = 0
		}
		return cands[i : i+1]
	}
	return nil
}
