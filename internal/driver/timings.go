package driver

import (
	"encoding/json"
	"fmt"

	"cmtcode/internal/diag"
	"cmtcode/internal/observ"
	"cmtcode/internal/source"
)

// timingNote is the JSON carried in the note of an OBS6001 diagnostic.
type timingNote struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
	observ.Report
}

// AppendTimings adds an OBS6001 info diagnostic with report serialised into
// its note. kind defaults to "check". Timings ignore the bag limit.
func AppendTimings(bag *diag.Bag, kind, path string, report observ.Report) {
	if bag == nil || len(report.Phases) == 0 {
		return
	}
	if kind == "" {
		kind = "check"
	}
	note, err := json.Marshal(timingNote{Kind: kind, Path: path, Report: report})
	if err != nil {
		return
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", kind, report.TotalMS)
	if path != "" {
		msg += ", " + path
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).WithNote(source.Span{}, string(note))
	if !bag.Add(d) {
		extra := diag.NewBag(0)
		extra.Add(d)
		bag.Merge(extra)
	}
}
