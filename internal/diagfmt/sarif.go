package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

// SarifLog is the root of a SARIF 2.1.0 document.
type SarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	ShortDescription     sarifMessage       `json:"shortDescription"`
	DefaultConfiguration sarifConfiguration `json:"defaultConfiguration"`
}

type sarifConfiguration struct {
	Level string `json:"level"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations,omitempty"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
	Fixes            []sarifFix      `json:"fixes,omitempty"`
}

type sarifLocation struct {
	ID               int                   `json:"id,omitempty"`
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0). Run-wide
// diagnostics such as timings have no location and are not emitted.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	log := BuildSarif(bag, fs, meta)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

// BuildSarif builds the SARIF document without serializing it.
func BuildSarif(bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) SarifLog {
	if meta.PathMode == PathModeAuto {
		meta.PathMode = PathModeRelative
	}
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
			Rules:          []sarifRule{},
		}},
		Results: []sarifResult{},
	}

	var items []*diag.Diagnostic
	if bag != nil {
		items = bag.Items()
	}

	ruleIndex := make(map[diag.Code]int)
	codes := make([]diag.Code, 0)
	for _, d := range items {
		if !located(fs, d) {
			continue
		}
		if _, ok := ruleIndex[d.Code]; !ok {
			ruleIndex[d.Code] = 0
			codes = append(codes, d.Code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for i, c := range codes {
		ruleIndex[c] = i
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
			ID:                   c.ID(),
			Name:                 ruleName(c),
			ShortDescription:     sarifMessage{Text: c.Title()},
			DefaultConfiguration: sarifConfiguration{Level: sarifLevel(defaultSeverity(c))},
		})
	}

	failed := false
	for _, d := range items {
		if d.Severity == diag.SevError {
			failed = true
		}
		if !located(fs, d) {
			continue
		}
		res := sarifResult{
			RuleID:    d.Code.ID(),
			RuleIndex: ruleIndex[d.Code],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{PhysicalLocation: sarifPhysical(fs, d.Primary, meta.PathMode)}},
		}
		for i, n := range d.Notes {
			if fs.Get(n.Span.File) == nil {
				continue
			}
			res.RelatedLocations = append(res.RelatedLocations, sarifLocation{
				ID:               i + 1,
				PhysicalLocation: sarifPhysical(fs, n.Span, meta.PathMode),
				Message:          &sarifMessage{Text: n.Msg},
			})
		}
		for _, f := range orderedFixes(d.Fixes) {
			if sf, ok := sarifFixOf(fs, f, meta.PathMode); ok {
				res.Fixes = append(res.Fixes, sf)
			}
		}
		run.Results = append(run.Results, res)
	}

	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           append([]string(nil), meta.InvocationArgs...),
			ExecutionSuccessful: !failed,
		}}
	}

	return SarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}}
}

func sarifFixOf(fs *source.FileSet, f *diag.Fix, mode PathMode) (sarifFix, bool) {
	byURI := make(map[string]int)
	out := sarifFix{Description: sarifMessage{Text: f.Title}}
	for _, e := range f.Edits {
		file := fs.Get(e.Span.File)
		if file == nil {
			return sarifFix{}, false
		}
		uri := sarifURI(fs, file, mode)
		idx, ok := byURI[uri]
		if !ok {
			idx = len(out.ArtifactChanges)
			byURI[uri] = idx
			out.ArtifactChanges = append(out.ArtifactChanges, sarifArtifactChange{
				ArtifactLocation: sarifArtifactLocation{URI: uri},
			})
		}
		rep := sarifReplacement{DeletedRegion: sarifRegionOf(fs, e.Span)}
		if e.NewText != "" {
			rep.InsertedContent = &sarifMessage{Text: e.NewText}
		}
		out.ArtifactChanges[idx].Replacements = append(out.ArtifactChanges[idx].Replacements, rep)
	}
	return out, len(out.ArtifactChanges) > 0
}

func sarifPhysical(fs *source.FileSet, sp source.Span, mode PathMode) sarifPhysicalLocation {
	return sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: sarifURI(fs, fs.Get(sp.File), mode)},
		Region:           sarifRegionOf(fs, sp),
	}
}

func sarifRegionOf(fs *source.FileSet, sp source.Span) sarifRegion {
	start, end := fs.Resolve(sp)
	return sarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
		ByteOffset:  sp.Start,
		ByteLength:  sp.Len(),
	}
}

func sarifURI(fs *source.FileSet, f *source.File, mode PathMode) string {
	return filepath.ToSlash(formatPath(fs, f, mode))
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// defaultSeverity is the severity a code is reported with unless settings
// change it.
func defaultSeverity(c diag.Code) diag.Severity {
	switch {
	case c >= diag.LexInfo && c < diag.CmtInfo, c == diag.IOLoadFileError, c == diag.CfgInvalidManifest:
		return diag.SevError
	case c == diag.CmtCommentedOutCode, c == diag.IOCacheError:
		return diag.SevWarning
	}
	return diag.SevInfo
}

// ruleName turns "Commented-out code" into "CommentedOutCode".
func ruleName(c diag.Code) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(c.Title(), func(r rune) bool {
		return r == ' ' || r == '-' || r == '.' || r == '/'
	}) {
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}
	return b.String()
}
