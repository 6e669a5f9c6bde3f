package classify

import (
	"regexp"
	"strings"

	"cmtcode/internal/comment"
)

// Reason explains how a verdict was reached.
type Reason uint8

const (
	// ReasonEmpty: the block has no lines to score.
	ReasonEmpty Reason = iota
	// ReasonJavadoc: the first line opens a Javadoc block and Javadocs are skipped.
	ReasonJavadoc
	// ReasonSkipSequence: a line carries the author's skip marker.
	ReasonSkipSequence
	// ReasonBelowThreshold: every line was scored, none reached the threshold.
	ReasonBelowThreshold
	// ReasonScored: a line reached the threshold.
	ReasonScored
)

func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "empty"
	case ReasonJavadoc:
		return "javadoc"
	case ReasonSkipSequence:
		return "skip-sequence"
	case ReasonBelowThreshold:
		return "below-threshold"
	case ReasonScored:
		return "scored"
	}
	return "unknown"
}

// Result is the verdict for one comment block.
type Result struct {
	IsCode bool
	// Probability of the line that triggered the verdict; 0 unless IsCode.
	Probability float64
	StartLine   uint32
	EndLine     uint32
	// Line is the 0-based index of the triggering line inside the block, -1 otherwise.
	Line   int
	Reason Reason
}

var javadocRe = regexp.MustCompile(`^[ \t]*/\*\*.*$`)

// SkipPattern builds the per-line escape hatch: a line comment or block
// opener (any number of extra stars), optional blanks, then the literal seq.
func SkipPattern(seq string) *regexp.Regexp {
	return regexp.MustCompile(`^[ \t]*(//|/\*(\*)*)[ \t]*` + regexp.QuoteMeta(seq) + `.*$`)
}

// Classifier decides whether comment blocks look like commented-out code.
// It is immutable after New and safe for concurrent use.
type Classifier struct {
	cfg    Config
	skip   *regexp.Regexp
	scorer LineScorer
}

// New builds a Classifier with the stock evidence scorer. cfg is expected to
// have passed Validate.
func New(cfg Config) *Classifier {
	return NewWithScorer(cfg, EvidenceScorer{})
}

// NewWithScorer builds a Classifier around a custom LineScorer.
func NewWithScorer(cfg Config, scorer LineScorer) *Classifier {
	if scorer == nil {
		scorer = EvidenceScorer{}
	}
	return &Classifier{
		cfg:    cfg,
		skip:   SkipPattern(cfg.SkipSequence),
		scorer: scorer,
	}
}

// Config returns the settings the classifier was built with.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Classify runs the heuristic over an extracted comment block.
func (c *Classifier) Classify(b comment.Block) Result {
	return c.ClassifyText(b.Text, b.StartLine, b.EndLine)
}

// ClassifyText runs the heuristic over raw comment text spanning start..end.
func (c *Classifier) ClassifyText(text string, start, end uint32) Result {
	res := Result{StartLine: start, EndLine: end, Line: -1}

	lines := SplitLines(text)
	if len(lines) == 0 {
		res.Reason = ReasonEmpty
		return res
	}

	if c.cfg.SkipJavaDocs && javadocRe.MatchString(lines[0]) {
		res.Reason = ReasonJavadoc
		return res
	}

	for i, line := range lines {
		if c.skip.MatchString(line) {
			res.Reason = ReasonSkipSequence
			return res
		}
		// первая строка, достигшая порога, решает всё; остальные не считаем
		if p := c.scorer.Score(line); p >= c.cfg.Threshold {
			res.IsCode = true
			res.Probability = p
			res.Line = i
			res.Reason = ReasonScored
			return res
		}
	}

	res.Reason = ReasonBelowThreshold
	return res
}

// SplitLines splits on \n, \r\n and \r. Trailing empty lines are dropped,
// so text made only of line breaks yields no lines at all.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
