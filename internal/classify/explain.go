package classify

// LineReport is the per-line breakdown shown by `cmtcode explain`.
type LineReport struct {
	Index       int
	Text        string
	Evidence    Evidence
	Probability float64
	// Skipped is set on the line carrying the skip sequence.
	Skipped bool
	// Triggered is set on the first line whose probability reaches the threshold.
	Triggered bool
}

// Explain scores every line of text with the stock heuristics, ignoring the
// early exit so the whole block can be inspected. The guards are reported
// but do not stop the walk; the verdict itself comes from Classify.
func (c *Classifier) Explain(text string) []LineReport {
	lines := SplitLines(text)
	reports := make([]LineReport, 0, len(lines))
	decided := false
	for i, line := range lines {
		ev := Score(line)
		r := LineReport{
			Index:       i,
			Text:        line,
			Evidence:    ev,
			Probability: ev.Combine(),
			Skipped:     c.skip.MatchString(line),
		}
		switch {
		case decided:
		case r.Skipped:
			decided = true
		case r.Probability >= c.cfg.Threshold:
			r.Triggered = true
			decided = true
		}
		reports = append(reports, r)
	}
	return reports
}

// IsJavadoc reports whether text opens with `/**` on its first line.
func IsJavadoc(text string) bool {
	lines := SplitLines(text)
	return len(lines) > 0 && javadocRe.MatchString(lines[0])
}
