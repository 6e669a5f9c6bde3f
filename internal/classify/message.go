package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultRuleMessage opens every report produced for a flagged block.
const DefaultRuleMessage = "This comment may contain commented-out code."

// Message renders the user-facing report for a positive Result:
//
//	<rule> Line 3 classified as commented out java code with a probability of 0.96. (TIP: ...)
//
// Multi-line blocks are reported as "Lines from <start> to <end>".
func (c *Classifier) Message(rule string, res Result) string {
	if rule == "" {
		rule = DefaultRuleMessage
	}
	var b strings.Builder
	b.WriteString(rule)
	b.WriteByte(' ')
	b.WriteString(LineRange(res.StartLine, res.EndLine))
	fmt.Fprintf(&b, " classified as commented out java code with a probability of %s.", FormatProbability(res.Probability))
	fmt.Fprintf(&b, " (TIP: you can adjust classificationTreshold property (actual is %s) or use skipCheckSequence (actual is %s)).",
		FormatProbability(c.cfg.Threshold), c.cfg.SkipSequence)
	return b.String()
}

// LineRange formats "Line n" or "Lines from a to b".
func LineRange(start, end uint32) string {
	if start == end {
		return fmt.Sprintf("Line %d", start)
	}
	return fmt.Sprintf("Lines from %d to %d", start, end)
}

// FormatProbability prints p with two decimals, rounding the shortest
// decimal form of p half away from zero: 0.955 becomes "0.96", where %.2f
// would round the binary value 0.95499999... down.
func FormatProbability(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return fmt.Sprintf("%.2f", p)
	}
	return decimal.NewFromFloat(p).StringFixed(2)
}
