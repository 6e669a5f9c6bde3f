package classify

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Signal identifies one of the per-line heuristics. The numeric order is the
// order in which evidence is folded into the line probability.
type Signal uint8

const (
	// SignalTerminator: the line ends with `}`, `;` or `{`.
	SignalTerminator Signal = iota
	// SignalLogicalOp counts `||` and `&&`.
	SignalLogicalOp
	// SignalKeyword counts Java keywords anywhere in the line.
	SignalKeyword
	// SignalControlFlow counts control-flow idioms once whitespace is removed.
	SignalControlFlow
	// SignalCamelCase: a lowercase letter directly followed by an uppercase one.
	SignalCamelCase

	signalCount
)

// NumSignals is the number of heuristics scored per line.
const NumSignals = int(signalCount)

func (s Signal) String() string {
	switch s {
	case SignalTerminator:
		return "terminator"
	case SignalLogicalOp:
		return "logical-op"
	case SignalKeyword:
		return "keyword"
	case SignalControlFlow:
		return "control-flow"
	case SignalCamelCase:
		return "camel-case"
	}
	return "unknown"
}

// Weight returns the per-match severity w of the signal; k matches yield
// 1 - (1-w)^k.
func (s Signal) Weight() float64 {
	if s >= signalCount {
		return 0
	}
	return weights[s]
}

var weights = [signalCount]float64{
	SignalTerminator:  0.95,
	SignalLogicalOp:   0.7,
	SignalKeyword:     0.1,
	SignalControlFlow: 0.95,
	SignalCamelCase:   0.5,
}

// Terminators end a code statement or open/close a block.
var Terminators = []string{"}", ";", "{"}

// LogicalOperators are counted anywhere in the line.
var LogicalOperators = []string{"||", "&&"}

// Keywords are matched as plain substrings, leftmost-first in this order, so
// "interface" wins over "int" at the same position.
var Keywords = []string{
	"public", "abstract", "class", "implements", "extends", "return", "throw",
	"private", "protected", "enum", "continue", "assert", "package", "synchronized",
	"boolean", "this", "double", "instanceof", "final", "interface", "static",
	"void", "long", "int", "float", "super", "true", "case:",
}

// ControlFlow idioms are matched against the line with all whitespace removed.
var ControlFlow = []string{"++", "for(", "if(", "while(", "catch(", "switch(", "try{", "else{"}

var (
	terminatorRe  = regexp.MustCompile("(?:" + alternation(Terminators) + ")$")
	logicalOpRe   = regexp.MustCompile(alternation(LogicalOperators))
	keywordRe     = regexp.MustCompile(alternation(Keywords))
	controlFlowRe = regexp.MustCompile(alternation(ControlFlow))
)

// alternation quotes every literal and joins them into one regexp alternation.
func alternation(literals []string) string {
	quoted := make([]string, len(literals))
	for i, lit := range literals {
		quoted[i] = regexp.QuoteMeta(lit)
	}
	return strings.Join(quoted, "|")
}

// Evidence is the scored breakdown of a single line.
type Evidence struct {
	Counts [signalCount]int
	P      [signalCount]float64
}

// Combine folds the evidence with the noisy-OR rule in signal order.
func (e Evidence) Combine() float64 {
	return NoisyOr(e.P[:]...)
}

// NoisyOr returns the probability that at least one of several independent
// signals fired, accumulated left to right: P = 1 - (1-P)(1-p).
func NoisyOr(ps ...float64) float64 {
	p := 0.0
	for _, pi := range ps {
		p = 1 - ((1 - p) * (1 - pi))
	}
	return p
}

// Saturate maps k matches of a signal with weight w to 1 - (1-w)^k.
func Saturate(weight float64, k int) float64 {
	return 1 - math.Pow(1-weight, float64(k))
}

// LineScorer computes the combined code probability of one physical line.
type LineScorer interface {
	Score(line string) float64
}

// EvidenceScorer is the stock LineScorer built from the five heuristics.
type EvidenceScorer struct{}

// Score implements LineScorer.
func (EvidenceScorer) Score(line string) float64 {
	return Score(line).Combine()
}

// Score evaluates every heuristic on the line.
func Score(line string) Evidence {
	var ev Evidence
	ev.Counts[SignalTerminator] = boolCount(terminatorRe.MatchString(line))
	ev.Counts[SignalLogicalOp] = countMatches(logicalOpRe, line)
	ev.Counts[SignalKeyword] = countMatches(keywordRe, line)
	ev.Counts[SignalControlFlow] = countMatches(controlFlowRe, stripWhitespace(line))
	ev.Counts[SignalCamelCase] = boolCount(HasCamelCase(line))
	for s := range signalCount {
		ev.P[s] = Saturate(weights[s], ev.Counts[s])
	}
	return ev
}

func countMatches(re *regexp.Regexp, s string) int {
	return len(re.FindAllStringIndex(s, -1))
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}

// stripWhitespace drops space, \t, \n, \v, \f and \r.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			return -1
		}
		return r
	}, s)
}

// HasCamelCase reports whether some lowercase letter is immediately followed
// by an uppercase letter. The character before the first one counts as a space.
func HasCamelCase(line string) bool {
	prev := ' '
	for _, r := range line {
		if unicode.Is(unicode.Ll, prev) && unicode.Is(unicode.Lu, r) {
			return true
		}
		prev = r
	}
	return false
}
