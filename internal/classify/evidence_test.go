package classify

import (
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestNoisyOrMatchesProductForm(t *testing.T) {
	got := NoisyOr(0.95, 0, 0.1, 0, 0)
	if !almostEqual(got, 0.955) {
		t.Fatalf("NoisyOr(0.95, 0, 0.1, 0, 0) = %v, want 0.955", got)
	}

	ps := []float64{0.3, 0.5, 0.25, 0.9, 0.1}
	product := 1.0
	for _, p := range ps {
		product *= 1 - p
	}
	if got := NoisyOr(ps...); !almostEqual(got, 1-product) {
		t.Fatalf("NoisyOr(%v) = %v, want %v", ps, got, 1-product)
	}

	if got := NoisyOr(); got != 0 {
		t.Fatalf("NoisyOr() = %v, want 0", got)
	}
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		weight float64
		k      int
		want   float64
	}{
		{0.95, 0, 0},
		{0.95, 1, 0.95},
		{0.7, 2, 0.91},
		{0.1, 3, 1 - 0.9*0.9*0.9},
		{0.5, 1, 0.5},
	}
	for _, tt := range tests {
		if got := Saturate(tt.weight, tt.k); !almostEqual(got, tt.want) {
			t.Errorf("Saturate(%v, %d) = %v, want %v", tt.weight, tt.k, got, tt.want)
		}
	}
}

func TestScoreCounts(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		signal Signal
		want   int
	}{
		{"semicolon at end", "int x = 5;", SignalTerminator, 1},
		{"open brace at end", "if (a) {", SignalTerminator, 1},
		{"close brace at end", "}", SignalTerminator, 1},
		{"trailing blank hides terminator", "x = 1; ", SignalTerminator, 0},
		{"terminator mid-line", "a; b", SignalTerminator, 0},
		{"two logical ops", "a && b || c", SignalLogicalOp, 2},
		{"triple pipe is one match", "a ||| b", SignalLogicalOp, 1},
		{"single ampersand", "a & b", SignalLogicalOp, 0},
		{"interface beats int", "interface", SignalKeyword, 1},
		{"substring keyword", "print", SignalKeyword, 1},
		{"case needs colon", "in case of fire", SignalKeyword, 0},
		{"case with colon", "case: 1", SignalKeyword, 1},
		{"several keywords", "public static void main", SignalKeyword, 3},
		{"capitalised keyword ignored", "This is it", SignalKeyword, 0},
		{"for loop with spaces", "for (int i = 0; i < n; i ++)", SignalControlFlow, 2},
		{"if with tab", "if\t(x)", SignalControlFlow, 1},
		{"try block", "try {", SignalControlFlow, 1},
		{"else block", "} else {", SignalControlFlow, 1},
		{"prose has no control flow", "we tried it", SignalControlFlow, 0},
		{"camel case", "myVariable", SignalCamelCase, 1},
		{"no camel case", "plain words", SignalCamelCase, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Score(tt.line)
			if got := ev.Counts[tt.signal]; got != tt.want {
				t.Fatalf("Score(%q).Counts[%s] = %d, want %d", tt.line, tt.signal, got, tt.want)
			}
			wantP := Saturate(tt.signal.Weight(), tt.want)
			if !almostEqual(ev.P[tt.signal], wantP) {
				t.Fatalf("Score(%q).P[%s] = %v, want %v", tt.line, tt.signal, ev.P[tt.signal], wantP)
			}
		})
	}
}

func TestScoreStatement(t *testing.T) {
	ev := Score("int x = 5;")
	want := [NumSignals]float64{0.95, 0, 0.1, 0, 0}
	for i := range want {
		if !almostEqual(ev.P[i], want[i]) {
			t.Fatalf("P[%s] = %v, want %v", Signal(i), ev.P[i], want[i])
		}
	}
	if got := ev.Combine(); !almostEqual(got, 0.955) {
		t.Fatalf("Combine() = %v, want 0.955", got)
	}
}

func TestScoreProseIsZero(t *testing.T) {
	if got := (EvidenceScorer{}).Score("This is a great helper method."); got != 0 {
		t.Fatalf("Score = %v, want 0", got)
	}
}

func TestScoreMonotonic(t *testing.T) {
	fragments := []string{"&& ", "|| ", "return ", "static ", "i++ ", "if(", "while ("}
	for _, frag := range fragments {
		prev := -1.0
		for n := range 6 {
			line := "x " + strings.Repeat(frag, n)
			p := (EvidenceScorer{}).Score(line)
			if p < prev {
				t.Fatalf("fragment %q: score dropped from %v to %v at n=%d", frag, prev, p, n)
			}
			prev = p
		}
	}
}

func TestHasCamelCase(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"myVariable", true},
		{"MyClass", true},
		{"HTTP", false},
		{"a B", false},
		{"", false},
		{"straße", false},
		{"éÉ", true},
		{"x1Y", false},
	}
	for _, tt := range tests {
		if got := HasCamelCase(tt.line); got != tt.want {
			t.Errorf("HasCamelCase(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestSignalWeights(t *testing.T) {
	want := map[Signal]float64{
		SignalTerminator:  0.95,
		SignalLogicalOp:   0.7,
		SignalKeyword:     0.1,
		SignalControlFlow: 0.95,
		SignalCamelCase:   0.5,
	}
	for s, w := range want {
		if got := s.Weight(); got != w {
			t.Errorf("%s.Weight() = %v, want %v", s, got, w)
		}
	}
	if got := Signal(99).Weight(); got != 0 {
		t.Errorf("unknown signal weight = %v, want 0", got)
	}
}
