package classify

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"cmtcode/internal/comment"
)

func TestClassifyStatementIsCode(t *testing.T) {
	c := New(DefaultConfig())
	res := c.ClassifyText("int x = 5;", 7, 7)
	if !res.IsCode {
		t.Fatalf("expected code, got %+v", res)
	}
	if !almostEqual(res.Probability, 0.955) {
		t.Fatalf("probability = %v, want 0.955", res.Probability)
	}
	if res.Line != 0 || res.Reason != ReasonScored {
		t.Fatalf("unexpected trigger info: line=%d reason=%s", res.Line, res.Reason)
	}
	if res.StartLine != 7 || res.EndLine != 7 {
		t.Fatalf("line range = %d..%d, want 7..7", res.StartLine, res.EndLine)
	}
}

func TestClassifyProseIsNotCode(t *testing.T) {
	c := New(DefaultConfig())
	res := c.ClassifyText("// This is a great helper method.", 1, 1)
	if res.IsCode {
		t.Fatalf("expected prose, got %+v", res)
	}
	if res.Probability != 0 || res.Line != -1 || res.Reason != ReasonBelowThreshold {
		t.Fatalf("unexpected negative result: %+v", res)
	}
}

func TestClassifyJavadocGuard(t *testing.T) {
	text := "/**\n * int x = 5;\n * return x;\n */"

	res := New(DefaultConfig()).ClassifyText(text, 1, 4)
	if res.IsCode || res.Reason != ReasonJavadoc {
		t.Fatalf("javadoc must be skipped, got %+v", res)
	}

	cfg := DefaultConfig()
	cfg.SkipJavaDocs = false
	res = New(cfg).ClassifyText(text, 1, 4)
	if !res.IsCode || res.Line != 1 {
		t.Fatalf("javadoc scanning enabled: expected code on line index 1, got %+v", res)
	}
}

func TestClassifyJavadocGuardOnlyChecksFirstLine(t *testing.T) {
	text := "/*\n/** int x = 5;"
	res := New(DefaultConfig()).ClassifyText(text, 1, 2)
	if !res.IsCode {
		t.Fatalf("javadoc opener on a later line must not skip the block, got %+v", res)
	}
}

func TestClassifySkipSequence(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"line comment", "// cmt int x = 5;"},
		{"no blank before marker", "//cmt int x = 5;"},
		{"block opener", "/* cmt\nint x = 5;\n*/"},
		{"indented", "  \t// cmtanything;"},
		{"later line", "/*\n   plain words\n// cmt\nfoo(bar);\n*/"},
	}
	c := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.ClassifyText(tt.text, 1, 1)
			if res.IsCode || res.Reason != ReasonSkipSequence {
				t.Fatalf("expected skip, got %+v", res)
			}
		})
	}
}

func TestClassifySkipAfterExtraStars(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SkipJavaDocs = false
	res := New(cfg).ClassifyText("/*** cmt int x = 5; */", 1, 1)
	if res.IsCode || res.Reason != ReasonSkipSequence {
		t.Fatalf("expected skip, got %+v", res)
	}
}

func TestClassifySkipAfterTriggerDoesNotApply(t *testing.T) {
	// строки проверяются по порядку: код на второй строке срабатывает раньше маркера
	text := "/*\nint x = 5;\n// cmt\n*/"
	res := New(DefaultConfig()).ClassifyText(text, 1, 4)
	if !res.IsCode || res.Line != 1 {
		t.Fatalf("expected code on line index 1, got %+v", res)
	}
}

func TestClassifySkipSequenceIsLiteral(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SkipSequence = "a.b"
	c := New(cfg)

	if res := c.ClassifyText("// axb int x = 5;", 1, 1); !res.IsCode {
		t.Fatalf("regexp metacharacters in the skip sequence must be literal, got %+v", res)
	}
	if res := c.ClassifyText("// a.b int x = 5;", 1, 1); res.IsCode {
		t.Fatalf("expected skip for literal marker, got %+v", res)
	}
}

func TestClassifyMultiLineReportsWholeRange(t *testing.T) {
	text := "/* plain words here\n   more plain words\n   return value;\n*/"
	res := New(DefaultConfig()).ClassifyText(text, 10, 13)
	if !res.IsCode {
		t.Fatalf("expected code, got %+v", res)
	}
	if res.Line != 2 {
		t.Fatalf("trigger line = %d, want 2", res.Line)
	}
	if res.StartLine != 10 || res.EndLine != 13 {
		t.Fatalf("range = %d..%d, want 10..13", res.StartLine, res.EndLine)
	}
}

type countingScorer struct {
	calls int
	lines []string
}

func (s *countingScorer) Score(line string) float64 {
	s.calls++
	s.lines = append(s.lines, line)
	if strings.Contains(line, "X") {
		return 1
	}
	return 0
}

func TestClassifyStopsAtFirstQualifyingLine(t *testing.T) {
	scorer := &countingScorer{}
	c := NewWithScorer(DefaultConfig(), scorer)
	res := c.ClassifyText("a\nX\nb\nX", 1, 4)
	if !res.IsCode || res.Line != 1 {
		t.Fatalf("expected trigger on line index 1, got %+v", res)
	}
	if scorer.calls != 2 {
		t.Fatalf("scorer called %d times (%q), want 2", scorer.calls, scorer.lines)
	}
}

func TestClassifyGuardsRunBeforeScoring(t *testing.T) {
	scorer := &countingScorer{}
	c := NewWithScorer(DefaultConfig(), scorer)

	c.ClassifyText("/** X\nX", 1, 2)
	if scorer.calls != 0 {
		t.Fatalf("javadoc guard must not score lines, got %d calls", scorer.calls)
	}

	c.ClassifyText("a\n// cmt X\nX", 1, 3)
	if scorer.calls != 1 {
		t.Fatalf("skip line must stop before scoring, got %d calls", scorer.calls)
	}
}

func TestClassifyThresholdIsInclusive(t *testing.T) {
	line := "a && b"
	p := (EvidenceScorer{}).Score(line)

	cfg := DefaultConfig()
	cfg.Threshold = p
	res := New(cfg).ClassifyText(line, 1, 1)
	if !res.IsCode || res.Probability != p {
		t.Fatalf("P == threshold (%v) must trigger, got %+v", p, res)
	}

	cfg.Threshold = math.Nextafter(p, 1)
	if res := New(cfg).ClassifyText(line, 1, 1); res.IsCode {
		t.Fatalf("P just below threshold must not trigger, got %+v", res)
	}
}

func TestClassifyEmpty(t *testing.T) {
	c := New(DefaultConfig())
	for _, text := range []string{"", "\n", "\r\n\r\n"} {
		res := c.ClassifyText(text, 1, 1)
		if res.IsCode || res.Reason != ReasonEmpty {
			t.Errorf("ClassifyText(%q) = %+v, want empty verdict", text, res)
		}
	}
}

func TestClassifyBlock(t *testing.T) {
	b := comment.Block{Kind: comment.KindLine, Text: "// foo.bar(baz);", StartLine: 3, EndLine: 3}
	res := New(DefaultConfig()).Classify(b)
	if !res.IsCode || res.StartLine != 3 || res.EndLine != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClassifySharedAcrossGoroutines(t *testing.T) {
	c := New(DefaultConfig())
	blocks := []comment.Block{
		{Kind: comment.KindLine, Text: "// int x = 5;", StartLine: 1, EndLine: 1},
		{Kind: comment.KindLine, Text: "// This is a great helper method.", StartLine: 2, EndLine: 2},
		{Kind: comment.KindBlock, Text: "/* if (a && b) {\n   run();\n} */", StartLine: 3, EndLine: 5},
		{Kind: comment.KindDoc, Text: "/**\n * return x;\n */", StartLine: 6, EndLine: 8},
		{Kind: comment.KindLine, Text: "// cmt int kept = 1;", StartLine: 9, EndLine: 9},
	}
	want := make([]Result, len(blocks))
	for i, b := range blocks {
		want[i] = c.Classify(b)
	}
	if !want[0].IsCode || want[1].IsCode || !want[2].IsCode || want[3].IsCode || want[4].IsCode {
		t.Fatalf("unexpected sequential verdicts: %+v", want)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan string, workers*len(blocks))
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := range 50 {
				i := (w + round) % len(blocks)
				if got := c.Classify(blocks[i]); got != want[i] {
					errs <- fmt.Sprintf("worker %d block %d: got %+v, want %+v", w, i, got, want[i])
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\nb", []string{"a", "b"}},
		{"a\r\nb\rc", []string{"a", "b", "c"}},
		{"a\n\nb\n\n", []string{"a", "", "b"}},
		{"\n\n", []string{}},
	}
	for _, tt := range tests {
		got := SplitLines(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitLines(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"threshold one", func(c *Config) { c.Threshold = 1 }, nil},
		{"tiny threshold", func(c *Config) { c.Threshold = 0.001 }, nil},
		{"zero threshold", func(c *Config) { c.Threshold = 0 }, ErrInvalidThreshold},
		{"negative threshold", func(c *Config) { c.Threshold = -0.5 }, ErrInvalidThreshold},
		{"threshold above one", func(c *Config) { c.Threshold = 1.01 }, ErrInvalidThreshold},
		{"NaN threshold", func(c *Config) { c.Threshold = math.NaN() }, ErrInvalidThreshold},
		{"empty skip", func(c *Config) { c.SkipSequence = "" }, ErrEmptySkipSequence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
