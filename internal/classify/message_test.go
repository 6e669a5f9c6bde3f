package classify

import "testing"

func TestMessageSingleLine(t *testing.T) {
	c := New(DefaultConfig())
	res := Result{IsCode: true, Probability: 0.96, StartLine: 4, EndLine: 4}
	want := "This comment may contain commented-out code. Line 4 classified as commented out java code with a probability of 0.96." +
		" (TIP: you can adjust classificationTreshold property (actual is 0.85) or use skipCheckSequence (actual is cmt))."
	if got := c.Message("", res); got != want {
		t.Fatalf("unexpected message:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestMessageMultiLine(t *testing.T) {
	cfg := Config{Threshold: 0.9, SkipSequence: "nocheck", SkipJavaDocs: true}
	c := New(cfg)
	res := Result{IsCode: true, Probability: 0.955, StartLine: 10, EndLine: 13}
	want := "Avoid commented-out code. Lines from 10 to 13 classified as commented out java code with a probability of 0.96." +
		" (TIP: you can adjust classificationTreshold property (actual is 0.90) or use skipCheckSequence (actual is nocheck))."
	if got := c.Message("Avoid commented-out code.", res); got != want {
		t.Fatalf("unexpected message:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestMessageForStatementLine(t *testing.T) {
	c := New(DefaultConfig())
	res := c.ClassifyText("int x = 5;", 3, 3)
	want := "This comment may contain commented-out code. Line 3 classified as commented out java code with a probability of 0.96." +
		" (TIP: you can adjust classificationTreshold property (actual is 0.85) or use skipCheckSequence (actual is cmt))."
	if got := c.Message("", res); got != want {
		t.Fatalf("unexpected message:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestFormatProbability(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.955, "0.96"},
		{NoisyOr(0.95, 0, 0.1, 0, 0), "0.96"},
		{0.85, "0.85"},
		{0.125, "0.13"},
		{0.9, "0.90"},
		{1, "1.00"},
		{0, "0.00"},
		{0.99999, "1.00"},
		{0.004, "0.00"},
		{0.005, "0.01"},
	}
	for _, tt := range tests {
		if got := FormatProbability(tt.in); got != tt.want {
			t.Errorf("FormatProbability(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLineRange(t *testing.T) {
	if got := LineRange(3, 3); got != "Line 3" {
		t.Fatalf("LineRange(3, 3) = %q", got)
	}
	if got := LineRange(3, 5); got != "Lines from 3 to 5" {
		t.Fatalf("LineRange(3, 5) = %q", got)
	}
}
