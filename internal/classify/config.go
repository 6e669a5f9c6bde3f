package classify

import (
	"errors"
	"fmt"
)

const (
	// DefaultThreshold is the probability at which a line is declared code.
	DefaultThreshold = 0.85
	// DefaultSkipSequence marks comments the author wants left alone.
	DefaultSkipSequence = "cmt"
)

var (
	// ErrInvalidThreshold is returned when the threshold lies outside (0, 1].
	ErrInvalidThreshold = errors.New("classification threshold must be in (0, 1]")
	// ErrEmptySkipSequence is returned when no skip sequence is configured.
	ErrEmptySkipSequence = errors.New("skip sequence must not be empty")
)

// Config holds the run-wide classifier settings. It is read-only once a
// Classifier has been built from it.
type Config struct {
	Threshold    float64
	SkipSequence string
	SkipJavaDocs bool
}

// DefaultConfig returns the stock settings: threshold 0.85, skip sequence
// "cmt", Javadoc blocks skipped.
func DefaultConfig() Config {
	return Config{
		Threshold:    DefaultThreshold,
		SkipSequence: DefaultSkipSequence,
		SkipJavaDocs: true,
	}
}

// Validate reports configuration the classifier cannot honour. Hosts must
// call it before classification; Classify itself assumes a valid Config.
func (c Config) Validate() error {
	// NaN тоже отсекается: сравнения с NaN всегда ложны
	if !(c.Threshold > 0 && c.Threshold <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, c.Threshold)
	}
	if c.SkipSequence == "" {
		return ErrEmptySkipSequence
	}
	return nil
}
