package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // nothing is streamed; the ring is dumped on crashes
	LevelPhase               // ScopeRun
	LevelDetail              // + ScopeFile
	LevelDebug               // + ScopeComment
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Allows reports whether events of scope pass at level l. Each level above
// LevelError unlocks one more scope.
func (l Level) Allows(s Scope) bool {
	return l >= LevelPhase && s >= ScopeRun && uint8(s) < uint8(l)
}
