package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	// ScopeRun covers a CLI command or one check run over a set of files.
	ScopeRun Scope = iota + 1
	// ScopeFile covers load, extraction and classification of one file.
	ScopeFile
	// ScopeComment is one classified comment block.
	ScopeComment
)

func (s Scope) String() string {
	switch s {
	case ScopeRun:
		return "run"
	case ScopeFile:
		return "file"
	case ScopeComment:
		return "comment"
	}
	return "unknown"
}

// Attr is one key/value pair attached to an event. Attrs keep the order in
// which they were added.
type Attr struct {
	Key   string
	Value string
}

// Event is a single trace record.
type Event struct {
	Time   time.Time
	Seq    uint64 // process-wide, monotonic
	Kind   Kind
	Scope  Scope
	Span   uint64
	Parent uint64 // 0 for top-level spans
	Name   string
	Detail string
	Attrs  []Attr
}
