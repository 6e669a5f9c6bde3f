package trace

import (
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

// Span is an open begin/end pair. A span whose scope is filtered out has no
// tracer; every method on it is a no-op.
type Span struct {
	t      Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	start  time.Time
	attrs  []Attr
}

// Begin opens a span under parent (0 for a top-level span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !Enabled(t, scope) {
		return &Span{}
	}
	s := &Span{
		t:      t,
		id:     spanIDs.Add(1),
		parent: parent,
		scope:  scope,
		name:   name,
		start:  time.Now(),
	}
	s.emit(KindBegin, "", nil)
	return s
}

// Attr attaches key=value to the end event.
func (s *Span) Attr(key, value string) *Span {
	if s.t != nil {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	if s.t == nil {
		return 0
	}
	s.emit(KindEnd, detail, s.attrs)
	return time.Since(s.start)
}

// ID returns the span identifier, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) emit(kind Kind, detail string, attrs []Attr) {
	s.t.Emit(Event{
		Time:   time.Now(),
		Seq:    seq.Add(1),
		Kind:   kind,
		Scope:  s.scope,
		Span:   s.id,
		Parent: s.parent,
		Name:   s.name,
		Detail: detail,
		Attrs:  attrs,
	})
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !Enabled(t, scope) {
		return
	}
	t.Emit(Event{
		Time:   time.Now(),
		Seq:    seq.Add(1),
		Kind:   KindPoint,
		Scope:  scope,
		Span:   spanIDs.Add(1),
		Parent: parent,
		Name:   name,
		Detail: detail,
	})
}
