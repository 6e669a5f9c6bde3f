package trace

import (
	"errors"
	"io"
	"os"
	"sync"
)

// Stream writes every accepted event to w as soon as it arrives.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

func NewStream(w io.Writer, level Level, format Format) *Stream {
	return &Stream{w: w, level: level, format: format}
}

func (s *Stream) Emit(ev Event) {
	if !s.level.Allows(ev.Scope) {
		return
	}
	data := Encode(ev, s.format)
	s.mu.Lock()
	// ошибки записи трассы не должны ронять проверку
	_, _ = s.w.Write(data) //nolint:errcheck
	s.mu.Unlock()
}

func (s *Stream) Flush() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the writer. Stdout and stderr stay open.
func (s *Stream) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if s.w == os.Stderr || s.w == os.Stdout {
		return nil
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Stream) Level() Level { return s.level }

// Ring keeps the most recent events in memory.
type Ring struct {
	mu    sync.Mutex
	level Level
	buf   []Event
	total uint64 // events ever stored
}

func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = 4096
	}
	return &Ring{level: level, buf: make([]Event, size)}
}

func (r *Ring) Emit(ev Event) {
	if !r.level.Allows(ev.Scope) {
		return
	}
	r.mu.Lock()
	r.buf[r.total%uint64(len(r.buf))] = ev
	r.total++
	r.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := uint64(len(r.buf))
	n := min(r.total, size)
	out := make([]Event, 0, n)
	for i := r.total - n; i < r.total; i++ {
		out = append(out, r.buf[i%size])
	}
	return out
}

// Dump writes the stored events to w.
func (r *Ring) Dump(w io.Writer, format Format) error {
	for _, ev := range r.Snapshot() {
		if _, err := w.Write(Encode(ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Ring) Flush() error { return nil }
func (r *Ring) Close() error { return nil }
func (r *Ring) Level() Level { return r.level }

// fanout sends each event to several sinks, e.g. a stream for live output
// plus a ring kept for crash dumps.
type fanout struct {
	level Level
	sinks []Tracer
}

func (f fanout) Emit(ev Event) {
	for _, s := range f.sinks {
		s.Emit(ev)
	}
}

func (f fanout) Flush() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (f fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (f fanout) Level() Level { return f.level }
