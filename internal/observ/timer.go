// Package observ measures how long the stages of a run take.
package observ

import (
	"sync"
	"time"
)

type phase struct {
	name  string
	dur   time.Duration
	count int
	note  string
}

// Timer sums durations per named phase in the order the phases first
// appear. Workers share one Timer, so every method locks. A nil *Timer is a
// valid no-op timer.
type Timer struct {
	mu     sync.Mutex
	phases []*phase
	byName map[string]*phase
}

func NewTimer() *Timer {
	return &Timer{byName: make(map[string]*phase)}
}

func (t *Timer) get(name string) *phase {
	p, ok := t.byName[name]
	if !ok {
		p = &phase{name: name}
		t.byName[name] = p
		t.phases = append(t.phases, p)
	}
	return p
}

// Add accumulates d into the phase called name.
func (t *Timer) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.get(name)
	p.dur += d
	p.count++
}

// Start opens a measurement of name; calling the returned func closes it
// and attaches note to the phase.
func (t *Timer) Start(name string) func(note string) {
	begin := time.Now()
	return func(note string) {
		if t == nil {
			return
		}
		t.Add(name, time.Since(begin))
		t.mu.Lock()
		t.byName[name].note = note
		t.mu.Unlock()
	}
}

// Measure runs fn and adds its duration to the phase called name.
func (t *Timer) Measure(name string, fn func()) {
	begin := time.Now()
	fn()
	t.Add(name, time.Since(begin))
}

type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Report is a snapshot of a Timer. Phases measured in parallel overlap, so
// TotalMS may exceed the wall-clock time of the run.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	if t == nil {
		return r
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, p := range t.phases {
		total += p.dur
		r.Phases = append(r.Phases, PhaseReport{
			Name:       p.name,
			DurationMS: millis(p.dur),
			Count:      p.count,
			Note:       p.note,
		})
	}
	r.TotalMS = millis(total)
	return r
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
