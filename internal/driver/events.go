package driver

// Stage is the step of the per-file pipeline an Event refers to.
type Stage uint8

const (
	StageNone Stage = iota
	StageLoad
	StageExtract
	StageClassify
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageExtract:
		return "extract"
	case StageClassify:
		return "classify"
	}
	return ""
}

// Status reports where a file is in the pipeline.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
	// StatusCached: the result came from the disk cache.
	StatusCached
)

// Event describes progress of one file. File is the path as passed to the
// driver; an empty File means a run-wide event.
type Event struct {
	File     string
	Stage    Stage
	Status   Status
	Findings int
}

// ProgressFunc receives progress events. It is called from worker
// goroutines and must be safe for concurrent use.
type ProgressFunc func(Event)

func (f ProgressFunc) emit(ev Event) {
	if f != nil {
		f(ev)
	}
}
