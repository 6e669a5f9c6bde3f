// Package trace records what a cmtcode run is doing: which command runs,
// which files are loaded and classified, and, at the most verbose level,
// every comment block with its verdict.
//
// The tool has no logging library; trace events are its structured log.
//
//	cmtcode check --trace=- --trace-level=detail src/
//	cmtcode check --trace=run.ndjson --trace-level=debug src/
//	cmtcode check --trace-mode=ring --trace-level=debug src/   # dumped on panic
//
// LevelPhase emits ScopeRun spans (one per command and one per check run),
// LevelDetail adds a ScopeFile span per file, LevelDebug adds a point event
// per comment.
//
// Tracers travel through context. Start opens a span under whatever span the
// context already carries:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeRun, "check")
//	defer span.End("")
package trace
