// Package diag defines the diagnostic model shared by the lexer, the
// commented-out code pass and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: numeric identifier with a stable string ID such as CMT2001.
//   - Message: the human readable text. For CMT findings this is the exact
//     rule message including probability and threshold.
//   - Primary: the source.Span of the offending comment.
//   - Notes: secondary spans, e.g. the line that crossed the threshold.
//   - Fixes: structured edits; the commented-out code pass attaches one that
//     deletes the comment.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. ReportError/ReportWarning return a
// ReportBuilder that collects notes and fixes before Emit. BagReporter
// stores into a Bag; each worker owns its bag and the driver merges them.
//
// Package diag performs no IO and no rendering; see internal/diagfmt for
// output formats and internal/fix for applying fixes.
package diag
