package driver

import (
	"fmt"

	"cmtcode/internal/comment"
	"cmtcode/internal/diag"
	"cmtcode/internal/fix"
	"cmtcode/internal/source"
)

// removalEdit deletes the comment b. A comment alone on its lines takes
// the lines with it; a trailing comment takes the blanks before it; a
// comment followed by code on the same line takes the blanks after it.
func removalEdit(file *source.File, b comment.Block) diag.TextEdit {
	content := file.Content
	start, end := int(b.Span.Start), int(b.Span.End)

	ls := start
	for ls > 0 && isBlank(content[ls-1]) {
		ls--
	}
	startsLine := ls == 0 || isLineBreak(content[ls-1])

	le := end
	for le < len(content) && isBlank(content[le]) {
		le++
	}
	endsLine := le == len(content) || isLineBreak(content[le])

	switch {
	case startsLine && endsLine:
		start = ls
		end = le
		if end < len(content) {
			end++ // сам перевод строки
		}
	case endsLine:
		start = ls
		end = le
	default:
		end = le
	}

	return diag.TextEdit{
		Span:    source.Span{File: b.Span.File, Start: uint32(start), End: uint32(end)},
		NewText: "",
		OldText: string(content[start:end]),
	}
}

// triggerSpan narrows the block span to the line that crossed the threshold.
func triggerSpan(file *source.File, b comment.Block, line int) source.Span {
	lineStart, lineEnd, ok := file.LineBounds(b.StartLine + uint32(line))
	if !ok {
		return b.Span
	}
	sp := b.Span
	sp.Start = max(sp.Start, lineStart)
	sp.End = min(sp.End, lineEnd)
	if sp.End < sp.Start {
		sp.End = sp.Start
	}
	return sp
}

// FixID is the stable identifier of the removal fix for a comment starting
// on line of path, e.g. "src/A.java:12". `cmtcode fix --id` accepts it.
func FixID(path string, line uint32) string {
	return fmt.Sprintf("%s:%d", path, line)
}

// KeepFixID identifies the fix that marks the same comment as intentional.
func KeepFixID(path string, line uint32) string {
	return FixID(path, line) + "#keep"
}

func removalFix(id string, file *source.File, b comment.Block) *diag.Fix {
	edit := removalEdit(file, b)
	return fix.DeleteSpan("remove commented-out code", edit.Span, edit.OldText,
		fix.WithID(id), fix.Preferred())
}

// keepFix inserts the skip sequence right after the comment opener, so the
// next run leaves the comment alone.
func keepFix(id string, file *source.File, b comment.Block, seq string) *diag.Fix {
	content := file.Content
	pos := b.Span.Start + 2
	if b.Kind != comment.KindLine {
		for pos+2 < b.Span.End && content[pos] == '*' {
			pos++
		}
	}
	text := " " + seq
	if pos < b.Span.End && !isBlank(content[pos]) && !isLineBreak(content[pos]) {
		text += " "
	}
	return fix.InsertText("mark comment as intentional", source.Span{File: b.Span.File, Start: pos}, text,
		fix.WithID(id), fix.WithApplicability(diag.FixApplicabilitySafeWithHeuristics))
}

func isBlank(c byte) bool     { return c == ' ' || c == '\t' }
func isLineBreak(c byte) bool { return c == '\n' || c == '\r' }
