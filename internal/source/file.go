package source

import (
	"path/filepath"
	"slices"
)

// Position converts a byte offset into a 1-based line and column.
func (f *File) Position(off uint32) LineCol {
	// число переводов строки строго до off и есть номер строки - 1
	line, _ := slices.BinarySearch(f.LineIdx, off)
	var lineStart uint32
	if line > 0 {
		lineStart = f.LineIdx[line-1] + 1
	}
	return LineCol{Line: mustU32(line + 1), Col: off - lineStart + 1}
}

// LineBounds returns the byte range of line n (1-based) without its line
// break. ok is false for lines past the end of the file.
func (f *File) LineBounds(n uint32) (start, end uint32, ok bool) {
	if n == 0 || n > f.LineCount() {
		return 0, 0, false
	}
	if n >= 2 {
		start = f.LineIdx[n-2] + 1
	}
	end = mustU32(len(f.Content))
	if int(n-1) < len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	return start, end, true
}

// LineRange returns the first and last lines covered by span. The exclusive
// end is not counted, so a span ending right before a line break stays on
// its own line.
func (f *File) LineRange(span Span) (start, end uint32) {
	last := span.End
	if last > span.Start {
		last--
	}
	return f.Position(span.Start).Line, f.Position(last).Line
}

// LineCount returns the number of lines; a trailing line break does not
// open a new one.
func (f *File) LineCount() uint32 {
	n := mustU32(len(f.LineIdx))
	if n > 0 && int(f.LineIdx[n-1]) == len(f.Content)-1 {
		return n
	}
	return n + 1
}

// GetLine returns the text of line n (1-based), "" past the end.
func (f *File) GetLine(n uint32) string {
	start, end, ok := f.LineBounds(n)
	if !ok {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath renders the file path for output. mode is one of "absolute",
// "relative" (against baseDir, or the working directory), "basename" or
// "auto", which keeps short and relative paths and shortens long absolute
// ones to their base name.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case "relative":
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return BaseName(f.Path)
	case "auto":
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return BaseName(f.Path)
		}
	}
	return f.Path
}
