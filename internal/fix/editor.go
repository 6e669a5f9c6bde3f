package fix

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

// fileEditor collects the accepted edits of one file. Edits stay in the
// coordinates of the loaded content and never overlap, so the new content
// is produced in one pass by render.
type fileEditor struct {
	file     *source.File
	accepted []diag.TextEdit
}

// check returns why e cannot be accepted, or "".
func (ed *fileEditor) check(e diag.TextEdit, baseDir string) string {
	f := ed.file
	switch {
	case f.Flags.Has(source.FileVirtual):
		return "target file is virtual"
	case f.Flags.Has(source.FileDecodedUTF16):
		return "UTF-16 files are not rewritten"
	}
	start, end := int(e.Span.Start), int(e.Span.End)
	if end < start || end > len(f.Content) {
		return "edit span out of range"
	}
	for _, prev := range ed.accepted {
		if spansConflict(prev, e) {
			return "conflicts with previously applied edits in " + f.FormatPath("auto", baseDir)
		}
	}
	if e.OldText != "" && string(f.Content[start:end]) != e.OldText {
		return "existing text does not match expected content"
	}
	return ""
}

func (ed *fileEditor) accept(e diag.TextEdit) {
	ed.accepted = append(ed.accepted, e)
}

func (ed *fileEditor) render() []byte {
	edits := slices.Clone(ed.accepted)
	slices.SortStableFunc(edits, func(a, b diag.TextEdit) int {
		return int(a.Span.Start) - int(b.Span.Start)
	})
	src := ed.file.Content
	var out bytes.Buffer
	out.Grow(len(src))
	pos := 0
	for _, e := range edits {
		out.Write(src[pos:e.Span.Start])
		out.WriteString(e.NewText)
		pos = int(e.Span.End)
	}
	out.Write(src[pos:])
	return out.Bytes()
}

// spansConflict reports whether two edits touch the same bytes. Spans are
// half-open. Two insertions never conflict; an insertion conflicts with a
// span that contains its position, except at the span end.
func spansConflict(a, b diag.TextEdit) bool {
	as, ae := a.Span.Start, a.Span.End
	bs, be := b.Span.Start, b.Span.End
	switch {
	case as == ae && bs == be:
		return false
	case as == ae:
		return bs <= as && as < be
	case bs == be:
		return as <= bs && bs < ae
	}
	return as < be && bs < ae
}

// writeFile replaces path with buf keeping its mode. With backup the
// previous on-disk bytes go to path + ".bak" first.
func writeFile(path string, buf []byte, backup bool) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if backup {
		// #nosec G304 -- path comes from the checked file set
		prev, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("backup %s: %w", path, err)
		}
		if err := os.WriteFile(path+".bak", prev, mode); err != nil {
			return fmt.Errorf("backup %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, buf, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// denormalize puts back the CRLF line endings and BOM removed on load.
func denormalize(flags source.FileFlags, buf []byte) []byte {
	if flags.Has(source.FileNormalizedCRLF) {
		buf = bytes.ReplaceAll(buf, []byte("\n"), []byte("\r\n"))
	}
	if flags.Has(source.FileHadBOM) {
		buf = append(slices.Clone(utf8BOM), buf...)
	}
	return buf
}
