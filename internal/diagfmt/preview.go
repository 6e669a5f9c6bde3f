package diagfmt

import (
	"fmt"
	"strings"

	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

// editPreview holds the lines an edit touches, before and after applying it.
// A removed line has no "after" counterpart.
type editPreview struct {
	before []string
	after  []string
}

func previewEdit(fs *source.FileSet, edit diag.TextEdit) (editPreview, error) {
	if fs == nil {
		return editPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return editPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	first, last := file.LineRange(edit.Span)
	lo, _, ok1 := file.LineBounds(first)
	_, hi, ok2 := file.LineBounds(last)
	if !ok1 || !ok2 {
		return editPreview{}, fmt.Errorf("edit span %v is outside the file", edit.Span)
	}
	// удаление целой строки захватывает и её перевод
	hi = max(hi, edit.Span.End)
	if edit.Span.Start < lo || int(hi) > len(file.Content) {
		return editPreview{}, fmt.Errorf("edit span %v out of range for preview block", edit.Span)
	}

	block := string(file.Content[lo:hi])
	after := block[:edit.Span.Start-lo] + edit.NewText + block[edit.Span.End-lo:]
	return editPreview{before: previewLines(block), after: previewLines(after)}, nil
}

func previewLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
