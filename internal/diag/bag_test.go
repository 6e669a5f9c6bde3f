package diag

import (
	"testing"

	"cmtcode/internal/source"
)

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	for i := range 3 {
		ok := bag.Add(New(SevWarning, CmtCommentedOutCode, source.Span{Start: uint32(i)}, "x"))
		if want := i < 2; ok != want {
			t.Fatalf("Add #%d = %v, want %v", i, ok, want)
		}
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}

	unlimited := NewBag(0)
	for range 100 {
		unlimited.Add(New(SevInfo, CmtInfo, source.Span{}, "x"))
	}
	if unlimited.Len() != 100 {
		t.Fatalf("unlimited bag kept %d items", unlimited.Len())
	}
}

func TestBagSortAndSeverity(t *testing.T) {
	bag := NewBag(0)
	bag.Add(New(SevWarning, CmtCommentedOutCode, source.Span{File: 1, Start: 5, End: 9}, "b"))
	bag.Add(New(SevWarning, CmtCommentedOutCode, source.Span{File: 0, Start: 10, End: 12}, "a2"))
	bag.Add(New(SevError, LexUnterminatedBlockComment, source.Span{File: 0, Start: 10, End: 12}, "a1"))
	bag.Add(New(SevWarning, CmtCommentedOutCode, source.Span{File: 0, Start: 0, End: 4}, "a0"))

	if !bag.HasErrors() {
		t.Fatal("expected errors")
	}
	bag.Sort()

	var got []string
	for _, d := range bag.Items() {
		got = append(got, d.Message)
	}
	want := []string{"a0", "a1", "a2", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if n := bag.Count(CmtCommentedOutCode); n != 3 {
		t.Fatalf("Count = %d, want 3", n)
	}
}

func TestBagFilterAndMerge(t *testing.T) {
	a := NewBag(1)
	a.Add(New(SevInfo, ObsTimings, source.Span{}, "timings"))
	b := NewBag(0)
	b.Add(New(SevWarning, CmtCommentedOutCode, source.Span{}, "code"))
	b.Add(New(SevError, IOLoadFileError, source.Span{}, "io"))

	a.Merge(b)
	if a.Len() != 3 {
		t.Fatalf("merged Len = %d, want 3", a.Len())
	}
	a.Filter(func(d *Diagnostic) bool { return d.Severity >= SevWarning })
	if a.Len() != 2 || a.Items()[0].Message != "code" {
		t.Fatalf("unexpected filtered bag: %d items", a.Len())
	}
}
