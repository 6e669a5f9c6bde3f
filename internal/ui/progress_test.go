package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"cmtcode/internal/driver"
)

func newTestModel(files ...string) *progressModel {
	ch := make(chan driver.Event)
	return NewProgressModel("check", files, ch).(*progressModel)
}

func TestApplyEventTracksStatus(t *testing.T) {
	m := newTestModel("a.java", "b.java")

	m.Update(eventMsg{File: "a.java", Stage: driver.StageExtract, Status: driver.StatusWorking})
	if got := m.items[0].status; got != "extracting" {
		t.Fatalf("status = %q, want extracting", got)
	}
	if got := m.percent(); got != 0.2 {
		t.Fatalf("percent = %v, want 0.2", got)
	}

	m.Update(eventMsg{File: "a.java", Status: driver.StatusDone, Findings: 3})
	m.Update(eventMsg{File: "b.java", Status: driver.StatusCached, Findings: 1})
	if m.findings != 4 {
		t.Fatalf("findings = %d, want 4", m.findings)
	}
	if got := m.percent(); got != 1 {
		t.Fatalf("percent = %v, want 1", got)
	}
	if m.items[1].status != "cached" {
		t.Fatalf("status = %q, want cached", m.items[1].status)
	}
}

func TestApplyEventIgnoresUnknownFile(t *testing.T) {
	m := newTestModel("a.java")
	m.Update(eventMsg{File: "zzz.java", Status: driver.StatusDone, Findings: 7})
	if m.findings != 0 || m.items[0].status != "queued" {
		t.Fatalf("unknown file changed state: %+v", m.items[0])
	}
}

func TestRunWideEventSetsStageLabel(t *testing.T) {
	m := newTestModel("a.java")
	m.Update(eventMsg{Stage: driver.StageLoad, Status: driver.StatusWorking})
	if m.stageLabel != "loading" {
		t.Fatalf("stage label = %q, want loading", m.stageLabel)
	}
	if !strings.Contains(m.View(), "check (loading)") {
		t.Fatalf("header missing stage label:\n%s", m.View())
	}
}

func TestDoneView(t *testing.T) {
	m := newTestModel("src/A.java")
	m.Update(eventMsg{File: "src/A.java", Status: driver.StatusDone, Findings: 2})
	if !Interrupted(m) {
		t.Fatal("model must count as interrupted before the stream ends")
	}
	_, cmd := m.Update(doneMsg{})
	if Interrupted(m) {
		t.Fatal("finished model reported as interrupted")
	}
	if cmd == nil {
		t.Fatal("done must quit the program")
	}
	view := m.View()
	if !strings.Contains(view, "done: check, 2 finding(s)") {
		t.Fatalf("unexpected header:\n%s", view)
	}
	if !strings.Contains(view, "src/A.java") {
		t.Fatalf("file row missing:\n%s", view)
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel("a.java")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.prog.Width != 116 {
		t.Fatalf("width = %d, prog = %d", m.width, m.prog.Width)
	}
}

func TestEmptyView(t *testing.T) {
	if got := newTestModel().View(); got != "" {
		t.Fatalf("View() = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
