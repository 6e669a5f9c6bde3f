package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"cmtcode/internal/driver"
)

type progressModel struct {
	title      string
	events     <-chan driver.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stageLabel string
	findings   int
	width      int
	done       bool
}

type fileItem struct {
	path     string
	status   string
	stage    driver.Stage
	findings int
	finished bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders check progress.
// The model quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

// Interrupted reports whether the program behind m stopped before the event
// stream was closed, i.e. the user quit early.
func Interrupted(m tea.Model) bool {
	pm, ok := m.(*progressModel)
	return ok && !pm.done
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		// прогресс не интерактивный, но Ctrl+C должен работать
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	findingsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	statusColors  = map[string]lipgloss.Color{
		"done":        "2",
		"cached":      "2",
		"error":       "1",
		"loading":     "6",
		"extracting":  "6",
		"classifying": "6",
	}
)

func (m *progressModel) header() string {
	h := m.title
	if m.stageLabel != "" {
		h += " (" + m.stageLabel + ")"
	}
	if m.done {
		return fmt.Sprintf("done: %s, %d finding(s)", h, m.findings)
	}
	return m.spinner.View() + " " + h
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	nameWidth := max(m.width-22, 20)

	lines := []string{titleStyle.Render(m.header()), ""}
	for _, it := range m.items {
		row := "  " + styleStatus(it.status).Render(fmt.Sprintf("%12s", it.status)) + " " + truncate(it.path, nameWidth)
		if it.findings > 0 {
			row += findingsStyle.Render(fmt.Sprintf(" (%d)", it.findings))
		}
		lines = append(lines, row)
	}
	bar := m.prog.View()
	if m.done {
		bar = m.prog.ViewAs(1.0)
	}
	lines = append(lines, "", bar)
	return strings.Join(lines, "\n") + "\n"
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.File == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if label != "" {
		item.status = label
		item.stage = ev.Stage
	}
	switch ev.Status {
	case driver.StatusDone, driver.StatusCached, driver.StatusError:
		if !item.finished {
			m.findings += ev.Findings
			item.findings = ev.Findings
		}
		item.finished = true
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		if item.finished {
			total += 1.0
		} else {
			total += progressFromStage(item.stage)
		}
	}
	return total / float64(len(m.items))
}

// stageWeights is the share of a file's work done once it reaches a stage.
var stageWeights = map[driver.Stage]float64{
	driver.StageLoad:     0.1,
	driver.StageExtract:  0.4,
	driver.StageClassify: 0.7,
}

var stageNames = map[driver.Stage]string{
	driver.StageLoad:     "loading",
	driver.StageExtract:  "extracting",
	driver.StageClassify: "classifying",
}

func progressFromStage(stage driver.Stage) float64 { return stageWeights[stage] }

func statusLabel(stage driver.Stage, status driver.Status) string {
	switch status {
	case driver.StatusQueued:
		return "queued"
	case driver.StatusDone:
		return "done"
	case driver.StatusCached:
		return "cached"
	case driver.StatusError:
		return "error"
	case driver.StatusWorking:
		return stageNames[stage]
	}
	return ""
}

func styleStatus(status string) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		c = "7"
	}
	return lipgloss.NewStyle().Foreground(c)
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
