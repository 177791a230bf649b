package stopwatch

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/render"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

// SaveFunc persists a finished record.
type SaveFunc func(model.StudyRecord) error

type tickMsg time.Time

// tick drives the display only; elapsed time always comes from the clock.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the interactive stopwatch screen.
type Model struct {
	sw      *Stopwatch
	clock   timecalc.Clock
	subject string
	save    SaveFunc

	status string
	failed bool
	saved  []model.StudyRecord
}

// NewModel returns a stopped stopwatch screen for subject.
func NewModel(subject string, clock timecalc.Clock, save SaveFunc) Model {
	if clock == nil {
		clock = timecalc.SystemClock{}
	}
	return Model{sw: New(clock), clock: clock, subject: subject, save: save}
}

// Saved returns the records saved during the session.
func (m Model) Saved() []model.StudyRecord { return m.saved }

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.sw.Stop()
			return m, tea.Quit
		case " ", "enter":
			if m.sw.Running() {
				m.sw.Stop()
			} else {
				m.sw.Start()
			}
			m.status, m.failed = "", false
		case "r":
			m.sw.Reset()
			m.status, m.failed = "Reset.", false
		case "s":
			m.sw.Stop()
			m.saveRecord()
		}
	}
	return m, nil
}

func (m *Model) saveRecord() {
	rec, err := RecordFrom(m.subject, m.sw.Elapsed(), m.clock.Now())
	if err == nil && m.save != nil {
		err = m.save(rec)
	}
	if err != nil {
		m.status, m.failed = err.Error(), true
		return
	}
	m.saved = append(m.saved, rec)
	m.sw.Reset()
	m.status = fmt.Sprintf("Saved %s of %s.", timecalc.FormatHours(rec.Hours), rec.Subject)
	m.failed = false
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(render.Title.Render("Studying: " + m.subject))
	b.WriteString("\n\n")

	clock := timecalc.FormatClock(m.sw.Elapsed())
	if m.sw.Running() {
		b.WriteString(render.Hot.Render(clock))
	} else {
		b.WriteString(render.Muted.Render(clock + "  (paused)"))
	}
	b.WriteString("\n\n")

	if m.status != "" {
		if m.failed {
			b.WriteString(render.Hot.Render(m.status))
		} else {
			b.WriteString(render.Good.Render(m.status))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(render.Muted.Render("space start/stop • s save • r reset • q quit"))
	b.WriteString("\n")
	return render.Pane.Render(b.String())
}

// Run shows the stopwatch until the user quits and returns what was saved.
func Run(subject string, clock timecalc.Clock, save SaveFunc, opts ...tea.ProgramOption) ([]model.StudyRecord, error) {
	final, err := tea.NewProgram(NewModel(subject, clock, save), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("running stopwatch: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.Saved(), nil
	}
	return nil, nil
}
