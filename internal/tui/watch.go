package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shiva16/molecular-design-toolkit/internal/compute"
)

var ErrAborted = errors.New("tui: watch aborted")

// Task is a unit of work the watcher can follow. integrators.Job
// satisfies it.
type Task interface {
	ID() string
	Status() compute.Status
	Done() <-chan struct{}
}

type Entry struct {
	Label string
	Task  Task
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type watchModel struct {
	entries []Entry
	started time.Time
	now     time.Time
	frame   int
	aborted bool
}

func newWatchModel(entries []Entry, now time.Time) watchModel {
	return watchModel{entries: entries, started: now, now: now}
}

func (m watchModel) Init() tea.Cmd { return tick() }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	case tickMsg:
		m.now = time.Time(msg)
		m.frame++
		if m.finished() {
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m watchModel) finished() bool {
	for _, e := range m.entries {
		select {
		case <-e.Task.Done():
		default:
			return false
		}
	}
	return true
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + title.Render("mdsim") + "  " + dim.Render(fmt.Sprintf("%d job(s)", len(m.entries))) + "\n\n")

	for _, e := range m.entries {
		var icon, status string
		switch st := e.Task.Status(); st {
		case compute.StatusFinished:
			icon, status = green.Render("✓"), green.Render(st.String())
		case compute.StatusFailed:
			icon, status = red.Render("✗"), red.Render(st.String())
		case compute.StatusRunning:
			icon, status = cyan.Render(spinner(m.frame)), cyan.Render(st.String())
		default:
			icon, status = yellow.Render("○"), yellow.Render(st.String())
		}
		id := e.Task.ID()
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, "  %s %s %s %s\n", icon, white.Render(fmt.Sprintf("%-24s", e.Label)), dimmer.Render(id), status)
	}

	elapsed := m.now.Sub(m.started).Truncate(100 * time.Millisecond)
	b.WriteString("\n  " + dim.Render(fmt.Sprintf("elapsed %s   q detach", elapsed)) + "\n")
	return b.String()
}

// Watch shows the status of entries until all of them are done. Detaching
// with q returns ErrAborted and leaves the tasks running.
func Watch(ctx context.Context, out io.Writer, entries ...Entry) error {
	p := tea.NewProgram(newWatchModel(entries, time.Now()),
		tea.WithContext(ctx),
		tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if wm, ok := final.(watchModel); ok && wm.aborted {
		return ErrAborted
	}
	return nil
}
