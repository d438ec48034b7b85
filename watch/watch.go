// Package watch renders job progress in the terminal by polling a status
// source until the job reaches a terminal state.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"thought_leadership_workflow/client"
	"thought_leadership_workflow/job"
)

// Source returns the current job snapshot.
type Source func(ctx context.Context) (job.Status, error)

// ErrDetached is returned when the user stops watching before the job ends.
var ErrDetached = errors.New("stopped watching before the job finished")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	doneStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3FB950"))
	failStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F85149"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#D29922"))
)

type statusMsg struct {
	status job.Status
	err    error
}

// Model is the bubbletea model driving the watcher.
type Model struct {
	ctx      context.Context
	source   Source
	interval time.Duration
	spinner  spinner.Model

	status   job.Status
	err      error
	polls    int
	detached bool
}

func NewModel(ctx context.Context, source Source, interval time.Duration) Model {
	if interval <= 0 {
		interval = client.DefaultPollInterval
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle
	return Model{ctx: ctx, source: source, interval: interval, spinner: sp}
}

// Status returns the last snapshot received.
func (m Model) Status() job.Status { return m.status }

// Finished reports whether the last snapshot was terminal.
func (m Model) Finished() bool { return m.status.State.Terminal() }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.polls++
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		if m.Finished() {
			return m, tea.Quit
		}
		return m, m.scheduleRefresh()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.detached = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	switch m.status.State {
	case job.StateDone:
		sb.WriteString(doneStyle.Render("✓ job complete"))
	case job.StateFailed:
		sb.WriteString(failStyle.Render("✗ job failed"))
	default:
		sb.WriteString(m.spinner.View())
		sb.WriteString(titleStyle.Render(" " + stateLabel(m.status.State)))
	}
	sb.WriteString("\n")
	if m.status.Progress != "" {
		sb.WriteString(progressStyle.Render("  " + m.status.Progress))
		sb.WriteString("\n")
	}
	for _, platform := range []string{"linkedin", "x"} {
		if reason, ok := m.status.PlatformErrors[platform]; ok {
			sb.WriteString(warnStyle.Render(fmt.Sprintf("  %s: %s", platform, reason)))
			sb.WriteString("\n")
		}
	}
	if m.status.Error != "" {
		sb.WriteString(failStyle.Render("  " + m.status.Error))
		sb.WriteString("\n")
	}
	if m.err != nil {
		sb.WriteString(warnStyle.Render("  status unavailable: " + m.err.Error()))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) fetch() tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		st, err := source(ctx)
		return statusMsg{status: st, err: err}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	ctx, source := m.ctx, m.source
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		st, err := source(ctx)
		return statusMsg{status: st, err: err}
	})
}

func stateLabel(s job.State) string {
	switch s {
	case job.StateRunning:
		return "generating"
	case job.StateValidating:
		return "validating"
	case "", job.StateIdle:
		return "waiting"
	}
	return string(s)
}

// Run drives the interactive watcher and returns the final snapshot.
func Run(ctx context.Context, source Source, interval time.Duration, out io.Writer) (job.Status, error) {
	p := tea.NewProgram(NewModel(ctx, source, interval), tea.WithContext(ctx), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return job.Status{}, err
	}
	m, ok := final.(Model)
	if !ok {
		return job.Status{}, fmt.Errorf("unexpected watcher model %T", final)
	}
	if m.detached || !m.Finished() {
		return m.Status(), ErrDetached
	}
	return m.Status(), nil
}

// Logger is the minimal logging surface used by Plain.
type Logger interface {
	Printf(format string, args ...any)
}

// Plain polls without a TTY, logging each progress change.
func Plain(ctx context.Context, source Source, interval time.Duration, logger Logger) (job.Status, error) {
	if interval <= 0 {
		interval = client.DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var last string
	for {
		st, err := source(ctx)
		if err != nil {
			logger.Printf("[watch] status unavailable: %v", err)
		} else {
			line := fmt.Sprintf("%s: %s", st.State, st.Progress)
			if line != last {
				logger.Printf("[watch] %s", line)
				last = line
			}
			if st.State.Terminal() {
				return st, nil
			}
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}
