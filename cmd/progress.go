package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bnema/shopvoice/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type progressMsg application.Progress

type interpretDoneMsg struct {
	err error
}

var (
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// interpretProgressModel shows which stage a running interpretation is in.
type interpretProgressModel struct {
	spinner  spinner.Model
	progress application.Progress
	started  time.Time
	now      func() time.Time
	work     tea.Cmd
	err      error
	done     bool
}

func newInterpretProgressModel(work tea.Cmd, now func() time.Time) interpretProgressModel {
	return interpretProgressModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(stageStyle)),
		started: now(),
		now:     now,
		work:    work,
	}
}

func (m interpretProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m interpretProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.progress = application.Progress(msg)
		return m, nil
	case interpretDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m interpretProgressModel) View() string {
	if m.done {
		return ""
	}

	elapsed := m.now().Sub(m.started).Round(100 * time.Millisecond)
	return fmt.Sprintf("%s %s %s", m.spinner.View(), stageLabel(m.progress), elapsedStyle.Render(elapsed.String()))
}

func stageLabel(p application.Progress) string {
	switch p.Stage {
	case application.StagePlanning:
		if p.Backends == 1 {
			return "Planning with 1 model..."
		}
		return fmt.Sprintf("Planning with %d models...", p.Backends)
	case application.StageExecuting:
		return fmt.Sprintf("Running step %d/%d...", p.Step, p.Total)
	case application.StageSynthesizing:
		return "Writing the reply..."
	default:
		return "Reading the command..."
	}
}

// runWithProgress runs work while rendering its stages on output. Stage updates
// reach the model through the context work receives.
func runWithProgress(ctx context.Context, output io.Writer, work func(context.Context) error) error {
	var p *tea.Program

	workCtx := application.WithProgress(ctx, func(progress application.Progress) {
		p.Send(progressMsg(progress))
	})
	workCmd := func() tea.Msg {
		return interpretDoneMsg{err: work(workCtx)}
	}

	p = tea.NewProgram(
		newInterpretProgressModel(workCmd, time.Now),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := final.(interpretProgressModel)
	if !ok {
		return fmt.Errorf("unexpected final progress model type %T", final)
	}
	return result.err
}
