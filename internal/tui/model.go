package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/fibonacci"
	"github.com/agbru/labwork/internal/format"
	"github.com/agbru/labwork/internal/orchestration"
)

const (
	barWidth     = 30
	tickInterval = 200 * time.Millisecond
)

// Session describes the comparison shown on the dashboard.
type Session struct {
	Calculators []fibonacci.Calculator
	Indices     []uint64
	Workers     int
	// ExitOnDone quits the program as soon as the comparison completes
	// instead of waiting for the quit key.
	ExitOnDone bool
}

// Outcome is what a dashboard session leaves behind.
type Outcome struct {
	// Results are the evaluation results, sorted as presented. Nil when the
	// comparison did not complete.
	Results []orchestration.EvaluationResult
	// ExitCode is the verdict of the comparison.
	ExitCode int
	// Err is set when the session ended before the comparison completed.
	Err error
}

// Model is the bubbletea model of the compare dashboard.
type Model struct {
	keymap KeyMap
	help   help.Model

	session  Session
	names    []string
	progress []float64
	average  float64

	results  []orchestration.EvaluationResult
	exitCode int
	err      error
	done     bool
	cursor   int

	start   time.Time
	elapsed time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	ref    *programRef
}

// NewModel creates a dashboard for s whose evaluations run under parent.
func NewModel(parent context.Context, s Session) Model {
	names := make([]string, len(s.Calculators))
	for i, c := range s.Calculators {
		names[i] = c.Name()
	}
	ctx, cancel := context.WithCancel(parent)
	return Model{
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		session:  s,
		names:    names,
		progress: make([]float64, len(names)),
		exitCode: apperrors.ExitSuccess,
		start:    time.Now(),
		ctx:      ctx,
		cancel:   cancel,
		ref:      &programRef{},
	}
}

// Init starts the comparison and the context watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startEvaluationCmd(m.ref, m.ctx, m.session),
		watchContextCmd(m.ctx),
	)
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case ProgressMsg:
		if msg.CalculatorIndex >= 0 && msg.CalculatorIndex < len(m.progress) {
			m.progress[msg.CalculatorIndex] = msg.Value
		}
		m.average = msg.AverageProgress
		return m, nil

	case ComparisonResultsMsg:
		m.results = msg.Results
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case EvaluationCompleteMsg:
		m.done = true
		m.results = msg.Results
		m.exitCode = msg.ExitCode
		m.elapsed = time.Since(m.start)
		for i := range m.progress {
			m.progress[i] = 1
		}
		m.average = 1
		if m.session.ExitOnDone {
			return m, tea.Quit
		}
		return m, nil

	case ContextCancelledMsg:
		if m.done {
			return m, nil
		}
		m.done = true
		m.err = msg.Err
		m.exitCode = apperrors.ExitCodeFor(msg.Err)
		m.elapsed = time.Since(m.start)
		return m, tea.Quit

	case TickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Since(m.start)
		return m, tickCmd()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if !m.done {
			m.done = true
			m.err = context.Canceled
			m.exitCode = apperrors.ExitErrorCanceled
		}
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// Outcome returns the state the session ended in.
func (m Model) Outcome() Outcome {
	out := Outcome{ExitCode: m.exitCode, Err: m.err}
	if !isContextErr(m.err) {
		out.Results = m.results
	}
	return out
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	count := len(m.session.Indices)
	fmt.Fprintf(&b, "%s  %s\n\n",
		titleStyle.Render(fmt.Sprintf("labwork compare: %d evaluators over %d indices", len(m.names), count)),
		dimStyle.Render(format.FormatExecutionDuration(m.elapsed.Round(time.Millisecond))))

	nameWidth := 0
	for _, name := range m.names {
		nameWidth = max(nameWidth, len(name))
	}
	for i, name := range m.names {
		fmt.Fprintf(&b, "  %s  %s %3.0f%%\n",
			nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
			renderBar(m.progress[i], barWidth), m.progress[i]*100)
	}
	fmt.Fprintf(&b, "  %s %3.0f%%\n", dimStyle.Render(fmt.Sprintf("%-*s", nameWidth+barWidth+1, "overall")), m.average*100)

	if len(m.results) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Results"))
		b.WriteString("\n")
		for i, res := range m.results {
			marker := "  "
			if i == m.cursor {
				marker = cursorStyle.Render("> ")
			}
			status := successStyle.Render("Success")
			if res.Err != nil {
				status = errorStyle.Render(fmt.Sprintf("Failure (%v)", res.Err))
			}
			fmt.Fprintf(&b, "%s%s  %s  %s\n", marker,
				nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, res.Name)),
				warningStyle.Render(fmt.Sprintf("%-10s", format.FormatExecutionDuration(res.Duration))),
				status)
		}
	}

	if m.done {
		b.WriteString("\n")
		b.WriteString(m.statusLine())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.exitCode == apperrors.ExitSuccess:
		return successStyle.Render(fmt.Sprintf("Global Status: Success. All valid results are consistent over %d indices.", len(m.session.Indices)))
	case m.exitCode == apperrors.ExitErrorMismatch:
		return errorStyle.Render("Global Status: CRITICAL ERROR! Evaluators disagree.")
	case errors.Is(m.err, context.Canceled):
		return warningStyle.Render("Status: Canceled.")
	case errors.Is(m.err, context.DeadlineExceeded):
		return warningStyle.Render("Status: Timeout.")
	case m.err != nil:
		return errorStyle.Render(fmt.Sprintf("Global Status: Failure. %v", m.err))
	default:
		return errorStyle.Render("Global Status: Failure.")
	}
}

// renderBar draws progress, clamped to [0, 1], as a bar of width cells.
func renderBar(progress float64, width int) string {
	progress = max(0, min(progress, 1))
	filled := int(progress * float64(width))
	return barStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", width-filled))
}

// Run shows the dashboard until the comparison completes and the user quits,
// or ctx ends. opts are passed to tea.NewProgram.
func Run(ctx context.Context, s Session, opts ...tea.ProgramOption) (Outcome, error) {
	initStyles()

	model := NewModel(ctx, s)
	defer model.cancel()

	p := tea.NewProgram(model, opts...)
	model.ref.SetProgram(p)

	final, err := p.Run()
	if err != nil {
		return Outcome{}, err
	}
	m, ok := final.(Model)
	if !ok {
		return Outcome{}, fmt.Errorf("unexpected final model %T", final)
	}
	m.cancel()
	return m.Outcome(), nil
}

// startEvaluationCmd runs the comparison, reporting through ref.
func startEvaluationCmd(ref *programRef, ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		reporter := &ProgressReporter{ref: ref}
		presenter := &ResultPresenter{ref: ref}
		results := orchestration.ExecuteEvaluations(ctx, s.Calculators, s.Indices, s.Workers, reporter, io.Discard)
		if err := ctx.Err(); err != nil {
			return ContextCancelledMsg{Err: err}
		}
		code := orchestration.AnalyzeComparisonResults(results, s.Indices, presenter, io.Discard)
		return EvaluationCompleteMsg{Results: results, ExitCode: code}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// watchContextCmd waits for ctx to end.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}
