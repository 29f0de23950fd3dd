package tui

import (
	"context"
	"errors"
	"io"
	"math/big"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/fibonacci"
	"github.com/agbru/labwork/internal/orchestration"
)

// offByOne returns F(n)+1 so comparisons against it disagree.
type offByOne struct{}

func (offByOne) Name() string { return "off-by-one" }

func (offByOne) Calculate(ctx context.Context, n uint64) (*big.Int, error) {
	v, err := fibonacci.FastDoubling(ctx, n)
	if err != nil {
		return nil, err
	}
	return v.Add(v, big.NewInt(1)), nil
}

func newSession(count int, calcs ...fibonacci.Calculator) Session {
	if len(calcs) == 0 {
		calcs = fibonacci.NewDefaultFactory().All()
	}
	return Session{
		Calculators: calcs,
		Indices:     orchestration.IndexRange(count),
		Workers:     2,
	}
}

func runComparison(t *testing.T, m Model) Model {
	t.Helper()
	msg := startEvaluationCmd(&programRef{}, m.ctx, m.session)()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_CompletesComparison(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newSession(50))
	defer m.cancel()

	m = runComparison(t, m)
	if !m.done {
		t.Fatal("model not done after EvaluationCompleteMsg")
	}
	out := m.Outcome()
	if out.ExitCode != apperrors.ExitSuccess || out.Err != nil {
		t.Fatalf("Outcome() = code %d err %v, want success", out.ExitCode, out.Err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(out.Results))
	}
	for i, p := range m.progress {
		if p != 1 {
			t.Errorf("progress[%d] = %v, want 1", i, p)
		}
	}
	view := m.View()
	for _, want := range []string{"Results", "memo", "big", "doubling", "Global Status: Success"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_FailedEvaluatorStillSucceeds(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newSession(101))
	defer m.cancel()

	m = runComparison(t, m)
	if m.exitCode != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, want %d", m.exitCode, apperrors.ExitSuccess)
	}
	last := m.results[len(m.results)-1]
	if last.Name != "memo" || last.Err == nil {
		t.Fatalf("last result = %s (err %v), want failing memo", last.Name, last.Err)
	}
	if !strings.Contains(m.View(), "Failure (") {
		t.Error("View() does not show the failed evaluator")
	}
}

func TestModel_Mismatch(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newSession(20, fibonacci.NewBigEvaluator(), offByOne{}))
	defer m.cancel()

	m = runComparison(t, m)
	if m.exitCode != apperrors.ExitErrorMismatch {
		t.Fatalf("exit code = %d, want %d", m.exitCode, apperrors.ExitErrorMismatch)
	}
	if !strings.Contains(m.View(), "CRITICAL ERROR") {
		t.Error("View() does not report the disagreement")
	}
}

func TestModel_ExitOnDone(t *testing.T) {
	t.Parallel()
	s := newSession(10)
	s.ExitOnDone = true
	m := NewModel(context.Background(), s)
	defer m.cancel()

	_, cmd := m.Update(EvaluationCompleteMsg{ExitCode: apperrors.ExitSuccess})
	if !isQuit(cmd) {
		t.Error("completion with ExitOnDone did not quit")
	}

	m = NewModel(context.Background(), newSession(10))
	defer m.cancel()
	if _, cmd := m.Update(EvaluationCompleteMsg{}); cmd != nil {
		t.Error("completion without ExitOnDone returned a command")
	}
}

func TestModel_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewModel(ctx, newSession(30))
	defer m.cancel()

	msg := startEvaluationCmd(&programRef{}, m.ctx, m.session)()
	cancelled, ok := msg.(ContextCancelledMsg)
	if !ok {
		t.Fatalf("got %T, want ContextCancelledMsg", msg)
	}
	updated, cmd := m.Update(cancelled)
	m = updated.(Model)
	if !isQuit(cmd) {
		t.Error("cancellation did not quit")
	}
	out := m.Outcome()
	if !errors.Is(out.Err, context.Canceled) || out.ExitCode != apperrors.ExitErrorCanceled {
		t.Errorf("Outcome() = code %d err %v, want canceled", out.ExitCode, out.Err)
	}
	if out.Results != nil {
		t.Error("canceled outcome carries results")
	}
}

func TestModel_DeadlineAfterCompletionIgnored(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newSession(10))
	defer m.cancel()

	updated, _ := m.Update(EvaluationCompleteMsg{ExitCode: apperrors.ExitSuccess})
	updated, cmd := updated.Update(ContextCancelledMsg{Err: context.DeadlineExceeded})
	if cmd != nil {
		t.Error("late cancellation returned a command")
	}
	if got := updated.(Model).Outcome(); got.Err != nil || got.ExitCode != apperrors.ExitSuccess {
		t.Errorf("Outcome() = code %d err %v, want success", got.ExitCode, got.Err)
	}
}

func TestModel_QuitKeyCancels(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newSession(10))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !isQuit(cmd) {
		t.Fatal("q did not quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting did not cancel the evaluation context")
	}
	out := updated.(Model).Outcome()
	if !errors.Is(out.Err, context.Canceled) || out.ExitCode != apperrors.ExitErrorCanceled {
		t.Errorf("Outcome() = code %d err %v, want canceled", out.ExitCode, out.Err)
	}
}

func TestModel_ProgressAndNavigation(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newSession(10))
	defer m.cancel()

	updated, _ := m.Update(ProgressMsg{CalculatorIndex: 1, Value: 0.5, AverageProgress: 0.25})
	updated, _ = updated.Update(ProgressMsg{CalculatorIndex: 7, Value: 0.9, AverageProgress: 0.3})
	m = updated.(Model)
	if m.progress[1] != 0.5 {
		t.Errorf("progress[1] = %v, want 0.5", m.progress[1])
	}
	if m.average != 0.3 {
		t.Errorf("average = %v, want 0.3", m.average)
	}

	results := []orchestration.EvaluationResult{{Name: "a"}, {Name: "b"}}
	updated, _ = m.Update(ComparisonResultsMsg{Results: results})
	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	for _, step := range []struct {
		msg  tea.KeyMsg
		want int
	}{{down, 1}, {down, 1}, {up, 0}, {up, 0}} {
		updated, _ = updated.Update(step.msg)
		if got := updated.(Model).cursor; got != step.want {
			t.Fatalf("after %q cursor = %d, want %d", step.msg.String(), got, step.want)
		}
	}

	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !updated.(Model).help.ShowAll {
		t.Error("? did not expand the help")
	}
}

func TestRenderBar(t *testing.T) {
	t.Parallel()
	for _, p := range []float64{-1, 0, 0.5, 1, 2} {
		if got := strings.Count(renderBar(p, 10), "█") + strings.Count(renderBar(p, 10), "░"); got != 10 {
			t.Errorf("renderBar(%v) has %d cells, want 10", p, got)
		}
	}
}

func TestRun_ExitOnDone(t *testing.T) {
	s := newSession(40)
	s.ExitOnDone = true
	out, err := Run(context.Background(), s,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.ExitCode != apperrors.ExitSuccess || len(out.Results) != 3 {
		t.Errorf("Run() = code %d with %d results, want success with 3", out.ExitCode, len(out.Results))
	}
}
