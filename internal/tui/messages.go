package tui

import (
	"time"

	"github.com/agbru/labwork/internal/orchestration"
)

// ProgressMsg carries one aggregated progress update.
type ProgressMsg struct {
	CalculatorIndex int
	Value           float64
	AverageProgress float64
}

// ProgressDoneMsg is sent once the progress channel is closed.
type ProgressDoneMsg struct{}

// ComparisonResultsMsg carries the sorted results of a comparison.
type ComparisonResultsMsg struct {
	Results []orchestration.EvaluationResult
}

// ErrorMsg reports that no evaluator succeeded.
type ErrorMsg struct {
	Err error
}

// EvaluationCompleteMsg ends a comparison that ran to completion.
type EvaluationCompleteMsg struct {
	Results  []orchestration.EvaluationResult
	ExitCode int
}

// ContextCancelledMsg is sent when the run context ends before completion.
type ContextCancelledMsg struct {
	Err error
}

// TickMsg refreshes the elapsed time.
type TickMsg time.Time
