// Package orchestration runs several sequence calculators concurrently over
// the same indices and compares their outputs. It decouples the evaluation
// logic from presentation via the ProgressReporter and ResultPresenter
// interfaces.
package orchestration
