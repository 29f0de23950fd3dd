// Package tui implements the interactive compare dashboard: live progress
// per evaluator, the comparison results and the consistency verdict,
// rendered with bubbletea.
package tui
