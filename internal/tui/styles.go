package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/labwork/internal/ui"
)

var (
	titleStyle   lipgloss.Style
	dimStyle     lipgloss.Style
	nameStyle    lipgloss.Style
	barStyle     lipgloss.Style
	emptyStyle   lipgloss.Style
	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	errorStyle   lipgloss.Style
	cursorStyle  lipgloss.Style
)

func init() {
	initStyles()
}

// initStyles rebuilds the dashboard styles from the current ui theme.
func initStyles() {
	p := ui.GetCurrentTheme().TUI
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	dimStyle = lipgloss.NewStyle().Foreground(p.Dim)
	nameStyle = lipgloss.NewStyle().Foreground(p.Accent)
	barStyle = lipgloss.NewStyle().Foreground(p.Accent)
	emptyStyle = lipgloss.NewStyle().Foreground(p.Dim)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Success)
	warningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Error)
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
}
