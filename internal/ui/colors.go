package ui

import "github.com/charmbracelet/lipgloss"

// ColorReset returns the escape code that clears formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary color.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the info color.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the secondary color.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// Heading renders a section heading with the current theme. lipgloss drops
// the styling when the output is not a terminal.
func Heading(text string) string {
	theme := GetCurrentTheme()
	style := lipgloss.NewStyle().Foreground(theme.Heading)
	if theme.Name != NoColorTheme.Name {
		style = style.Bold(true)
	}
	return style.Render(text)
}
