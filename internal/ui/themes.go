package ui

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	escBold      = "\033[1m"
	escUnderline = "\033[4m"
	escReset     = "\033[0m"
)

// Theme holds the escape codes used by console output. Color fields are
// empty in the no-color theme, so callers can concatenate them blindly.
type Theme struct {
	Name      string
	Primary   string // evaluator names
	Secondary string // environment details
	Success   string
	Warning   string // durations, timeouts
	Error     string
	Info      string // mode and counts
	Bold      string
	Underline string
	Reset     string
	// Heading is the lipgloss color of section headings.
	Heading lipgloss.TerminalColor
	// TUI holds the lipgloss colors of the compare dashboard.
	TUI TUIPalette
}

// TUIPalette is the lipgloss counterpart of a Theme's escape codes.
type TUIPalette struct {
	Accent  lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
}

// palette lists xterm-256 color indices for one theme.
type palette struct {
	primary, secondary, success, warning, errorColor, info int
}

func fg256(code int) string {
	return fmt.Sprintf("\033[38;5;%dm", code)
}

func newTheme(name string, p palette) Theme {
	return Theme{
		Name:      name,
		Primary:   fg256(p.primary),
		Secondary: fg256(p.secondary),
		Success:   fg256(p.success),
		Warning:   fg256(p.warning),
		Error:     fg256(p.errorColor),
		Info:      fg256(p.info),
		Bold:      escBold,
		Underline: escUnderline,
		Reset:     escReset,
		Heading:   lipgloss.ANSIColor(p.primary),
		TUI: TUIPalette{
			Accent:  lipgloss.ANSIColor(p.primary),
			Dim:     lipgloss.ANSIColor(p.secondary),
			Success: lipgloss.ANSIColor(p.success),
			Warning: lipgloss.ANSIColor(p.warning),
			Error:   lipgloss.ANSIColor(p.errorColor),
		},
	}
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = newTheme("dark", palette{primary: 39, secondary: 245, success: 82, warning: 220, errorColor: 196, info: 141})

	// LightTheme suits light terminal backgrounds.
	LightTheme = newTheme("light", palette{primary: 27, secondary: 240, success: 28, warning: 130, errorColor: 124, info: 54})

	// NoColorTheme disables all color output.
	NoColorTheme = Theme{Name: "none", Heading: lipgloss.NoColor{}, TUI: TUIPalette{
		Accent:  lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
	}}

	themes = map[string]Theme{
		DarkTheme.Name:  DarkTheme,
		LightTheme.Name: LightTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// ThemeNames returns the selectable theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTheme returns the theme registered under name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// InitTheme selects the theme named name, falling back to DarkTheme for
// unknown names. noColor or a NO_COLOR environment variable of any value
// (https://no-color.org/) selects NoColorTheme instead.
func InitTheme(name string, noColor bool) {
	_, envNoColor := os.LookupEnv("NO_COLOR")

	t, ok := LookupTheme(name)
	switch {
	case noColor || envNoColor:
		t = NoColorTheme
	case !ok:
		t = DarkTheme
	}
	SetCurrentTheme(t)
}
