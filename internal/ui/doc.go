// Package ui provides theme and color support for console output. It defines
// color schemes, ANSI escape code accessors and lipgloss-styled headings so
// presentation code styles text consistently.
package ui
