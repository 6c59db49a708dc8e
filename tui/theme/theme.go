// Package theme holds the shared lipgloss styles for fswatch TUI output.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors is the palette used by the theme. ANSI color numbers keep the
// output readable on both light and dark terminals.
type Colors struct {
	Green  lipgloss.TerminalColor
	Yellow lipgloss.TerminalColor
	Red    lipgloss.TerminalColor
	Orange lipgloss.TerminalColor
	Cyan   lipgloss.TerminalColor
	Blue   lipgloss.TerminalColor
	Violet lipgloss.TerminalColor
}

// Theme holds the pre-configured styles.
type Theme struct {
	Colors Colors

	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Italic  lipgloss.Style
	Accent  lipgloss.Style
	Border  lipgloss.Style
}

// DefaultTheme is the theme instance used across the tool.
var DefaultTheme = New()

// New builds the theme.
func New() *Theme {
	colors := Colors{
		Green:  lipgloss.Color("2"),
		Yellow: lipgloss.Color("3"),
		Red:    lipgloss.Color("1"),
		Orange: lipgloss.Color("208"),
		Cyan:   lipgloss.Color("6"),
		Blue:   lipgloss.Color("4"),
		Violet: lipgloss.Color("5"),
	}
	return &Theme{
		Colors: colors,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Orange),

		Success: lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(colors.Red).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(colors.Cyan).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Faint(true),

		Italic: lipgloss.NewStyle().
			Italic(true),

		Accent: lipgloss.NewStyle().
			Foreground(colors.Violet).
			Bold(true),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()),
	}
}
