package tui

import "github.com/charmbracelet/lipgloss"

// Shared palette, ANSI 256 codes. Panes pick styles from here rather
// than hardcoding colors.
const (
	colorAccent   = lipgloss.Color("62")
	colorInverse  = lipgloss.Color("0")
	colorMuted    = lipgloss.Color("240")
	colorFaint    = lipgloss.Color("241")
	colorRunning  = lipgloss.Color("11")
	colorComplete = lipgloss.Color("10")
	colorFailed   = lipgloss.Color("9")
	colorBlocked  = lipgloss.Color("208")
)

// Pane chrome.
var (
	StyleFocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent)

	StyleUnfocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted)

	StyleTitle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	StyleHelp  = lipgloss.NewStyle().Foreground(colorFaint)

	StyleSelectedRow = lipgloss.NewStyle().
		Background(colorAccent).
		Foreground(colorInverse)
)

// Task and agent status indicators.
var (
	StyleStatusRunning  = lipgloss.NewStyle().Foreground(colorRunning).Bold(true)
	StyleStatusComplete = lipgloss.NewStyle().Foreground(colorComplete).Bold(true)
	StyleStatusFailed   = lipgloss.NewStyle().Foreground(colorFailed).Bold(true)
	StyleStatusBlocked  = lipgloss.NewStyle().Foreground(colorBlocked)
	StyleStatusPending  = lipgloss.NewStyle().Foreground(colorMuted)
)

// Settings modal.
var (
	StyleModalTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	StyleModalBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(1, 2)

	StyleSaveOK = lipgloss.NewStyle().Foreground(colorComplete).Bold(true)

	StyleSaveError = lipgloss.NewStyle().Foreground(colorFailed).Bold(true)
)
