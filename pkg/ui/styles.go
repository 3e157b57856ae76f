package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Define styles
var (
	// Colors
	colorBot      = lipgloss.Color("63")  // Purple
	colorUser     = lipgloss.Color("86")  // Cyan
	colorChip     = lipgloss.Color("214") // Orange
	colorError    = lipgloss.Color("196") // Red
	colorDegraded = lipgloss.Color("220") // Yellow
	colorGray     = lipgloss.Color("240")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(colorBot).
			Padding(0, 1)

	botLabelStyle  = lipgloss.NewStyle().Foreground(colorBot).Bold(true)
	userLabelStyle = lipgloss.NewStyle().Foreground(colorUser).Bold(true)

	botTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	userTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	boldStyle     = lipgloss.NewStyle().Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBot).
			Padding(0, 1).
			MarginLeft(2)

	cardTitleStyle = lipgloss.NewStyle().Foreground(colorBot).Bold(true)

	chipStyle = lipgloss.NewStyle().
			Foreground(colorChip).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorChip).
			Padding(0, 1)

	chipUsedStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	degradedBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(colorDegraded).
			Padding(0, 1).
			Render("מצב מוגבל")

	progressStyle = lipgloss.NewStyle().Foreground(colorGray)
	hintStyle     = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
)
