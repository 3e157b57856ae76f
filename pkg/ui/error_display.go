package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	errHeaderStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	indentStyle = lipgloss.NewStyle().
			PaddingLeft(3)

	reasonTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	suggestionTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("226")).
				Bold(true)

	suggestionTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("226"))

	rawErrorStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// RenderErrorBox renders a fatal CLI error with dynamic wrapping to the
// terminal width.
func RenderErrorBox(title, reason, suggestion string, original error) string {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	contentWidth := width - 5

	header := indentStyle.Render(errHeaderStyle.Render("✕ " + title))

	var blocks []string
	if reason != "" {
		blocks = append(blocks, reasonTextStyle.Width(contentWidth).Render(reason))
	}
	if suggestion != "" {
		if len(blocks) > 0 {
			blocks = append(blocks, "")
		}
		blocks = append(blocks,
			suggestionTitleStyle.Render("Suggestion:"),
			suggestionTextStyle.Width(contentWidth).Render(suggestion),
		)
	}
	if original != nil {
		if len(blocks) > 0 {
			blocks = append(blocks, "")
		}
		blocks = append(blocks,
			rawErrorStyle.Render("Raw Error:"),
			rawErrorStyle.Width(contentWidth).Render(strings.TrimSpace(original.Error())),
		)
	}

	body := indentStyle.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
	return fmt.Sprintf("\n%s\n%s\n", header, body)
}

// RenderConnectionError is the common bootstrap failure box.
func RenderConnectionError(baseURL string, err error) string {
	return RenderErrorBox(
		"Could not reach the backend",
		fmt.Sprintf("No usable response from %s.", baseURL),
		"Check that the backend is running, or point the widget elsewhere with 'yonatan setup'.",
		err,
	)
}
