package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yonatanbot/yonatan/pkg/client"
)

var (
	okMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Render("✓")
	failMark = lipgloss.NewStyle().Foreground(colorError).Render("✕")
	warnMark = lipgloss.NewStyle().Foreground(colorDegraded).Render("!")

	reportKeyStyle = lipgloss.NewStyle().Foreground(colorGray).Width(22)
)

// RenderHealthReport formats the backend health probe for the status command.
func RenderHealthReport(baseURL string, h *client.Health) string {
	var b strings.Builder

	b.WriteString(reportLine("Backend", okMark, baseURL))
	b.WriteString(reportLine("Status", statusMark(h.Status), h.Status))
	b.WriteString(boolLine("Database", h.DatabaseConnected))
	b.WriteString(boolLine("AI model", h.AIModelWorking))
	b.WriteString(boolLine("Fallback available", h.FallbackSystemAvailable))
	if h.QuotaExceeded {
		b.WriteString(reportLine("Quota", warnMark, "exceeded, answers come from the fallback"))
	}
	if h.Degraded() {
		b.WriteString("\n" + degradedBadge + "\n")
	}
	return b.String()
}

func statusMark(status string) string {
	if status == "healthy" || status == "ok" {
		return okMark
	}
	return warnMark
}

func boolLine(key string, ok bool) string {
	mark, text := okMark, "ok"
	if !ok {
		mark, text = failMark, "unavailable"
	}
	return reportLine(key, mark, text)
}

func reportLine(key, mark, value string) string {
	return fmt.Sprintf("%s %s %s\n", reportKeyStyle.Render(key), mark, value)
}
