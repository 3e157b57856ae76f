package yonatan

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Version information
const (
	Version = "1.0.0"
	Name    = "Yonatan Parenting Chat"
	GitHub  = "https://github.com/yonatanbot/yonatan"
)

var asciiLogo = `
__  __                 __
\ \/ /___  ____  ____ _/ /_____ _____
 \  / __ \/ __ \/ __ ` + "`" + `/ __/ __ ` + "`" + `/ __ \
 / / /_/ / / / / /_/ / /_/ /_/ / / / /
/_/\____/_/ /_/\__,_/\__/\__,_/_/ /_/
`

func printVersion() {
	logoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("63")). // Purple
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")). // Cyan
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	linkStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Underline(true)

	fmt.Println(logoStyle.Render(asciiLogo))
	fmt.Println()
	fmt.Println(labelStyle.Render(Name))
	fmt.Printf("%s %s\n", labelStyle.Render("Version:"), valueStyle.Render(Version))
	fmt.Printf("%s %s\n", labelStyle.Render("GitHub:"), linkStyle.Render(GitHub))
	fmt.Println()
}
