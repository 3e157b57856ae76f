package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

var onboardingBar = progress.New(
	progress.WithDefaultGradient(),
	progress.WithWidth(30),
	progress.WithoutPercentage(),
)

// RenderOnboardingProgress shows how far along the questionnaire is.
func RenderOnboardingProgress(step, total int) string {
	if total <= 0 {
		return ""
	}
	bar := onboardingBar.ViewAs(float64(step) / float64(total))
	return fmt.Sprintf("%s %s", bar, progressStyle.Render(fmt.Sprintf("שאלה %d מתוך %d", step+1, total)))
}
