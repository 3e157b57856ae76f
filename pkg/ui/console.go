package ui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/yonatanbot/yonatan/pkg/config"
)

// RunSetupForm walks the user through the connection settings and mutates cfg
// in place. The caller persists.
func RunSetupForm(cfg *config.AppConfig) error {
	baseURL := cfg.BaseURL
	logLevel := cfg.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("The chat backend this widget talks to").
				Value(&baseURL).
				Validate(validateBaseURL),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("debug", "debug"),
					huh.NewOption("info", "info"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("error", "error"),
				).
				Value(&logLevel),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.LogLevel = logLevel
	return nil
}

func validateBaseURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter a full http(s) URL")
	}
	return nil
}

// ConfirmReset asks before wiping the conversation, in the widget's language.
func ConfirmReset() (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("למחוק את כל נתוני השיחה?").
				Description("הפעולה מוחקת את השיחה מהמכשיר ומהשרת ואינה הפיכה.").
				Affirmative("כן, למחוק").
				Negative("ביטול").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
