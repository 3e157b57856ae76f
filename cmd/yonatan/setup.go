package yonatan

import (
	"fmt"

	"github.com/yonatanbot/yonatan/pkg/config"
	"github.com/yonatanbot/yonatan/pkg/ui"
)

func handleSetupCommand() error {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := ui.RunSetupForm(cfg); err != nil {
		return err
	}

	if err := config.SaveAppConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	path, _ := config.GetConfigPath()
	fmt.Printf("Configuration saved to %s\n", path)
	return nil
}
