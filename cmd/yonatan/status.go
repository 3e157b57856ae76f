package yonatan

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/yonatanbot/yonatan/pkg/client"
	"github.com/yonatanbot/yonatan/pkg/config"
	"github.com/yonatanbot/yonatan/pkg/logger"
	"github.com/yonatanbot/yonatan/pkg/ui"
)

func handleStatusCommand(args []string) error {
	statusFlags := flag.NewFlagSet("status", flag.ExitOnError)
	baseURL := statusFlags.String("base-url", "", "Backend URL (overrides configuration)")
	if err := statusFlags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	logger.Setup(cfg.LogLevel, nil)

	c := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    10 * time.Second,
		MaxRetries: 0,
	})

	h, err := c.Health(context.Background())
	if err != nil {
		fmt.Print(ui.RenderConnectionError(cfg.BaseURL, err))
		return fmt.Errorf("health probe failed")
	}

	fmt.Print(ui.RenderHealthReport(cfg.BaseURL, h))
	return nil
}
