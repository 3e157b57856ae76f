package yonatan

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yonatanbot/yonatan/pkg/client"
	"github.com/yonatanbot/yonatan/pkg/config"
	"github.com/yonatanbot/yonatan/pkg/logger"
	"github.com/yonatanbot/yonatan/pkg/store"
	"github.com/yonatanbot/yonatan/pkg/ui"
	"github.com/yonatanbot/yonatan/pkg/widget"
)

func handleChatCommand(args []string) error {
	chatFlags := flag.NewFlagSet("chat", flag.ExitOnError)
	baseURL := chatFlags.String("base-url", "", "Backend URL (overrides configuration)")
	if err := chatFlags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}

	return runChat(cfg, "")
}

// runChat wires the client, store, and controller and hands the terminal to
// the TUI. stateDir overrides the store location; demo mode uses a throwaway.
func runChat(cfg *config.AppConfig, stateDir string) error {
	setupFileLogging(cfg.LogLevel)

	if stateDir == "" {
		dir, err := config.GetConfigDir()
		if err != nil {
			return fmt.Errorf("failed to locate state dir: %w", err)
		}
		stateDir = dir
	}
	st, err := store.New(store.Options{
		Dir:              stateDir,
		TranscriptCap:    cfg.TranscriptCap,
		InactivityWindow: cfg.InactivityWindow.Std(),
	})
	if err != nil {
		return fmt.Errorf("failed to open local state: %w", err)
	}

	c := client.New(client.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.RequestTimeout.Std(),
		MaxRetries: cfg.MaxRetries,
	})

	ctrl := widget.NewController(c, st)
	if err := ui.RunChat(ctrl); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}

// setupFileLogging sends structured logs to a file; the TUI owns the
// terminal. Falls back to silence when the config dir is unavailable.
func setupFileLogging(level string) {
	dir, err := config.GetConfigDir()
	if err != nil {
		logger.Discard()
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "yonatan.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Discard()
		return
	}
	logger.Setup(level, f)
}
