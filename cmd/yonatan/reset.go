package yonatan

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/yonatanbot/yonatan/pkg/client"
	"github.com/yonatanbot/yonatan/pkg/config"
	"github.com/yonatanbot/yonatan/pkg/logger"
	"github.com/yonatanbot/yonatan/pkg/store"
	"github.com/yonatanbot/yonatan/pkg/ui"
)

// handleResetCommand deletes the conversation locally and server-side after
// confirmation.
func handleResetCommand(args []string) error {
	resetFlags := flag.NewFlagSet("reset", flag.ExitOnError)
	force := resetFlags.Bool("force", false, "Skip the confirmation prompt")
	if err := resetFlags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Setup(cfg.LogLevel, nil)

	if !*force {
		ok, err := ui.ConfirmReset()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to locate state: %w", err)
	}
	st, err := store.New(store.Options{Dir: dir})
	if err != nil {
		return fmt.Errorf("failed to open local state: %w", err)
	}

	// Best-effort server-side cleanup before wiping the local session id.
	if state := st.Load(); state.SessionID != "" {
		c := client.New(client.Options{
			BaseURL:    cfg.BaseURL,
			Timeout:    10 * time.Second,
			MaxRetries: 0,
		})
		if err := c.ResetSession(context.Background(), state.SessionID); err != nil {
			fmt.Printf("Warning: server-side reset failed: %v\n", err)
		}
	}

	if err := st.Clear(); err != nil {
		return fmt.Errorf("failed to clear local state: %w", err)
	}
	fmt.Println("Conversation deleted.")
	return nil
}
