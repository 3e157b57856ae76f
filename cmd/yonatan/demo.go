package yonatan

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/yonatanbot/yonatan/pkg/config"
	"github.com/yonatanbot/yonatan/pkg/devserver"
)

// handleDemoCommand runs the widget against a built-in stub backend, so the
// whole flow can be tried without a real server.
func handleDemoCommand(args []string) error {
	demoFlags := flag.NewFlagSet("demo", flag.ExitOnError)
	port := demoFlags.Int("port", 0, "Stub backend port (default: random free port)")
	if err := demoFlags.Parse(args); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", *port))
	if err != nil {
		return fmt.Errorf("failed to bind stub backend: %w", err)
	}

	srv := devserver.New()
	srv.ChunkDelay = 30 * time.Millisecond // visible streaming
	go func() {
		if serveErr := http.Serve(ln, srv.Handler()); serveErr != nil {
			fmt.Fprintf(os.Stderr, "stub backend stopped: %v\n", serveErr)
		}
	}()

	cfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.BaseURL = "http://" + ln.Addr().String()

	// Demo conversations are throwaway; keep them out of the real state dir.
	stateDir, err := os.MkdirTemp("", "yonatan-demo-")
	if err != nil {
		return fmt.Errorf("failed to create demo state dir: %w", err)
	}
	defer os.RemoveAll(stateDir)

	return runChat(cfg, stateDir)
}
