package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/winctl/internal/api"
	"github.com/bryanchriswhite/winctl/internal/logger"
	"github.com/bryanchriswhite/winctl/internal/window"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the winctl API server",
	Long: `Open the window and serve the REST and WebSocket API for it.

The window state is polled and streamed to WebSocket clients on
/api/window/stream whenever it changes.`,
	Example: `  # Start server on default port (8080)
  winctl serve

  # Attach to an existing X11 window
  winctl serve --window 0x3a00007

  # Headless, with the in-memory backend
  winctl serve --backend memory --port 9090

  # Start with debug logging
  winctl serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	configMgr, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, prettyOn(cfg, os.Stdout))
	log := logger.WithComponent("serve")

	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Str("backend", cfg.Backend).
		Msg("Configuration loaded")

	w, cleanup, err := openWindow(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	watcher := window.NewWatcher(w, time.Duration(cfg.PollIntervalMs)*time.Millisecond)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	server := api.NewServer(w, watcher, configMgr)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(cfg.ServerPort)
	}()

	log.Info().
		Str("api", fmt.Sprintf("http://localhost:%d/api", cfg.ServerPort)).
		Msg("winctl is running, press Ctrl+C to stop")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-sigChan:
	}

	log.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
