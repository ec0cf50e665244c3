package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bryanchriswhite/winctl/internal/logger"
	"github.com/bryanchriswhite/winctl/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server on stdio",
	Long: `Open the window and expose it to MCP clients over stdin/stdout.

Logs are written to stderr since stdout carries the protocol.`,
	Example: `  # Register with an MCP client
  winctl mcp --backend x11`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	initLogging(cfg)

	w, cleanup, err := openWindow(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithComponent("mcp").Info().Str("backend", cfg.Backend).Msg("MCP server listening on stdio")
	return mcp.NewServer(w).Run(ctx)
}
