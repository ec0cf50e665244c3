package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bryanchriswhite/winctl/internal/config"
	"github.com/bryanchriswhite/winctl/internal/logger"
	"github.com/bryanchriswhite/winctl/internal/telemetry"
	"github.com/bryanchriswhite/winctl/internal/window"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "winctl",
		Short: "winctl - control a window, its monitors and its cursor",
		Long: `winctl drives a single top-level window through a backend-neutral
window abstraction.

Features:
  • Fullscreen, maximize, minimize and restore
  • Title, position, size and minimum size
  • Monitor enumeration with position, resolution, scale and name
  • Cursor visibility and capture
  • REST and WebSocket API
  • MCP server for agents
  • X11 (EWMH/ICCCM/RandR) and in-memory backends`,
		SilenceUsage: true,
		// Logs stay off stdout until a command configures them.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := viper.GetString("log_level")
			if level == "" {
				level = "info"
			}
			logger.InitWriter(level, false, os.Stderr)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/winctl/config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "window backend (x11 or memory)")
	rootCmd.PersistentFlags().String("window", "", "X11 window id to attach to (hex or decimal)")
	rootCmd.PersistentFlags().Int("port", 0, "server port (default is 8080)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("window.id", rootCmd.PersistentFlags().Lookup("window"))
	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("WINCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig loads the config file and applies flag and environment
// overrides without saving them.
func loadConfig() (*config.Manager, *config.Config, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := configMgr.Get()
	if v := viper.GetString("backend"); v != "" {
		cfg.Backend = v
	}
	if v := viper.GetString("window.id"); v != "" {
		cfg.Window.ID = v
	}
	if v := viper.GetInt("server_port"); v > 0 {
		cfg.ServerPort = v
	}
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return configMgr, cfg, nil
}

// initLogging configures the global logger on stderr. Console formatting
// is only used when stderr is a terminal.
func initLogging(cfg *config.Config) {
	logger.InitWriter(cfg.LogLevel, prettyOn(cfg, os.Stderr), os.Stderr)
}

func prettyOn(cfg *config.Config, out *os.File) bool {
	return cfg.LogPretty && term.IsTerminal(int(out.Fd()))
}

// openWindow opens the configured backend. The returned function closes
// the window and flushes traces.
func openWindow(cfg *config.Config) (window.Window[any], func(), error) {
	tp, err := telemetry.NewProvider(context.Background(), cfg.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	w, err := window.Open(cfg, tp.Tracer())
	if err != nil {
		tp.Shutdown(context.Background())
		return nil, nil, fmt.Errorf("failed to open window: %w", err)
	}

	cleanup := func() {
		if err := window.Close(w); err != nil {
			logger.WithComponent("cli").Warn().Err(err).Msg("Failed to close window")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tp.Shutdown(ctx)
	}
	return w, cleanup, nil
}
