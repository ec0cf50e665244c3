package commands

import (
	"fmt"
	"strconv"

	"github.com/bryanchriswhite/winctl/internal/window"
	"github.com/spf13/cobra"
)

// withWindow opens the configured window for the duration of fn. Logs go
// to stderr so stdout only carries the command output.
func withWindow(fn func(w window.Window[any]) error) error {
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
	return fn(w)
}

// mutate runs fn on the window and prints the resulting state, failing
// with whatever the backend recorded.
func mutate(cmd *cobra.Command, fn func(w window.Window[any])) error {
	return withWindow(func(w window.Window[any]) error {
		var state window.State
		err := window.Do(w, func() {
			fn(w)
			state = window.Capture(w)
		})
		if err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), outputFormat, state)
	})
}

func parseInt32(name, s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return int32(v), nil
}

func parsePair(names [2]string, args []string) (int32, int32, error) {
	a, err := parseInt32(names[0], args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := parseInt32(names[1], args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the window state",
	Example: `  # Show the state of an existing X11 window
  winctl state --window 0x3a00007

  # As JSON
  winctl state --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWindow(func(w window.Window[any]) error {
			return printState(cmd.OutOrStdout(), outputFormat, window.Capture(w))
		})
	},
}

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List monitors",
	Long: `List the attached monitors with their position, resolution, scale
factor and name. The monitor holding the window is marked with *.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWindow(func(w window.Window[any]) error {
			return printMonitors(cmd.OutOrStdout(), outputFormat, window.ListMonitors(w))
		})
	},
}

var fullscreenCmd = &cobra.Command{
	Use:       "fullscreen [on|off|toggle]",
	Short:     "Enter, leave or toggle fullscreen",
	Example:   `  winctl fullscreen on --window 0x3a00007`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := "toggle"
		if len(args) == 1 {
			mode = args[0]
		}
		return mutate(cmd, func(w window.Window[any]) {
			switch mode {
			case "on":
				w.SetFullscreen(true)
			case "off":
				w.SetFullscreen(false)
			default:
				w.ToggleFullscreen()
			}
		})
	},
}

var maximizeCmd = &cobra.Command{
	Use:   "maximize",
	Short: "Maximize the window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(w window.Window[any]) { w.Maximize() })
	},
}

var minimizeCmd = &cobra.Command{
	Use:   "minimize",
	Short: "Minimize the window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(w window.Window[any]) { w.Minimize() })
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the window from minimized or maximized",
	Long: `Restore a minimized window, keeping it maximized if it was. A window
that is not minimized is un-maximized.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(w window.Window[any]) { w.Restore() })
	},
}

var titleCmd = &cobra.Command{
	Use:     "title TITLE",
	Short:   "Set the window title",
	Example: `  winctl title "Build output" --window 0x3a00007`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, func(w window.Window[any]) { w.SetTitle(args[0]) })
	},
}

var moveCmd = &cobra.Command{
	Use:     "move X Y",
	Short:   "Move the window",
	Example: `  winctl move 100 50`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := parsePair([2]string{"x", "y"}, args)
		if err != nil {
			return err
		}
		return mutate(cmd, func(w window.Window[any]) {
			w.SetPosition(window.Position{X: x, Y: y})
		})
	},
}

var resizeCmd = &cobra.Command{
	Use:     "resize WIDTH HEIGHT",
	Short:   "Resize the window",
	Example: `  winctl resize 1280 720`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, height, err := parsePair([2]string{"width", "height"}, args)
		if err != nil {
			return err
		}
		if width <= 0 || height <= 0 {
			return fmt.Errorf("size must be positive, got %dx%d", width, height)
		}
		return mutate(cmd, func(w window.Window[any]) {
			w.SetSize(window.Size{Width: width, Height: height})
		})
	},
}

var minSizeCmd = &cobra.Command{
	Use:   "min-size WIDTH HEIGHT",
	Short: "Set the minimum size for interactive resizing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, height, err := parsePair([2]string{"width", "height"}, args)
		if err != nil {
			return err
		}
		if width < 0 || height < 0 {
			return fmt.Errorf("min size must not be negative, got %dx%d", width, height)
		}
		return mutate(cmd, func(w window.Window[any]) {
			w.SetMinSize(window.Size{Width: width, Height: height})
		})
	},
}

var monitorCmd = &cobra.Command{
	Use:   "monitor ID",
	Short: "Move the fullscreen window to another monitor",
	Long: `Move the window to monitor ID (see 'winctl monitors'). Only takes
effect while the window is fullscreen.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid monitor id %q: %w", args[0], err)
		}
		return mutate(cmd, func(w window.Window[any]) { w.SetMonitor(window.MonitorID(id)) })
	},
}

var (
	cursorVisible bool
	cursorEnabled bool
)

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Show or change the cursor state",
	Example: `  # Hide the pointer over the window
  winctl cursor --visible=false

  # Capture the pointer in the window
  winctl cursor --enabled=false`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		visibleSet := cmd.Flags().Changed("visible")
		enabledSet := cmd.Flags().Changed("enabled")
		return withWindow(func(w window.Window[any]) error {
			var cursor window.CursorState
			err := window.Do(w, func() {
				if visibleSet {
					w.SetCursorVisible(cursorVisible)
				}
				if enabledSet {
					w.SetCursorEnabled(cursorEnabled)
				}
				cursor = window.CaptureCursor(w)
			})
			if err != nil {
				return err
			}
			return printCursor(cmd.OutOrStdout(), outputFormat, cursor)
		})
	},
}

func init() {
	cmds := []*cobra.Command{
		stateCmd, monitorsCmd, fullscreenCmd, maximizeCmd, minimizeCmd, restoreCmd,
		titleCmd, moveCmd, resizeCmd, minSizeCmd, monitorCmd, cursorCmd,
	}
	for _, c := range cmds {
		c.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format (table, json or yaml)")
		rootCmd.AddCommand(c)
	}

	cursorCmd.Flags().BoolVar(&cursorVisible, "visible", true, "show the pointer image")
	cursorCmd.Flags().BoolVar(&cursorEnabled, "enabled", true, "enable the pointer (false captures it)")
}
