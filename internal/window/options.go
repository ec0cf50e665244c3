package window

import "github.com/bryanchriswhite/winctl/internal/config"

// NoMonitor leaves the window on whatever monitor it starts on.
const NoMonitor MonitorID = -1

// Options is the initial presentation applied to a window.
type Options struct {
	Title         string
	Size          Size
	MinSize       Size
	Position      *Position
	Monitor       MonitorID
	Fullscreen    bool
	Maximized     bool
	CursorVisible bool
	CursorEnabled bool
}

// OptionsFromConfig converts the window section of the configuration.
func OptionsFromConfig(cfg config.WindowConfig) Options {
	opts := Options{
		Title:         cfg.Title,
		Size:          Size{Width: int32(cfg.Width), Height: int32(cfg.Height)},
		MinSize:       Size{Width: int32(cfg.MinWidth), Height: int32(cfg.MinHeight)},
		Monitor:       MonitorID(cfg.Monitor),
		Fullscreen:    cfg.Fullscreen,
		Maximized:     cfg.Maximized,
		CursorVisible: cfg.CursorVisible,
		CursorEnabled: cfg.CursorEnabled,
	}
	if cfg.X != nil && cfg.Y != nil {
		opts.Position = &Position{X: int32(*cfg.X), Y: int32(*cfg.Y)}
	}
	return opts
}

// Apply pushes opts to w. Zero sizes and an empty title are left alone.
// The monitor is assigned after entering fullscreen since it has no effect
// otherwise.
func Apply[H any](w Window[H], opts Options) {
	if opts.Title != "" {
		w.SetTitle(opts.Title)
	}
	if opts.MinSize.Width > 0 && opts.MinSize.Height > 0 {
		w.SetMinSize(opts.MinSize)
	}
	if opts.Size.Width > 0 && opts.Size.Height > 0 {
		w.SetSize(opts.Size)
	}
	if opts.Position != nil {
		w.SetPosition(*opts.Position)
	}
	if opts.Maximized {
		w.Maximize()
	}
	if opts.Fullscreen {
		w.SetFullscreen(true)
		if opts.Monitor != NoMonitor {
			w.SetMonitor(opts.Monitor)
		}
	}
	w.SetCursorVisible(opts.CursorVisible)
	w.SetCursorEnabled(opts.CursorEnabled)
}
