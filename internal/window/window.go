// Package window defines the capability interfaces a windowing backend
// implements to expose window state and geometry, monitor introspection and
// cursor control, together with the backends, decorators and helpers built
// on top of them.
//
// None of the interface methods return errors. Backends absorb failures,
// log them and record them; callers that care retrieve them with Check.
package window

// Position is a point in screen coordinates.
type Position struct {
	X int32 `json:"x" yaml:"x"`
	Y int32 `json:"y" yaml:"y"`
}

// Size is a window extent. It is signed because some backends report
// negative values while a window is being reconfigured.
type Size struct {
	Width  int32 `json:"width" yaml:"width"`
	Height int32 `json:"height" yaml:"height"`
}

// MonitorSize is the physical extent of a monitor.
type MonitorSize struct {
	Width  uint32 `json:"width" yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
}

// MonitorID indexes the monitors currently enumerated by the backend, in
// the range [0, MonitorCount()). Ids are not stable across hot-plug.
type MonitorID int

// Controls mutates and queries the presentation state and geometry of the
// backend's window. H is the backend's native window handle type.
type Controls[H any] interface {
	// SetFullscreen enters or leaves fullscreen. Idempotent.
	SetFullscreen(fullscreen bool)
	// ToggleFullscreen flips the fullscreen state in one request.
	ToggleFullscreen()
	// Fullscreen reports whether the window is fullscreen.
	Fullscreen() bool
	// Hidden reports whether the window is hidden. There is no setter.
	Hidden() bool
	// Maximize maximizes the window.
	Maximize()
	// Maximized reports whether the window is maximized.
	Maximized() bool
	// Minimize minimizes (iconifies) the window.
	Minimize()
	// Minimized reports whether the window is minimized.
	Minimized() bool
	// Restore returns the window to its normal state from either maximized
	// or minimized.
	Restore()

	// SetTitle sets the window title.
	SetTitle(title string)
	// Title returns a copy of the window title.
	Title() string
	// SetPosition moves the window.
	SetPosition(pos Position)
	// Position returns the window position in screen coordinates.
	Position() Position
	// SetMonitor moves the window to another monitor. Only takes effect
	// while the window is fullscreen.
	SetMonitor(id MonitorID)
	// SetMinSize sets the lower bound for interactive resizing. It does not
	// resize the window.
	SetMinSize(size Size)
	// SetSize resizes the window. The minimum size does not apply.
	SetSize(size Size)
	// Size returns the window size.
	Size() Size
	// Handle returns the native window handle for interop.
	Handle() H
}

// Monitors queries the physical displays known to the backend.
type Monitors interface {
	// MonitorCount returns the number of attached monitors.
	MonitorCount() int
	// MonitorID returns the monitor the window currently belongs to.
	MonitorID() MonitorID
	// MonitorPosition returns the monitor origin in screen coordinates.
	MonitorPosition(id MonitorID) Position
	// MonitorSize returns the monitor resolution.
	MonitorSize(id MonitorID) MonitorSize
	// MonitorScale returns the UI scale factor, 1.0 meaning unscaled.
	MonitorScale(id MonitorID) float64
	// MonitorName returns a human readable monitor name.
	MonitorName(id MonitorID) string
}

// Cursor controls the OS pointer for the window.
type Cursor interface {
	// SetCursorVisible shows or hides the pointer image.
	SetCursorVisible(visible bool)
	// CursorVisible reports whether the pointer image is shown.
	CursorVisible() bool
	// SetCursorEnabled enables or disables normal pointer processing.
	// A disabled cursor is captured by the window.
	SetCursorEnabled(enabled bool)
	// CursorEnabled reports whether the cursor is enabled.
	CursorEnabled() bool
	// CursorOnWindow reports whether the pointer hovers the client area.
	CursorOnWindow() bool
}

// Window is the full capability set a backend provides.
type Window[H any] interface {
	Controls[H]
	Monitors
	Cursor
}

// Backend is implemented by backends that own resources or carry a name.
type Backend interface {
	// Name returns the backend name (e.g., "x11", "memory")
	Name() string

	// Close releases the backend's resources
	Close() error
}

// ValidMonitor reports whether id is in range for m.
func ValidMonitor(m Monitors, id MonitorID) bool {
	return id >= 0 && int(id) < m.MonitorCount()
}

// Name returns the backend name of w, or "unknown".
func Name(w any) string {
	if b, ok := w.(interface{ Name() string }); ok {
		return b.Name()
	}
	return "unknown"
}

// Close closes w if it owns resources.
func Close(w any) error {
	if c, ok := w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
