package window

import "fmt"

// CursorState groups the cursor flags of a window.
type CursorState struct {
	Visible  bool `json:"visible" yaml:"visible"`
	Enabled  bool `json:"enabled" yaml:"enabled"`
	OnWindow bool `json:"on_window" yaml:"on_window"`
}

// State is a snapshot of everything the Window queries report.
type State struct {
	Handle     string      `json:"handle" yaml:"handle"`
	Title      string      `json:"title" yaml:"title"`
	Position   Position    `json:"position" yaml:"position"`
	Size       Size        `json:"size" yaml:"size"`
	Fullscreen bool        `json:"fullscreen" yaml:"fullscreen"`
	Maximized  bool        `json:"maximized" yaml:"maximized"`
	Minimized  bool        `json:"minimized" yaml:"minimized"`
	Hidden     bool        `json:"hidden" yaml:"hidden"`
	Monitor    MonitorID   `json:"monitor" yaml:"monitor"`
	Cursor     CursorState `json:"cursor" yaml:"cursor"`
}

// MonitorInfo describes one monitor.
type MonitorInfo struct {
	ID       MonitorID   `json:"id" yaml:"id"`
	Name     string      `json:"name" yaml:"name"`
	Position Position    `json:"position" yaml:"position"`
	Size     MonitorSize `json:"size" yaml:"size"`
	Scale    float64     `json:"scale" yaml:"scale"`
	Current  bool        `json:"current" yaml:"current"`
}

// Capture queries every state of w.
func Capture[H any](w Window[H]) State {
	return State{
		Handle:     fmt.Sprintf("%v", w.Handle()),
		Title:      w.Title(),
		Position:   w.Position(),
		Size:       w.Size(),
		Fullscreen: w.Fullscreen(),
		Maximized:  w.Maximized(),
		Minimized:  w.Minimized(),
		Hidden:     w.Hidden(),
		Monitor:    w.MonitorID(),
		Cursor:     CaptureCursor(w),
	}
}

// CaptureCursor queries the cursor flags of c.
func CaptureCursor(c Cursor) CursorState {
	return CursorState{
		Visible:  c.CursorVisible(),
		Enabled:  c.CursorEnabled(),
		OnWindow: c.CursorOnWindow(),
	}
}

// Monitor describes monitor id of m. The second result is false when id is
// out of range.
func Monitor(m Monitors, id MonitorID) (MonitorInfo, bool) {
	if !ValidMonitor(m, id) {
		return MonitorInfo{}, false
	}
	return MonitorInfo{
		ID:       id,
		Name:     m.MonitorName(id),
		Position: m.MonitorPosition(id),
		Size:     m.MonitorSize(id),
		Scale:    m.MonitorScale(id),
		Current:  m.MonitorID() == id,
	}, true
}

// ListMonitors describes every monitor of m.
func ListMonitors(m Monitors) []MonitorInfo {
	count := m.MonitorCount()
	monitors := make([]MonitorInfo, 0, count)
	for i := 0; i < count; i++ {
		if info, ok := Monitor(m, MonitorID(i)); ok {
			monitors = append(monitors, info)
		}
	}
	return monitors
}
