package window

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bryanchriswhite/winctl/internal/config"
	"github.com/bryanchriswhite/winctl/internal/logger"
)

// MemoryHandle identifies a MemoryWindow.
type MemoryHandle uint32

func (h MemoryHandle) String() string {
	return fmt.Sprintf("mem:%d", uint32(h))
}

// MonitorSpec describes a simulated monitor.
type MonitorSpec struct {
	Name     string
	Position Position
	Size     MonitorSize
	Scale    float64
}

// MonitorSpecsFromConfig converts the configured monitor layout.
func MonitorSpecsFromConfig(monitors []config.MonitorConfig) []MonitorSpec {
	specs := make([]MonitorSpec, 0, len(monitors))
	for _, m := range monitors {
		specs = append(specs, MonitorSpec{
			Name:     m.Name,
			Position: Position{X: int32(m.X), Y: int32(m.Y)},
			Size:     MonitorSize{Width: uint32(m.Width), Height: uint32(m.Height)},
			Scale:    m.Scale,
		})
	}
	return specs
}

var nextMemoryHandle atomic.Uint32

// MemoryWindow is a headless backend that keeps all state in memory. It
// implements the contract exactly: geometry round-trips, the flags are
// independent and the pointer position is simulated with MovePointer.
type MemoryWindow struct {
	errorLog

	mu       sync.RWMutex
	handle   MemoryHandle
	monitors []MonitorSpec

	title      string
	position   Position
	size       Size
	minSize    Size
	fullscreen bool
	maximized  bool
	minimized  bool
	hidden     bool
	// windowed geometry kept while fullscreen
	saved struct {
		position Position
		size     Size
	}

	cursorVisible bool
	cursorEnabled bool
	pointer       Position
	pointerSet    bool
}

// NewMemoryWindow creates a memory window on the given monitors. With no
// monitors a single 1920x1080 monitor is simulated.
func NewMemoryWindow(monitors []MonitorSpec) *MemoryWindow {
	if len(monitors) == 0 {
		monitors = []MonitorSpec{{
			Name:  "VIRTUAL-1",
			Size:  MonitorSize{Width: 1920, Height: 1080},
			Scale: 1.0,
		}}
	}
	specs := make([]MonitorSpec, len(monitors))
	copy(specs, monitors)
	for i := range specs {
		if specs[i].Scale <= 0 {
			specs[i].Scale = 1.0
		}
	}

	w := &MemoryWindow{
		handle:        MemoryHandle(nextMemoryHandle.Add(1)),
		monitors:      specs,
		size:          Size{Width: 640, Height: 480},
		cursorVisible: true,
		cursorEnabled: true,
	}
	w.errorLog.log = logger.WithBackend("memory")
	return w
}

// Name implements Backend.
func (w *MemoryWindow) Name() string {
	return "memory"
}

// Close implements Backend.
func (w *MemoryWindow) Close() error {
	return nil
}

// SetHidden changes the hidden state. It is not part of the Window
// interface and only exists to simulate the window system hiding the window.
func (w *MemoryWindow) SetHidden(hidden bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hidden = hidden
}

// MovePointer simulates the OS pointer moving to pos in screen coordinates.
func (w *MemoryWindow) MovePointer(pos Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pointer = pos
	w.pointerSet = true
}

func (w *MemoryWindow) SetFullscreen(fullscreen bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setFullscreenLocked(fullscreen, w.monitorIDLocked())
}

func (w *MemoryWindow) setFullscreenLocked(fullscreen bool, id MonitorID) {
	if w.fullscreen == fullscreen {
		return
	}
	if fullscreen {
		w.saved.position = w.position
		w.saved.size = w.size
		w.coverMonitorLocked(id)
	} else {
		w.position = w.saved.position
		w.size = w.saved.size
	}
	w.fullscreen = fullscreen
}

func (w *MemoryWindow) coverMonitorLocked(id MonitorID) {
	m := w.monitors[id]
	w.position = m.Position
	w.size = Size{Width: int32(m.Size.Width), Height: int32(m.Size.Height)}
}

func (w *MemoryWindow) ToggleFullscreen() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setFullscreenLocked(!w.fullscreen, w.monitorIDLocked())
}

func (w *MemoryWindow) Fullscreen() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fullscreen
}

func (w *MemoryWindow) Hidden() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hidden
}

func (w *MemoryWindow) Maximize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.maximized = true
}

func (w *MemoryWindow) Maximized() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.maximized
}

func (w *MemoryWindow) Minimize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minimized = true
}

func (w *MemoryWindow) Minimized() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.minimized
}

// Restore un-minimizes a minimized window, keeping it maximized if it was.
// Otherwise it un-maximizes.
func (w *MemoryWindow) Restore() {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.minimized:
		w.minimized = false
	case w.maximized:
		w.maximized = false
	}
}

func (w *MemoryWindow) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title = title
}

func (w *MemoryWindow) Title() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.title
}

func (w *MemoryWindow) SetPosition(pos Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.position = pos
}

func (w *MemoryWindow) Position() Position {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.position
}

func (w *MemoryWindow) SetMonitor(id MonitorID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id < 0 || int(id) >= len(w.monitors) {
		w.errorLog.record("SetMonitor", fmt.Errorf("%w: %d", ErrInvalidMonitor, id))
		return
	}
	if !w.fullscreen {
		w.errorLog.log.Debug().Int("monitor", int(id)).Msg("SetMonitor ignored outside fullscreen")
		return
	}
	w.coverMonitorLocked(id)
}

// SetMinSize stores the bound used for interactive resizing. Nothing resizes
// a memory window interactively, so it is only reported by MinSize.
func (w *MemoryWindow) SetMinSize(size Size) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minSize = size
}

// MinSize returns the size set with SetMinSize.
func (w *MemoryWindow) MinSize() Size {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.minSize
}

func (w *MemoryWindow) SetSize(size Size) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.size = size
}

func (w *MemoryWindow) Size() Size {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.size
}

func (w *MemoryWindow) Handle() MemoryHandle {
	return w.handle
}

func (w *MemoryWindow) MonitorCount() int {
	return len(w.monitors)
}

func (w *MemoryWindow) MonitorID() MonitorID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.monitorIDLocked()
}

// monitorIDLocked returns the monitor containing the window centre, or 0.
func (w *MemoryWindow) monitorIDLocked() MonitorID {
	cx := int64(w.position.X) + int64(w.size.Width)/2
	cy := int64(w.position.Y) + int64(w.size.Height)/2
	return monitorAt(w.monitors, cx, cy)
}

// monitorAt returns the monitor containing (x, y), 0 when no monitor does,
// and NoMonitor when there are no monitors at all.
func monitorAt(monitors []MonitorSpec, x, y int64) MonitorID {
	if len(monitors) == 0 {
		return NoMonitor
	}
	for i, m := range monitors {
		if contains(m, x, y) {
			return MonitorID(i)
		}
	}
	return 0
}

func contains(m MonitorSpec, x, y int64) bool {
	mx, my := int64(m.Position.X), int64(m.Position.Y)
	return x >= mx && x < mx+int64(m.Size.Width) &&
		y >= my && y < my+int64(m.Size.Height)
}

func (w *MemoryWindow) monitor(op string, id MonitorID) (MonitorSpec, bool) {
	if id < 0 || int(id) >= len(w.monitors) {
		w.errorLog.record(op, fmt.Errorf("%w: %d", ErrInvalidMonitor, id))
		return MonitorSpec{}, false
	}
	return w.monitors[id], true
}

func (w *MemoryWindow) MonitorPosition(id MonitorID) Position {
	m, _ := w.monitor("MonitorPosition", id)
	return m.Position
}

func (w *MemoryWindow) MonitorSize(id MonitorID) MonitorSize {
	m, _ := w.monitor("MonitorSize", id)
	return m.Size
}

func (w *MemoryWindow) MonitorScale(id MonitorID) float64 {
	m, ok := w.monitor("MonitorScale", id)
	if !ok {
		return 1.0
	}
	return m.Scale
}

func (w *MemoryWindow) MonitorName(id MonitorID) string {
	m, _ := w.monitor("MonitorName", id)
	return m.Name
}

func (w *MemoryWindow) SetCursorVisible(visible bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cursorVisible = visible
}

func (w *MemoryWindow) CursorVisible() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cursorVisible
}

func (w *MemoryWindow) SetCursorEnabled(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cursorEnabled = enabled
}

func (w *MemoryWindow) CursorEnabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cursorEnabled
}

// CursorOnWindow reports whether the simulated pointer lies inside the
// window. A disabled cursor is captured and always counts as on the window.
func (w *MemoryWindow) CursorOnWindow() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.cursorEnabled {
		return true
	}
	if !w.pointerSet || w.minimized || w.hidden {
		return false
	}
	x, y := int64(w.pointer.X), int64(w.pointer.Y)
	wx, wy := int64(w.position.X), int64(w.position.Y)
	return x >= wx && x < wx+int64(w.size.Width) &&
		y >= wy && y < wy+int64(w.size.Height)
}
