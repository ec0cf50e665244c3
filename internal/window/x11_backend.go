package window

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/bryanchriswhite/winctl/internal/logger"
)

const (
	stateFullscreen = "_NET_WM_STATE_FULLSCREEN"
	stateMaxVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateMaxHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateHidden     = "_NET_WM_STATE_HIDDEN"
)

// X11Options configures NewX11Window.
type X11Options struct {
	// WindowID attaches to an existing top-level window. Zero creates a new one.
	WindowID xproto.Window
	// Title, Width and Height are used when creating a window.
	Title  string
	Width  int
	Height int
	// Scale resolves monitor scale factors. Nil uses DefaultScaleSource.
	Scale ScaleSource
}

// X11Window implements Window on top of X11 using EWMH and ICCCM requests
// to the window manager and RandR for monitors.
type X11Window struct {
	errorLog

	xu    *xgbutil.XUtil
	win   *xwindow.Window
	owned bool
	randr bool
	scale ScaleSource

	mu            sync.Mutex
	cursorVisible bool
	cursorEnabled bool
	grabbed       bool
	blank         xproto.Cursor
}

// ParseWindowID parses a window id given in decimal or 0x-prefixed hex.
func ParseWindowID(s string) (xproto.Window, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	return xproto.Window(id), nil
}

// NewX11Window connects to the X server named by $DISPLAY and attaches to
// or creates the window described by opts.
func NewX11Window(opts X11Options) (*X11Window, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	w := &X11Window{
		xu:            xu,
		scale:         opts.Scale,
		cursorVisible: true,
		cursorEnabled: true,
	}
	w.errorLog.log = logger.WithBackend("x11")

	if err := randr.Init(xu.Conn()); err != nil {
		w.errorLog.log.Warn().Err(err).Msg("RandR unavailable, using the root window as the only monitor")
	} else {
		w.randr = true
	}

	if opts.WindowID != 0 {
		if _, err := xproto.GetGeometry(xu.Conn(), xproto.Drawable(opts.WindowID)).Reply(); err != nil {
			xu.Conn().Close()
			return nil, fmt.Errorf("%w: window 0x%x: %v", ErrHandleUnavailable, uint32(opts.WindowID), err)
		}
		w.win = xwindow.New(xu, opts.WindowID)
	} else {
		if err := w.create(opts); err != nil {
			xu.Conn().Close()
			return nil, err
		}
	}

	if w.scale == nil {
		w.scale = DefaultScaleSource(xu)
	}

	w.errorLog.log.Info().
		Uint32("window_id", uint32(w.win.Id)).
		Bool("owned", w.owned).
		Msg("X11 window ready")
	return w, nil
}

// create makes and maps a top-level window of our own.
func (w *X11Window) create(opts X11Options) error {
	win, err := xwindow.Generate(w.xu)
	if err != nil {
		return fmt.Errorf("failed to create window ID: %w", err)
	}

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = 640, 480
	}

	err = win.CreateChecked(w.xu.RootWin(), 0, 0, width, height,
		xproto.CwBackPixel|xproto.CwEventMask,
		0x000000,
		xproto.EventMaskStructureNotify|xproto.EventMaskPropertyChange)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	w.win = win
	w.owned = true

	title := opts.Title
	if title == "" {
		title = "winctl"
	}
	w.SetTitle(title)

	if err := icccm.WmClassSet(w.xu, win.Id, &icccm.WmClass{
		Instance: "winctl",
		Class:    "Winctl",
	}); err != nil {
		w.errorLog.log.Warn().Err(err).Msg("Failed to set window class")
	}

	win.Map()
	w.xu.Sync()
	return nil
}

// Name implements Backend.
func (w *X11Window) Name() string {
	return "x11"
}

// Close releases the pointer grab and cursor, destroys the window if it was
// created by NewX11Window and closes the connection.
func (w *X11Window) Close() error {
	w.mu.Lock()
	if w.grabbed {
		xproto.UngrabPointer(w.xu.Conn(), xproto.TimeCurrentTime)
		w.grabbed = false
	}
	if w.blank != 0 {
		xproto.FreeCursor(w.xu.Conn(), w.blank)
		w.blank = 0
	}
	w.mu.Unlock()

	if w.owned {
		w.win.Destroy()
	}
	if c, ok := w.scale.(interface{ Close() error }); ok {
		c.Close()
	}
	w.xu.Conn().Close()
	return nil
}

func (w *X11Window) states() []string {
	states, err := ewmh.WmStateGet(w.xu, w.win.Id)
	if err != nil {
		// an absent _NET_WM_STATE means no state
		return nil
	}
	return states
}

func (w *X11Window) hasState(names ...string) bool {
	states := w.states()
	for _, name := range names {
		if !containsString(states, name) {
			return false
		}
	}
	return true
}

func (w *X11Window) mapped() bool {
	attrs, err := xproto.GetWindowAttributes(w.xu.Conn(), w.win.Id).Reply()
	if err != nil {
		w.errorLog.record("GetWindowAttributes", err)
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// requestState changes _NET_WM_STATE. Mapped windows ask the window manager;
// unmapped ones have the property edited directly, as EWMH requires.
func (w *X11Window) requestState(op string, action int, first, second string) {
	if w.mapped() {
		if err := ewmh.WmStateReqExtra(w.xu, w.win.Id, action, first, second, 2); err != nil {
			w.errorLog.record(op, err)
		}
		return
	}

	states := w.states()
	for _, name := range []string{first, second} {
		if name == "" {
			continue
		}
		has := containsString(states, name)
		add := action == ewmh.StateAdd || (action == ewmh.StateToggle && !has)
		switch {
		case add && !has:
			states = append(states, name)
		case !add:
			states = without(states, name)
		}
	}
	if err := ewmh.WmStateSet(w.xu, w.win.Id, states); err != nil {
		w.errorLog.record(op, err)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func without(states []string, name string) []string {
	var out []string
	for _, s := range states {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}

func (w *X11Window) SetFullscreen(fullscreen bool) {
	action := ewmh.StateRemove
	if fullscreen {
		action = ewmh.StateAdd
	}
	w.requestState("SetFullscreen", action, stateFullscreen, "")
}

// ToggleFullscreen lets the window manager flip the state so there is no
// read-then-write race with other clients.
func (w *X11Window) ToggleFullscreen() {
	w.requestState("ToggleFullscreen", ewmh.StateToggle, stateFullscreen, "")
}

func (w *X11Window) Fullscreen() bool {
	return w.hasState(stateFullscreen)
}

func (w *X11Window) Hidden() bool {
	return !w.mapped() || w.hasState(stateHidden)
}

func (w *X11Window) Maximize() {
	w.requestState("Maximize", ewmh.StateAdd, stateMaxVert, stateMaxHorz)
}

func (w *X11Window) Maximized() bool {
	return w.hasState(stateMaxVert, stateMaxHorz)
}

// Minimize asks the window manager to iconify the window (ICCCM 4.1.4).
func (w *X11Window) Minimize() {
	if err := ewmh.ClientEvent(w.xu, w.win.Id, "WM_CHANGE_STATE", icccm.StateIconic); err != nil {
		w.errorLog.record("Minimize", err)
	}
}

func (w *X11Window) Minimized() bool {
	if st, err := icccm.WmStateGet(w.xu, w.win.Id); err == nil && st.State == icccm.StateIconic {
		return true
	}
	return w.hasState(stateHidden)
}

// Restore de-iconifies a minimized window, leaving a maximized state in
// place. A window that is not minimized is un-maximized instead.
func (w *X11Window) Restore() {
	if w.Minimized() {
		w.win.Map()
		if err := ewmh.ActiveWindowReq(w.xu, w.win.Id); err != nil {
			w.errorLog.record("Restore", err)
		}
		return
	}
	if w.Maximized() {
		w.requestState("Restore", ewmh.StateRemove, stateMaxVert, stateMaxHorz)
	}
}

func (w *X11Window) SetTitle(title string) {
	if err := ewmh.WmNameSet(w.xu, w.win.Id, title); err != nil {
		w.errorLog.record("SetTitle", err)
	}
	if err := icccm.WmNameSet(w.xu, w.win.Id, title); err != nil {
		w.errorLog.record("SetTitle", err)
	}
}

func (w *X11Window) Title() string {
	if title, err := ewmh.WmNameGet(w.xu, w.win.Id); err == nil && title != "" {
		return title
	}
	title, err := icccm.WmNameGet(w.xu, w.win.Id)
	if err != nil {
		return ""
	}
	return title
}

func (w *X11Window) SetPosition(pos Position) {
	if err := w.win.WMMove(int(pos.X), int(pos.Y)); err != nil {
		w.errorLog.log.Debug().Err(err).Msg("WMMove failed, moving directly")
		w.win.Move(int(pos.X), int(pos.Y))
	}
}

// Position returns the position of the decorated frame in root coordinates.
func (w *X11Window) Position() Position {
	geom, err := w.win.DecorGeometry()
	if err != nil {
		w.errorLog.record("Position", err)
		return Position{}
	}
	return Position{X: int32(geom.X()), Y: int32(geom.Y())}
}

// SetMonitor moves a fullscreen window to monitor id by leaving
// fullscreen, moving to the monitor origin and entering it again. Outside
// fullscreen it does nothing.
func (w *X11Window) SetMonitor(id MonitorID) {
	monitors := w.monitors()
	if id < 0 || int(id) >= len(monitors) {
		w.errorLog.record("SetMonitor", fmt.Errorf("%w: %d", ErrInvalidMonitor, id))
		return
	}
	if !w.Fullscreen() {
		w.errorLog.log.Debug().Int("monitor", int(id)).Msg("SetMonitor ignored outside fullscreen")
		return
	}

	origin := monitors[id].Position
	w.requestState("SetMonitor", ewmh.StateRemove, stateFullscreen, "")
	w.SetPosition(origin)
	w.requestState("SetMonitor", ewmh.StateAdd, stateFullscreen, "")
}

// SetMinSize writes PMinSize into WM_NORMAL_HINTS, keeping the other hints.
func (w *X11Window) SetMinSize(size Size) {
	if size.Width < 0 || size.Height < 0 {
		w.errorLog.record("SetMinSize", fmt.Errorf("negative size %dx%d", size.Width, size.Height))
		return
	}
	hints, err := icccm.WmNormalHintsGet(w.xu, w.win.Id)
	if err != nil {
		hints = &icccm.NormalHints{WinGravity: xproto.GravityNorthWest}
	}
	hints.Flags |= icccm.SizeHintPMinSize
	hints.MinWidth = uint(size.Width)
	hints.MinHeight = uint(size.Height)
	if err := icccm.WmNormalHintsSet(w.xu, w.win.Id, hints); err != nil {
		w.errorLog.record("SetMinSize", err)
	}
}

func (w *X11Window) SetSize(size Size) {
	if size.Width <= 0 || size.Height <= 0 {
		w.errorLog.record("SetSize", fmt.Errorf("non-positive size %dx%d", size.Width, size.Height))
		return
	}
	if err := w.win.WMResize(int(size.Width), int(size.Height)); err != nil {
		w.errorLog.log.Debug().Err(err).Msg("WMResize failed, resizing directly")
		w.win.Resize(int(size.Width), int(size.Height))
	}
}

// Size returns the client area size, without decorations.
func (w *X11Window) Size() Size {
	geom, err := w.win.Geometry()
	if err != nil {
		w.errorLog.record("Size", err)
		return Size{}
	}
	return Size{Width: int32(geom.Width()), Height: int32(geom.Height())}
}

func (w *X11Window) Handle() xproto.Window {
	return w.win.Id
}
