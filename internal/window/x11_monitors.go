package window

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// monitors enumerates the active CRTCs. Without RandR, or when no CRTC is
// active, the root window is reported as a single monitor.
func (w *X11Window) monitors() []MonitorSpec {
	if w.randr {
		if monitors, err := w.randrMonitors(); err != nil {
			w.errorLog.log.Debug().Err(err).Msg("RandR enumeration failed")
		} else if len(monitors) > 0 {
			return monitors
		}
	}

	geom, err := xproto.GetGeometry(w.xu.Conn(), xproto.Drawable(w.xu.RootWin())).Reply()
	if err != nil {
		w.errorLog.record("monitors", err)
		return nil
	}
	return []MonitorSpec{{
		Name: "default",
		Size: MonitorSize{Width: uint32(geom.Width), Height: uint32(geom.Height)},
	}}
}

func (w *X11Window) randrMonitors() ([]MonitorSpec, error) {
	conn := w.xu.Conn()
	resources, err := randr.GetScreenResourcesCurrent(conn, w.xu.RootWin()).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []MonitorSpec
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// disabled
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, MonitorSpec{
			Name:     name,
			Position: Position{X: int32(info.X), Y: int32(info.Y)},
			Size:     MonitorSize{Width: uint32(info.Width), Height: uint32(info.Height)},
		})
	}
	return monitors, nil
}

func (w *X11Window) monitor(op string, id MonitorID) (MonitorSpec, bool) {
	monitors := w.monitors()
	if id < 0 || int(id) >= len(monitors) {
		w.errorLog.record(op, fmt.Errorf("%w: %d", ErrInvalidMonitor, id))
		return MonitorSpec{}, false
	}
	return monitors[id], true
}

func (w *X11Window) MonitorCount() int {
	return len(w.monitors())
}

// MonitorID returns the monitor containing the centre of the window, or 0
// when the centre lies outside every monitor. With no monitors at all it
// records ErrInvalidMonitor and returns NoMonitor.
func (w *X11Window) MonitorID() MonitorID {
	monitors := w.monitors()
	if len(monitors) == 0 {
		w.errorLog.record("MonitorID", fmt.Errorf("%w: no monitors", ErrInvalidMonitor))
		return NoMonitor
	}

	conn := w.xu.Conn()
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(w.win.Id)).Reply()
	if err != nil {
		w.errorLog.record("MonitorID", err)
		return 0
	}
	translate, err := xproto.TranslateCoordinates(conn, w.win.Id, w.xu.RootWin(), 0, 0).Reply()
	if err != nil {
		w.errorLog.record("MonitorID", err)
		return 0
	}

	cx := int64(translate.DstX) + int64(geom.Width)/2
	cy := int64(translate.DstY) + int64(geom.Height)/2
	return monitorAt(monitors, cx, cy)
}

func (w *X11Window) MonitorPosition(id MonitorID) Position {
	m, _ := w.monitor("MonitorPosition", id)
	return m.Position
}

func (w *X11Window) MonitorSize(id MonitorID) MonitorSize {
	m, _ := w.monitor("MonitorSize", id)
	return m.Size
}

// MonitorScale asks the scale source for the output's factor and falls back
// to 1.0.
func (w *X11Window) MonitorScale(id MonitorID) float64 {
	m, ok := w.monitor("MonitorScale", id)
	if !ok {
		return 1.0
	}
	if w.scale != nil {
		if s, ok := w.scale.Scale(m.Name); ok && s > 0 {
			return s
		}
	}
	return 1.0
}

func (w *X11Window) MonitorName(id MonitorID) string {
	m, _ := w.monitor("MonitorName", id)
	return m.Name
}
