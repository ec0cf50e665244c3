package window

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	mutterService   = "org.gnome.Mutter.DisplayConfig"
	mutterPath      = "/org/gnome/Mutter/DisplayConfig"
	mutterInterface = "org.gnome.Mutter.DisplayConfig"
)

// D-Bus signature (ssss)
type mutterMonitorSpec struct {
	Connector string
	Vendor    string
	Product   string
	Serial    string
}

// D-Bus signature (siiddada{sv})
type mutterMode struct {
	ID              string
	Width           int32
	Height          int32
	Refresh         float64
	PreferredScale  float64
	SupportedScales []float64
	Properties      map[string]dbus.Variant
}

// D-Bus signature ((ssss)a(siiddada{sv})a{sv})
type mutterMonitor struct {
	Spec       mutterMonitorSpec
	Modes      []mutterMode
	Properties map[string]dbus.Variant
}

// D-Bus signature (iiduba(ssss)a{sv})
type mutterLogicalMonitor struct {
	X          int32
	Y          int32
	Scale      float64
	Transform  uint32
	Primary    bool
	Monitors   []mutterMonitorSpec
	Properties map[string]dbus.Variant
}

// MutterScale reads per-monitor scale factors from GNOME's display
// configuration service on the session bus.
type MutterScale struct {
	conn *dbus.Conn
}

// NewMutterScale connects to the session bus and checks that Mutter's
// display configuration service answers.
func NewMutterScale() (*MutterScale, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m := &MutterScale{conn: conn}
	if _, err := m.scales(); err != nil {
		conn.Close()
		return nil, err
	}
	return m, nil
}

func (m *MutterScale) scales() (map[string]float64, error) {
	var (
		serial   uint32
		monitors []mutterMonitor
		logical  []mutterLogicalMonitor
		props    map[string]dbus.Variant
	)
	obj := m.conn.Object(mutterService, dbus.ObjectPath(mutterPath))
	err := obj.Call(mutterInterface+".GetCurrentState", 0).Store(&serial, &monitors, &logical, &props)
	if err != nil {
		return nil, fmt.Errorf("failed to call GetCurrentState: %w", err)
	}
	return scalesByConnector(logical), nil
}

// scalesByConnector maps every physical connector to the scale of the
// logical monitor it belongs to.
func scalesByConnector(logical []mutterLogicalMonitor) map[string]float64 {
	scales := make(map[string]float64)
	for _, lm := range logical {
		if lm.Scale <= 0 {
			continue
		}
		for _, spec := range lm.Monitors {
			scales[spec.Connector] = lm.Scale
		}
	}
	return scales
}

func (m *MutterScale) Scale(output string) (float64, bool) {
	scales, err := m.scales()
	if err != nil {
		return 0, false
	}
	s, ok := scales[output]
	return s, ok
}

func (m *MutterScale) Close() error {
	return m.conn.Close()
}
