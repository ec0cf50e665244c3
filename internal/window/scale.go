package window

import (
	"bufio"
	"errors"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
)

// ScaleSource resolves the UI scale factor of a monitor by output name.
type ScaleSource interface {
	Scale(output string) (float64, bool)
}

// ScaleChain asks each source in turn and returns the first answer.
type ScaleChain []ScaleSource

func (c ScaleChain) Scale(output string) (float64, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Scale(output); ok {
			return v, true
		}
	}
	return 0, false
}

// Close closes every source that holds resources.
func (c ScaleChain) Close() error {
	var errs []error
	for _, s := range c {
		if closer, ok := s.(interface{ Close() error }); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}

// StaticScale maps output names to fixed factors. The empty name matches
// every output.
type StaticScale map[string]float64

func (s StaticScale) Scale(output string) (float64, bool) {
	if v, ok := s[output]; ok && v > 0 {
		return v, true
	}
	if v, ok := s[""]; ok && v > 0 {
		return v, true
	}
	return 0, false
}

// XftScale derives one factor for all outputs from the Xft.dpi resource on
// the root window, relative to 96 dpi.
type XftScale struct {
	xu *xgbutil.XUtil
}

func NewXftScale(xu *xgbutil.XUtil) *XftScale {
	return &XftScale{xu: xu}
}

func (x *XftScale) Scale(string) (float64, bool) {
	resources, err := xprop.PropValStr(xprop.GetProperty(x.xu, x.xu.RootWin(), "RESOURCE_MANAGER"))
	if err != nil {
		return 0, false
	}
	dpi, ok := parseXftDPI(resources)
	if !ok {
		return 0, false
	}
	return dpi / 96.0, true
}

// parseXftDPI finds Xft.dpi in an X resource database string.
func parseXftDPI(resources string) (float64, bool) {
	scanner := bufio.NewScanner(strings.NewReader(resources))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Xft.dpi" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || dpi <= 0 {
			return 0, false
		}
		return dpi, true
	}
	return 0, false
}

// DefaultScaleSource prefers Mutter's per-monitor scales when GNOME is
// running and falls back to Xft.dpi.
func DefaultScaleSource(xu *xgbutil.XUtil) ScaleSource {
	chain := ScaleChain{}
	if mutter, err := NewMutterScale(); err == nil {
		chain = append(chain, mutter)
	}
	return append(chain, NewXftScale(xu))
}
