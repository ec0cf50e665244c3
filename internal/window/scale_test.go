package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseXftDPI(t *testing.T) {
	tests := []struct {
		name      string
		resources string
		want      float64
		wantOK    bool
	}{
		{"hidpi", "Xft.antialias:\t1\nXft.dpi:\t192\nXft.hinting:\t1\n", 192, true},
		{"spaces", "Xft.dpi: 120", 120, true},
		{"fractional", "Xft.dpi:\t144.5\n", 144.5, true},
		{"missing", "Xcursor.size:\t24\n", 0, false},
		{"garbage", "Xft.dpi:\tlots\n", 0, false},
		{"zero", "Xft.dpi:\t0\n", 0, false},
		{"similar key", "Xft.dpix:\t192\n", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseXftDPI(tt.resources)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fixedScale struct {
	v      float64
	ok     bool
	closed bool
}

func (f *fixedScale) Scale(string) (float64, bool) { return f.v, f.ok }
func (f *fixedScale) Close() error                { f.closed = true; return nil }

func TestScaleChain(t *testing.T) {
	miss := &fixedScale{}
	hit := &fixedScale{v: 2, ok: true}
	chain := ScaleChain{nil, miss, hit, StaticScale{"": 3}}

	v, ok := chain.Scale("DP-1")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = ScaleChain{miss}.Scale("DP-1")
	assert.False(t, ok)

	assert.NoError(t, chain.Close())
	assert.True(t, miss.closed)
	assert.True(t, hit.closed)
}

func TestStaticScale(t *testing.T) {
	s := StaticScale{"eDP-1": 2, "": 1.25, "bad": -1}

	v, ok := s.Scale("eDP-1")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	v, ok = s.Scale("HDMI-1")
	assert.True(t, ok)
	assert.Equal(t, 1.25, v)

	v, _ = s.Scale("bad")
	assert.Equal(t, 1.25, v, "non-positive entries fall through")

	_, ok = StaticScale{}.Scale("x")
	assert.False(t, ok)
}

func TestScalesByConnector(t *testing.T) {
	scales := scalesByConnector([]mutterLogicalMonitor{
		{Scale: 2, Monitors: []mutterMonitorSpec{{Connector: "eDP-1"}}},
		{Scale: 1, Monitors: []mutterMonitorSpec{{Connector: "DP-1"}, {Connector: "DP-2"}}},
		{Scale: 0, Monitors: []mutterMonitorSpec{{Connector: "HDMI-1"}}},
	})

	assert.Equal(t, map[string]float64{"eDP-1": 2, "DP-1": 1, "DP-2": 1}, scales)
}

func TestParseWindowID(t *testing.T) {
	id, err := ParseWindowID("0x3a00007")
	assert.NoError(t, err)
	assert.EqualValues(t, 0x3a00007, id)

	id, err = ParseWindowID(" 1234 ")
	assert.NoError(t, err)
	assert.EqualValues(t, 1234, id)

	_, err = ParseWindowID("window")
	assert.Error(t, err)
	_, err = ParseWindowID("0x1ffffffff")
	assert.Error(t, err)
}
