// Package windowtest holds a conformance suite that any window backend can
// run from its tests.
package windowtest

import (
	"errors"
	"testing"
	"time"

	"github.com/bryanchriswhite/winctl/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Config adapts the suite to a backend.
type Config struct {
	// Settle bounds how long state changes may take to become visible.
	// Zero means they must be visible immediately.
	Settle time.Duration
	// SkipPlacement skips the exact position round-trip for backends whose
	// window manager places windows itself.
	SkipPlacement bool
	// SkipMinimize skips minimize/restore for environments without a
	// window manager that iconifies.
	SkipMinimize bool
}

// Opener creates a fresh window for one subtest.
type Opener[H any] func(t *testing.T) window.Window[H]

// Run exercises the window contract against windows created by open.
func Run[H any](t *testing.T, open Opener[H], cfg Config) {
	fresh := func(t *testing.T) window.Window[H] {
		t.Helper()
		w := open(t)
		require.NotNil(t, w)
		t.Cleanup(func() { window.Close(w) })
		window.Check(w)
		return w
	}

	t.Run("ToggleFullscreenRoundTrip", func(t *testing.T) {
		w := fresh(t)
		orig := w.Fullscreen()

		w.ToggleFullscreen()
		cfg.eventually(t, func() bool { return w.Fullscreen() != orig }, "first toggle flips fullscreen")
		w.ToggleFullscreen()
		cfg.eventually(t, func() bool { return w.Fullscreen() == orig }, "second toggle restores fullscreen")
		assert.NoError(t, window.Check(w))
	})

	t.Run("SetFullscreen", func(t *testing.T) {
		w := fresh(t)

		w.SetFullscreen(true)
		cfg.eventually(t, w.Fullscreen, "fullscreen after SetFullscreen(true)")
		w.SetFullscreen(true)
		cfg.eventually(t, w.Fullscreen, "SetFullscreen(true) is idempotent")
		w.SetFullscreen(false)
		cfg.eventually(t, func() bool { return !w.Fullscreen() }, "windowed after SetFullscreen(false)")
		assert.NoError(t, window.Check(w))
	})

	t.Run("MaximizeRestore", func(t *testing.T) {
		w := fresh(t)

		w.Maximize()
		cfg.eventually(t, w.Maximized, "maximized after Maximize")
		w.Restore()
		cfg.eventually(t, func() bool { return !w.Maximized() }, "not maximized after Restore")
		assert.NoError(t, window.Check(w))
	})

	t.Run("MinimizeRestore", func(t *testing.T) {
		if cfg.SkipMinimize {
			t.Skip("minimize not supported in this environment")
		}
		w := fresh(t)

		w.Minimize()
		cfg.eventually(t, w.Minimized, "minimized after Minimize")
		w.Restore()
		cfg.eventually(t, func() bool { return !w.Minimized() }, "not minimized after Restore")
		assert.NoError(t, window.Check(w))
	})

	t.Run("TitleRoundTrip", func(t *testing.T) {
		w := fresh(t)

		for _, title := range []string{"Hello", "", "winctl: ünïcödé ✓"} {
			w.SetTitle(title)
			cfg.eventually(t, func() bool { return w.Title() == title }, "title "+title)
		}
		assert.NoError(t, window.Check(w))
	})

	t.Run("PositionRoundTrip", func(t *testing.T) {
		if cfg.SkipPlacement {
			t.Skip("backend does not support exact placement")
		}
		w := fresh(t)

		want := window.Position{X: 100, Y: 50}
		w.SetPosition(want)
		cfg.eventually(t, func() bool { return w.Position() == want }, "position round-trip")
		assert.NoError(t, window.Check(w))
	})

	t.Run("SizeRoundTrip", func(t *testing.T) {
		w := fresh(t)

		want := window.Size{Width: 400, Height: 300}
		w.SetSize(want)
		cfg.eventually(t, func() bool { return w.Size() == want }, "size round-trip")
		assert.NoError(t, window.Check(w))
	})

	t.Run("ValidMonitors", func(t *testing.T) {
		w := fresh(t)

		count := w.MonitorCount()
		require.GreaterOrEqual(t, count, 1, "at least one monitor")
		id := w.MonitorID()
		assert.True(t, window.ValidMonitor(w, id), "MonitorID %d in range", id)

		for i := 0; i < count; i++ {
			id := window.MonitorID(i)
			w.MonitorPosition(id)
			size := w.MonitorSize(id)
			assert.NotZero(t, size.Width, "monitor %d width", i)
			assert.NotZero(t, size.Height, "monitor %d height", i)
			assert.Greater(t, w.MonitorScale(id), 0.0, "monitor %d scale", i)
			w.MonitorName(id)
		}
		assert.NoError(t, window.Check(w))
	})

	t.Run("InvalidMonitors", func(t *testing.T) {
		w := fresh(t)

		for _, id := range []window.MonitorID{window.MonitorID(w.MonitorCount()), -1} {
			assert.Equal(t, window.Position{}, w.MonitorPosition(id))
			assert.Equal(t, window.MonitorSize{}, w.MonitorSize(id))
			assert.Equal(t, 1.0, w.MonitorScale(id))
			assert.Equal(t, "", w.MonitorName(id))

			err := window.Check(w)
			require.Error(t, err, "monitor %d", id)
			assert.True(t, errors.Is(err, window.ErrInvalidMonitor), "monitor %d: %v", id, err)

			w.SetMonitor(id)
			assert.ErrorIs(t, window.Check(w), window.ErrInvalidMonitor)
		}
	})

	t.Run("CursorFlagsIndependent", func(t *testing.T) {
		w := fresh(t)
		require.True(t, w.CursorVisible())
		require.True(t, w.CursorEnabled())

		w.SetCursorVisible(false)
		assert.False(t, w.CursorVisible())
		assert.True(t, w.CursorEnabled(), "hiding does not disable")

		w.SetCursorEnabled(false)
		assert.False(t, w.CursorEnabled())
		assert.False(t, w.CursorVisible(), "disabling does not show")

		w.SetCursorVisible(true)
		assert.True(t, w.CursorVisible())
		assert.False(t, w.CursorEnabled(), "showing does not enable")

		w.SetCursorEnabled(true)
		assert.True(t, w.CursorEnabled())
		assert.True(t, w.CursorVisible())
		assert.NoError(t, window.Check(w))
	})

	t.Run("CaptureMatchesQueries", func(t *testing.T) {
		w := fresh(t)
		w.SetTitle("capture")
		cfg.eventually(t, func() bool { return w.Title() == "capture" }, "title set")

		s := window.Capture(w)
		assert.Equal(t, w.Title(), s.Title)
		assert.Equal(t, w.Fullscreen(), s.Fullscreen)
		assert.Equal(t, w.CursorVisible(), s.Cursor.Visible)
		assert.Len(t, window.ListMonitors(w), w.MonitorCount())
	})
}

func (cfg Config) eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	if cfg.Settle <= 0 {
		assert.True(t, cond(), msg)
		return
	}
	assert.Eventually(t, cond, cfg.Settle, 10*time.Millisecond, msg)
}
