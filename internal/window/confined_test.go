package window_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/bryanchriswhite/winctl/internal/window"
	"github.com/bryanchriswhite/winctl/internal/window/windowtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfinedConformance(t *testing.T) {
	windowtest.Run(t, func(t *testing.T) window.Window[window.MemoryHandle] {
		return window.Confine[window.MemoryHandle](window.NewMemoryWindow(dualHead))
	}, windowtest.Config{})
}

func TestConfinedConcurrentCallers(t *testing.T) {
	mem := window.NewMemoryWindow(nil)
	w := window.Confine[window.MemoryHandle](mem)
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w.SetPosition(window.Position{X: int32(i), Y: int32(i)})
			w.ToggleFullscreen()
			_ = w.Title()
		}(i)
	}
	wg.Wait()

	// 50 toggles
	assert.False(t, w.Fullscreen())
	assert.Equal(t, mem.Handle(), w.Handle())
}

func TestConfinedCloseDropsCalls(t *testing.T) {
	w := window.Confine[window.MemoryHandle](window.NewMemoryWindow(nil))
	w.SetTitle("before")
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "close is idempotent")

	w.SetTitle("after")
	assert.Equal(t, "", w.Title(), "getters return zero values once closed")
	assert.Equal(t, "before", w.Inner().Title())

	err := window.Check(w)
	assert.True(t, errors.Is(err, window.ErrClosed), "got %v", err)
	assert.NoError(t, window.Check(w), "ErrClosed is reported once per dropped call batch")
}

func TestConfinedCheckAfterCloseWithoutDroppedCalls(t *testing.T) {
	w := window.Confine[window.MemoryHandle](window.NewMemoryWindow(nil))
	require.NoError(t, w.Close())

	assert.NoError(t, window.Check(w))
	assert.NoError(t, window.Check(w))
}

func TestConfineFuncPropagatesCreateError(t *testing.T) {
	boom := errors.New("boom")
	w, err := window.ConfineFunc(func() (window.Window[window.MemoryHandle], error) {
		return nil, boom
	})
	assert.Nil(t, w)
	assert.ErrorIs(t, err, boom)
}

func TestConfinedForwardsBackendErrors(t *testing.T) {
	w, err := window.ConfineFunc(func() (window.Window[window.MemoryHandle], error) {
		return window.NewMemoryWindow(nil), nil
	})
	require.NoError(t, err)
	defer w.Close()

	w.MonitorName(7)
	assert.ErrorIs(t, window.Check(w), window.ErrInvalidMonitor)
	assert.NoError(t, window.Check(w), "errors are cleared once read")
	assert.Equal(t, "memory", window.Name(w))
}
