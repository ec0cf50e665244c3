package window_test

import (
	"testing"
	"time"

	"github.com/bryanchriswhite/winctl/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherPollDetectsChanges(t *testing.T) {
	w := window.NewMemoryWindow(nil)
	wt := window.NewWatcher[window.MemoryHandle](w, time.Hour)

	assert.Nil(t, wt.Current())
	assert.True(t, wt.Poll(), "first poll is a change")
	assert.False(t, wt.Poll(), "nothing changed")

	w.SetTitle("changed")
	assert.True(t, wt.Poll())
	require.NotNil(t, wt.Current())
	assert.Equal(t, "changed", wt.Current().Title)
}

func TestWatcherNotifiesSubscribers(t *testing.T) {
	w := window.NewMemoryWindow(nil)
	wt := window.NewWatcher[window.MemoryHandle](w, 5*time.Millisecond)
	ch := wt.Subscribe()

	require.NoError(t, wt.Start())
	defer wt.Stop()
	assert.Error(t, wt.Start(), "already watching")

	select {
	case s := <-ch:
		assert.Equal(t, w.Handle().String(), s.Handle)
	case <-time.After(time.Second):
		t.Fatal("no initial state")
	}

	w.SetFullscreen(true)
	require.Eventually(t, func() bool {
		select {
		case s := <-ch:
			return s.Fullscreen
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestWatcherUnsubscribeClosesChannel(t *testing.T) {
	wt := window.NewWatcher[window.MemoryHandle](window.NewMemoryWindow(nil), 0)
	ch := wt.Subscribe()
	wt.Unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok)
	wt.Poll()
}

func TestWatcherSkipsFullSubscribers(t *testing.T) {
	w := window.NewMemoryWindow(nil)
	wt := window.NewWatcher[window.MemoryHandle](w, time.Hour)
	ch := wt.Subscribe()

	for i := 0; i < 20; i++ {
		w.SetTitle(string(rune('a' + i)))
		wt.Poll()
	}
	assert.Len(t, ch, cap(ch))
}
