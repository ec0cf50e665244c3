package window

import (
	"fmt"
	"sync"
	"time"

	"github.com/bryanchriswhite/winctl/internal/logger"
)

// DefaultPollInterval is used when a Watcher is created with a zero interval.
const DefaultPollInterval = 250 * time.Millisecond

// Watcher polls a window and notifies subscribers when its state changes.
type Watcher[H any] struct {
	win      Window[H]
	interval time.Duration

	mu        sync.RWMutex
	current   *State
	listeners []chan State
	stopChan  chan struct{}
	watching  bool
}

// NewWatcher creates a watcher polling w every interval.
func NewWatcher[H any](w Window[H], interval time.Duration) *Watcher[H] {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher[H]{
		win:       w,
		interval:  interval,
		listeners: make([]chan State, 0),
	}
}

// Start captures the initial state and begins polling.
func (wt *Watcher[H]) Start() error {
	wt.mu.Lock()
	if wt.watching {
		wt.mu.Unlock()
		return fmt.Errorf("already watching")
	}
	wt.watching = true
	wt.stopChan = make(chan struct{})
	stop := wt.stopChan
	wt.mu.Unlock()

	wt.Poll()
	go wt.loop(stop)
	return nil
}

// Stop stops polling. Subscribers stay registered.
func (wt *Watcher[H]) Stop() {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	if wt.watching {
		close(wt.stopChan)
		wt.watching = false
	}
}

func (wt *Watcher[H]) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(wt.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			wt.Poll()
		}
	}
}

// Poll captures the window state once and notifies subscribers if it
// differs from the previous capture. It reports whether it changed.
func (wt *Watcher[H]) Poll() bool {
	var state State
	if err := Do(wt.win, func() { state = Capture(wt.win) }); err != nil {
		logger.WithComponent("watcher").Debug().Err(err).Msg("Capture recorded errors")
	}

	wt.mu.Lock()
	changed := wt.current == nil || *wt.current != state
	if changed {
		wt.current = &state
	}
	wt.mu.Unlock()

	if changed {
		logger.WithComponent("watcher").Debug().
			Str("title", state.Title).
			Bool("fullscreen", state.Fullscreen).
			Bool("maximized", state.Maximized).
			Bool("minimized", state.Minimized).
			Msg("Window state changed")
		wt.notify(state)
	}
	return changed
}

// Current returns the last captured state, or nil before the first poll.
func (wt *Watcher[H]) Current() *State {
	wt.mu.RLock()
	defer wt.mu.RUnlock()
	if wt.current == nil {
		return nil
	}
	s := *wt.current
	return &s
}

// Subscribe adds a listener for state changes.
func (wt *Watcher[H]) Subscribe() chan State {
	ch := make(chan State, 10)
	wt.mu.Lock()
	wt.listeners = append(wt.listeners, ch)
	wt.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (wt *Watcher[H]) Unsubscribe(ch chan State) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	for i, listener := range wt.listeners {
		if listener == ch {
			wt.listeners = append(wt.listeners[:i], wt.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (wt *Watcher[H]) notify(state State) {
	wt.mu.RLock()
	defer wt.mu.RUnlock()

	for _, listener := range wt.listeners {
		select {
		case listener <- state:
		default:
			// Skip if channel is full
		}
	}
}
