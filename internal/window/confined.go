package window

import (
	"errors"
	"runtime"
	"sync"

	"github.com/bryanchriswhite/winctl/internal/logger"
)

// Confined runs every call of the wrapped window on a single goroutine
// locked to its OS thread. Windowing APIs are generally bound to the thread
// that created the window, and nothing in Window synchronizes callers, so
// integrators that call from several goroutines go through Confined.
type Confined[H any] struct {
	inner Window[H]

	calls    chan func()
	stopChan chan struct{}
	done     chan struct{}
	once     sync.Once

	mu      sync.Mutex
	dropped int
}

// Confine starts the owner goroutine and returns the confined window.
func Confine[H any](w Window[H]) *Confined[H] {
	c := &Confined[H]{
		inner:    w,
		calls:    make(chan func()),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	started := make(chan struct{})
	go c.loop(started)
	<-started
	return c
}

// ConfineFunc creates the backend on the owner thread before confining it.
func ConfineFunc[H any](create func() (Window[H], error)) (*Confined[H], error) {
	c := &Confined[H]{
		calls:    make(chan func()),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	started := make(chan struct{})
	go c.loop(started)
	<-started

	var err error
	c.do(func() { c.inner, err = create() })
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Confined[H]) loop(started chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(c.done)
	close(started)

	for {
		select {
		case <-c.stopChan:
			return
		case fn := <-c.calls:
			fn()
		}
	}
}

// run runs fn on the owner goroutine and waits for it. It reports false
// when the window is closed and fn did not run.
func (c *Confined[H]) run(fn func()) bool {
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn()
	}
	select {
	case c.calls <- call:
		<-finished
		return true
	case <-c.stopChan:
		return false
	}
}

// do is run for window calls. Calls dropped after Close are counted and
// reported as ErrClosed.
func (c *Confined[H]) do(fn func()) bool {
	if c.run(fn) {
		return true
	}
	c.mu.Lock()
	c.dropped++
	c.mu.Unlock()
	logger.WithComponent("confined").Warn().Msg("call on closed window dropped")
	return false
}

// Inner returns the wrapped window. Calling it directly bypasses the
// confinement.
func (c *Confined[H]) Inner() Window[H] {
	return c.inner
}

// Name implements Backend.
func (c *Confined[H]) Name() string {
	return Name(c.inner)
}

// Close closes the wrapped window on the owner thread and stops the owner.
func (c *Confined[H]) Close() error {
	var err error
	c.once.Do(func() {
		if c.inner != nil {
			c.do(func() { err = Close(c.inner) })
		}
		close(c.stopChan)
		<-c.done
	})
	return err
}

// Err implements ErrorReporter.
func (c *Confined[H]) Err() error {
	var err error
	c.run(func() { err = Check(c.inner) })

	c.mu.Lock()
	dropped := c.dropped
	c.dropped = 0
	c.mu.Unlock()
	if dropped > 0 {
		err = errors.Join(err, ErrClosed)
	}
	return err
}

func (c *Confined[H]) SetFullscreen(fullscreen bool) {
	c.do(func() { c.inner.SetFullscreen(fullscreen) })
}

func (c *Confined[H]) ToggleFullscreen() {
	c.do(c.inner.ToggleFullscreen)
}

func (c *Confined[H]) Fullscreen() (v bool) {
	c.do(func() { v = c.inner.Fullscreen() })
	return v
}

func (c *Confined[H]) Hidden() (v bool) {
	c.do(func() { v = c.inner.Hidden() })
	return v
}

func (c *Confined[H]) Maximize() {
	c.do(c.inner.Maximize)
}

func (c *Confined[H]) Maximized() (v bool) {
	c.do(func() { v = c.inner.Maximized() })
	return v
}

func (c *Confined[H]) Minimize() {
	c.do(c.inner.Minimize)
}

func (c *Confined[H]) Minimized() (v bool) {
	c.do(func() { v = c.inner.Minimized() })
	return v
}

func (c *Confined[H]) Restore() {
	c.do(c.inner.Restore)
}

func (c *Confined[H]) SetTitle(title string) {
	c.do(func() { c.inner.SetTitle(title) })
}

func (c *Confined[H]) Title() (v string) {
	c.do(func() { v = c.inner.Title() })
	return v
}

func (c *Confined[H]) SetPosition(pos Position) {
	c.do(func() { c.inner.SetPosition(pos) })
}

func (c *Confined[H]) Position() (v Position) {
	c.do(func() { v = c.inner.Position() })
	return v
}

func (c *Confined[H]) SetMonitor(id MonitorID) {
	c.do(func() { c.inner.SetMonitor(id) })
}

func (c *Confined[H]) SetMinSize(size Size) {
	c.do(func() { c.inner.SetMinSize(size) })
}

func (c *Confined[H]) SetSize(size Size) {
	c.do(func() { c.inner.SetSize(size) })
}

func (c *Confined[H]) Size() (v Size) {
	c.do(func() { v = c.inner.Size() })
	return v
}

func (c *Confined[H]) Handle() (v H) {
	c.do(func() { v = c.inner.Handle() })
	return v
}

func (c *Confined[H]) MonitorCount() (v int) {
	c.do(func() { v = c.inner.MonitorCount() })
	return v
}

func (c *Confined[H]) MonitorID() (v MonitorID) {
	c.do(func() { v = c.inner.MonitorID() })
	return v
}

func (c *Confined[H]) MonitorPosition(id MonitorID) (v Position) {
	c.do(func() { v = c.inner.MonitorPosition(id) })
	return v
}

func (c *Confined[H]) MonitorSize(id MonitorID) (v MonitorSize) {
	c.do(func() { v = c.inner.MonitorSize(id) })
	return v
}

func (c *Confined[H]) MonitorScale(id MonitorID) (v float64) {
	c.do(func() { v = c.inner.MonitorScale(id) })
	return v
}

func (c *Confined[H]) MonitorName(id MonitorID) (v string) {
	c.do(func() { v = c.inner.MonitorName(id) })
	return v
}

func (c *Confined[H]) SetCursorVisible(visible bool) {
	c.do(func() { c.inner.SetCursorVisible(visible) })
}

func (c *Confined[H]) CursorVisible() (v bool) {
	c.do(func() { v = c.inner.CursorVisible() })
	return v
}

func (c *Confined[H]) SetCursorEnabled(enabled bool) {
	c.do(func() { c.inner.SetCursorEnabled(enabled) })
}

func (c *Confined[H]) CursorEnabled() (v bool) {
	c.do(func() { v = c.inner.CursorEnabled() })
	return v
}

func (c *Confined[H]) CursorOnWindow() (v bool) {
	c.do(func() { v = c.inner.CursorOnWindow() })
	return v
}
