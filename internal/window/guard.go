package window

import "sync"

// Guarded serializes operations on a window so that the errors recorded
// while one operation runs are reported to that operation only. Calls made
// directly on the embedded Window bypass the lock; go through Do.
type Guarded[H any] struct {
	Window[H]
	mu sync.Mutex
}

// Guard wraps w.
func Guard[H any](w Window[H]) *Guarded[H] {
	return &Guarded[H]{Window: w}
}

// Do drops errors left over from unguarded calls, runs fn and returns the
// errors recorded while it ran. Do calls on the same window never overlap.
func (g *Guarded[H]) Do(fn func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	Check(g.Window)
	fn()
	return Check(g.Window)
}

// Err implements ErrorReporter.
func (g *Guarded[H]) Err() error {
	return Check(g.Window)
}

// Name implements Backend.
func (g *Guarded[H]) Name() string {
	return Name(g.Window)
}

// Close implements Backend.
func (g *Guarded[H]) Close() error {
	return Close(g.Window)
}

// Do runs fn against w and returns the errors recorded while it ran. When w
// is Guarded, concurrent Do calls are serialized. Otherwise errors recorded
// by concurrent callers may be attributed to fn.
func Do(w any, fn func()) error {
	if g, ok := w.(interface{ Do(func()) error }); ok {
		return g.Do(fn)
	}
	Check(w)
	fn()
	return Check(w)
}
