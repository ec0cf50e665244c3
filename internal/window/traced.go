package window

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is a Window that records a span for every mutation of the wrapped
// window. Queries are passed through untraced.
type Tracer[H any] struct {
	Window[H]
	tracer trace.Tracer

	mu      sync.Mutex
	pending []error
}

// Traced wraps w so that mutations are recorded as spans on tracer.
func Traced[H any](w Window[H], tracer trace.Tracer) *Tracer[H] {
	return &Tracer[H]{Window: w, tracer: tracer}
}

func (t *Tracer[H]) span(op string, fn func(), attrs ...attribute.KeyValue) {
	attrs = append(attrs, attribute.String("window.backend", Name(t.Window)))
	_, span := t.tracer.Start(context.Background(), "window."+op, trace.WithAttributes(attrs...))
	defer span.End()
	fn()
	if err := Check(t.Window); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// keep the error visible to the caller's own Check
		t.mu.Lock()
		t.pending = append(t.pending, err)
		t.mu.Unlock()
	}
}

// Err implements ErrorReporter.
func (t *Tracer[H]) Err() error {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()
	return errors.Join(append(pending, Check(t.Window))...)
}

// Name implements Backend.
func (t *Tracer[H]) Name() string {
	return Name(t.Window)
}

// Close implements Backend.
func (t *Tracer[H]) Close() error {
	return Close(t.Window)
}

func (t *Tracer[H]) SetFullscreen(fullscreen bool) {
	t.span("SetFullscreen", func() { t.Window.SetFullscreen(fullscreen) },
		attribute.Bool("window.fullscreen", fullscreen))
}

func (t *Tracer[H]) ToggleFullscreen() {
	t.span("ToggleFullscreen", t.Window.ToggleFullscreen)
}

func (t *Tracer[H]) Maximize() {
	t.span("Maximize", t.Window.Maximize)
}

func (t *Tracer[H]) Minimize() {
	t.span("Minimize", t.Window.Minimize)
}

func (t *Tracer[H]) Restore() {
	t.span("Restore", t.Window.Restore)
}

func (t *Tracer[H]) SetTitle(title string) {
	t.span("SetTitle", func() { t.Window.SetTitle(title) },
		attribute.String("window.title", title))
}

func (t *Tracer[H]) SetPosition(pos Position) {
	t.span("SetPosition", func() { t.Window.SetPosition(pos) },
		attribute.Int("window.position.x", int(pos.X)),
		attribute.Int("window.position.y", int(pos.Y)))
}

func (t *Tracer[H]) SetMonitor(id MonitorID) {
	t.span("SetMonitor", func() { t.Window.SetMonitor(id) },
		attribute.Int("window.monitor", int(id)))
}

func (t *Tracer[H]) SetMinSize(size Size) {
	t.span("SetMinSize", func() { t.Window.SetMinSize(size) },
		attribute.Int("window.min_size.width", int(size.Width)),
		attribute.Int("window.min_size.height", int(size.Height)))
}

func (t *Tracer[H]) SetSize(size Size) {
	t.span("SetSize", func() { t.Window.SetSize(size) },
		attribute.Int("window.size.width", int(size.Width)),
		attribute.Int("window.size.height", int(size.Height)))
}

func (t *Tracer[H]) SetCursorVisible(visible bool) {
	t.span("SetCursorVisible", func() { t.Window.SetCursorVisible(visible) },
		attribute.Bool("window.cursor.visible", visible))
}

func (t *Tracer[H]) SetCursorEnabled(enabled bool) {
	t.span("SetCursorEnabled", func() { t.Window.SetCursorEnabled(enabled) },
		attribute.Bool("window.cursor.enabled", enabled))
}
