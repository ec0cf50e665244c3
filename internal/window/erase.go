package window

// Erase hides the handle type of w, so that code which never touches the
// native handle can hold any backend as a Window[any].
func Erase[H any](w Window[H]) Window[any] {
	if e, ok := any(w).(Window[any]); ok {
		return e
	}
	return erased[H]{w}
}

type erased[H any] struct {
	Window[H]
}

func (e erased[H]) Handle() any {
	return e.Window.Handle()
}

func (e erased[H]) Name() string {
	return Name(e.Window)
}

func (e erased[H]) Close() error {
	return Close(e.Window)
}

func (e erased[H]) Err() error {
	return Check(e.Window)
}

func (e erased[H]) Do(fn func()) error {
	return Do(e.Window, fn)
}
