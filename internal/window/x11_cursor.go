package window

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// blankCursor lazily creates an invisible cursor from a 1x1 empty bitmap.
func (w *X11Window) blankCursor() (xproto.Cursor, error) {
	if w.blank != 0 {
		return w.blank, nil
	}
	conn := w.xu.Conn()

	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(conn, 1, pix, xproto.Drawable(w.win.Id), 1, 1).Check(); err != nil {
		return 0, fmt.Errorf("failed to create cursor pixmap: %w", err)
	}
	defer xproto.FreePixmap(conn, pix)

	cid, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreateCursorChecked(conn, cid, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0).Check(); err != nil {
		return 0, fmt.Errorf("failed to create blank cursor: %w", err)
	}
	w.blank = cid
	return cid, nil
}

// applyCursorLocked sets the window cursor. The pointer image is hidden
// while it is invisible or captured.
func (w *X11Window) applyCursorLocked(op string) {
	cursor := xproto.Cursor(xproto.CursorNone)
	if !w.cursorVisible || !w.cursorEnabled {
		blank, err := w.blankCursor()
		if err != nil {
			w.errorLog.record(op, err)
			return
		}
		cursor = blank
	}
	err := xproto.ChangeWindowAttributesChecked(w.xu.Conn(), w.win.Id,
		xproto.CwCursor, []uint32{uint32(cursor)}).Check()
	if err != nil {
		w.errorLog.record(op, err)
	}
}

func (w *X11Window) SetCursorVisible(visible bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cursorVisible = visible
	w.applyCursorLocked("SetCursorVisible")
}

func (w *X11Window) CursorVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursorVisible
}

// SetCursorEnabled(false) grabs the pointer, confining it to the window.
func (w *X11Window) SetCursorEnabled(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	conn := w.xu.Conn()
	switch {
	case !enabled && !w.grabbed:
		reply, err := xproto.GrabPointer(conn, true, w.win.Id,
			xproto.EventMaskPointerMotion|xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease,
			xproto.GrabModeAsync, xproto.GrabModeAsync,
			w.win.Id, xproto.CursorNone, xproto.TimeCurrentTime).Reply()
		if err != nil {
			w.errorLog.record("SetCursorEnabled", err)
			return
		}
		if reply.Status != xproto.GrabStatusSuccess {
			w.errorLog.record("SetCursorEnabled", fmt.Errorf("pointer grab refused with status %d", reply.Status))
			return
		}
		w.grabbed = true
	case enabled && w.grabbed:
		xproto.UngrabPointer(conn, xproto.TimeCurrentTime)
		w.grabbed = false
	}
	w.cursorEnabled = enabled
	w.applyCursorLocked("SetCursorEnabled")
}

func (w *X11Window) CursorEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursorEnabled
}

// CursorOnWindow queries the pointer relative to the window. A grabbed
// pointer is always on the window.
func (w *X11Window) CursorOnWindow() bool {
	w.mu.Lock()
	grabbed := w.grabbed
	w.mu.Unlock()
	if grabbed {
		return true
	}

	reply, err := xproto.QueryPointer(w.xu.Conn(), w.win.Id).Reply()
	if err != nil {
		w.errorLog.record("CursorOnWindow", err)
		return false
	}
	if !reply.SameScreen || w.Hidden() {
		return false
	}
	size := w.Size()
	return reply.WinX >= 0 && int32(reply.WinX) < size.Width &&
		reply.WinY >= 0 && int32(reply.WinY) < size.Height
}
