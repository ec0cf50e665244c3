package mcp

import "github.com/bryanchriswhite/winctl/internal/window"

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// StateOutput is returned by every window tool.
type StateOutput struct {
	State window.State `json:"state"`
}

// SetFullscreenInput is the input for the set_fullscreen tool.
type SetFullscreenInput struct {
	Enabled bool `json:"enabled" jsonschema:"required,True to enter fullscreen, false to leave it"`
}

// SetTitleInput is the input for the set_title tool.
type SetTitleInput struct {
	Title string `json:"title" jsonschema:"required,New window title"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	X int32 `json:"x" jsonschema:"required,Left edge in screen coordinates"`
	Y int32 `json:"y" jsonschema:"required,Top edge in screen coordinates"`
}

// SizeInput is the input for the resize_window and set_min_size tools.
type SizeInput struct {
	Width  int32 `json:"width" jsonschema:"required,Width in pixels"`
	Height int32 `json:"height" jsonschema:"required,Height in pixels"`
}

// SetMonitorInput is the input for the set_monitor tool.
type SetMonitorInput struct {
	Monitor int `json:"monitor" jsonschema:"required,Monitor id from list_monitors. Only takes effect while the window is fullscreen."`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []window.MonitorInfo `json:"monitors"`
}

// SetCursorInput is the input for the set_cursor tool.
type SetCursorInput struct {
	Visible *bool `json:"visible,omitempty" jsonschema:"Show or hide the pointer image. Omit to leave unchanged."`
	Enabled *bool `json:"enabled,omitempty" jsonschema:"Enable the pointer, or disable it to capture it in the window. Omit to leave unchanged."`
}

// CursorOutput is the output for the set_cursor tool.
type CursorOutput struct {
	Cursor window.CursorState `json:"cursor"`
}
