package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bryanchriswhite/winctl/internal/logger"
	"github.com/bryanchriswhite/winctl/internal/window"
)

// mutate runs fn and returns the resulting state, or the errors the
// backend recorded while running it.
func (s *Server) mutate(tool string, fn func()) (*mcpsdk.CallToolResult, StateOutput, error) {
	var opErr error
	var state window.State
	window.Do(s.win, func() {
		fn()
		opErr = window.Check(s.win)
		state = window.Capture(s.win)
	})
	if opErr != nil {
		logger.WithComponent("mcp").Warn().Str("tool", tool).Err(opErr).Msg("Window operation failed")
		return nil, StateOutput{}, fmt.Errorf("%s: %w", tool, opErr)
	}
	return nil, StateOutput{State: state}, nil
}

// query runs fn under window.Do, dropping errors recorded by queries.
func (s *Server) query(fn func()) {
	if err := window.Do(s.win, fn); err != nil {
		logger.WithComponent("mcp").Debug().Err(err).Msg("Window query recorded errors")
	}
}

func (s *Server) handleGetWindowState(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	var state window.State
	s.query(func() { state = window.Capture(s.win) })
	return nil, StateOutput{State: state}, nil
}

func (s *Server) handleSetFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, args SetFullscreenInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	return s.mutate("set_fullscreen", func() { s.win.SetFullscreen(args.Enabled) })
}

func (s *Server) handleToggleFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	return s.mutate("toggle_fullscreen", s.win.ToggleFullscreen)
}

func (s *Server) handleMaximize(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	return s.mutate("maximize_window", s.win.Maximize)
}

func (s *Server) handleMinimize(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	return s.mutate("minimize_window", s.win.Minimize)
}

func (s *Server) handleRestore(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	return s.mutate("restore_window", s.win.Restore)
}

func (s *Server) handleSetTitle(_ context.Context, _ *mcpsdk.CallToolRequest, args SetTitleInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	return s.mutate("set_title", func() { s.win.SetTitle(args.Title) })
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	return s.mutate("move_window", func() {
		s.win.SetPosition(window.Position{X: args.X, Y: args.Y})
	})
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SizeInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	if args.Width <= 0 || args.Height <= 0 {
		return nil, StateOutput{}, fmt.Errorf("resize_window: size must be positive, got %dx%d", args.Width, args.Height)
	}
	return s.mutate("resize_window", func() {
		s.win.SetSize(window.Size{Width: args.Width, Height: args.Height})
	})
}

func (s *Server) handleSetMinSize(_ context.Context, _ *mcpsdk.CallToolRequest, args SizeInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	if args.Width < 0 || args.Height < 0 {
		return nil, StateOutput{}, fmt.Errorf("set_min_size: size must not be negative, got %dx%d", args.Width, args.Height)
	}
	return s.mutate("set_min_size", func() {
		s.win.SetMinSize(window.Size{Width: args.Width, Height: args.Height})
	})
}

func (s *Server) handleSetMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args SetMonitorInput) (*mcpsdk.CallToolResult, StateOutput, error) {
	return s.mutate("set_monitor", func() { s.win.SetMonitor(window.MonitorID(args.Monitor)) })
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	var monitors []window.MonitorInfo
	s.query(func() { monitors = window.ListMonitors(s.win) })
	return nil, ListMonitorsOutput{Monitors: monitors}, nil
}

func (s *Server) handleSetCursor(_ context.Context, _ *mcpsdk.CallToolRequest, args SetCursorInput) (*mcpsdk.CallToolResult, CursorOutput, error) {
	var cursor window.CursorState
	err := window.Do(s.win, func() {
		if args.Visible != nil {
			s.win.SetCursorVisible(*args.Visible)
		}
		if args.Enabled != nil {
			s.win.SetCursorEnabled(*args.Enabled)
		}
		cursor = window.CaptureCursor(s.win)
	})
	if err != nil {
		return nil, CursorOutput{}, fmt.Errorf("set_cursor: %w", err)
	}
	return nil, CursorOutput{Cursor: cursor}, nil
}
