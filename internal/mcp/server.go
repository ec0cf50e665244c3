// Package mcp exposes the window over the Model Context Protocol so that
// agents can inspect and arrange it.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bryanchriswhite/winctl/internal/window"
)

const (
	ServerName    = "winctl"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for one window.
type Server struct {
	mcpServer *mcpsdk.Server
	win       window.Window[any]
}

// NewServer creates an MCP server controlling win.
func NewServer(win window.Window[any]) *Server {
	s := &Server{win: win}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying server, e.g. to connect other transports.
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.mcpServer
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_state",
		Description: "Return the window title, position, size, fullscreen/maximized/minimized/hidden flags, current monitor and cursor state.",
	}, s.handleGetWindowState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_fullscreen",
		Description: "Enter or leave fullscreen on the window's current monitor.",
	}, s.handleSetFullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_fullscreen",
		Description: "Flip the fullscreen state of the window.",
	}, s.handleToggleFullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "maximize_window",
		Description: "Maximize the window.",
	}, s.handleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Minimize (iconify) the window.",
	}, s.handleMinimize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_window",
		Description: "Restore the window. A minimized window is shown again, keeping a maximized state; otherwise a maximized window is un-maximized.",
	}, s.handleRestore)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_title",
		Description: "Set the window title.",
	}, s.handleSetTitle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move the window to a position in screen coordinates.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize the window. The minimum size does not apply.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_min_size",
		Description: "Set the minimum size for interactive resizing. Does not resize the window.",
	}, s.handleSetMinSize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_monitor",
		Description: "Move a fullscreen window to another monitor. Has no effect on a window that is not fullscreen.",
	}, s.handleSetMonitor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the attached monitors with position, resolution, scale factor and name. The monitor holding the window is marked current.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_cursor",
		Description: "Show, hide, enable or disable (capture) the pointer for the window.",
	}, s.handleSetCursor)
}
