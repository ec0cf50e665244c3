package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bryanchriswhite/winctl/internal/config"
	"github.com/bryanchriswhite/winctl/internal/logger"
	"github.com/bryanchriswhite/winctl/internal/window"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Version is reported by the health endpoint
var Version = "0.1.0"

// Server represents the HTTP API server
type Server struct {
	router    *mux.Router
	win       window.Window[any]
	watcher   *window.Watcher[any]
	configMgr *config.Manager
	upgrader  websocket.Upgrader
	http      *http.Server
}

// NewServer creates a new API server. watcher and configMgr may be nil,
// which disables the stream and config endpoints.
func NewServer(win window.Window[any], watcher *window.Watcher[any], configMgr *config.Manager) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		win:       win,
		watcher:   watcher,
		configMgr: configMgr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Window controls
	api.HandleFunc("/window", s.handleGetWindow).Methods("GET")
	api.HandleFunc("/window/fullscreen", s.handleSetFullscreen).Methods("PUT")
	api.HandleFunc("/window/fullscreen/toggle", s.handleToggleFullscreen).Methods("POST")
	api.HandleFunc("/window/maximize", s.handleMaximize).Methods("POST")
	api.HandleFunc("/window/minimize", s.handleMinimize).Methods("POST")
	api.HandleFunc("/window/restore", s.handleRestore).Methods("POST")
	api.HandleFunc("/window/title", s.handleSetTitle).Methods("PUT")
	api.HandleFunc("/window/position", s.handleSetPosition).Methods("PUT")
	api.HandleFunc("/window/size", s.handleSetSize).Methods("PUT")
	api.HandleFunc("/window/min-size", s.handleSetMinSize).Methods("PUT")
	api.HandleFunc("/window/monitor", s.handleSetMonitor).Methods("PUT")
	api.HandleFunc("/window/stream", s.handleWindowStream)

	// Monitors
	api.HandleFunc("/monitors", s.handleListMonitors).Methods("GET")
	api.HandleFunc("/monitors/{id}", s.handleGetMonitor).Methods("GET")

	// Cursor
	api.HandleFunc("/cursor", s.handleGetCursor).Methods("GET")
	api.HandleFunc("/cursor", s.handleSetCursor).Methods("PUT")

	// Configuration
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.PathPrefix("/").HandlerFunc(s.handleIndex)
}

// Handler returns the router wrapped in the CORS middleware
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{Addr: addr, Handler: s.Handler()}
	logger.WithComponent("api").Info().
		Str("addr", "http://localhost"+addr).
		Msg("Starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a server started with Start
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// StatusFor maps a recorded window error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, window.ErrInvalidMonitor):
		return http.StatusBadRequest
	case errors.Is(err, window.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, window.ErrHandleUnavailable), errors.Is(err, window.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// mutate runs fn, then answers with the window state or with the errors
// the backend recorded while running it. The state is captured in the same
// window.Do so it reflects fn and nothing else.
func (s *Server) mutate(w http.ResponseWriter, op string, fn func()) {
	var opErr error
	var state window.State
	err := window.Do(s.win, func() {
		fn()
		opErr = window.Check(s.win)
		state = window.Capture(s.win)
	})
	if opErr != nil {
		logger.WithComponent("api").Warn().Str("op", op).Err(opErr).Msg("Window operation failed")
		writeError(w, StatusFor(opErr), opErr)
		return
	}
	if err != nil {
		logger.WithComponent("api").Debug().Str("op", op).Err(err).Msg("State capture recorded errors")
	}
	if s.watcher != nil {
		s.watcher.Poll()
	}
	writeJSON(w, http.StatusOK, state)
}

// query runs fn under window.Do. Errors recorded by queries are logged only.
func (s *Server) query(fn func()) {
	if err := window.Do(s.win, fn); err != nil {
		logger.WithComponent("api").Debug().Err(err).Msg("Window query recorded errors")
	}
}

// HTTP Handlers

func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	var state window.State
	s.query(func() { state = window.Capture(s.win) })
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSetFullscreen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, "SetFullscreen", func() { s.win.SetFullscreen(req.Enabled) })
}

func (s *Server) handleToggleFullscreen(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, "ToggleFullscreen", s.win.ToggleFullscreen)
}

func (s *Server) handleMaximize(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, "Maximize", s.win.Maximize)
}

func (s *Server) handleMinimize(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, "Minimize", s.win.Minimize)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, "Restore", s.win.Restore)
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, "SetTitle", func() { s.win.SetTitle(req.Title) })
}

func (s *Server) handleSetPosition(w http.ResponseWriter, r *http.Request) {
	var pos window.Position
	if !decode(w, r, &pos) {
		return
	}
	s.mutate(w, "SetPosition", func() { s.win.SetPosition(pos) })
}

func (s *Server) handleSetSize(w http.ResponseWriter, r *http.Request) {
	var size window.Size
	if !decode(w, r, &size) {
		return
	}
	if size.Width <= 0 || size.Height <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("size must be positive, got %dx%d", size.Width, size.Height))
		return
	}
	s.mutate(w, "SetSize", func() { s.win.SetSize(size) })
}

func (s *Server) handleSetMinSize(w http.ResponseWriter, r *http.Request) {
	var size window.Size
	if !decode(w, r, &size) {
		return
	}
	if size.Width < 0 || size.Height < 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("min size must not be negative, got %dx%d", size.Width, size.Height))
		return
	}
	s.mutate(w, "SetMinSize", func() { s.win.SetMinSize(size) })
}

func (s *Server) handleSetMonitor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Monitor window.MonitorID `json:"monitor"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, "SetMonitor", func() { s.win.SetMonitor(req.Monitor) })
}

func (s *Server) handleWindowStream(w http.ResponseWriter, r *http.Request) {
	if s.watcher == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("window stream not enabled"))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("api").Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}
	defer conn.Close()

	// Subscribe to window changes
	updates := s.watcher.Subscribe()
	defer s.watcher.Unsubscribe(updates)

	// Send initial state
	current := s.watcher.Current()
	if current == nil {
		var state window.State
		s.query(func() { state = window.Capture(s.win) })
		current = &state
	}
	if err := conn.WriteJSON(current); err != nil {
		logger.WithComponent("api").Debug().Err(err).Msg("WebSocket write error")
		return
	}

	// Detect the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Stream updates
	for {
		select {
		case <-closed:
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(state); err != nil {
				logger.WithComponent("api").Debug().Err(err).Msg("WebSocket write error")
				return
			}
		}
	}
}

func (s *Server) handleListMonitors(w http.ResponseWriter, r *http.Request) {
	var monitors []window.MonitorInfo
	s.query(func() { monitors = window.ListMonitors(s.win) })
	writeJSON(w, http.StatusOK, monitors)
}

func (s *Server) handleGetMonitor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid monitor id: %w", err))
		return
	}
	var info window.MonitorInfo
	var ok bool
	s.query(func() { info, ok = window.Monitor(s.win, window.MonitorID(id)) })
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %d", window.ErrInvalidMonitor, id))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleGetCursor(w http.ResponseWriter, r *http.Request) {
	var cursor window.CursorState
	s.query(func() { cursor = window.CaptureCursor(s.win) })
	writeJSON(w, http.StatusOK, cursor)
}

func (s *Server) handleSetCursor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visible *bool `json:"visible"`
		Enabled *bool `json:"enabled"`
	}
	if !decode(w, r, &req) {
		return
	}

	var cursor window.CursorState
	err := window.Do(s.win, func() {
		if req.Visible != nil {
			s.win.SetCursorVisible(*req.Visible)
		}
		if req.Enabled != nil {
			s.win.SetCursorEnabled(*req.Enabled)
		}
		cursor = window.CaptureCursor(s.win)
	})
	if err != nil {
		logger.WithComponent("api").Warn().Str("op", "SetCursor").Err(err).Msg("Window operation failed")
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, cursor)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.configMgr == nil {
		writeError(w, http.StatusNotFound, errors.New("no configuration loaded"))
		return
	}
	writeJSON(w, http.StatusOK, s.configMgr.Get())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
		"backend": window.Name(s.win),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>winctl</title>
</head>
<body>
    <h1>winctl</h1>
    <ul>
        <li><a href="/api/health">/api/health</a> - Server health check</li>
        <li><a href="/api/window">/api/window</a> - Window state</li>
        <li><a href="/api/monitors">/api/monitors</a> - Monitors</li>
        <li><a href="/api/cursor">/api/cursor</a> - Cursor state</li>
        <li><a href="/api/config">/api/config</a> - Configuration</li>
    </ul>
</body>
</html>`

	// Only serve HTML for root path
	if r.URL.Path == "/" {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
		return
	}

	// For other paths, return 404
	if !strings.HasPrefix(r.URL.Path, "/api") {
		http.NotFound(w, r)
	}
}
