package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bryanchriswhite/winctl/internal/config"
	"github.com/bryanchriswhite/winctl/internal/window"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMonitors = []window.MonitorSpec{
	{Name: "DP-1", Size: window.MonitorSize{Width: 1920, Height: 1080}, Scale: 1},
	{Name: "DP-2", Position: window.Position{X: 1920}, Size: window.MonitorSize{Width: 1920, Height: 1080}, Scale: 2},
}

type fixture struct {
	mem     *window.MemoryWindow
	watcher *window.Watcher[any]
	server  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := window.NewMemoryWindow(testMonitors)
	confined := window.Confine[window.MemoryHandle](mem)
	t.Cleanup(func() { confined.Close() })
	win := window.Erase[window.MemoryHandle](window.Guard[window.MemoryHandle](confined))
	watcher := window.NewWatcher(win, 10*time.Millisecond)

	cfgMgr, err := config.NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(win, watcher, cfgMgr).Handler())
	t.Cleanup(srv.Close)
	return &fixture{mem: mem, watcher: watcher, server: srv}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestGetWindow(t *testing.T) {
	f := newFixture(t)
	f.mem.SetTitle("api")

	resp := f.do(t, "GET", "/api/window", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	state := decodeBody[window.State](t, resp)
	assert.Equal(t, "api", state.Title)
	assert.Equal(t, f.mem.Handle().String(), state.Handle)
}

func TestWindowMutations(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   string
		check  func(t *testing.T, mem *window.MemoryWindow, state window.State)
	}{
		{"PUT", "/api/window/fullscreen", `{"enabled":true}`, func(t *testing.T, mem *window.MemoryWindow, s window.State) {
			assert.True(t, s.Fullscreen)
			assert.True(t, mem.Fullscreen())
		}},
		{"POST", "/api/window/fullscreen/toggle", "", func(t *testing.T, mem *window.MemoryWindow, s window.State) {
			assert.True(t, s.Fullscreen)
		}},
		{"POST", "/api/window/maximize", "", func(t *testing.T, mem *window.MemoryWindow, s window.State) {
			assert.True(t, s.Maximized)
		}},
		{"POST", "/api/window/minimize", "", func(t *testing.T, mem *window.MemoryWindow, s window.State) {
			assert.True(t, s.Minimized)
		}},
		{"POST", "/api/window/restore", "", func(t *testing.T, mem *window.MemoryWindow, s window.State) {
			assert.False(t, s.Maximized)
			assert.False(t, s.Minimized)
		}},
		{"PUT", "/api/window/title", `{"title":"Hello"}`, func(t *testing.T, mem *window.MemoryWindow, s window.State) {
			assert.Equal(t, "Hello", s.Title)
		}},
		{"PUT", "/api/window/position", `{"x":100,"y":50}`, func(t *testing.T, mem *window.MemoryWindow, s window.State) {
			assert.Equal(t, window.Position{X: 100, Y: 50}, s.Position)
		}},
		{"PUT", "/api/window/size", `{"width":300,"height":200}`, func(t *testing.T, mem *window.MemoryWindow, s window.State) {
			assert.Equal(t, window.Size{Width: 300, Height: 200}, s.Size)
		}},
		{"PUT", "/api/window/min-size", `{"width":30,"height":20}`, func(t *testing.T, mem *window.MemoryWindow, s window.State) {
			assert.Equal(t, window.Size{Width: 30, Height: 20}, mem.MinSize())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			f := newFixture(t)
			resp := f.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			tt.check(t, f.mem, decodeBody[window.State](t, resp))
		})
	}
}

func TestSetMonitor(t *testing.T) {
	f := newFixture(t)
	f.mem.SetFullscreen(true)

	resp := f.do(t, "PUT", "/api/window/monitor", `{"monitor":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeBody[window.State](t, resp)
	assert.Equal(t, window.MonitorID(1), state.Monitor)
	assert.Equal(t, window.Position{X: 1920}, state.Position)

	resp = f.do(t, "PUT", "/api/window/monitor", `{"monitor":9}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Contains(t, body["error"], "invalid monitor id")
}

func TestBadRequests(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, "PUT", "/api/window/title", `{`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "PUT", "/api/window/size", `{"width":0,"height":10}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "PUT", "/api/window/min-size", `{"width":-1,"height":10}`).StatusCode)
	assert.Equal(t, window.Size{Width: 640, Height: 480}, f.mem.Size())
}

func TestMonitors(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "GET", "/api/monitors", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	monitors := decodeBody[[]window.MonitorInfo](t, resp)
	require.Len(t, monitors, 2)
	assert.Equal(t, "DP-2", monitors[1].Name)
	assert.Equal(t, 2.0, monitors[1].Scale)

	resp = f.do(t, "GET", "/api/monitors/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, monitors[1], decodeBody[window.MonitorInfo](t, resp))

	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/api/monitors/2", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "GET", "/api/monitors/abc", "").StatusCode)
}

func TestCursor(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "PUT", "/api/cursor", `{"visible":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cursor := decodeBody[window.CursorState](t, resp)
	assert.False(t, cursor.Visible)
	assert.True(t, cursor.Enabled, "omitted flag is unchanged")

	resp = f.do(t, "PUT", "/api/cursor", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, "GET", "/api/cursor", "")
	cursor = decodeBody[window.CursorState](t, resp)
	assert.False(t, cursor.Visible)
	assert.False(t, cursor.Enabled)
	assert.True(t, cursor.OnWindow, "captured cursor")
}

func TestHealthAndConfig(t *testing.T) {
	f := newFixture(t)

	health := decodeBody[map[string]string](t, f.do(t, "GET", "/api/health", ""))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "memory", health["backend"])

	resp := f.do(t, "GET", "/api/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decodeBody[config.Config](t, resp)
	assert.Equal(t, 8080, cfg.ServerPort)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "OPTIONS", "/api/window/title", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", window.ErrInvalidMonitor), http.StatusBadRequest},
		{&window.OpError{Op: "Minimize", Err: window.ErrUnsupported}, http.StatusNotImplemented},
		{window.ErrHandleUnavailable, http.StatusServiceUnavailable},
		{window.ErrClosed, http.StatusServiceUnavailable},
		{errors.New("x server went away"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestWindowStream(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.watcher.Start())
	defer f.watcher.Stop()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/window/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var initial window.State
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, f.mem.Handle().String(), initial.Handle)

	f.mem.SetTitle("streamed")
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var state window.State
		require.NoError(t, conn.ReadJSON(&state))
		if state.Title == "streamed" {
			break
		}
	}
}

func TestConcurrentErrorsStayWithTheirRequest(t *testing.T) {
	f := newFixture(t)
	f.mem.SetFullscreen(true)
	require.NoError(t, f.watcher.Start())
	defer f.watcher.Stop()

	const pairs = 200
	var wg sync.WaitGroup
	monitorCodes := make(chan int, pairs)
	titleCodes := make(chan int, pairs)

	put := func(path, body string) int {
		req, err := http.NewRequest("PUT", f.server.URL+path, strings.NewReader(body))
		if err != nil {
			return -1
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return -1
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			monitorCodes <- put("/api/window/monitor", `{"monitor":99}`)
		}()
		go func(i int) {
			defer wg.Done()
			titleCodes <- put("/api/window/title", fmt.Sprintf(`{"title":"t%d"}`, i))
		}(i)
	}
	wg.Wait()
	close(monitorCodes)
	close(titleCodes)

	for code := range monitorCodes {
		assert.Equal(t, http.StatusBadRequest, code, "invalid monitor must fail")
	}
	for code := range titleCodes {
		assert.Equal(t, http.StatusOK, code, "valid title must succeed")
	}
}
