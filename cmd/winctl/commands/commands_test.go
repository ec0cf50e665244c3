package commands

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bryanchriswhite/winctl/internal/config"
	"github.com/bryanchriswhite/winctl/internal/logger"
	"github.com/bryanchriswhite/winctl/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := config.NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m.Set("backend", config.BackendMemory))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func runState(t *testing.T, args ...string) window.State {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	var s window.State
	require.NoError(t, json.Unmarshal([]byte(out), &s), out)
	return s
}

func TestWindowCommands(t *testing.T) {
	path := memoryConfig(t)

	tests := []struct {
		args  []string
		check func(t *testing.T, s window.State)
	}{
		{[]string{"state"}, func(t *testing.T, s window.State) {
			assert.Equal(t, "winctl", s.Title)
		}},
		{[]string{"fullscreen", "on"}, func(t *testing.T, s window.State) {
			assert.True(t, s.Fullscreen)
		}},
		{[]string{"fullscreen"}, func(t *testing.T, s window.State) {
			assert.True(t, s.Fullscreen, "toggle from windowed")
		}},
		{[]string{"maximize"}, func(t *testing.T, s window.State) {
			assert.True(t, s.Maximized)
		}},
		{[]string{"minimize"}, func(t *testing.T, s window.State) {
			assert.True(t, s.Minimized)
		}},
		{[]string{"title", "Hello"}, func(t *testing.T, s window.State) {
			assert.Equal(t, "Hello", s.Title)
		}},
		{[]string{"move", "100", "50"}, func(t *testing.T, s window.State) {
			assert.Equal(t, window.Position{X: 100, Y: 50}, s.Position)
		}},
		{[]string{"resize", "800", "600"}, func(t *testing.T, s window.State) {
			assert.Equal(t, window.Size{Width: 800, Height: 600}, s.Size)
		}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			args := append(append([]string{"--config", path}, tt.args...), "--format", "json")
			tt.check(t, runState(t, args...))
		})
	}
}

func TestWindowCommandErrors(t *testing.T) {
	path := memoryConfig(t)

	tests := [][]string{
		{"move", "1"},
		{"move", "a", "b"},
		{"resize", "0", "10"},
		{"min-size", "-1", "10"},
		{"fullscreen", "sideways"},
		{"monitor", "7"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := run(t, append(append([]string{"--config", path}, args...), "--format", "json")...)
			assert.Error(t, err)
		})
	}
}

func TestMonitorsCommand(t *testing.T) {
	path := memoryConfig(t)

	out, err := run(t, "--config", path, "monitors", "--format", "json")
	require.NoError(t, err)

	var monitors []window.MonitorInfo
	require.NoError(t, json.Unmarshal([]byte(out), &monitors), out)
	require.Len(t, monitors, 1)
	assert.Equal(t, "VIRTUAL-1", monitors[0].Name)
	assert.True(t, monitors[0].Current)

	out, err = run(t, "--config", path, "monitors", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "VIRTUAL-1")
	assert.Contains(t, out, "SCALE")
}

func TestCursorCommand(t *testing.T) {
	path := memoryConfig(t)

	out, err := run(t, "--config", path, "cursor", "--visible=false", "--format", "json")
	require.NoError(t, err)

	var c window.CursorState
	require.NoError(t, json.Unmarshal([]byte(out), &c), out)
	assert.False(t, c.Visible)
	assert.True(t, c.Enabled)
}

func TestConfigCommands(t *testing.T) {
	path := memoryConfig(t)

	_, err := run(t, "--config", path, "config", "set", "server_port", "9191")
	require.NoError(t, err)

	out, err := run(t, "--config", path, "config", "get", "server_port")
	require.NoError(t, err)
	assert.Equal(t, "9191", strings.TrimSpace(out))

	out, err = run(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	_, err = run(t, "--config", path, "config", "set", "backend", "wayland")
	assert.Error(t, err)
}

func TestStateOfAttachedWindowIsUntouched(t *testing.T) {
	path := memoryConfig(t)
	t.Cleanup(func() { rootCmd.PersistentFlags().Set("window", "") })

	s := runState(t, "--config", path, "--window", "0x3a00007", "state", "--format", "json")
	assert.Equal(t, "", s.Title, "configured title is not applied")
	assert.Equal(t, window.Size{Width: 640, Height: 480}, s.Size)
}

// redirectStdout points os.Stdout, and a logger writing to it, at a pipe.
// Only what the command writes to stdout ends up in the pipe.
func redirectStdout(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	logger.InitWriter("debug", false, os.Stdout)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		os.Stdout = orig
		logger.InitWriter("info", false, os.Stderr)
		r.Close()
	})
	return r, w
}

func TestStdoutCarriesOnlyCommandOutput(t *testing.T) {
	path := memoryConfig(t)

	t.Run("state json", func(t *testing.T) {
		r, w := redirectStdout(t)
		rootCmd.SetArgs([]string{"--config", path, "state", "--format", "json"})
		require.NoError(t, rootCmd.Execute())
		w.Close()

		out, err := io.ReadAll(r)
		require.NoError(t, err)
		var s window.State
		require.NoError(t, json.Unmarshal(out, &s), "stdout: %s", out)
		assert.Equal(t, "winctl", s.Title)
	})

	t.Run("config get", func(t *testing.T) {
		r, w := redirectStdout(t)
		rootCmd.SetArgs([]string{"--config", path, "config", "get", "server_port"})
		require.NoError(t, rootCmd.Execute())
		w.Close()

		out, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "8080\n", string(out))
	})
}

func TestMCPStdoutCarriesOnlyProtocol(t *testing.T) {
	path := memoryConfig(t)

	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	origIn := os.Stdin
	os.Stdin = inR
	t.Cleanup(func() { os.Stdin = origIn })
	outR, outW := redirectStdout(t)

	done := make(chan error, 1)
	rootCmd.SetArgs([]string{"--config", path, "mcp"})
	go func() { done <- rootCmd.Execute() }()

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"winctl-test","version":"0"}}}`
	_, err = io.WriteString(inW, initialize+"\n")
	require.NoError(t, err)

	lines := make(chan []byte, 1)
	go func() {
		line, _ := bufio.NewReader(outR).ReadBytes('\n')
		lines <- line
	}()

	select {
	case line := <-lines:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &msg), "first stdout line: %s", line)
		assert.Equal(t, "2.0", msg["jsonrpc"])
		assert.Equal(t, float64(1), msg["id"])
		assert.Contains(t, msg, "result")
	case <-time.After(5 * time.Second):
		t.Fatal("no initialize response")
	}

	inW.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("mcp command did not stop at end of input")
	}
	outW.Close()
}
