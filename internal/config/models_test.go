package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "winctl", "config.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)
	return m
}

func TestNewManagerCreatesDefaults(t *testing.T) {
	m := newTestManager(t)

	_, err := os.Stat(m.GetConfigPath())
	require.NoError(t, err, "config file should be written")

	cfg := m.Get()
	assert.Equal(t, BackendX11, cfg.Backend)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, -1, cfg.Window.Monitor)
	assert.True(t, cfg.Window.CursorVisible)
	assert.Len(t, cfg.Monitors, 1)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("backend: memory\nwindow:\n  title: demo\n  x: 10\n  y: 20\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	m, err := NewManager(path)
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	require.NotNil(t, cfg.Window.X)
	require.NotNil(t, cfg.Window.Y)
	assert.Equal(t, 10, *cfg.Window.X)
	assert.Equal(t, 20, *cfg.Window.Y)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: wayland\n"), 0644))

	_, err := NewManager(path)
	assert.Error(t, err)
}

func TestGetReturnsCopy(t *testing.T) {
	m := newTestManager(t)

	cfg := m.Get()
	cfg.Monitors[0].Name = "changed"
	cfg.ServerPort = 1

	again := m.Get()
	assert.Equal(t, "VIRTUAL-1", again.Monitors[0].Name)
	assert.Equal(t, 8080, again.ServerPort)
}

func TestSetConvertsAndPersists(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Set("server_port", "9090"))
	require.NoError(t, m.Set("window.fullscreen", "true"))
	require.NoError(t, m.Set("window.x", "-100"))
	require.NoError(t, m.Set("tracing.endpoint", "localhost:4318"))

	cfg := m.Get()
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.True(t, cfg.Window.Fullscreen)
	require.NotNil(t, cfg.Window.X)
	assert.Equal(t, -100, *cfg.Window.X)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Endpoint)
	assert.Len(t, cfg.Monitors, 1, "monitors survive Set")

	reloaded, err := NewManager(m.GetConfigPath())
	require.NoError(t, err)
	assert.Equal(t, 9090, reloaded.GetPort())
	assert.True(t, reloaded.Get().Window.Fullscreen)
}

func TestSetRejectsBadInput(t *testing.T) {
	m := newTestManager(t)

	assert.Error(t, m.Set("no_such_key", "1"))
	assert.Error(t, m.Set("server_port", "not-a-number"))
	assert.Error(t, m.Set("server_port", "70000"))
	assert.Error(t, m.Set("backend", "wayland"))

	assert.Equal(t, 8080, m.GetPort())
}

func TestGetValue(t *testing.T) {
	m := newTestManager(t)

	v, err := m.GetValue("window.title")
	require.NoError(t, err)
	assert.Equal(t, "winctl", v)

	_, err = m.GetValue("nope")
	assert.Error(t, err)
}

func TestSetPortAndLogLevel(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.SetPort(3000))
	require.NoError(t, m.SetLogLevel("debug"))
	assert.Equal(t, 3000, m.GetPort())
	assert.Equal(t, "debug", m.GetLogLevel())

	assert.Error(t, m.SetLogLevel("loud"))
	assert.Equal(t, "debug", m.GetLogLevel())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory backend", func(c *Config) { c.Backend = BackendMemory }, false},
		{"unknown backend", func(c *Config) { c.Backend = "win32" }, true},
		{"port zero", func(c *Config) { c.ServerPort = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"negative poll", func(c *Config) { c.PollIntervalMs = -1 }, true},
		{"negative min size", func(c *Config) { c.Window.MinWidth = -1 }, true},
		{"monitor below -1", func(c *Config) { c.Window.Monitor = -2 }, true},
		{"empty monitor", func(c *Config) { c.Monitors[0].Width = 0 }, true},
		{"negative scale", func(c *Config) { c.Monitors[0].Scale = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
