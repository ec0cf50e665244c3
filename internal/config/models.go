package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bryanchriswhite/winctl/internal/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Backend names
const (
	BackendX11    = "x11"
	BackendMemory = "memory"
)

// Config is the winctl configuration file
type Config struct {
	Backend        string          `json:"backend" yaml:"backend" mapstructure:"backend"`
	ServerPort     int             `json:"server_port" yaml:"server_port" mapstructure:"server_port"`
	LogLevel       string          `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty      bool            `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`
	PollIntervalMs int             `json:"poll_interval_ms" yaml:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	Window         WindowConfig    `json:"window" yaml:"window" mapstructure:"window"`
	Monitors       []MonitorConfig `json:"monitors" yaml:"monitors" mapstructure:"monitors"`
	Tracing        TracingConfig   `json:"tracing" yaml:"tracing" mapstructure:"tracing"`
}

// WindowConfig is the initial presentation applied at startup
type WindowConfig struct {
	// ID attaches the X11 backend to an existing window (hex or decimal).
	// Empty creates a window.
	ID        string `json:"id" yaml:"id" mapstructure:"id"`
	Title     string `json:"title" yaml:"title" mapstructure:"title"`
	Width     int    `json:"width" yaml:"width" mapstructure:"width"`
	Height    int    `json:"height" yaml:"height" mapstructure:"height"`
	MinWidth  int    `json:"min_width" yaml:"min_width" mapstructure:"min_width"`
	MinHeight int    `json:"min_height" yaml:"min_height" mapstructure:"min_height"`
	// X and Y are only applied when both are set
	X             *int `json:"x,omitempty" yaml:"x,omitempty" mapstructure:"x"`
	Y             *int `json:"y,omitempty" yaml:"y,omitempty" mapstructure:"y"`
	Fullscreen    bool `json:"fullscreen" yaml:"fullscreen" mapstructure:"fullscreen"`
	Maximized     bool `json:"maximized" yaml:"maximized" mapstructure:"maximized"`
	Monitor       int  `json:"monitor" yaml:"monitor" mapstructure:"monitor"`
	CursorVisible bool `json:"cursor_visible" yaml:"cursor_visible" mapstructure:"cursor_visible"`
	CursorEnabled bool `json:"cursor_enabled" yaml:"cursor_enabled" mapstructure:"cursor_enabled"`
}

// MonitorConfig describes one monitor of the memory backend
type MonitorConfig struct {
	Name   string  `json:"name" yaml:"name" mapstructure:"name"`
	X      int     `json:"x" yaml:"x" mapstructure:"x"`
	Y      int     `json:"y" yaml:"y" mapstructure:"y"`
	Width  int     `json:"width" yaml:"width" mapstructure:"width"`
	Height int     `json:"height" yaml:"height" mapstructure:"height"`
	Scale  float64 `json:"scale" yaml:"scale" mapstructure:"scale"`
}

// TracingConfig configures the OTLP trace exporter
type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Endpoint    string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	ServiceName string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`
}

// Keys lists the scalar keys accepted by Set and GetValue
var Keys = []string{
	"backend",
	"server_port",
	"log_level",
	"log_pretty",
	"poll_interval_ms",
	"window.id",
	"window.title",
	"window.width",
	"window.height",
	"window.min_width",
	"window.min_height",
	"window.x",
	"window.y",
	"window.fullscreen",
	"window.maximized",
	"window.monitor",
	"window.cursor_visible",
	"window.cursor_enabled",
	"tracing.enabled",
	"tracing.endpoint",
	"tracing.service_name",
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		Backend:        BackendX11,
		ServerPort:     8080,
		LogLevel:       "info",
		PollIntervalMs: 250,
		Window: WindowConfig{
			Title:         "winctl",
			Width:         1280,
			Height:        720,
			MinWidth:      320,
			MinHeight:     240,
			Monitor:       -1,
			CursorVisible: true,
			CursorEnabled: true,
		},
		Monitors: []MonitorConfig{
			{Name: "VIRTUAL-1", Width: 1920, Height: 1080, Scale: 1.0},
		},
		Tracing: TracingConfig{
			ServiceName: "winctl",
		},
	}
}

// Validate checks the configuration for values no backend can use
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendX11, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (expected %s or %s)", c.Backend, BackendX11, BackendMemory)
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("server_port %d out of range", c.ServerPort)
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.PollIntervalMs < 0 {
		return fmt.Errorf("poll_interval_ms must not be negative")
	}
	if c.Window.Width < 0 || c.Window.Height < 0 || c.Window.MinWidth < 0 || c.Window.MinHeight < 0 {
		return fmt.Errorf("window sizes must not be negative")
	}
	if c.Window.Monitor < -1 {
		return fmt.Errorf("window.monitor must be -1 or a monitor id")
	}
	for i, m := range c.Monitors {
		if m.Width <= 0 || m.Height <= 0 {
			return fmt.Errorf("monitors[%d]: size must be positive", i)
		}
		if m.Scale < 0 {
			return fmt.Errorf("monitors[%d]: scale must not be negative", i)
		}
	}
	return nil
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	cfg := *c
	cfg.Monitors = slices.Clone(c.Monitors)
	if c.Window.X != nil {
		x := *c.Window.X
		cfg.Window.X = &x
	}
	if c.Window.Y != nil {
		y := *c.Window.Y
		cfg.Window.Y = &y
	}
	return &cfg
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// DefaultPath returns $HOME/.config/winctl/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winctl", "config.yaml"), nil
}

// NewManager loads configFile, or the default path when empty. A missing
// file is created with defaults.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		defaultConfigPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		actualConfigPath = defaultConfigPath
	}

	m := &Manager{
		configPath: actualConfigPath,
	}

	// Try to read config file
	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			// Config file not found, create it with defaults
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = Defaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Str("backend", m.config.Backend).
		Msg("Config loaded")

	return m, nil
}

// load reads the configuration from disk. Keys missing from the file keep
// their defaults.
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}
	return m.config.Clone()
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = Defaults()
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Saving config")

	// Ensure the directory exists
	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Str("config_dir", configDir).
			Msg("Failed to create config directory")
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Msg("Failed to marshal config")
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Str("path", m.configPath).
			Msg("Failed to write config")
		return err
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Msg("Config saved successfully")
	return nil
}

// Update validates and replaces the entire configuration
func (m *Manager) Update(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.config = cfg.Clone()
	m.mu.Unlock()
	return m.Save()
}

// view loads cfg into a viper instance so keys can be addressed with
// dotted paths.
func view(cfg *Config) (*viper.Viper, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return v, nil
}

// Set assigns a string value to a dotted key, converting it to the key's
// type, then validates and saves.
func (m *Manager) Set(key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	v, err := view(m.Get())
	if err != nil {
		return err
	}
	v.Set(key, value)

	cfg := Defaults()
	cfg.Monitors = nil
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return m.Update(cfg)
}

// GetValue returns the value of a dotted key
func (m *Manager) GetValue(key string) (interface{}, error) {
	if !slices.Contains(Keys, key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	v, err := view(m.Get())
	if err != nil {
		return nil, err
	}
	return v.Get(key), nil
}

// SetPort sets the server port
func (m *Manager) SetPort(port int) error {
	cfg := m.Get()
	cfg.ServerPort = port
	return m.Update(cfg)
}

// GetPort gets the server port
func (m *Manager) GetPort() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ServerPort
}

// SetLogLevel sets the log level
func (m *Manager) SetLogLevel(level string) error {
	cfg := m.Get()
	cfg.LogLevel = level
	return m.Update(cfg)
}

// GetLogLevel gets the log level
func (m *Manager) GetLogLevel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.LogLevel
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
