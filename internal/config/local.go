package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when SYLLABUS_CONFIG is not set
const DefaultPath = "syllabus.yaml"

// Config holds settings for the syllabus command
type Config struct {
	Content  ContentConfig  `yaml:"content"`
	Progress ProgressConfig `yaml:"progress"`
	Render   RenderConfig   `yaml:"render"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	LogLevel string         `yaml:"log_level"`
	LogFile  string         `yaml:"log_file,omitempty"`
}

// ContentConfig holds lesson lookup settings
type ContentConfig struct {
	// BaseDir is the local directory searched after the bundled lessons
	BaseDir string `yaml:"base_dir"`
}

// ProgressConfig holds learner progress settings
type ProgressConfig struct {
	Path         string `yaml:"path"`
	SaveAttempts int    `yaml:"save_attempts"`
}

// RenderConfig holds HTML rendering settings
type RenderConfig struct {
	Title string `yaml:"title"`
}

// ViewerConfig holds local viewer server settings
type ViewerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			BaseDir: "lessons",
		},
		Progress: ProgressConfig{
			Path:         filepath.Join("data", "progress.json"),
			SaveAttempts: 3,
		},
		Render: RenderConfig{
			Title: "Lesson",
		},
		Viewer: ViewerConfig{
			Bind: "127.0.0.1",
			Port: 7433,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from path. A missing file yields the defaults;
// values present in the file override them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to path, creating parent directories
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks that settings are usable
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Progress.Path == "" {
		return errors.New("progress.path must not be empty")
	}
	if c.Progress.SaveAttempts < 1 {
		return fmt.Errorf("progress.save_attempts must be at least 1, got %d", c.Progress.SaveAttempts)
	}
	if c.Viewer.Port < 1 || c.Viewer.Port > 65535 {
		return fmt.Errorf("viewer.port out of range: %d", c.Viewer.Port)
	}
	if !isLoopback(c.Viewer.Bind) {
		return fmt.Errorf("viewer.bind must be a loopback address, got %q", c.Viewer.Bind)
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Addr returns the viewer listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Viewer.Bind, strconv.Itoa(c.Viewer.Port))
}

// ParseLevel converts a log_level value to a slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
