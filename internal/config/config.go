// Package config loads syllabus settings from a YAML file with environment
// overrides.
package config

import (
	"os"
	"strconv"
)

// Environment variables that override file settings
const (
	EnvConfigPath   = "SYLLABUS_CONFIG"
	EnvLogLevel     = "SYLLABUS_LOG_LEVEL"
	EnvLogFile      = "SYLLABUS_LOG_FILE"
	EnvContentDir   = "SYLLABUS_CONTENT_DIR"
	EnvProgressPath = "SYLLABUS_PROGRESS_PATH"
	EnvViewerPort   = "SYLLABUS_VIEWER_PORT"
)

// Path returns the config file location
func Path() string {
	return getEnv(EnvConfigPath, DefaultPath)
}

// LoadWithEnv loads the config file from Path and applies environment
// overrides on top.
func LoadWithEnv() (*Config, error) {
	cfg, err := Load(Path())
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any SYLLABUS_* variables that are set
func ApplyEnv(cfg *Config) {
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)
	cfg.LogFile = getEnv(EnvLogFile, cfg.LogFile)
	cfg.Content.BaseDir = getEnv(EnvContentDir, cfg.Content.BaseDir)
	cfg.Progress.Path = getEnv(EnvProgressPath, cfg.Progress.Path)
	cfg.Viewer.Port = getEnvInt(EnvViewerPort, cfg.Viewer.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
