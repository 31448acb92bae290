// Package config loads and validates the sprintbot YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teamflow/sprintbot/internal/logging"
)

// Config represents the main configuration
type Config struct {
	Version    string            `yaml:"version"`
	Bot        *BotConfig        `yaml:"bot"`
	Extraction *ExtractionConfig `yaml:"extraction"`
	Storage    *StorageConfig    `yaml:"storage"`
	API        *APIConfig        `yaml:"api"`
	Digest     *DigestConfig     `yaml:"digest"`
	Sessions   *SessionConfig    `yaml:"sessions"`
	Logging    *logging.Config   `yaml:"logging"`
}

// BotConfig holds Telegram bot settings.
type BotConfig struct {
	Token       string `yaml:"token"`
	PollTimeout int    `yaml:"poll_timeout"` // long-poll timeout in seconds
}

// ExtractionConfig holds the voice extraction endpoint settings.
type ExtractionConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
}

// StorageConfig holds SQLite settings.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// APIConfig holds the REST API server settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// DigestConfig holds the scheduled KPI digest settings.
type DigestConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Schedule string   `yaml:"schedule"` // cron expression
	Timezone string   `yaml:"timezone"`
	ChatIDs  []string `yaml:"chat_ids"`
}

// SessionConfig holds chat session housekeeping settings.
type SessionConfig struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Version: "1.0",
		Bot: &BotConfig{
			PollTimeout: 30,
		},
		Extraction: &ExtractionConfig{
			ConnectTimeout: 10 * time.Second,
			ReadTimeout:    60 * time.Second,
		},
		Storage: &StorageConfig{
			Path: filepath.Join(homeDir, ".sprintbot", "data"),
		},
		API: &APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8080,
		},
		Digest: &DigestConfig{
			Enabled:  false,
			Schedule: "0 9 * * MON-FRI",
			Timezone: "UTC",
		},
		Sessions: &SessionConfig{
			IdleTimeout: 24 * time.Hour,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Return defaults if no config file
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Storage != nil {
		config.Storage.Path = expandPath(config.Storage.Path)
	}

	return config, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Bot == nil || c.Bot.Token == "" {
		return fmt.Errorf("bot.token is required")
	}
	if c.Storage == nil || c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Digest != nil && c.Digest.Enabled && c.Digest.Schedule == "" {
		return fmt.Errorf("digest.schedule is required when digest is enabled")
	}
	return nil
}

// expandPath expands ~ to the user home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
