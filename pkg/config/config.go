/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the bdmeta configuration
type Config struct {
	// Overwrite lets edits replace an existing destination file.
	Overwrite bool     `yaml:"overwrite"`
	Backup    Backup   `yaml:"backup"`
	Logging   Logging  `yaml:"logging"`
	Subtitle  Subtitle `yaml:"subtitle"`
	Chapter   Chapter  `yaml:"chapter"`
}

// Backup controls the journal of replaced files
type Backup struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// Subtitle holds defaults for add-pgstream
type Subtitle struct {
	Language string `yaml:"language"`
	BasePID  uint16 `yaml:"base_pid"`
}

// Chapter holds defaults for chapter export
type Chapter struct {
	Language string `yaml:"language"`
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Backup: Backup{
			Enabled: true,
			Dir:     GetDefaultBackupDir(),
		},
		Logging: Logging{
			Level: "info",
		},
		Subtitle: Subtitle{
			Language: "zho",
			BasePID:  0x1200,
		},
		Chapter: Chapter{
			Language: "eng",
		},
	}
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	if !logLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	if len(c.Subtitle.Language) != 3 {
		return fmt.Errorf("subtitle language %q must be 3 characters", c.Subtitle.Language)
	}
	if len(c.Chapter.Language) != 3 {
		return fmt.Errorf("chapter language %q must be 3 characters", c.Chapter.Language)
	}
	if c.Backup.Enabled && c.Backup.Dir == "" {
		return fmt.Errorf("backup enabled without a backup dir")
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// LoadOrDefault loads the config at configPath, or returns the defaults when
// no file exists there
func LoadOrDefault(configPath string) (*Config, error) {
	if !ConfigExists(configPath) {
		return DefaultConfig(), nil
	}
	return LoadConfig(configPath)
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes the default configuration to configPath, with
// backups kept in backupDir when it is set
func BootstrapConfig(configPath string, backupDir string) (*Config, error) {
	config := DefaultConfig()
	if backupDir != "" {
		config.Backup.Dir = backupDir
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

func configDir() (string, bool) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(homeDir, ".config", "bdmeta"), true
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	dir, ok := configDir()
	if !ok {
		return "./bdmeta.yaml"
	}
	return filepath.Join(dir, "config.yaml")
}

// GetDefaultBackupDir returns where replaced files are journaled by default
func GetDefaultBackupDir() string {
	dir, ok := configDir()
	if !ok {
		return "./bdmeta-backups"
	}
	return filepath.Join(dir, "backups")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
