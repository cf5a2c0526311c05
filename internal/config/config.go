// Package config loads the optional Roundbell configuration file. The file is
// read-only from the app's point of view: edited durations live in memory for
// the process lifetime and are never written back.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"roundbell/internal/core/model"
)

const fileName = "config.yaml"

type yamlConfig struct {
	WorkMinutes int    `yaml:"work_minutes"`
	WorkSeconds int    `yaml:"work_seconds"`
	RestMinutes int    `yaml:"rest_minutes"`
	RestSeconds int    `yaml:"rest_seconds"`
	LogLevel    string `yaml:"log_level"`
}

// Config is the resolved application configuration.
type Config struct {
	Durations model.Durations
	LogLevel  zerolog.Level
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Durations: model.DefaultDurations(),
		LogLevel:  zerolog.InfoLevel,
	}
}

// Path resolves the config file location under the user config directory.
func Path(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, fileName), nil
}

// Load reads the config file for appName. A missing file yields defaults.
func Load(appName string) (Config, error) {
	configPath, err := Path(appName)
	if err != nil {
		return Default(), err
	}
	return LoadFile(configPath)
}

// LoadFile reads and resolves the config file at path. A missing file yields
// defaults; invalid fields fall back to their default values one by one.
func LoadFile(path string) (Config, error) {
	resolved := Default()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return resolved, nil
		}
		return resolved, fmt.Errorf("read config file: %w", err)
	}

	var fileData yamlConfig
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return resolved, fmt.Errorf("parse config yaml: %w", err)
	}

	apply(&resolved, fileData)
	return resolved, nil
}

func apply(resolved *Config, fileData yamlConfig) {
	if fileData.WorkMinutes > 0 || fileData.WorkSeconds > 0 {
		resolved.Durations.Work = model.FromMinSec(fileData.WorkMinutes, fileData.WorkSeconds)
	}
	if fileData.RestMinutes > 0 || fileData.RestSeconds > 0 {
		resolved.Durations.Rest = model.FromMinSec(fileData.RestMinutes, fileData.RestSeconds)
	}
	if fileData.LogLevel != "" {
		if level, err := zerolog.ParseLevel(fileData.LogLevel); err == nil {
			resolved.LogLevel = level
		}
	}
}
