/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the
// user scope. Environment variables are treated as read-only overrides at
// runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	Theme         string `yaml:"theme"` // "system" | "light" | "dark" (informational for now)
	RecentLimit   int    `yaml:"recent_limit"`
	AutosaveAfter int    `yaml:"autosave_after_s"` // seconds between autosave snapshots, 0 disables
}

type CanvasConfig struct {
	Width      int    `yaml:"width"`  // logical units
	Height     int    `yaml:"height"` // logical units
	Background string `yaml:"background"`
	DebounceMs int    `yaml:"debounce_ms"` // scene flush window
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system", RecentLimit: 8, AutosaveAfter: 120},
		Canvas:        CanvasConfig{Width: 1200, Height: 800, Background: "#ffffff", DebounceMs: 500},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvCanvasWidth   = "GSL_CANVAS_WIDTH"
	EnvCanvasHeight  = "GSL_CANVAS_HEIGHT"
	EnvDebounceMs    = "GSL_DEBOUNCE_MS"
	EnvAutosaveAfter = "GSL_AUTOSAVE_AFTER_S"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GSL_LOG_LEVEL"
	EnvLogFormat = "GSL_LOG_FORMAT"
	EnvLogSource = "GSL_LOG_SOURCE"
	EnvLogFile   = "GSL_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoSlide")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoSlide")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "goslide")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	if src.General.RecentLimit != 0 {
		dst.General.RecentLimit = src.General.RecentLimit
	}
	if src.General.AutosaveAfter != 0 {
		dst.General.AutosaveAfter = src.General.AutosaveAfter
	}
	if src.Canvas.Width != 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height != 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if src.Canvas.Background != "" {
		dst.Canvas.Background = src.Canvas.Background
	}
	if src.Canvas.DebounceMs != 0 {
		dst.Canvas.DebounceMs = src.Canvas.DebounceMs
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvCanvasWidth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Canvas.Width = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasHeight)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Canvas.Height = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebounceMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Canvas.DebounceMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutosaveAfter)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.General.AutosaveAfter = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "canvas.width":
		if os.Getenv(EnvCanvasWidth) != "" {
			return EnvCanvasWidth, true
		}
	case "canvas.height":
		if os.Getenv(EnvCanvasHeight) != "" {
			return EnvCanvasHeight, true
		}
	case "canvas.debounce_ms":
		if os.Getenv(EnvDebounceMs) != "" {
			return EnvDebounceMs, true
		}
	case "general.autosave_after_s":
		if os.Getenv(EnvAutosaveAfter) != "" {
			return EnvAutosaveAfter, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}
