/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"emojiart/internal/fetch"
	applog "emojiart/internal/log"
	"emojiart/internal/storage"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GeneralConfig struct {
	StoreName        string `yaml:"store_name"`
	TelemetryOptIn   bool   `yaml:"telemetry_opt_in"`
	DefaultEmojiSize int    `yaml:"default_emoji_size"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // file | sqlite | postgres | memory
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type FetchConfig struct {
	TimeoutMs    int    `yaml:"timeout_ms"` // 0 = no timeout
	MaxPerSecond int    `yaml:"max_per_second"`
	MaxBytes     int64  `yaml:"max_bytes"`
	UserAgent    string `yaml:"user_agent"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type ExportConfig struct {
	FontPath string `yaml:"font_path"`
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
	Storage       StorageConfig `yaml:"storage"`
	Fetch         FetchConfig   `yaml:"fetch"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{StoreName: "Emoji Art", TelemetryOptIn: false, DefaultEmojiSize: 40},
		Storage:       StorageConfig{Driver: storage.DriverFile},
		Fetch:         FetchConfig{UserAgent: "emojiart"},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "EA_CONFIG"
	EnvStoreName      = "EA_STORE"
	EnvTelemetryOptIn = "EA_TELEMETRY_OPT_IN"
	EnvStorageDriver  = "EA_STORAGE_DRIVER"
	EnvStoragePath    = "EA_STORAGE_PATH"
	EnvPostgresDSN    = "EA_PG_DSN"
	EnvFetchTimeoutMs = "EA_FETCH_TIMEOUT_MS"
	EnvFetchMaxPerSec = "EA_FETCH_MAX_PER_SECOND"
	EnvFetchMaxBytes  = "EA_FETCH_MAX_BYTES"
	EnvExportFont     = "EA_EXPORT_FONT"
	EnvLogLevel       = applog.EnvLevel
	EnvLogFormat      = applog.EnvFormat
	EnvLogSource      = applog.EnvSource
	EnvLogFile        = applog.EnvFile
)

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "EmojiArt")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "EmojiArt")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "emojiart")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "emojiart")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path. EA_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the fetch token from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			applog.WithComponent("config").Warn("ignoring malformed config file", "path", path, "err", err)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := currentTokenStore().Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
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
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := currentTokenStore().Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.General.StoreName) != "" {
		dst.General.StoreName = strings.TrimSpace(src.General.StoreName)
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.General.DefaultEmojiSize > 0 {
		dst.General.DefaultEmojiSize = src.General.DefaultEmojiSize
	}
	if strings.TrimSpace(src.Storage.Driver) != "" {
		dst.Storage.Driver = strings.ToLower(strings.TrimSpace(src.Storage.Driver))
	}
	if strings.TrimSpace(src.Storage.Path) != "" {
		dst.Storage.Path = strings.TrimSpace(src.Storage.Path)
	}
	if strings.TrimSpace(src.Storage.DSN) != "" {
		dst.Storage.DSN = strings.TrimSpace(src.Storage.DSN)
	}
	if src.Fetch.TimeoutMs > 0 {
		dst.Fetch.TimeoutMs = src.Fetch.TimeoutMs
	}
	if src.Fetch.MaxPerSecond > 0 {
		dst.Fetch.MaxPerSecond = src.Fetch.MaxPerSecond
	}
	if src.Fetch.MaxBytes > 0 {
		dst.Fetch.MaxBytes = src.Fetch.MaxBytes
	}
	if strings.TrimSpace(src.Fetch.UserAgent) != "" {
		dst.Fetch.UserAgent = strings.TrimSpace(src.Fetch.UserAgent)
	}
	if strings.TrimSpace(src.Export.FontPath) != "" {
		dst.Export.FontPath = strings.TrimSpace(src.Export.FontPath)
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

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvStoreName)); v != "" {
		cfg.General.StoreName = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDriver)); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoragePath)); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		cfg.Storage.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFetchTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFetchMaxPerSec)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.MaxPerSecond = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFetchMaxBytes)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Fetch.MaxBytes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportFont)); v != "" {
		cfg.Export.FontPath = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := map[string]string{
		"general.store_name":       EnvStoreName,
		"general.telemetry_opt_in": EnvTelemetryOptIn,
		"storage.driver":           EnvStorageDriver,
		"storage.path":             EnvStoragePath,
		"storage.dsn":              EnvPostgresDSN,
		"fetch.timeout_ms":         EnvFetchTimeoutMs,
		"fetch.max_per_second":     EnvFetchMaxPerSec,
		"fetch.max_bytes":          EnvFetchMaxBytes,
		"export.font_path":         EnvExportFont,
		"logging.level":            EnvLogLevel,
		"logging.format":           EnvLogFormat,
		"logging.source":           EnvLogSource,
		"logging.file":             EnvLogFile,
	}[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// StorageOptions resolves the storage section. An empty path means a
// location under the config directory.
func (c AppConfig) StorageOptions() (storage.Options, error) {
	opts := storage.Options{Driver: c.Storage.Driver, Path: c.Storage.Path, DSN: c.Storage.DSN}
	if opts.Path != "" {
		return opts, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return opts, err
	}
	switch opts.Driver {
	case storage.DriverSQLite:
		opts.Path = filepath.Join(dir, "prefs.sqlite")
	default:
		opts.Path = filepath.Join(dir, "prefs")
	}
	return opts, nil
}

// FetchOptions builds fetcher options; token comes from the keyring.
func (f FetchConfig) FetchOptions(token string) fetch.Options {
	return fetch.Options{
		Token:        token,
		UserAgent:    f.UserAgent,
		Timeout:      time.Duration(f.TimeoutMs) * time.Millisecond,
		MaxBytes:     f.MaxBytes,
		MaxPerSecond: f.MaxPerSecond,
	}
}

// LogOptions maps the logging section onto logger options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}
