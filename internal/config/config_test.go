/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"emojiart/internal/storage"
)

// isolate points the config file at a temp dir and uses the in-memory keyring.
func isolate(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	t.Setenv(EnvConfigPath, filepath.Join(dir, "config.yaml"))
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "" {
		t.Fatalf("expected no token, got %q", tok)
	}
	if cfg.General.StoreName != "Emoji Art" || cfg.Storage.Driver != storage.DriverFile || cfg.General.DefaultEmojiSize != 40 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.General.StoreName = "Party"
	cfg.Storage.Driver = storage.DriverSQLite
	cfg.Fetch.MaxPerSecond = 3
	if err := Save(cfg, "secret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "secret" {
		t.Fatalf("token = %q, want secret", tok)
	}
	if got.General.StoreName != "Party" || got.Storage.Driver != storage.DriverSQLite || got.Fetch.MaxPerSecond != 3 {
		t.Fatalf("round trip mismatch: %#v", got)
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken twice: %v", err)
	}
	if _, tok, _ := Load(); tok != "" {
		t.Fatalf("token survived delete: %q", tok)
	}
}

func TestMalformedFileFallsBackToDefaults(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("general: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.General.StoreName != "Emoji Art" {
		t.Fatalf("expected defaults, got %#v", cfg.General)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	old := os.Getenv(EnvTelemetryOptIn)
	_ = os.Setenv(EnvTelemetryOptIn, "true")
	t.Cleanup(func() { _ = os.Setenv(EnvTelemetryOptIn, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
	if env, ok := EnvOverrideFor("general.telemetry_opt_in"); !ok || env != EnvTelemetryOptIn {
		t.Fatalf("EnvOverrideFor = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("general.unknown"); ok {
		t.Fatalf("unknown keys are never overridden")
	}
}

func TestEnvOverridesStorageAndFetch(t *testing.T) {
	isolate(t)
	t.Setenv(EnvStorageDriver, "Postgres")
	t.Setenv(EnvPostgresDSN, "postgres://u@localhost/db")
	t.Setenv(EnvFetchTimeoutMs, "2500")
	t.Setenv(EnvFetchMaxBytes, "1048576")
	t.Setenv(EnvFetchMaxPerSec, "not-a-number")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN != "postgres://u@localhost/db" {
		t.Fatalf("storage overrides not applied: %#v", cfg.Storage)
	}
	fo := cfg.Fetch.FetchOptions("tok")
	if fo.Timeout != 2500*time.Millisecond || fo.MaxBytes != 1<<20 || fo.MaxPerSecond != 0 || fo.Token != "tok" {
		t.Fatalf("unexpected fetch options: %#v", fo)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/ea.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/ea.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
	lo := dst.Logging.LogOptions()
	if lo.Level != "debug" || !lo.AddSource || lo.File != "C:/tmp/ea.log" {
		t.Fatalf("unexpected log options: %#v", lo)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/ea.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/ea.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestStorageOptionsDefaultPath(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	opts, err := cfg.StorageOptions()
	if err != nil {
		t.Fatalf("StorageOptions: %v", err)
	}
	if filepath.Base(opts.Path) != "prefs" {
		t.Fatalf("unexpected file path %q", opts.Path)
	}
	cfg.Storage.Driver = storage.DriverSQLite
	opts, _ = cfg.StorageOptions()
	if filepath.Base(opts.Path) != "prefs.sqlite" {
		t.Fatalf("unexpected sqlite path %q", opts.Path)
	}
	cfg.Storage.Path = "/explicit"
	opts, _ = cfg.StorageOptions()
	if opts.Path != "/explicit" {
		t.Fatalf("explicit path ignored: %q", opts.Path)
	}
}

type stubTokens map[string]string

func (s stubTokens) Get(service, key string) (string, error) { return s[service+"/"+key], nil }
func (s stubTokens) Set(service, key, value string) error {
	s[service+"/"+key] = value
	return nil
}
func (s stubTokens) Delete(service, key string) error {
	delete(s, service+"/"+key)
	return nil
}

func TestSetTokenStore(t *testing.T) {
	isolate(t)
	st := stubTokens{}
	restore := SetTokenStore(st)
	defer restore()
	if err := Save(Defaults(), "abc"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if st[keyringService+"/"+keyringToken] != "abc" {
		t.Fatalf("token not written to stub: %v", st)
	}
}
