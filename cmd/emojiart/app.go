/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"emojiart/internal/config"
	"emojiart/internal/crash"
	"emojiart/internal/docstore"
	"emojiart/internal/document"
	"emojiart/internal/fetch"
	applog "emojiart/internal/log"
	"emojiart/internal/storage"
	"emojiart/internal/telemetry"
)

// app holds what the commands share. Tests build it around an in-memory
// store; main fills it lazily from the user configuration.
type app struct {
	cfg     config.AppConfig
	token   string
	prefs   storage.Prefs
	store   *docstore.Store
	fetcher fetch.Fetcher
	out     io.Writer
	log     *slog.Logger

	ephemeral bool
}

// setup loads configuration and opens the store unless one is already set.
func (a *app) setup(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	cfg, token, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg, a.token = cfg, token
	applog.Init(cfg.Logging.LogOptions())
	a.log = applog.WithComponent("cli")

	tcfg := telemetry.FromEnv()
	tcfg.OptIn = cfg.General.TelemetryOptIn
	telemetry.NewDefault(tcfg)

	if dir, err := config.ConfigDir(); err == nil {
		crash.SetReportDir(filepath.Join(dir, "crash"))
	}

	if a.ephemeral {
		cfg.Storage.Driver = storage.DriverMemory
	}
	sopts, err := cfg.StorageOptions()
	if err != nil {
		return fmt.Errorf("resolve storage: %w", err)
	}
	prefs, err := storage.Open(ctx, sopts)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.prefs = prefs
	if a.fetcher == nil {
		a.fetcher = fetch.New(cfg.Fetch.FetchOptions(token))
	}
	store, err := docstore.Open(ctx, cfg.General.StoreName, prefs,
		docstore.WithDocumentOptions(documentOptions(a.fetcher)...))
	if err != nil {
		_ = prefs.Close()
		return fmt.Errorf("open store: %w", err)
	}
	a.store = store
	a.log.Debug("store opened", slog.String("store", store.Name()), slog.String("driver", sopts.Driver))
	return nil
}

// Flush persists open documents; crash.Recover calls it after a panic.
func (a *app) Flush(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	return a.store.Flush(ctx)
}

// documentOptions applies to every document the CLI opens. The background
// image is fetched only by commands that wait for it.
func documentOptions(f fetch.Fetcher) []document.Option {
	return []document.Option{document.WithFetcher(f), document.WithDeferredBackground()}
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.prefs != nil {
		if err := a.prefs.Close(); err != nil && a.log != nil {
			a.log.Warn("close storage failed", slog.Any("err", err))
		}
		a.prefs = nil
	}
	telemetry.Flush(context.Background())
}

func (a *app) logger() *slog.Logger {
	if a.log == nil {
		a.log = applog.WithComponent("cli")
	}
	return a.log
}

// document returns the controller of a listed document.
func (a *app) document(ctx context.Context, id string) (*document.Document, error) {
	if !a.store.Has(id) {
		return nil, fmt.Errorf("unknown document %q", id)
	}
	d := a.store.Document(ctx, id)
	telemetry.Event(telemetry.EventDocumentOpened, nil)
	return d, nil
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
