/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"context"
	"log/slog"

	"emojiart/internal/fetch"
)

// Status is the state of the background image.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BackgroundState describes the background image. Image is set only when
// Status is StatusLoaded; Err only when it is StatusFailed.
type BackgroundState struct {
	Status Status
	URL    string
	Image  *fetch.Image
	Err    error
}

// Background returns the current background state.
func (d *Document) Background() BackgroundState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bg
}

// LoadBackground starts fetching the background URL if no fetch has been
// started for it yet. It only matters for documents opened with
// WithDeferredBackground.
func (d *Document) LoadBackground() {
	d.mu.Lock()
	if d.closed || d.bg.Status != StatusIdle || d.art.BackgroundURL == "" {
		d.mu.Unlock()
		return
	}
	d.startFetchLocked(d.art.BackgroundURL)
	d.version++
	snap, subs := d.snapshotLocked(), d.subscribersLocked()
	d.mu.Unlock()
	notify(subs, snap)
}

// AwaitBackground starts a deferred fetch, then blocks until the background
// is no longer loading or ctx is done.
func (d *Document) AwaitBackground(ctx context.Context) (BackgroundState, error) {
	d.LoadBackground()
	wake := make(chan struct{}, 1)
	cancel := d.Subscribe(func(Snapshot) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer cancel()
	for {
		bg := d.Background()
		if bg.Status != StatusLoading {
			return bg, nil
		}
		select {
		case <-ctx.Done():
			return bg, ctx.Err()
		case <-wake:
		}
	}
}

// startFetchLocked supersedes any fetch in flight and, for a non-empty url,
// starts a new one. The generation captured here must still be current when
// the result arrives.
func (d *Document) startFetchLocked(url string) {
	if d.cancelFetch != nil {
		d.cancelFetch()
		d.cancelFetch = nil
	}
	d.gen++
	if url == "" {
		d.bg = BackgroundState{Status: StatusIdle}
		return
	}
	gen := d.gen
	ctx, cancel := context.WithCancel(context.Background())
	d.cancelFetch = cancel
	d.bg = BackgroundState{Status: StatusLoading, URL: url}
	d.log.Debug("background fetch started", slog.String("url", url), slog.Uint64("gen", gen))
	f := d.fetcher
	go func() {
		img, err := f.Fetch(ctx, url)
		d.dispatch(func() { d.completeFetch(gen, url, img, err) })
	}()
}

func (d *Document) completeFetch(gen uint64, url string, img *fetch.Image, err error) {
	d.mu.Lock()
	if d.closed || gen != d.gen || url != d.art.BackgroundURL {
		d.mu.Unlock()
		d.log.Debug("stale background result discarded", slog.String("url", url), slog.Uint64("gen", gen))
		return
	}
	if d.cancelFetch != nil {
		d.cancelFetch()
		d.cancelFetch = nil
	}
	if err != nil || img == nil {
		d.bg = BackgroundState{Status: StatusFailed, URL: url, Err: err}
		d.log.Info("background fetch failed", slog.String("url", url), slog.Any("err", err))
	} else {
		d.bg = BackgroundState{Status: StatusLoaded, URL: url, Image: img}
		d.log.Debug("background loaded", slog.String("url", url), slog.String("format", img.Format))
	}
	d.version++
	snap, subs := d.snapshotLocked(), d.subscribersLocked()
	d.mu.Unlock()
	notify(subs, snap)
}
