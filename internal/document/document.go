/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document holds the controller of a single emoji art document. It
// applies user intents to the model, persists every change and keeps the
// background image in sync with the model's background URL.
package document

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"emojiart/internal/domain"
	"emojiart/internal/fetch"
	applog "emojiart/internal/log"
	"emojiart/internal/palette"
	"emojiart/internal/storage"
)

// Point is a location in document space (origin at the canvas center).
type Point struct {
	X, Y float64
}

// Offset is a translation in document space.
type Offset struct {
	DX, DY float64
}

// Snapshot is an immutable view of a document at one point in time.
// Version increases with every observable change.
type Snapshot struct {
	ID         string
	Art        domain.EmojiArt
	Background BackgroundState
	Version    uint64
}

const persistTimeout = 5 * time.Second

// Document is the controller of one EmojiArt. Intents are synchronous; only
// the background fetch runs on its own goroutine and reports back through the
// dispatcher.
type Document struct {
	id       string
	prefs    storage.Prefs
	fetcher  fetch.Fetcher
	palettes *palette.Registry
	dispatch func(func())
	log      *slog.Logger
	deferBg  bool

	mu          sync.Mutex
	art         domain.EmojiArt
	bg          BackgroundState
	gen         uint64
	cancelFetch context.CancelFunc
	version     uint64
	subs        map[int]func(Snapshot)
	nextSub     int
	closed      bool
}

// Open returns the controller for id, restoring its persisted model. An empty
// id yields an untitled document that is never persisted. Malformed stored
// bytes are not an error: the document starts empty (or from the previous
// value when the backend keeps one).
func Open(ctx context.Context, id string, opts ...Option) *Document {
	d := &Document{
		id:   id,
		subs: make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(d)
	}
	if d.fetcher == nil {
		d.fetcher = fetch.New(fetch.Options{})
	}
	if d.palettes == nil {
		d.palettes = palette.New(nil)
	}
	if d.dispatch == nil {
		d.dispatch = func(fn func()) { fn() }
	}
	if d.log == nil {
		d.log = applog.WithComponent("document")
	}
	d.log = applog.WithDocument(d.log, id)

	if art := d.load(ctx); art != nil {
		d.art = *art
	} else {
		d.art = domain.EmojiArt{Emojis: []domain.Emoji{}, NextEmojiID: 1}
	}
	if !d.deferBg {
		d.mu.Lock()
		d.startFetchLocked(d.art.BackgroundURL)
		d.mu.Unlock()
	}
	return d
}

func (d *Document) load(ctx context.Context) *domain.EmojiArt {
	if d.prefs == nil || d.id == "" {
		return nil
	}
	l := applog.WithOperation(d.log, "load")
	key := storage.DocumentKey(d.id)
	data, ok, err := d.prefs.Get(ctx, key)
	if err != nil {
		l.Warn("read failed, starting empty", slog.Any("err", err))
		return nil
	}
	if !ok {
		return nil
	}
	if art := domain.Decode(data); art != nil {
		return art
	}
	l.Warn("stored document is malformed", slog.Int("bytes", len(data)))
	if v, ok := d.prefs.(storage.Versioned); ok {
		prev, had, err := v.Previous(ctx, key)
		if err == nil && had {
			if art := domain.Decode(prev); art != nil {
				l.Info("restored previous version")
				return art
			}
		}
	}
	return nil
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Palettes returns the palette registry shared with this document.
func (d *Document) Palettes() *palette.Registry { return d.palettes }

// Emojis returns a copy of the emoji in z-order.
func (d *Document) Emojis() []domain.Emoji {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.art.Clone().Emojis
}

// Emoji looks up one emoji by id.
func (d *Document) Emoji(id int) (domain.Emoji, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.art.Emoji(id)
}

// BackgroundURL returns the model's background URL ("" when none).
func (d *Document) BackgroundURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.art.BackgroundURL
}

// Snapshot returns the current state.
func (d *Document) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Document) snapshotLocked() Snapshot {
	return Snapshot{ID: d.id, Art: d.art.Clone(), Background: d.bg, Version: d.version}
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function unsubscribes; calling it more than once is harmless.
func (d *Document) Subscribe(fn func(Snapshot)) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return func() {}
	}
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

// AddEmoji places glyph at the given location and returns its id. Location
// and size are truncated toward zero. A closed document ignores the call and
// returns 0.
func (d *Document) AddEmoji(glyph string, at Point, size float64) int {
	var id int
	d.change("add_emoji", func() bool {
		id = d.art.AddEmoji(glyph, int(at.X), int(at.Y), int(size))
		return true
	})
	return id
}

// MoveEmoji translates emoji id. Unknown ids are ignored.
func (d *Document) MoveEmoji(id int, by Offset) {
	d.change("move_emoji", func() bool {
		return d.art.MoveEmoji(id, int(by.DX), int(by.DY))
	})
}

// ScaleEmoji multiplies the size of emoji id by factor, rounding half to even.
func (d *Document) ScaleEmoji(id int, by float64) {
	d.change("scale_emoji", func() bool {
		return d.art.ScaleEmoji(id, by)
	})
}

// RemoveEmoji deletes emoji id. Unknown ids are ignored.
func (d *Document) RemoveEmoji(id int) {
	d.change("remove_emoji", func() bool {
		return d.art.RemoveEmoji(id)
	})
}

// SetBackgroundURL normalizes raw into the model and starts loading it. Any
// fetch in flight for a previous URL is cancelled and its result discarded.
// A blank or unusable URL clears the background.
func (d *Document) SetBackgroundURL(raw string) {
	d.change("set_background", func() bool {
		before := d.art.BackgroundURL
		d.art.SetBackground(raw)
		if d.art.BackgroundURL == before && (before == "" || d.bg.Status == StatusLoading || d.bg.Status == StatusLoaded) {
			return false
		}
		d.startFetchLocked(d.art.BackgroundURL)
		return true
	})
}

// Flush persists the current model.
func (d *Document) Flush(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.persistLocked(ctx)
}

// Close cancels the background fetch and drops all subscribers. Later
// intents are ignored.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.cancelFetch != nil {
		d.cancelFetch()
		d.cancelFetch = nil
	}
	d.gen++
	d.subs = nil
}

// change runs fn under the lock and, if it reports a change, persists the
// model and notifies subscribers.
func (d *Document) change(op string, fn func() bool) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Debug("intent on closed document ignored", slog.String("op", op))
		return
	}
	if !fn() {
		d.mu.Unlock()
		return
	}
	d.version++
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	if err := d.persistLocked(ctx); err != nil {
		applog.WithOperation(d.log, op).Warn("persist failed", slog.Any("err", err))
	}
	cancel()
	snap, subs := d.snapshotLocked(), d.subscribersLocked()
	d.mu.Unlock()
	notify(subs, snap)
}

func (d *Document) persistLocked(ctx context.Context) error {
	if d.prefs == nil || d.id == "" {
		return nil
	}
	data, err := d.art.JSON()
	if err != nil {
		return err
	}
	return d.prefs.Set(ctx, storage.DocumentKey(d.id), data)
}

func (d *Document) subscribersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(d.subs))
	for i := 0; i < d.nextSub; i++ {
		if fn, ok := d.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
