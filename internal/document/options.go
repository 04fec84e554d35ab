/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"log/slog"

	"emojiart/internal/fetch"
	"emojiart/internal/palette"
	"emojiart/internal/storage"
)

// Option configures a Document.
type Option func(*Document)

// WithPrefs sets the preference area the document persists to.
func WithPrefs(p storage.Prefs) Option { return func(d *Document) { d.prefs = p } }

// WithFetcher sets the background image fetcher.
func WithFetcher(f fetch.Fetcher) Option { return func(d *Document) { d.fetcher = f } }

// WithPalettes shares a palette registry with the document.
func WithPalettes(r *palette.Registry) Option { return func(d *Document) { d.palettes = r } }

// WithDispatcher sets where fetch completions run. The default runs them on
// the fetch goroutine.
func WithDispatcher(fn func(func())) Option { return func(d *Document) { d.dispatch = fn } }

// WithDeferredBackground keeps Open from fetching the stored background.
// The fetch starts on LoadBackground, AwaitBackground or a new URL.
func WithDeferredBackground() Option { return func(d *Document) { d.deferBg = true } }

func WithLogger(l *slog.Logger) Option { return func(d *Document) { d.log = l } }
