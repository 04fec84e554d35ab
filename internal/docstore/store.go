/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package docstore keeps the set of documents of a named store. Controllers
// are created on first access and share one palette registry.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"emojiart/internal/document"
	applog "emojiart/internal/log"
	"emojiart/internal/palette"
	"emojiart/internal/storage"
)

// DefaultName is the name of the store used when none is configured.
const DefaultName = "Emoji Art"

// UntitledName is shown for documents that were never named.
const UntitledName = "Untitled"

const persistTimeout = 5 * time.Second

// index is the persisted listing of a store.
type index struct {
	Documents []entry `json:"documents"`
}

type entry struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Option configures a Store.
type Option func(*Store)

// WithDocumentOptions adds options applied to every document the store opens.
func WithDocumentOptions(opts ...document.Option) Option {
	return func(s *Store) { s.docOpts = append(s.docOpts, opts...) }
}

func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.log = l } }

// Store maps identifiers to document controllers.
type Store struct {
	name     string
	prefs    storage.Prefs
	palettes *palette.Registry
	docOpts  []document.Option
	log      *slog.Logger

	mu    sync.Mutex
	docs  map[string]*document.Document
	order []string
	names map[string]string
}

// Open restores the store called name from prefs. A missing or malformed
// listing yields an empty store; palettes fall back to the built-in set.
func Open(ctx context.Context, name string, prefs storage.Prefs, opts ...Option) (*Store, error) {
	if prefs == nil {
		return nil, errors.New("docstore: prefs are required")
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	s := &Store{
		name:  name,
		prefs: prefs,
		docs:  make(map[string]*document.Document),
		names: make(map[string]string),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = applog.WithComponent("docstore")
	}
	s.log = s.log.With(slog.String("store", name))

	if err := s.loadIndex(ctx); err != nil {
		return nil, err
	}
	pal, err := loadPalettes(ctx, prefs, s.log)
	if err != nil {
		return nil, err
	}
	s.palettes = pal
	s.palettes.OnChange(s.persistPalettes)
	return s, nil
}

func (s *Store) loadIndex(ctx context.Context) error {
	data, ok, err := s.prefs.Get(ctx, storage.StoreKey(s.name))
	if err != nil {
		return fmt.Errorf("read store %q: %w", s.name, err)
	}
	if !ok {
		return nil
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		s.log.Warn("store listing is malformed, starting empty", slog.Any("err", err))
		return nil
	}
	for _, e := range idx.Documents {
		if e.ID == "" {
			continue
		}
		if _, dup := s.names[e.ID]; dup {
			continue
		}
		s.order = append(s.order, e.ID)
		s.names[e.ID] = e.Name
	}
	return nil
}

func loadPalettes(ctx context.Context, prefs storage.Prefs, l *slog.Logger) (*palette.Registry, error) {
	data, ok, err := prefs.Get(ctx, storage.PalettesKey)
	if err != nil {
		return nil, fmt.Errorf("read palettes: %w", err)
	}
	if !ok {
		return palette.New(nil), nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		l.Warn("stored palettes are malformed, using defaults", slog.Any("err", err))
		return palette.New(nil), nil
	}
	return palette.New(m), nil
}

func (s *Store) persistPalettes(snap map[string]string) {
	data, err := json.Marshal(snap)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err = s.prefs.Set(ctx, storage.PalettesKey, data)
		cancel()
	}
	if err != nil {
		applog.WithOperation(s.log, "persist_palettes").Warn("persist failed", slog.Any("err", err))
	}
}

// persistIndexLocked writes the listing. Failures are logged only.
func (s *Store) persistIndexLocked() {
	idx := index{Documents: make([]entry, 0, len(s.order))}
	for _, id := range s.order {
		idx.Documents = append(idx.Documents, entry{ID: id, Name: s.names[id]})
	}
	data, err := json.Marshal(idx)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err = s.prefs.Set(ctx, storage.StoreKey(s.name), data)
		cancel()
	}
	if err != nil {
		applog.WithOperation(s.log, "persist_index").Warn("persist failed", slog.Any("err", err))
	}
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Palettes returns the registry shared by all documents of the store.
func (s *Store) Palettes() *palette.Registry { return s.palettes }

// Document returns the controller for id, creating and registering it on
// first access. An empty id yields an untitled document that is not listed.
func (s *Store) Document(ctx context.Context, id string) *document.Document {
	opts := append([]document.Option{
		document.WithPrefs(s.prefs),
		document.WithPalettes(s.palettes),
	}, s.docOpts...)
	if id == "" {
		return document.Open(ctx, "", opts...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[id]; ok {
		return d
	}
	d := document.Open(ctx, id, opts...)
	s.docs[id] = d
	if _, known := s.names[id]; !known {
		s.order = append(s.order, id)
		s.names[id] = ""
		s.persistIndexLocked()
	}
	return d
}

// AllIdentifiers returns the identifiers in creation/first-access order.
func (s *Store) AllIdentifiers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Has reports whether id is listed in the store.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.names[id]
	return ok
}

// Remove closes the controller of id and drops it from the listing. The
// persisted model stays, so Document(id) restores it later.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Store) removeLocked(id string) bool {
	if d, ok := s.docs[id]; ok {
		d.Close()
		delete(s.docs, id)
	}
	if _, ok := s.names[id]; !ok {
		return false
	}
	delete(s.names, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persistIndexLocked()
	return true
}

// AddDocument creates a document with a fresh identifier and returns it.
func (s *Store) AddDocument(ctx context.Context, name string) string {
	id := uuid.NewString()
	s.Document(ctx, id)
	s.SetName(id, name)
	return id
}

// DocumentName returns the display name of id.
func (s *Store) DocumentName(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.names[id]; n != "" {
		return n
	}
	return UntitledName
}

// SetName renames document id. Unknown ids are ignored.
func (s *Store) SetName(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[id]; !ok {
		return
	}
	name = strings.TrimSpace(name)
	if s.names[id] == name {
		return
	}
	s.names[id] = name
	s.persistIndexLocked()
}

// Delete removes id from the store and erases its persisted model.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.removeLocked(id)
	s.mu.Unlock()
	if err := s.prefs.Delete(ctx, storage.DocumentKey(id)); err != nil {
		return fmt.Errorf("delete document %q: %w", id, err)
	}
	return nil
}

// Flush persists every open document.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	docs := make([]*document.Document, 0, len(s.docs))
	for _, id := range s.order {
		if d, ok := s.docs[id]; ok {
			docs = append(docs, d)
		}
	}
	s.mu.Unlock()
	var errs []error
	for _, d := range docs {
		if err := d.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush %q: %w", d.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every open document. The store must not be used afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.docs {
		d.Close()
		delete(s.docs, id)
	}
	s.palettes.OnChange(nil)
}
