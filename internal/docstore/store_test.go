/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package docstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"emojiart/internal/document"
	applog "emojiart/internal/log"
	"emojiart/internal/storage"
)

func openStore(t *testing.T, prefs storage.Prefs) *Store {
	t.Helper()
	s, err := Open(context.Background(), "Emoji Art", prefs, WithLogger(applog.Discard()),
		WithDocumentOptions(document.WithLogger(applog.Discard())))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestDocumentIsCreatedOnceAndListedInOrder(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemoryPrefs())
	a := s.Document(ctx, "b-doc")
	b := s.Document(ctx, "a-doc")
	require.Same(t, a, s.Document(ctx, "b-doc"))
	require.NotSame(t, a, b)
	require.Equal(t, []string{"b-doc", "a-doc"}, s.AllIdentifiers())
}

func TestRemoveKeepsPersistedBytes(t *testing.T) {
	ctx := context.Background()
	prefs := storage.NewMemoryPrefs()
	s := openStore(t, prefs)
	d := s.Document(ctx, "doc1")
	d.AddEmoji("🎂", document.Point{}, 40)

	s.Remove("doc1")
	require.Empty(t, s.AllIdentifiers())
	_, ok, err := prefs.Get(ctx, storage.DocumentKey("doc1"))
	require.NoError(t, err)
	require.True(t, ok)

	again := s.Document(ctx, "doc1")
	require.NotSame(t, d, again)
	require.Len(t, again.Emojis(), 1)
}

func TestDeleteErasesPersistedBytes(t *testing.T) {
	ctx := context.Background()
	prefs := storage.NewMemoryPrefs()
	s := openStore(t, prefs)
	s.Document(ctx, "gone").AddEmoji("😀", document.Point{}, 10)
	require.NoError(t, s.Delete(ctx, "gone"))
	_, ok, _ := prefs.Get(ctx, storage.DocumentKey("gone"))
	require.False(t, ok)
	require.Empty(t, s.Document(ctx, "gone").Emojis())
}

func TestListingAndNamesSurviveRestart(t *testing.T) {
	ctx := context.Background()
	prefs := storage.NewMemoryPrefs()
	s := openStore(t, prefs)
	id := s.AddDocument(ctx, "  Birthday  ")
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	s.Document(ctx, "plain")
	s.Close()

	again := openStore(t, prefs)
	require.Equal(t, []string{id, "plain"}, again.AllIdentifiers())
	require.Equal(t, "Birthday", again.DocumentName(id))
	require.Equal(t, UntitledName, again.DocumentName("plain"))
	require.True(t, again.Has(id))

	again.SetName("plain", "Plain")
	again.SetName("unknown", "x")
	require.Equal(t, "Plain", again.DocumentName("plain"))
	require.False(t, again.Has("unknown"))
}

func TestPalettesAreSharedAndPersisted(t *testing.T) {
	ctx := context.Background()
	prefs := storage.NewMemoryPrefs()
	s := openStore(t, prefs)
	a := s.Document(ctx, "a")
	b := s.Document(ctx, "b")
	require.Same(t, a.Palettes(), b.Palettes())

	s.Palettes().AddGlyphs("🦄", "Mine")
	s.Close()

	again := openStore(t, prefs)
	require.Equal(t, "🦄", again.Palettes().Contents("Mine"))
	require.Equal(t, "🦄", again.Document(ctx, "a").Palettes().Contents("Mine"))
}

func TestMalformedListingStartsEmpty(t *testing.T) {
	ctx := context.Background()
	prefs := storage.NewMemoryPrefs()
	require.NoError(t, prefs.Set(ctx, storage.StoreKey("Emoji Art"), []byte("[[[")))
	require.NoError(t, prefs.Set(ctx, storage.PalettesKey, []byte("nope")))
	s := openStore(t, prefs)
	require.Empty(t, s.AllIdentifiers())
	require.NotEmpty(t, s.Palettes().Names())
}

func TestUntitledDocumentIsNotListed(t *testing.T) {
	s := openStore(t, storage.NewMemoryPrefs())
	d := s.Document(context.Background(), "")
	defer d.Close()
	d.AddEmoji("😀", document.Point{}, 10)
	require.Empty(t, s.AllIdentifiers())
}

func TestFlushPersistsOpenDocuments(t *testing.T) {
	ctx := context.Background()
	prefs := storage.NewMemoryPrefs()
	s := openStore(t, prefs)
	s.Document(ctx, "x")
	require.NoError(t, s.Flush(ctx))
	_, ok, _ := prefs.Get(ctx, storage.DocumentKey("x"))
	require.True(t, ok)
}

func TestOpenRequiresPrefs(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	require.Error(t, err)
}
