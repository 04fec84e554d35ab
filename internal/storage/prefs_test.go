/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// exercisePrefs runs the behaviour every backend must share.
func exercisePrefs(t *testing.T, p Prefs) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, ok, err := p.Get(ctx, DocumentKey("missing")); err != nil || ok {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}
	if err := p.Set(ctx, "", []byte("x")); err == nil {
		t.Fatalf("expected error for empty key")
	}

	first := []byte(`{"emojis":[],"nextEmojiId":1}`)
	second := []byte(`{"emojis":[{"id":1,"text":"😀","x":0,"y":0,"size":40}],"nextEmojiId":2}`)
	key := DocumentKey("doc1")
	if err := p.Set(ctx, key, first); err != nil {
		t.Fatalf("Set first: %v", err)
	}
	got, ok, err := p.Get(ctx, key)
	if err != nil || !ok || !bytes.Equal(got, first) {
		t.Fatalf("Get after Set: got %q ok=%v err=%v", got, ok, err)
	}
	if v, ok := p.(Versioned); ok {
		if _, had, err := v.Previous(ctx, key); err != nil || had {
			t.Fatalf("Previous before overwrite: had=%v err=%v", had, err)
		}
	}
	if err := p.Set(ctx, key, second); err != nil {
		t.Fatalf("Set second: %v", err)
	}
	got, _, _ = p.Get(ctx, key)
	if !bytes.Equal(got, second) {
		t.Fatalf("Get after overwrite: got %q", got)
	}
	if v, ok := p.(Versioned); ok {
		prev, had, err := v.Previous(ctx, key)
		if err != nil || !had || !bytes.Equal(prev, first) {
			t.Fatalf("Previous: got %q had=%v err=%v", prev, had, err)
		}
	}

	for _, k := range []string{DocumentKey("doc/2"), DocumentKey("ä b"), StoreKey("Emoji Art"), PalettesKey} {
		if err := p.Set(ctx, k, []byte("v")); err != nil {
			t.Fatalf("Set %q: %v", k, err)
		}
	}
	keys, err := p.Keys(ctx, DocumentKeyPrefix)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{DocumentKey("doc/2"), DocumentKey("doc1"), DocumentKey("ä b")}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys mismatch: got %q want %q", keys, want)
	}

	if err := p.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := p.Get(ctx, key); ok {
		t.Fatalf("key still present after Delete")
	}
	if err := p.Delete(ctx, key); err != nil {
		t.Fatalf("Delete twice should be a no-op: %v", err)
	}

	// Keys whose file or row names share a prefix keep separate histories.
	iso, longer := DocumentKey("iso"), DocumentKey("iso.pref.x")
	for _, v := range []string{"B1", "B2"} {
		if err := p.Set(ctx, longer, []byte(v)); err != nil {
			t.Fatalf("Set %s: %v", longer, err)
		}
	}
	if err := p.Set(ctx, iso, []byte("A1")); err != nil {
		t.Fatalf("Set %s: %v", iso, err)
	}
	if v, ok := p.(Versioned); ok {
		if prev, had, err := v.Previous(ctx, iso); err != nil || had {
			t.Fatalf("Previous(%s) leaked %q had=%v err=%v", iso, prev, had, err)
		}
		if err := p.Delete(ctx, iso); err != nil {
			t.Fatalf("Delete %s: %v", iso, err)
		}
		prev, had, err := v.Previous(ctx, longer)
		if err != nil || !had || string(prev) != "B1" {
			t.Fatalf("Previous(%s) after deleting %s: got %q had=%v err=%v", longer, iso, prev, had, err)
		}
	}

	expectFailedSetKeepsValue(t, p, func() context.Context {
		cctx, ccancel := context.WithCancel(ctx)
		ccancel()
		return cctx
	})

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Set(ctx, key, first); !errors.Is(err, ErrClosed) {
		t.Fatalf("Set after Close: want ErrClosed, got %v", err)
	}
}

// expectFailedSetKeepsValue stores a value, runs a Set that must fail under
// the context returned by breakWrite, and checks the old value survived.
func expectFailedSetKeepsValue(t *testing.T, p Prefs, breakWrite func() context.Context) {
	t.Helper()
	key := DocumentKey("atomic")
	if err := p.Set(context.Background(), key, []byte("kept")); err != nil {
		t.Fatalf("Set kept: %v", err)
	}
	if err := p.Set(breakWrite(), key, []byte("lost")); err == nil {
		t.Fatalf("expected the broken Set to fail")
	}
	got, ok, err := p.Get(context.Background(), key)
	if err != nil || !ok || string(got) != "kept" {
		t.Fatalf("after failed Set: got %q ok=%v err=%v", got, ok, err)
	}
}

func TestMemoryPrefs(t *testing.T) {
	exercisePrefs(t, NewMemoryPrefs())
}

func TestFilePrefs(t *testing.T) {
	p, err := OpenFilePrefs(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFilePrefs: %v", err)
	}
	exercisePrefs(t, p)
}

func TestSQLitePrefs(t *testing.T) {
	p, err := OpenSQLitePrefs(filepath.Join(t.TempDir(), "prefs.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLitePrefs: %v", err)
	}
	exercisePrefs(t, p)
}

func TestPostgresPrefs(t *testing.T) {
	dsn := os.Getenv("EA_PG_DSN")
	if dsn == "" {
		t.Skip("EA_PG_DSN not set; skipping Postgres test")
	}
	ctx := context.Background()
	p, err := OpenPostgresPrefs(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}
	for _, k := range []string{DocumentKey("doc1"), DocumentKey("doc/2"), DocumentKey("ä b"), DocumentKey("iso"), DocumentKey("iso.pref.x"), DocumentKey("atomic"), StoreKey("Emoji Art"), PalettesKey} {
		_ = p.Delete(ctx, k)
	}
	exercisePrefs(t, p)
}

func TestOpenPicksDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cases := []struct {
		opts Options
		want any
	}{
		{Options{Driver: "", Path: filepath.Join(dir, "files")}, &FilePrefs{}},
		{Options{Driver: "memory"}, &MemoryPrefs{}},
		{Options{Driver: "SQLite", Path: filepath.Join(dir, "p.sqlite")}, &SQLitePrefs{}},
	}
	for _, c := range cases {
		p, err := Open(ctx, c.opts)
		if err != nil {
			t.Fatalf("Open(%+v): %v", c.opts, err)
		}
		if reflect.TypeOf(p) != reflect.TypeOf(c.want) {
			t.Fatalf("Open(%+v) returned %T", c.opts, p)
		}
		_ = p.Close()
	}
	if _, err := Open(ctx, Options{Driver: "redis"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestDocumentIDFromKey(t *testing.T) {
	id, ok := DocumentIDFromKey(DocumentKey("abc"))
	if !ok || id != "abc" {
		t.Fatalf("got %q ok=%v", id, ok)
	}
	if _, ok := DocumentIDFromKey(StoreKey("Emoji Art")); ok {
		t.Fatalf("store key must not parse as a document key")
	}
}
