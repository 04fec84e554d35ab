/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emojiart/internal/domain"
	"emojiart/internal/fetch"
)

func sampleArt() domain.EmojiArt {
	art := domain.EmojiArt{NextEmojiID: 1}
	art.AddEmoji("🎂", 0, 0, 40)
	art.AddEmoji("<&>", -250, 120, 20)
	return art
}

func sampleBackground(t *testing.T) *fetch.Image {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	img.Set(1, 1, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	bg, err := fetch.Decode("https://example.com/bg.png", buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return bg
}

func TestCanvasSize(t *testing.T) {
	w, h := CanvasSize(domain.EmojiArt{}, nil)
	if w != minCanvas || h != minCanvas {
		t.Fatalf("empty canvas: %dx%d", w, h)
	}
	w, h = CanvasSize(sampleArt(), nil)
	// |x|=250 + half size 10, doubled, plus margins
	if w != 560 || h != minCanvas {
		t.Fatalf("emoji canvas: %dx%d", w, h)
	}
	w, h = CanvasSize(sampleArt(), sampleBackground(t))
	if w != 64 || h != 48 {
		t.Fatalf("background canvas: %dx%d", w, h)
	}
}

func TestWriteSVG(t *testing.T) {
	art := sampleArt()
	art.BackgroundURL = "https://example.com/a.png?x=1&y=2"
	var buf bytes.Buffer
	if err := WriteSVG(&buf, art, Options{Title: "Party"}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	s := buf.String()
	for _, want := range []string{
		`<title>Party</title>`,
		`href="https://example.com/a.png?x=1&amp;y=2"`,
		`id="emoji-1" x="280" y="200" font-size="40"`,
		`>🎂</text>`,
		`>&lt;&amp;&gt;</text>`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("svg missing %q:\n%s", want, s)
		}
	}
}

func TestWriteSVGEmbedsLoadedBackground(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, sampleArt(), Options{Background: sampleBackground(t)}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	if !strings.Contains(buf.String(), `href="data:image/png;base64,`) {
		t.Fatalf("expected embedded background")
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, sampleArt(), Options{Background: sampleBackground(t), Scale: 2}); err != nil {
		t.Fatalf("png: %v", err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 128 || cfg.Height != 96 {
		t.Fatalf("unexpected size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleArt(), Options{Background: sampleBackground(t), Title: "Party"}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestFallbackTextUsesSlugs(t *testing.T) {
	got := fallbackText("🎂")
	if !strings.HasPrefix(got, ":") || !strings.HasSuffix(got, ":") || len(got) < 3 {
		t.Fatalf("expected :slug:, got %q", got)
	}
	if fallbackText("A") != "A" {
		t.Fatalf("plain text must pass through")
	}
}

func TestWriteFileAndBatch(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, "x.gif"), sampleArt(), Options{}); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	paths, err := Batch(sampleArt(), BatchOptions{Preset: PresetPrint, OutDir: filepath.Join(dir, "print"), Base: "party"}, Options{})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil || st.Size() == 0 {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
	if filepath.Ext(paths[0]) != ".pdf" {
		t.Fatalf("print preset should start with pdf: %v", paths)
	}
}
