/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders an emoji art document to SVG, PNG or PDF.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"emojiart/internal/domain"
	"emojiart/internal/fetch"
)

// Format is an output format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

const (
	minCanvas = 400
	margin    = 20
)

// Options controls rendering. Coordinates follow the document: the origin is
// the center of the canvas.
//
//nolint:revive // keep options grouped and explicit for clarity
type Options struct {
	// Background is the loaded background image, drawn centered. When nil the
	// SVG exporter links BackgroundURL instead and the raster exporters leave
	// the canvas white.
	Background *fetch.Image
	// FontPath points to a TTF used for glyphs. PNG falls back to a bitmap
	// font and PDF to emoji slugs when empty.
	FontPath string
	// Scale multiplies the output size (0 means 1).
	Scale float64
	Title string
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// CanvasSize returns the unscaled canvas size: the background size when one
// is loaded, otherwise the extent of the emoji plus a margin.
func CanvasSize(art domain.EmojiArt, bg *fetch.Image) (w, h int) {
	if bg != nil {
		if bw, bh := bg.Size(); bw > 0 && bh > 0 {
			return bw, bh
		}
	}
	var ex, ey float64
	for _, e := range art.Emojis {
		half := float64(e.Size) / 2
		ex = math.Max(ex, math.Abs(float64(e.X))+half)
		ey = math.Max(ey, math.Abs(float64(e.Y))+half)
	}
	w = max(minCanvas, 2*int(math.Ceil(ex))+2*margin)
	h = max(minCanvas, 2*int(math.Ceil(ey))+2*margin)
	return w, h
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", ext)
	}
}

// Write renders art in format f to w.
func Write(w io.Writer, f Format, art domain.EmojiArt, opt Options) error {
	switch f {
	case FormatSVG:
		return WriteSVG(w, art, opt)
	case FormatPNG:
		return WritePNG(w, art, opt)
	case FormatPDF:
		return WritePDF(w, art, opt)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteFile renders art to outPath, choosing the format from its extension.
func WriteFile(outPath string, art domain.EmojiArt, opt Options) (err error) {
	f, err := FormatFromPath(outPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", outPath, cerr)
		}
	}()
	if err := Write(out, f, art, opt); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	return nil
}
