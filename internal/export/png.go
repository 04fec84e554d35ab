/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"emojiart/internal/domain"
)

// WritePNG rasterizes art. With a FontPath each glyph is drawn at its own
// size; without one the fixed 7x13 bitmap font is used.
func WritePNG(w io.Writer, art domain.EmojiArt, opt Options) error {
	s := opt.scale()
	cw, ch := CanvasSize(art, opt.Background)
	width, height := int(float64(cw)*s+0.5), int(float64(ch)*s+0.5)
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	cx, cy := float64(width)/2, float64(height)/2
	if bg := opt.Background; bg != nil && bg.Pixels != nil {
		img := bg.Pixels
		if s != 1 {
			img = imaging.Resize(img, width, height, imaging.Lanczos)
		}
		dc.DrawImageAnchored(img, int(cx), int(cy), 0.5, 0.5)
	}

	dc.SetColor(color.Black)
	if opt.FontPath == "" {
		dc.SetFontFace(basicfont.Face7x13)
	}
	for _, e := range art.Emojis {
		if opt.FontPath != "" {
			size := float64(e.Size) * s
			if size <= 0 {
				continue
			}
			if err := dc.LoadFontFace(opt.FontPath, size); err != nil {
				return fmt.Errorf("load font: %w", err)
			}
		}
		dc.DrawStringAnchored(e.Text, cx+float64(e.X)*s, cy+float64(e.Y)*s, 0.5, 0.5)
	}
	return dc.EncodePNG(w)
}
