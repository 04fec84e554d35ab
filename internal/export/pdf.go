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
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	"emojiart/internal/domain"
	"emojiart/internal/palette"
)

const pdfFontFamily = "EmojiArtGlyphs"

// WritePDF writes a single-page PDF whose page size (in points) matches the
// canvas. Without a UTF-8 font, emoji are written as their :slug: names in
// Helvetica.
func WritePDF(w io.Writer, art domain.EmojiArt, opt Options) error {
	s := opt.scale()
	cw, ch := CanvasSize(art, opt.Background)
	pw, ph := float64(cw)*s, float64(ch)*s

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("emojiart", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pw, Ht: ph})

	if bg := opt.Background; bg != nil && bg.Pixels != nil {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, bg.Pixels, imaging.PNG); err != nil {
			return fmt.Errorf("encode background: %w", err)
		}
		imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("background", imgOpt, &buf)
		pdf.ImageOptions("background", 0, 0, pw, ph, false, imgOpt, 0, "")
	}

	family := "Helvetica"
	if opt.FontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", opt.FontPath)
		family = pdfFontFamily
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	cx, cy := pw/2, ph/2
	for _, e := range art.Emojis {
		size := float64(e.Size) * s
		if size <= 0 {
			continue
		}
		text := e.Text
		if opt.FontPath == "" {
			text = tr(fallbackText(text))
		}
		pdf.SetFont(family, "", size)
		tw := pdf.GetStringWidth(text)
		// Text() places the baseline; shift by roughly a third of the size to
		// center the glyph vertically.
		pdf.Text(cx+float64(e.X)*s-tw/2, cy+float64(e.Y)*s+size/3, text)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// fallbackText replaces each emoji glyph by its :slug: so core fonts can
// show something meaningful.
func fallbackText(text string) string {
	var b bytes.Buffer
	for _, g := range palette.Split(text) {
		if info := palette.Describe(g); info.IsEmoji && info.Slug != "" {
			b.WriteString(":" + info.Slug + ":")
			continue
		}
		b.WriteString(g)
	}
	return b.String()
}
