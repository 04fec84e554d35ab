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
	"encoding/base64"
	"fmt"
	"io"

	"emojiart/internal/domain"
)

// WriteSVG writes a single SVG document. Glyphs are text elements centered
// on their position; the background image is embedded as a data URI when
// loaded, otherwise linked by URL.
func WriteSVG(w io.Writer, art domain.EmojiArt, opt Options) error {
	s := opt.scale()
	cw, ch := CanvasSize(art, opt.Background)
	width, height := float64(cw)*s, float64(ch)*s
	cx, cy := width/2, height/2

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n", width, height, width, height)
	if opt.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escText(opt.Title))
	}
	buf.WriteString(`  <rect x="0" y="0" width="100%" height="100%" fill="#ffffff"/>` + "\n")

	href := art.BackgroundURL
	if bg := opt.Background; bg != nil && len(bg.Data) > 0 {
		href = "data:image/" + bg.Format + ";base64," + base64.StdEncoding.EncodeToString(bg.Data)
	}
	if href != "" {
		bw, bh := float64(cw)*s, float64(ch)*s
		if opt.Background == nil {
			// Unknown image size: stretch over the whole canvas.
			bw, bh = width, height
		}
		fmt.Fprintf(&buf, `  <image x="%g" y="%g" width="%g" height="%g" href="%s"/>`+"\n", cx-bw/2, cy-bh/2, bw, bh, escAttr(href))
	}

	for _, e := range art.Emojis {
		fmt.Fprintf(&buf, `  <text id="emoji-%d" x="%g" y="%g" font-size="%g" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			e.ID, cx+float64(e.X)*s, cy+float64(e.Y)*s, float64(e.Size)*s, escText(e.Text))
	}
	buf.WriteString("</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
