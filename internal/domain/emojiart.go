/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the document model: an ordered list of placed emoji plus
// an optional background image reference. The model is a plain value; the
// document controller owns one and persists it after every change.

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// Emoji is a glyph placed on the canvas. Position is in document space with
// the origin at the center of the canvas.
type Emoji struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Size int    `json:"size"`
}

// EmojiArt is the persisted document. Emojis are kept in z-order, back to front.
type EmojiArt struct {
	Emojis        []Emoji `json:"emojis"`
	BackgroundURL string  `json:"backgroundURL,omitempty"`
	// NextEmojiID is the id the next AddEmoji call hands out. It is persisted
	// so that ids of removed emoji are never reused.
	NextEmojiID int `json:"nextEmojiId"`
}

// AddEmoji appends a new emoji and returns its freshly allocated id.
func (a *EmojiArt) AddEmoji(text string, x, y, size int) int {
	if a.NextEmojiID < 1 {
		a.NextEmojiID = a.maxID() + 1
	}
	id := a.NextEmojiID
	a.NextEmojiID++
	a.Emojis = append(a.Emojis, Emoji{ID: id, Text: text, X: x, Y: y, Size: size})
	return id
}

// Index returns the slice position of the emoji with id, or -1.
func (a *EmojiArt) Index(id int) int {
	for i := range a.Emojis {
		if a.Emojis[i].ID == id {
			return i
		}
	}
	return -1
}

// Emoji looks an emoji up by id.
func (a *EmojiArt) Emoji(id int) (Emoji, bool) {
	if i := a.Index(id); i >= 0 {
		return a.Emojis[i], true
	}
	return Emoji{}, false
}

// MoveEmoji offsets the emoji's position. It reports false if id is unknown.
func (a *EmojiArt) MoveEmoji(id, dx, dy int) bool {
	i := a.Index(id)
	if i < 0 {
		return false
	}
	a.Emojis[i].X += dx
	a.Emojis[i].Y += dy
	return true
}

// ScaleEmoji multiplies the emoji's size by factor, rounding half to even.
// It reports false if id is unknown.
func (a *EmojiArt) ScaleEmoji(id int, factor float64) bool {
	i := a.Index(id)
	if i < 0 {
		return false
	}
	a.Emojis[i].Size = ScaleSize(a.Emojis[i].Size, factor)
	return true
}

// ScaleSize returns size*factor rounded to the nearest integer, ties to even.
func ScaleSize(size int, factor float64) int {
	return int(math.RoundToEven(float64(size) * factor))
}

// RemoveEmoji deletes the emoji with id. It reports false if id is unknown.
func (a *EmojiArt) RemoveEmoji(id int) bool {
	i := a.Index(id)
	if i < 0 {
		return false
	}
	a.Emojis = append(a.Emojis[:i], a.Emojis[i+1:]...)
	return true
}

// SetBackground stores the normalized form of raw, or clears the background
// when raw is blank or not a usable image URL.
func (a *EmojiArt) SetBackground(raw string) {
	if strings.TrimSpace(raw) == "" {
		a.BackgroundURL = ""
		return
	}
	u, ok := NormalizeImageURL(raw)
	if !ok {
		a.BackgroundURL = ""
		return
	}
	a.BackgroundURL = u
}

// Clone returns a deep copy.
func (a EmojiArt) Clone() EmojiArt {
	out := a
	if a.Emojis != nil {
		out.Emojis = append([]Emoji(nil), a.Emojis...)
	}
	return out
}

// JSON serializes the document. Encoding a decoded document yields the same
// bytes it was decoded from.
func (a EmojiArt) JSON() ([]byte, error) {
	if a.Emojis == nil {
		a.Emojis = []Emoji{}
	}
	if m := a.maxID(); a.NextEmojiID <= m {
		a.NextEmojiID = m + 1
	}
	return json.Marshal(a)
}

// Decode parses a serialized document. Empty or malformed input yields nil.
func Decode(data []byte) *EmojiArt {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	var a EmojiArt
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil
	}
	if dec.More() {
		return nil
	}
	if a.Emojis == nil {
		a.Emojis = []Emoji{}
	}
	if !a.validIDs() {
		return nil
	}
	if m := a.maxID(); a.NextEmojiID <= m {
		a.NextEmojiID = m + 1
	}
	return &a
}

func (a *EmojiArt) maxID() int {
	m := 0
	for _, e := range a.Emojis {
		if e.ID > m {
			m = e.ID
		}
	}
	return m
}

// validIDs reports whether all ids are positive and unique.
func (a *EmojiArt) validIDs() bool {
	seen := make(map[int]struct{}, len(a.Emojis))
	for _, e := range a.Emojis {
		if e.ID < 1 {
			return false
		}
		if _, dup := seen[e.ID]; dup {
			return false
		}
		seen[e.ID] = struct{}{}
	}
	return true
}
