/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"sort"

	"emojiart/internal/document"
)

// Selection is a set of emoji ids.
type Selection struct {
	ids map[int]struct{}
}

// Toggle adds id when absent and removes it otherwise. It reports whether id
// is selected afterwards.
func (s *Selection) Toggle(id int) bool {
	if s.ids == nil {
		s.ids = make(map[int]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *Selection) Contains(id int) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Clear() { s.ids = nil }

func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Prune drops ids for which exists returns false, e.g. after a removal.
func (s *Selection) Prune(exists func(id int) bool) {
	for id := range s.ids {
		if !exists(id) {
			delete(s.ids, id)
		}
	}
}

// Mover moves emoji by a document-space offset. *document.Document
// implements it.
type Mover interface {
	MoveEmoji(id int, by document.Offset)
}

// Drag tracks a drag of the selected emoji. The offset is kept in screen
// units until the drag ends.
type Drag struct {
	Translation document.Offset
}

// Update records the total translation of the gesture so far.
func (d *Drag) Update(translation document.Offset) { d.Translation = translation }

// Offset is the current document-space offset for a viewport zoom.
func (d *Drag) Offset(zoom float64) document.Offset {
	if zoom == 0 {
		zoom = 1
	}
	return document.Offset{DX: d.Translation.DX / zoom, DY: d.Translation.DY / zoom}
}

// End applies the drag to every selected emoji and resets the gesture.
func (d *Drag) End(sel *Selection, zoom float64, m Mover) {
	by := d.Offset(zoom)
	if by.DX != 0 || by.DY != 0 {
		for _, id := range sel.IDs() {
			m.MoveEmoji(id, by)
		}
	}
	d.Translation = document.Offset{}
}
