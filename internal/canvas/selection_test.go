/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"context"
	"reflect"
	"testing"

	"emojiart/internal/document"
	applog "emojiart/internal/log"
)

func TestSelectionToggle(t *testing.T) {
	var s Selection
	if s.Contains(1) || s.Len() != 0 {
		t.Fatalf("zero selection should be empty")
	}
	if !s.Toggle(3) || !s.Toggle(1) {
		t.Fatalf("toggle on should report selected")
	}
	if s.Toggle(3) {
		t.Fatalf("toggle off should report deselected")
	}
	s.Toggle(2)
	if got := s.IDs(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("unexpected ids: %v", got)
	}
	s.Prune(func(id int) bool { return id != 2 })
	if s.Contains(2) || !s.Contains(1) {
		t.Fatalf("prune mismatch: %v", s.IDs())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("clear left %d ids", s.Len())
	}
}

type recordingMover map[int]document.Offset

func (m recordingMover) MoveEmoji(id int, by document.Offset) { m[id] = by }

func TestDragEndMovesSelectionByUnzoomedOffset(t *testing.T) {
	var sel Selection
	sel.Toggle(4)
	sel.Toggle(7)
	var d Drag
	d.Update(document.Offset{DX: 10, DY: -20})
	m := recordingMover{}
	d.End(&sel, 2, m)
	want := document.Offset{DX: 5, DY: -10}
	if m[4] != want || m[7] != want || len(m) != 2 {
		t.Fatalf("unexpected moves: %v", m)
	}
	if d.Translation != (document.Offset{}) {
		t.Fatalf("drag not reset")
	}
}

func TestDragEndAppliesToDocument(t *testing.T) {
	doc := document.Open(context.Background(), "", document.WithLogger(applog.Discard()))
	defer doc.Close()
	id := doc.AddEmoji("😀", document.Point{X: 1, Y: 1}, 20)
	var sel Selection
	sel.Toggle(id)
	var d Drag
	d.Update(document.Offset{DX: 9, DY: 3})
	d.End(&sel, 1.5, doc)
	e, _ := doc.Emoji(id)
	if e.X != 7 || e.Y != 3 {
		t.Fatalf("unexpected position: %+v", e)
	}
}
