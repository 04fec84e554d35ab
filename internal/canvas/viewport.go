/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math"

	"emojiart/internal/document"
	"emojiart/internal/domain"
)

// Viewport is the pan/zoom state of a canvas. Steady values persist between
// gestures; gesture values hold the contribution of the gesture in progress.
// Pan offsets are kept in unscaled units and multiplied by the zoom on use.
type Viewport struct {
	SteadyZoom  float64
	GestureZoom float64
	SteadyPan   document.Offset
	GesturePan  document.Offset
}

// NewViewport returns an unzoomed, unpanned viewport.
func NewViewport() Viewport { return Viewport{SteadyZoom: 1, GestureZoom: 1} }

// ZoomScale is the effective zoom factor.
func (v Viewport) ZoomScale() float64 {
	s, g := v.SteadyZoom, v.GestureZoom
	if s == 0 {
		s = 1
	}
	if g == 0 {
		g = 1
	}
	return s * g
}

// PanOffset is the effective pan in screen units.
func (v Viewport) PanOffset() document.Offset {
	z := v.ZoomScale()
	return document.Offset{
		DX: (v.SteadyPan.DX + v.GesturePan.DX) * z,
		DY: (v.SteadyPan.DY + v.GesturePan.DY) * z,
	}
}

// Transform maps document space to screen space for a view of size view.
func (v Viewport) Transform(view Size) Affine2D {
	c := view.Center()
	pan := v.PanOffset()
	z := v.ZoomScale()
	return Translate(c.X+pan.DX, c.Y+pan.DY).Mul(Scale(z, z))
}

// ToScreen maps a document location to the screen.
func (v Viewport) ToScreen(p document.Point, view Size) document.Point {
	return v.Transform(view).Apply(p)
}

// EmojiToScreen maps the position of e to the screen.
func (v Viewport) EmojiToScreen(e domain.Emoji, view Size) document.Point {
	return v.ToScreen(document.Point{X: float64(e.X), Y: float64(e.Y)}, view)
}

// ToDocument maps a screen location (e.g. a drop point) to document space.
func (v Viewport) ToDocument(p document.Point, view Size) document.Point {
	inv, ok := v.Transform(view).Invert()
	if !ok {
		return document.Point{}
	}
	return inv.Apply(p)
}

// ZoomToFit resets the pan and picks the largest zoom at which image fits
// inside view. Empty sizes leave the viewport unchanged.
func (v *Viewport) ZoomToFit(image, view Size) {
	if image.Empty() || view.Empty() {
		return
	}
	v.SteadyPan = document.Offset{}
	v.SteadyZoom = math.Min(view.W/image.W, view.H/image.H)
}

// PanBy updates the pan gesture with its total screen translation so far.
func (v *Viewport) PanBy(translation document.Offset) {
	z := v.ZoomScale()
	v.GesturePan = document.Offset{DX: translation.DX / z, DY: translation.DY / z}
}

// EndPan commits the pan gesture.
func (v *Viewport) EndPan(translation document.Offset) {
	z := v.ZoomScale()
	v.SteadyPan.DX += translation.DX / z
	v.SteadyPan.DY += translation.DY / z
	v.GesturePan = document.Offset{}
}

// ZoomBy updates the zoom gesture with its total magnification so far.
func (v *Viewport) ZoomBy(scale float64) {
	if scale <= 0 {
		return
	}
	v.GestureZoom = scale
}

// EndZoom commits the zoom gesture.
func (v *Viewport) EndZoom(scale float64) {
	if v.SteadyZoom == 0 {
		v.SteadyZoom = 1
	}
	if scale > 0 {
		v.SteadyZoom *= scale
	}
	v.GestureZoom = 1
}

// EmojiBounds returns the screen rectangle covered by e.
func (v Viewport) EmojiBounds(e domain.Emoji, view Size) Rect {
	c := v.EmojiToScreen(e, view)
	side := float64(e.Size) * v.ZoomScale()
	return Rect{X: c.X - side/2, Y: c.Y - side/2, W: side, H: side}
}

// HitTest returns the id of the topmost emoji under screen point p.
func (v Viewport) HitTest(emojis []domain.Emoji, p document.Point, view Size) (int, bool) {
	for i := len(emojis) - 1; i >= 0; i-- {
		if v.EmojiBounds(emojis[i], view).Contains(p) {
			return emojis[i].ID, true
		}
	}
	return 0, false
}
