/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package palette holds the named glyph palettes a document offers for
// dragging onto the canvas. Palette names are kept in canonical (sorted) order
// and navigation wraps around in both directions.
package palette

import (
	"sort"
	"strings"
	"sync"
)

// Defaults are the built-in palettes a registry is seeded with when it would
// otherwise be empty.
func Defaults() map[string]string {
	return map[string]string{
		"Favorites":  "👀🧞‍♂️🪡🦀🎂",
		"Faces":      "😀😅😂😇🥰😉🙃😎🥳😡🤯🥶🤥😴🙄👿😷🤧🤡",
		"Food":       "🍏🍎🥒🍞🥨🥓🍔🍟🍕🍰🍿☕",
		"Animals":    "🐶🐼🐵🙈🙉🙊🦆🐝🕷🐟🦓🐪🦒🦨",
		"Activities": "🏈⚾️🎾🏐🏓⛳️🥌🏂⛷🎳",
	}
}

// Registry maps palette names to their glyph contents. It is safe for
// concurrent use; the change hook runs outside the lock.
type Registry struct {
	mu       sync.RWMutex
	palettes map[string]string
	onChange func(map[string]string)
}

// New returns a registry holding a copy of palettes, or the defaults when
// palettes has no entries.
func New(palettes map[string]string) *Registry {
	r := &Registry{palettes: make(map[string]string, len(palettes))}
	for name, glyphs := range palettes {
		r.palettes[name] = glyphs
	}
	if len(r.palettes) == 0 {
		for name, glyphs := range Defaults() {
			r.palettes[name] = glyphs
		}
	}
	return r
}

// OnChange installs fn to be called with a snapshot after every mutation.
func (r *Registry) OnChange(fn func(map[string]string)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Names returns the palette names in canonical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.palettes))
	for name := range r.palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the name → glyphs mapping.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() map[string]string {
	out := make(map[string]string, len(r.palettes))
	for k, v := range r.palettes {
		out[k] = v
	}
	return out
}

// DefaultName is the first palette name in canonical order.
func (r *Registry) DefaultName() string {
	names := r.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// Next returns the palette after name, wrapping to the first. Unknown names
// yield the default palette.
func (r *Registry) Next(after string) string { return r.neighbor(after, 1) }

// Previous returns the palette before name, wrapping to the last. Unknown
// names yield the default palette.
func (r *Registry) Previous(before string) string { return r.neighbor(before, -1) }

func (r *Registry) neighbor(name string, step int) string {
	names := r.Names()
	if len(names) == 0 {
		return ""
	}
	i := sort.SearchStrings(names, name)
	if i >= len(names) || names[i] != name {
		return names[0]
	}
	n := len(names)
	return names[((i+step)%n+n)%n]
}

// Contents returns the glyphs of the named palette, or "" if it is unknown.
func (r *Registry) Contents(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.palettes[name]
}

// Has reports whether a palette with name exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.palettes[name]
	return ok
}

// Rename moves the contents of name under newName, replacing whatever
// newName held. Unknown names and renames to the same or a blank name are
// ignored.
func (r *Registry) Rename(name, newName string) {
	if name == newName || strings.TrimSpace(newName) == "" {
		return
	}
	r.mutate(func() bool {
		glyphs, ok := r.palettes[name]
		if !ok {
			return false
		}
		delete(r.palettes, name)
		r.palettes[newName] = glyphs
		return true
	})
}

// AddGlyphs appends every glyph of text that the palette does not contain
// yet, creating the palette if needed. Text without glyphs never creates
// a palette. It returns the palette name.
func (r *Registry) AddGlyphs(text, name string) string {
	r.mutate(func() bool {
		current, existed := r.palettes[name]
		merged := appendUnique(current, text)
		if merged == "" || existed && merged == current {
			return false
		}
		r.palettes[name] = merged
		return true
	})
	return name
}

// RemoveGlyph deletes the first occurrence of glyph from the palette unless
// that would leave it empty. It returns the palette name.
func (r *Registry) RemoveGlyph(glyph, name string) string {
	r.mutate(func() bool {
		current, ok := r.palettes[name]
		if !ok {
			return false
		}
		glyphs := Split(current)
		if len(glyphs) <= 1 {
			return false
		}
		for i, g := range glyphs {
			if g == glyph {
				r.palettes[name] = strings.Join(append(glyphs[:i:i], glyphs[i+1:]...), "")
				return true
			}
		}
		return false
	})
	return name
}

// mutate runs fn under the write lock and fires the change hook if fn
// reports a change.
func (r *Registry) mutate(fn func() bool) {
	r.mu.Lock()
	changed := fn()
	hook := r.onChange
	var snap map[string]string
	if changed && hook != nil {
		snap = r.snapshotLocked()
	}
	r.mu.Unlock()
	if snap != nil {
		hook(snap)
	}
}
