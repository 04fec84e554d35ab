/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package palette

import (
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

// Split breaks text into glyphs (user-perceived characters). A flag, a skin
// tone variant or a ZWJ family sequence is a single glyph. Whitespace is
// dropped.
func Split(text string) []string {
	var out []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		g := gr.Str()
		if strings.TrimSpace(g) == "" {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Count returns the number of glyphs in text.
func Count(text string) int { return len(Split(text)) }

// appendUnique appends the glyphs of text missing from current, preserving
// their first-seen order.
func appendUnique(current, text string) string {
	seen := make(map[string]struct{})
	for _, g := range Split(current) {
		seen[g] = struct{}{}
	}
	var b strings.Builder
	b.WriteString(current)
	for _, g := range Split(text) {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		b.WriteString(g)
	}
	return b.String()
}

// Info describes a glyph for display purposes.
type Info struct {
	Glyph    string
	Slug     string
	Name     string
	Group    string
	SubGroup string
	IsEmoji  bool
}

// Describe looks glyph up in the emoji catalog. Unknown glyphs come back with
// IsEmoji false and the glyph itself as the name.
func Describe(glyph string) Info {
	info := Info{Glyph: glyph, Name: glyph}
	e, err := gomoji.GetInfo(glyph)
	if err != nil {
		return info
	}
	info.Slug = e.Slug
	info.Name = e.UnicodeName
	info.Group = e.Group
	info.SubGroup = e.SubGroup
	info.IsEmoji = true
	return info
}

// IsSingleEmoji reports whether text is exactly one emoji and nothing else.
func IsSingleEmoji(text string) bool {
	found := gomoji.CollectAll(text)
	return len(found) == 1 && found[0].Character == text
}
