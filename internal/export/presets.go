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
	"path/filepath"
	"strings"

	"emojiart/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls exporting one document to several formats.
// Files are written as <Base>.<format> in OutDir.
type BatchOptions struct {
	Preset  PresetName
	Formats []Format // empty means preset defaults
	OutDir  string
	Base    string
	Scale   float64 // when > 0 overrides the preset scale
}

// Batch renders art once per format and returns the written paths.
func Batch(art domain.EmojiArt, bopt BatchOptions, opt Options) ([]string, error) {
	if strings.TrimSpace(bopt.Base) == "" {
		return nil, fmt.Errorf("base name is required")
	}
	formats := bopt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(bopt.Preset)
	}
	opt.Scale = presetScale(bopt.Preset)
	if bopt.Scale > 0 {
		opt.Scale = bopt.Scale
	}
	var out []string
	for _, f := range formats {
		p := filepath.Join(bopt.OutDir, bopt.Base+"."+string(f))
		if err := WriteFile(p, art, opt); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

func presetDefaultFormats(p PresetName) []Format {
	switch p {
	case PresetPrint:
		return []Format{FormatPDF, FormatPNG}
	default:
		return []Format{FormatPNG, FormatSVG}
	}
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 1
}
