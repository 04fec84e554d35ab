/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package palette

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	applog "emojiart/internal/log"

	"github.com/xeipuuv/gojsonschema"
)

// PackVersion is the only pack format version understood so far.
const PackVersion = 1

//go:embed pack.schema.json
var packSchemaJSON []byte

var (
	packSchemaOnce sync.Once
	packSchema     *gojsonschema.Schema
	packSchemaErr  error
)

// Pack is the on-disk exchange format for palettes.
type Pack struct {
	Version  int         `json:"version"`
	Palettes []PackEntry `json:"palettes"`
}

// PackEntry is one palette inside a Pack.
type PackEntry struct {
	Name   string `json:"name"`
	Glyphs string `json:"glyphs"`
}

// ErrInvalidPack wraps schema violations reported by ValidatePack.
var ErrInvalidPack = errors.New("invalid palette pack")

func compiledPackSchema() (*gojsonschema.Schema, error) {
	packSchemaOnce.Do(func() {
		packSchema, packSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(packSchemaJSON))
	})
	return packSchema, packSchemaErr
}

// ValidatePack checks data against the palette pack schema.
func ValidatePack(data []byte) error {
	schema, err := compiledPackSchema()
	if err != nil {
		return fmt.Errorf("load pack schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidPack, strings.Join(msgs, "; "))
	}
	return nil
}

// ExportPack writes every palette, in canonical order, as an indented pack.
func (r *Registry) ExportPack(w io.Writer) error {
	snap := r.Snapshot()
	p := Pack{Version: PackVersion, Palettes: make([]PackEntry, 0, len(snap))}
	for _, name := range r.Names() {
		glyphs, ok := snap[name]
		if !ok || glyphs == "" {
			continue
		}
		p.Palettes = append(p.Palettes, PackEntry{Name: name, Glyphs: glyphs})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode pack: %w", err)
	}
	return nil
}

// ImportPack validates and merges a pack into the registry. Glyphs are only
// ever added, never removed. It returns the number of palettes touched.
func (r *Registry) ImportPack(rd io.Reader) (int, error) {
	l := applog.WithOperation(applog.WithComponent("palette"), "import")
	data, err := io.ReadAll(rd)
	if err != nil {
		return 0, fmt.Errorf("read pack: %w", err)
	}
	if err := ValidatePack(data); err != nil {
		l.Warn("pack rejected", slog.Any("err", err))
		return 0, err
	}
	var p Pack
	if err := json.Unmarshal(data, &p); err != nil {
		return 0, fmt.Errorf("decode pack: %w", err)
	}
	for _, e := range p.Palettes {
		r.AddGlyphs(e.Glyphs, e.Name)
	}
	l.Info("pack imported", slog.Int("palettes", len(p.Palettes)))
	return len(p.Palettes), nil
}
