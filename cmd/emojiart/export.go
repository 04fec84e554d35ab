/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"emojiart/internal/document"
	"emojiart/internal/export"
	"emojiart/internal/telemetry"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		scale   float64
		preset  string
		formats []string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "export <id> <out.{svg,png,pdf}>",
		Short: "Render a document to SVG, PNG or PDF",
		Long: "Render a document. With --preset or --format the extension of <out> is\n" +
			"replaced and one file per format is written next to it.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opt := export.Options{
				FontPath: a.cfg.Export.FontPath,
				Scale:    scale,
				Title:    a.store.DocumentName(args[0]),
			}
			if d.BackgroundURL() != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				bg, err := d.AwaitBackground(ctx)
				cancel()
				switch {
				case err != nil:
					a.logger().Warn("background not ready, exporting without it", "err", err)
				case bg.Status == document.StatusLoaded:
					opt.Background = bg.Image
				case bg.Status == document.StatusFailed:
					a.logger().Warn("background failed, exporting without it", "err", bg.Err)
				}
			}
			art := d.Snapshot().Art

			if preset == "" && len(formats) == 0 {
				if err := export.WriteFile(args[1], art, opt); err != nil {
					return err
				}
				telemetry.Event(telemetry.EventExportWritten, map[string]any{"format": strings.TrimPrefix(filepath.Ext(args[1]), ".")})
				a.printf("%s\n", args[1])
				return nil
			}

			bopt := export.BatchOptions{
				Preset: export.PresetName(preset),
				OutDir: filepath.Dir(args[1]),
				Base:   strings.TrimSuffix(filepath.Base(args[1]), filepath.Ext(args[1])),
				Scale:  scale,
			}
			for _, f := range formats {
				ff, err := export.FormatFromPath("x." + f)
				if err != nil {
					return err
				}
				bopt.Formats = append(bopt.Formats, ff)
			}
			paths, err := export.Batch(art, bopt, opt)
			for _, p := range paths {
				telemetry.Event(telemetry.EventExportWritten, map[string]any{"format": strings.TrimPrefix(filepath.Ext(p), ".")})
				a.printf("%s\n", p)
			}
			if err != nil {
				return fmt.Errorf("batch export: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&scale, "scale", 0, "output scale factor (default 1, or the preset scale)")
	cmd.Flags().StringVar(&preset, "preset", "", "export preset: web or print")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "formats to write (svg, png, pdf)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the background image")
	return cmd
}
