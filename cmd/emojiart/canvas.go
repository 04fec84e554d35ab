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
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"emojiart/internal/canvas"
	"emojiart/internal/document"
)

func newDragCmd(a *app) *cobra.Command {
	var zoom float64
	cmd := &cobra.Command{
		Use:   "drag [flags] <id> <dx> <dy> <emoji>...",
		Short: "Move several emoji by a screen offset at a zoom level",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dx, err := parseFloat("dx", args[1])
			if err != nil {
				return err
			}
			dy, err := parseFloat("dy", args[2])
			if err != nil {
				return err
			}
			var sel canvas.Selection
			for _, s := range args[3:] {
				eid, err := strconv.Atoi(s)
				if err != nil {
					return fmt.Errorf("invalid emoji id %q", s)
				}
				if !sel.Contains(eid) {
					sel.Toggle(eid)
				}
			}
			sel.Prune(func(id int) bool {
				_, ok := d.Emoji(id)
				return ok
			})
			if sel.Len() == 0 {
				return fmt.Errorf("document %s has none of the given emoji", args[0])
			}
			var drag canvas.Drag
			drag.Update(document.Offset{DX: dx, DY: dy})
			drag.End(&sel, zoom, d)
			return nil
		},
	}
	cmd.Flags().Float64Var(&zoom, "zoom", 1, "zoom level the offset was measured at")
	numericArgs(cmd)
	return cmd
}

func newPickCmd(a *app) *cobra.Command {
	var (
		view    string
		zoom    float64
		fit     bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "pick [flags] <id> <x> <y>",
		Short: "Print the emoji under a screen point",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			x, err := parseFloat("x", args[1])
			if err != nil {
				return err
			}
			y, err := parseFloat("y", args[2])
			if err != nil {
				return err
			}
			size, err := parseSize(view)
			if err != nil {
				return err
			}
			vp := canvas.NewViewport()
			vp.SteadyZoom = zoom
			if fit && d.BackgroundURL() != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				bg, err := d.AwaitBackground(ctx)
				cancel()
				if err == nil && bg.Status == document.StatusLoaded {
					w, h := bg.Image.Size()
					vp.ZoomToFit(canvas.Size{W: float64(w), H: float64(h)}, size)
				}
			}
			at := document.Point{X: x, Y: y}
			p := vp.ToDocument(at, size)
			id, ok := vp.HitTest(d.Emojis(), at, size)
			if !ok {
				a.printf("none at (%g, %g)\n", p.X, p.Y)
				return nil
			}
			e, _ := d.Emoji(id)
			a.printf("%d\t%s\tat (%g, %g)\n", id, e.Text, p.X, p.Y)
			return nil
		},
	}
	cmd.Flags().StringVar(&view, "view", "800x600", "view size WxH")
	cmd.Flags().Float64Var(&zoom, "zoom", 1, "zoom level")
	cmd.Flags().BoolVar(&fit, "fit", false, "zoom the background to fit the view first")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long --fit waits for the background")
	numericArgs(cmd)
	return cmd
}

func parseSize(s string) (canvas.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return canvas.Size{}, fmt.Errorf("invalid view size %q", s)
	}
	fw, err1 := strconv.ParseFloat(w, 64)
	fh, err2 := strconv.ParseFloat(h, 64)
	if err1 != nil || err2 != nil || fw <= 0 || fh <= 0 {
		return canvas.Size{}, fmt.Errorf("invalid view size %q", s)
	}
	return canvas.Size{W: fw, H: fh}, nil
}
