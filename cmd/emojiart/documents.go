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
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"emojiart/internal/document"
	"emojiart/internal/telemetry"
)

func newNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a document and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := a.store.AddDocument(cmd.Context(), args[0])
			a.printf("%s\n", id)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range a.store.AllIdentifiers() {
				a.printf("%s\t%s\n", id, a.store.DocumentName(id))
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			snap := d.Snapshot()
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(snap.Art)
			}
			a.printf("Name: %s\n", a.store.DocumentName(snap.ID))
			if snap.Art.BackgroundURL != "" {
				a.printf("Background: %s\n", snap.Art.BackgroundURL)
			}
			a.printf("Emoji: %d\n", len(snap.Art.Emojis))
			for _, e := range snap.Art.Emojis {
				a.printf("  %d\t%s\t(%d, %d)\tsize %d\n", e.ID, e.Text, e.X, e.Y, e.Size)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON form")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var size float64
	cmd := &cobra.Command{
		Use:   "add [flags] <id> <glyph> <x> <y>",
		Short: "Add an emoji and print its id",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			x, err := parseFloat("x", args[2])
			if err != nil {
				return err
			}
			y, err := parseFloat("y", args[3])
			if err != nil {
				return err
			}
			if size <= 0 {
				size = float64(a.cfg.General.DefaultEmojiSize)
			}
			id := d.AddEmoji(args[1], document.Point{X: x, Y: y}, size)
			telemetry.Event(telemetry.EventEmojiAdded, nil)
			a.printf("%d\n", id)
			return nil
		},
	}
	cmd.Flags().Float64Var(&size, "size", 0, "emoji size in points (default from config)")
	numericArgs(cmd)
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move [flags] <id> <emoji> <dx> <dy>",
		Short: "Move an emoji by an offset",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, eid, err := a.emoji(cmd, args)
			if err != nil {
				return err
			}
			dx, err := parseFloat("dx", args[2])
			if err != nil {
				return err
			}
			dy, err := parseFloat("dy", args[3])
			if err != nil {
				return err
			}
			d.MoveEmoji(eid, document.Offset{DX: dx, DY: dy})
			return nil
		},
	}
	numericArgs(cmd)
	return cmd
}

func newScaleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scale <id> <emoji> <factor>",
		Short: "Scale an emoji",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, eid, err := a.emoji(cmd, args)
			if err != nil {
				return err
			}
			f, err := parseFloat("factor", args[2])
			if err != nil {
				return err
			}
			if f <= 0 {
				return fmt.Errorf("factor must be positive, got %v", f)
			}
			d.ScaleEmoji(eid, f)
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id> <emoji>",
		Short: "Remove an emoji",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, eid, err := a.emoji(cmd, args)
			if err != nil {
				return err
			}
			d.RemoveEmoji(eid)
			return nil
		},
	}
}

func newBackgroundCmd(a *app) *cobra.Command {
	var wait bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "background <id> <url>",
		Short: `Set the background image URL ("" clears it)`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d.SetBackgroundURL(args[1])
			if !wait {
				return nil
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel func()
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			bg, err := d.AwaitBackground(ctx)
			if err != nil {
				return fmt.Errorf("wait for background: %w", err)
			}
			switch bg.Status {
			case document.StatusLoaded:
				w, h := bg.Image.Size()
				telemetry.Event(telemetry.EventBackgroundLoaded, map[string]any{"format": bg.Image.Format})
				a.printf("loaded %s (%dx%d %s)\n", bg.URL, w, h, bg.Image.Format)
			case document.StatusFailed:
				return fmt.Errorf("background %s: %w", bg.URL, bg.Err)
			default:
				a.printf("%s\n", bg.Status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the image to load")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long --wait waits")
	return cmd
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.store.Has(args[0]) {
				return fmt.Errorf("unknown document %q", args[0])
			}
			a.store.SetName(args[0], args[1])
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.store.Has(args[0]) {
				return fmt.Errorf("unknown document %q", args[0])
			}
			if keep {
				a.store.Remove(args[0])
				return nil
			}
			return a.store.Delete(cmd.Context(), args[0])
		},
	}
	cmd.Flags().BoolVar(&keep, "keep-data", false, "only unlist the document; its content stays stored")
	return cmd
}

// emoji resolves the <id> <emoji> argument pair.
func (a *app) emoji(cmd *cobra.Command, args []string) (*document.Document, int, error) {
	d, err := a.document(cmd.Context(), args[0])
	if err != nil {
		return nil, 0, err
	}
	eid, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, 0, fmt.Errorf("invalid emoji id %q", args[1])
	}
	if _, ok := d.Emoji(eid); !ok {
		return nil, 0, fmt.Errorf("document %s has no emoji %d", args[0], eid)
	}
	return d, eid, nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}
