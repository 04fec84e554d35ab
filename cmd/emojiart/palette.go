/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"emojiart/internal/palette"
)

func newPaletteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Manage the emoji palettes shared by all documents",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List palettes in navigation order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				reg := a.store.Palettes()
				for _, name := range reg.Names() {
					a.printf("%s\t%s\n", name, reg.Contents(name))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Print the glyphs of a palette with their names",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				reg := a.store.Palettes()
				if !reg.Has(args[0]) {
					return fmt.Errorf("unknown palette %q", args[0])
				}
				for _, g := range palette.Split(reg.Contents(args[0])) {
					info := palette.Describe(g)
					if !info.IsEmoji {
						a.printf("%s\n", g)
						continue
					}
					a.printf("%s\t%s\t%s\n", g, info.Name, info.Group)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <name> <glyphs>",
			Short: "Add glyphs to a palette, creating it if needed",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				reg := a.store.Palettes()
				a.printf("%s\n", reg.Contents(reg.AddGlyphs(args[1], args[0])))
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <name> <glyph>",
			Short: "Remove one glyph from a palette",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				reg := a.store.Palettes()
				if !reg.Has(args[0]) {
					return fmt.Errorf("unknown palette %q", args[0])
				}
				a.printf("%s\n", reg.Contents(reg.RemoveGlyph(args[1], args[0])))
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <name> <new-name>",
			Short: "Rename a palette",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				reg := a.store.Palettes()
				if !reg.Has(args[0]) {
					return fmt.Errorf("unknown palette %q", args[0])
				}
				reg.Rename(args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "next [name]",
			Short: "Print the palette after name (default: the first one)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				reg := a.store.Palettes()
				name := reg.DefaultName()
				if len(args) == 1 {
					name = reg.Next(args[0])
				}
				a.printf("%s\n", name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "prev [name]",
			Short: "Print the palette before name (default: the first one)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				reg := a.store.Palettes()
				name := reg.DefaultName()
				if len(args) == 1 {
					name = reg.Previous(args[0])
				}
				a.printf("%s\n", name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: `Merge a palette pack ("-" reads stdin)`,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var r io.Reader = cmd.InOrStdin()
				if args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return err
					}
					defer func() { _ = f.Close() }()
					r = f
				}
				n, err := a.store.Palettes().ImportPack(r)
				if err != nil {
					return err
				}
				a.printf("imported %d palettes\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "export <file>",
			Short: `Write all palettes as a pack ("-" writes stdout)`,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if args[0] == "-" {
					return a.store.Palettes().ExportPack(a.out)
				}
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				if err := a.store.Palettes().ExportPack(f); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			},
		},
	)
	return cmd
}
