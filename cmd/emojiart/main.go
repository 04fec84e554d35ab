/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command emojiart edits emoji art documents from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emojiart/internal/crash"
	applog "emojiart/internal/log"
	"emojiart/internal/version"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "emojiart",
		Short:         "Compose emoji over a background image",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipStore"] == "true" {
				return nil
			}
			return a.setup(cmd.Context())
		},
	}
	root.SetOut(a.out)
	root.AddCommand(
		newVersionCmd(a),
		newNewCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newMoveCmd(a),
		newScaleCmd(a),
		newRemoveCmd(a),
		newBackgroundCmd(a),
		newRenameCmd(a),
		newDeleteCmd(a),
		newPaletteCmd(a),
		newDragCmd(a),
		newPickCmd(a),
		newExportCmd(a),
		newConfigCmd(a),
	)
	root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep documents in memory only")
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipStore": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			a.printf("%s\n", version.String())
		},
	}
}

// numericArgs stops flag parsing at the first positional argument, so
// coordinates such as -10 reach the command instead of being read as
// shorthand flags. Flags for cmd must come before its arguments.
func numericArgs(cmd *cobra.Command) {
	cmd.Flags().SetInterspersed(false)
}

func main() {
	applog.Init(applog.FromEnv())
	a := &app{out: os.Stdout}
	code := run(a)
	os.Exit(code)
}

func run(a *app) (code int) {
	defer a.close()
	defer crash.Recover(a)
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		a.logger().Error("command failed", "err", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
