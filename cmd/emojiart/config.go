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
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"emojiart/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show or change the user configuration",
		Annotations: map[string]string{"skipStore": "true"},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:         "show",
			Short:       "Print the effective configuration",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{"skipStore": "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, token, err := config.Load()
				if err != nil {
					return err
				}
				path, _ := config.ConfigPath()
				a.printf("# %s\n", path)
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				a.printf("%s", data)
				for _, key := range []string{"general.store_name", "storage.driver", "storage.path", "fetch.timeout_ms", "logging.level"} {
					if env, ok := config.EnvOverrideFor(key); ok {
						a.printf("# %s overridden by %s\n", key, env)
					}
				}
				if token != "" {
					a.printf("# fetch token: set\n")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:         "set-token <token>",
			Short:       "Store the bearer token sent with background requests",
			Args:        cobra.ExactArgs(1),
			Annotations: map[string]string{"skipStore": "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				tok := strings.TrimSpace(args[0])
				if tok == "" {
					return fmt.Errorf("token is empty")
				}
				cfg, err := fileConfig()
				if err != nil {
					return err
				}
				return config.Save(cfg, tok)
			},
		},
		&cobra.Command{
			Use:         "clear-token",
			Short:       "Remove the stored bearer token",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{"skipStore": "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.DeleteToken()
			},
		},
	)
	return cmd
}

// fileConfig loads the configuration without environment overrides so
// saving it does not persist them.
func fileConfig() (config.AppConfig, error) {
	cfg := config.Defaults()
	path, err := config.ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
