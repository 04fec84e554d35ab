/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"fmt"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a preference backend.
type Options struct {
	Driver string // default: file
	Path   string // directory for file, database file for sqlite
	DSN    string // postgres connection string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Prefs, error) {
	switch d := strings.ToLower(strings.TrimSpace(opts.Driver)); d {
	case "", DriverFile:
		return OpenFilePrefs(opts.Path)
	case DriverMemory:
		return NewMemoryPrefs(), nil
	case DriverSQLite:
		s, _, err := OpenOrRebuildSQLitePrefs(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres, "pg", "pgx":
		return OpenPostgresPrefs(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
