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
	"errors"
	"strings"
)

// Key namespaces. Document blobs live under DocumentKeyPrefix+id, the list of
// documents of a named store under StoreKeyPrefix+name.
const (
	DocumentKeyPrefix = "EmojiArtDocument."
	StoreKeyPrefix    = "EmojiArtDocumentStore."
	PalettesKey       = "EmojiArtPalettes"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: closed")

// Prefs is a flat key/value preference area.
// Get reports ok=false for keys that were never set or have been deleted.
type Prefs interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Versioned is implemented by backends that keep previous values of a key.
// Previous returns the value that was stored before the current one.
type Versioned interface {
	Previous(ctx context.Context, key string) (value []byte, ok bool, err error)
}

// DocumentKey returns the preference key of a document identifier.
func DocumentKey(id string) string { return DocumentKeyPrefix + id }

// StoreKey returns the preference key of a named document store.
func StoreKey(name string) string { return StoreKeyPrefix + name }

// DocumentIDFromKey is the inverse of DocumentKey.
func DocumentIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, DocumentKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, DocumentKeyPrefix), true
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: empty key")
	}
	return nil
}
