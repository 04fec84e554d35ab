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
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	applog "emojiart/internal/log"
)

const (
	BackupsDirName = "backups"

	fileKeyPrefix  = "k_"
	fileKeySuffix  = ".pref"
	backupStamp    = "20060102-150405.000000000"
	defaultBackups = 5
)

// renameFile is replaced in tests to fail the final step of a write.
var renameFile = os.Rename

// FilePrefs stores each key in its own file under Dir. Writes go to a temp
// file in the same directory which is fsynced and renamed over the target, so
// readers see either the old or the new value. The previous value is copied
// to a timestamped backup first.
type FilePrefs struct {
	Dir string
	// KeepBackups bounds the number of backups kept per key (<=0: default).
	KeepBackups int

	mu     sync.Mutex
	closed bool
}

// OpenFilePrefs creates dir (and its backups folder) if needed.
func OpenFilePrefs(dir string) (*FilePrefs, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("prefs directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	return &FilePrefs{Dir: dir}, nil
}

func fileNameForKey(key string) string {
	return fileKeyPrefix + url.PathEscape(key) + fileKeySuffix
}

func keyForFileName(name string) (string, bool) {
	if !strings.HasPrefix(name, fileKeyPrefix) || !strings.HasSuffix(name, fileKeySuffix) {
		return "", false
	}
	k, err := url.PathUnescape(strings.TrimSuffix(strings.TrimPrefix(name, fileKeyPrefix), fileKeySuffix))
	if err != nil {
		return "", false
	}
	return k, true
}

func (p *FilePrefs) path(key string) string { return filepath.Join(p.Dir, fileNameForKey(key)) }

// Get reads the current value. If the file exists but cannot be read, the
// latest backup is returned instead.
func (p *FilePrefs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, false, ErrClosed
	}
	b, err := os.ReadFile(p.path(key))
	if err == nil {
		return b, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "get").With(slog.String("key", key))
	l.Warn("read failed, trying latest backup", slog.Any("err", err))
	bak, ok, berr := p.latestBackup(key)
	if berr != nil || !ok {
		return nil, false, fmt.Errorf("read %s: %w; backup attempt: %v", key, err, berr)
	}
	return bak, true, nil
}

// Set replaces the value of key transactionally.
func (p *FilePrefs) Set(ctx context.Context, key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	target := p.path(key)
	bdir := filepath.Join(p.Dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(target); statErr == nil {
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(target), time.Now().UTC().Format(backupStamp)))
		if cerr := copyFile(target, bpath); cerr != nil {
			return fmt.Errorf("backup current value: %w", cerr)
		}
		p.pruneBackups(key)
	}

	temp := filepath.Join(p.Dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(target), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, value); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp value: %w", err)
	}
	if err := renameFile(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace value: %w", err)
	}
	return nil
}

// Delete removes the key and its backups.
func (p *FilePrefs) Delete(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := os.Remove(p.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	for _, b := range p.backupsOf(key) {
		_ = os.Remove(b)
	}
	return nil
}

// Keys lists stored keys with prefix in sorted order.
func (p *FilePrefs) Keys(ctx context.Context, prefix string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	ents, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, fmt.Errorf("read prefs dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if k, ok := keyForFileName(e.Name()); ok && strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Previous returns the most recent backup of key.
func (p *FilePrefs) Previous(ctx context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, false, ErrClosed
	}
	return p.latestBackup(key)
}

func (p *FilePrefs) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// backupsOf returns the backup files of key, oldest first. The timestamp in
// the name yields lexicographic order.
func (p *FilePrefs) backupsOf(key string) []string {
	bdir := filepath.Join(p.Dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		if isBackupOf(e.Name(), key) {
			out = append(out, filepath.Join(bdir, e.Name()))
		}
	}
	sort.Strings(out)
	return out
}

// isBackupOf reports whether name is exactly <file of key>.<stamp>.bak. Other
// keys may share the file name as a prefix, so the stamp must parse.
func isBackupOf(name, key string) bool {
	rest, ok := strings.CutPrefix(name, fileNameForKey(key)+".")
	if !ok {
		return false
	}
	stamp, ok := strings.CutSuffix(rest, ".bak")
	if !ok {
		return false
	}
	_, err := time.Parse(backupStamp, stamp)
	return err == nil
}

func (p *FilePrefs) latestBackup(key string) ([]byte, bool, error) {
	candidates := p.backupsOf(key)
	if len(candidates) == 0 {
		return nil, false, nil
	}
	b, err := os.ReadFile(candidates[len(candidates)-1])
	if err != nil {
		return nil, false, fmt.Errorf("read latest backup: %w", err)
	}
	return b, true, nil
}

func (p *FilePrefs) pruneBackups(key string) {
	keep := p.KeepBackups
	if keep <= 0 {
		keep = defaultBackups
	}
	all := p.backupsOf(key)
	for len(all) > keep {
		_ = os.Remove(all[0])
		all = all[1:]
	}
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
