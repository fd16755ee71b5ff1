/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package docfile persists presentation documents on disk. A document is
// a single deck file next to a hidden sidecar directory holding backups
// and caches. Saves are transactional: write to a temp file, then rename
// over the target, with a timestamped backup of the previous version
// taken first.
package docfile

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"goslide/internal/codec"
	"goslide/internal/domain"
)

const (
	// DefaultFileName is the deck file name used when only a directory
	// is given.
	DefaultFileName = "deck.json"
	// SidecarDirName is the hidden per-deck directory for backups and
	// caches.
	SidecarDirName = ".gsl"
	// BackupsDirName lives inside the sidecar directory.
	BackupsDirName = "backups"
)

// Handle tracks where a document lives on disk.
type Handle struct {
	Path string
	Doc  domain.Document
}

// SidecarDir returns the sidecar directory for a deck file path.
func SidecarDir(deckPath string) string {
	return filepath.Join(filepath.Dir(deckPath), SidecarDirName)
}

func backupsDir(deckPath string) string {
	return filepath.Join(SidecarDir(deckPath), BackupsDirName)
}

// Create writes a new deck file at path and scaffolds the sidecar
// directory. path may name a directory, in which case the default file
// name is used inside it.
func Create(path string, doc domain.Document) (*Handle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("deck path is required")
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create deck directory: %w", err)
	}
	h := &Handle{Path: path, Doc: doc}
	if err := h.Save(); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads a deck file. When the file is unreadable or fails
// validation, the latest backup is tried before giving up; a validation
// failure with no usable backup comes back as *codec.ValidationError.
func Open(path string) (*Handle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		doc, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open deck: %w; backup attempt: %v", err, berr)
		}
		return &Handle{Path: path, Doc: doc}, nil
	}
	doc, derr := codec.Decode(b)
	if derr != nil {
		bdoc, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, derr
		}
		return &Handle{Path: path, Doc: bdoc}, nil
	}
	return &Handle{Path: path, Doc: doc}, nil
}

// Save writes the handle's document to its path with transactional
// semantics, keeping a timestamped backup of the previous file.
func (h *Handle) Save() error {
	if h == nil || h.Path == "" {
		return errors.New("invalid deck handle: missing path")
	}
	data, err := codec.Encode(h.Doc)
	if err != nil {
		return fmt.Errorf("encode deck: %w", err)
	}

	bdir := backupsDir(h.Path)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.Path); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", filepath.Base(h.Path), stamp)
		if cerr := copyFile(h.Path, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current deck: %w", cerr)
		}
	}

	dir := filepath.Dir(h.Path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(h.Path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp deck: %w", werr)
	}
	// replace by removing destination first so the rename works on Windows
	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if rerr := os.Rename(temp, h.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace deck: %w", rerr)
	}
	return nil
}

// SaveAs writes the document to a new path and repoints the handle.
func (h *Handle) SaveAs(newPath string) error {
	if h == nil {
		return errors.New("nil deck handle")
	}
	if newPath == "" {
		return errors.New("new path is empty")
	}
	if fi, err := os.Stat(newPath); err == nil && fi.IsDir() {
		newPath = filepath.Join(newPath, DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create deck directory: %w", err)
	}
	h.Path = newPath
	return h.Save()
}

// CrashSnapshot writes the handle's in-memory document into the
// sidecar backups directory without touching the deck file itself.
// It is the emergency save used by the panic handler, so it avoids
// the transactional dance and just writes one new file.
func CrashSnapshot(h *Handle) (string, error) {
	if h == nil || h.Path == "" {
		return "", errors.New("invalid deck handle: missing path")
	}
	data, err := codec.Encode(h.Doc)
	if err != nil {
		return "", fmt.Errorf("encode deck: %w", err)
	}
	bdir := backupsDir(h.Path)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", filepath.Base(h.Path), stamp))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// Backups lists the backup files for a deck path, oldest first.
func Backups(deckPath string) ([]string, error) {
	ents, err := os.ReadDir(backupsDir(deckPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	base := filepath.Base(deckPath)
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(backupsDir(deckPath), name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func openFromLatestBackup(deckPath string) (domain.Document, error) {
	var zero domain.Document
	candidates, err := Backups(deckPath)
	if err != nil {
		return zero, err
	}
	if len(candidates) == 0 {
		return zero, errors.New("no backups found")
	}
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return zero, fmt.Errorf("read latest backup: %w", err)
	}
	doc, derr := codec.Decode(b)
	if derr != nil {
		return zero, fmt.Errorf("parse latest backup: %w", derr)
	}
	return doc, nil
}

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
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

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
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
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
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}
