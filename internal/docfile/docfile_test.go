/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package docfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"goslide/internal/codec"
	"goslide/internal/domain"
	"goslide/internal/scene"
)

func sampleDoc(name string) domain.Document {
	ts := domain.Now()
	return domain.Document{
		Name: name,
		Slides: []domain.Slide{
			{ID: "s1", Name: "Slide 1", CanvasData: scene.EmptySnapshot(), CreatedAt: ts, UpdatedAt: ts},
		},
		Version:   domain.FormatVersion,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestCreateOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talk.json")

	h, err := Create(path, sampleDoc("My Talk"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := Open(h.Path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Doc.Name != "My Talk" || len(got.Doc.Slides) != 1 {
		t.Fatalf("loaded doc = %+v", got.Doc)
	}
}

func TestCreateInDirectoryUsesDefaultName(t *testing.T) {
	dir := t.TempDir()
	h, err := Create(dir, sampleDoc("Deck"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if filepath.Base(h.Path) != DefaultFileName {
		t.Fatalf("path = %s", h.Path)
	}
}

func TestSaveKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	h, err := Create(filepath.Join(dir, "deck.json"), sampleDoc("v1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.Doc.Name = "v2"
	if err := h.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	backups, err := Backups(h.Path)
	if err != nil {
		t.Fatalf("Backups: %v", err)
	}
	if len(backups) == 0 {
		t.Fatal("expected at least one backup")
	}
}

func TestOpenRecoversFromBackup(t *testing.T) {
	dir := t.TempDir()
	h, err := Create(filepath.Join(dir, "deck.json"), sampleDoc("good"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.Doc.Name = "newer"
	if err := h.Save(); err != nil { // backs up the "good" version
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(h.Path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	got, err := Open(h.Path)
	if err != nil {
		t.Fatalf("Open after corruption: %v", err)
	}
	if got.Doc.Name != "good" {
		t.Fatalf("recovered doc = %q", got.Doc.Name)
	}
}

func TestOpenCorruptWithoutBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.json")
	if err := os.WriteFile(path, []byte(`{"name":1}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Open(path)
	var verr *codec.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *codec.ValidationError, got %v", err)
	}
}

func TestSaveAsRepointsHandle(t *testing.T) {
	dir := t.TempDir()
	h, err := Create(filepath.Join(dir, "a", "deck.json"), sampleDoc("Deck"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	newPath := filepath.Join(dir, "b", "copy.json")
	if err := h.SaveAs(newPath); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if h.Path != newPath {
		t.Fatalf("handle path = %s", h.Path)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatalf("new file missing: %v", err)
	}
}
