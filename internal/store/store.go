/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store holds the document state: the ordered slide list, the
// active slide pointer and the dirty/save bookkeeping. All operations are
// synchronous state transitions with no I/O; persistence and the live
// scene live elsewhere. The store never inspects slide canvas data, it
// only carries the opaque snapshot string.
package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"goslide/internal/domain"
	applog "goslide/internal/log"
	"goslide/internal/scene"
)

const untitledName = "Untitled Presentation"

// Store is the single source of truth for the open document. It is
// constructor-injected wherever document state is needed; there is no
// package-level instance.
//
// Invariant: exactly one slide is active iff the document is non-empty.
type Store struct {
	log *slog.Logger
	now func() int64

	// mu guards the document state: reads and writes arrive both from
	// the caller's goroutine and from the scene adapter's debounce
	// timer goroutine.
	mu          sync.RWMutex
	doc         domain.Document
	activeID    string
	dirty       bool
	lastSavedAt time.Time
}

// New returns a store holding an empty, untitled document.
func New() *Store {
	s := &Store{
		log: applog.WithComponent("store"),
		now: domain.Now,
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	ts := s.now()
	s.doc = domain.Document{
		Name:      untitledName,
		Slides:    nil,
		Version:   domain.FormatVersion,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.activeID = ""
	s.dirty = false
	s.lastSavedAt = time.Time{}
}

// Document returns a deep copy of the current document.
func (s *Store) Document() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Name returns the document name.
func (s *Store) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Name
}

// Rename changes the document name and marks the document dirty.
func (s *Store) Rename(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" || name == s.doc.Name {
		return
	}
	s.doc.Name = name
	s.touch()
}

// SlideCount returns the number of slides.
func (s *Store) SlideCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc.Slides)
}

// Slides returns a copy of the slide list in display order.
func (s *Store) Slides() []domain.Slide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Slide(nil), s.doc.Slides...)
}

// ActiveSlideID returns the id of the active slide, or "" when the
// document is empty.
func (s *Store) ActiveSlideID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveSlide returns the active slide, if any.
func (s *Store) ActiveSlide() (domain.Slide, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.doc.SlideIndex(s.activeID); i >= 0 {
		return s.doc.Slides[i], true
	}
	return domain.Slide{}, false
}

// Slide returns the slide with the given id, if present.
func (s *Store) Slide(id string) (domain.Slide, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.doc.SlideIndex(id); i >= 0 {
		return s.doc.Slides[i], true
	}
	return domain.Slide{}, false
}

// IsDirty reports unsaved changes since the last save or load.
func (s *Store) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// LastSavedAt returns the time of the last successful save or load; the
// zero time means never.
func (s *Store) LastSavedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSavedAt
}

// AddSlide appends a new slide with an empty scene snapshot and returns
// its id. If no slide was active, the new slide becomes active.
func (s *Store) AddSlide(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.now()
	if name == "" {
		name = fmt.Sprintf("Slide %d", len(s.doc.Slides)+1)
	}
	sl := domain.Slide{
		ID:         uuid.NewString(),
		Name:       name,
		CanvasData: scene.EmptySnapshot(),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	s.doc.Slides = append(s.doc.Slides, sl)
	if s.activeID == "" {
		s.activeID = sl.ID
	}
	s.touch()
	s.log.Debug("slide added", slog.String("id", sl.ID), slog.Int("count", len(s.doc.Slides)))
	return sl.ID
}

// DeleteSlide removes the slide with the given id. Deleting the sole
// remaining slide is refused with ErrLastSlide; an unknown id is a no-op.
// If the deleted slide was active, the slide at max(0, index-1) becomes
// active.
func (s *Store) DeleteSlide(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.doc.SlideIndex(id)
	if idx < 0 {
		return nil
	}
	if len(s.doc.Slides) == 1 {
		return ErrLastSlide
	}
	wasActive := s.activeID == id
	s.doc.Slides = append(s.doc.Slides[:idx], s.doc.Slides[idx+1:]...)
	if wasActive {
		ni := idx - 1
		if ni < 0 {
			ni = 0
		}
		s.activeID = s.doc.Slides[ni].ID
	}
	s.touch()
	s.log.Debug("slide deleted", slog.String("id", id), slog.Int("count", len(s.doc.Slides)))
	return nil
}

// SetActiveSlide activates the slide with the given id. An unknown id
// leaves the state unchanged.
func (s *Store) SetActiveSlide(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.SlideIndex(id) < 0 {
		return
	}
	s.activeID = id
}

// UpdateSlidePatch is a partial update for a slide. Nil fields are left
// untouched.
type UpdateSlidePatch struct {
	CanvasData *string
	Name       *string
	Thumbnail  *string
}

// UpdateSlide applies a partial patch to a slide. CanvasData or Name
// changes mark the document dirty; a thumbnail-only patch does not.
// An unknown id is a no-op.
func (s *Store) UpdateSlide(id string, patch UpdateSlidePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.doc.SlideIndex(id)
	if idx < 0 {
		return
	}
	sl := &s.doc.Slides[idx]
	changed := false
	if patch.CanvasData != nil {
		sl.CanvasData = *patch.CanvasData
		changed = true
	}
	if patch.Name != nil {
		sl.Name = *patch.Name
		changed = true
	}
	if patch.Thumbnail != nil {
		sl.Thumbnail = *patch.Thumbnail
	}
	sl.UpdatedAt = s.now()
	if changed {
		s.touch()
	}
}

// DuplicateSlide inserts a deep copy right after the source slide with a
// fresh id and a " (Copy)" name suffix. The active slide is unchanged.
// Returns the new id, or "" for an unknown source.
func (s *Store) DuplicateSlide(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.doc.SlideIndex(id)
	if idx < 0 {
		return ""
	}
	ts := s.now()
	dup := s.doc.Slides[idx]
	dup.ID = uuid.NewString()
	dup.Name += " (Copy)"
	dup.CreatedAt = ts
	dup.UpdatedAt = ts
	s.doc.Slides = append(s.doc.Slides, domain.Slide{})
	copy(s.doc.Slides[idx+2:], s.doc.Slides[idx+1:])
	s.doc.Slides[idx+1] = dup
	s.touch()
	return dup.ID
}

// ReorderSlides moves the slide at from to position to. Out-of-range
// indices are a no-op. The active slide follows its id.
func (s *Store) ReorderSlides(from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.doc.Slides)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	sl := s.doc.Slides[from]
	rest := append(s.doc.Slides[:from], s.doc.Slides[from+1:]...)
	s.doc.Slides = append(rest[:to], append([]domain.Slide{sl}, rest[to:]...)...)
	s.touch()
}

// LoadDocument replaces the whole document, activates the first slide (or
// none when empty), clears the dirty flag and stamps lastSavedAt.
func (s *Store) LoadDocument(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	if len(s.doc.Slides) > 0 {
		s.activeID = s.doc.Slides[0].ID
	} else {
		s.activeID = ""
	}
	s.dirty = false
	s.lastSavedAt = time.Now()
	s.log.Info("document loaded", slog.String("name", s.doc.Name), slog.Int("slides", len(s.doc.Slides)))
}

// ClearDocument resets to an empty, untitled document.
func (s *Store) ClearDocument() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.log.Info("document cleared")
}

// MarkSaved clears the dirty flag and stamps lastSavedAt.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
	s.lastSavedAt = time.Now()
}

func (s *Store) touch() {
	s.dirty = true
	s.doc.UpdatedAt = s.now()
}
