/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor wires the document store, scene adapter, tool
// interpreter and format applicator into one editing session. It owns
// the cross-component ordering rules: pending scene writes are flushed
// before slide switches, and async image inserts are dropped when the
// initiating slide is no longer active.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"goslide/internal/adapter"
	"goslide/internal/cache"
	"goslide/internal/codec"
	"goslide/internal/config"
	"goslide/internal/docfile"
	"goslide/internal/format"
	"goslide/internal/imageio"
	applog "goslide/internal/log"
	"goslide/internal/render"
	"goslide/internal/scene"
	"goslide/internal/store"
	"goslide/internal/tool"
	"goslide/internal/undo"
)

// Session is one open presentation being edited.
type Session struct {
	log *slog.Logger

	Store   *store.Store
	Adapter *adapter.SceneAdapter
	Tools   *tool.Interpreter
	Formats *format.Applicator
	Undo    *undo.Manager

	raster *render.Raster
	loader imageio.Loader

	file      *docfile.Handle
	sidecar   *cache.Cache
	selection scene.Object
}

// New builds a session from the app configuration. The document starts
// with a single empty slide, bound to the live scene.
func New(cfg *config.AppConfig) (*Session, error) {
	if cfg == nil {
		d := config.Defaults()
		cfg = &d
	}
	s := &Session{
		log:    applog.WithComponent("editor"),
		Store:  store.New(),
		raster: render.NewRaster(),
		Undo:   undo.NewManager(undo.Config{}),
	}
	s.Adapter = adapter.New(s.Store, s.raster, adapter.Options{
		CanvasWidth:  cfg.Canvas.Width,
		CanvasHeight: cfg.Canvas.Height,
		Debounce:     time.Duration(cfg.Canvas.DebounceMs) * time.Millisecond,
	})
	s.Tools = tool.New(float64(cfg.Canvas.Width), float64(cfg.Canvas.Height))
	s.Formats = format.New(s.Tools)

	id := s.Store.AddSlide("")
	if err := s.Adapter.ActivateSlide(id); err != nil {
		return nil, err
	}
	return s, nil
}

// Close flushes pending work and releases resources.
func (s *Session) Close() {
	s.Adapter.Close()
	if s.sidecar != nil {
		_ = s.sidecar.Close()
		s.sidecar = nil
	}
}

// ActiveScene returns the live scene of the active slide.
func (s *Session) ActiveScene() *scene.Scene { return s.Adapter.Scene() }

// SelectSlide flushes the current slide and binds another one.
func (s *Session) SelectSlide(id string) error {
	return s.Adapter.ActivateSlide(id)
}

// AddSlide appends a slide and makes it active.
func (s *Session) AddSlide(name string) (string, error) {
	id := s.Store.AddSlide(name)
	if err := s.Adapter.ActivateSlide(id); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteSlide removes a slide. When the bound slide goes away the
// store's reassigned active slide is bound instead. The slide's undo
// history and cached thumbnails are dropped.
func (s *Session) DeleteSlide(id string) error {
	wasBound := id == s.Adapter.BoundSlideID()
	if err := s.Store.DeleteSlide(id); err != nil {
		return err
	}
	s.Undo.ClearSlide(id)
	if s.sidecar != nil {
		_ = s.sidecar.DeleteThumbs(context.Background(), id)
	}
	if wasBound {
		// pending edits of the deleted slide are dropped with it
		s.Adapter.Deactivate()
		s.selection = nil
		return s.Adapter.ActivateSlide(s.Store.ActiveSlideID())
	}
	return nil
}

// DuplicateSlide copies a slide and selects the copy.
func (s *Session) DuplicateSlide(id string) (string, error) {
	s.Adapter.Flush()
	copyID := s.Store.DuplicateSlide(id)
	if copyID == "" {
		return "", fmt.Errorf("duplicate slide %s: not found", id)
	}
	if err := s.Adapter.ActivateSlide(copyID); err != nil {
		return "", err
	}
	return copyID, nil
}

// PointerDown routes a canvas click through the tool interpreter. A
// creation pushes the pre-click state onto the undo stack.
func (s *Session) PointerDown(x, y float64) tool.Result {
	sc := s.Adapter.Scene()
	if sc == nil {
		return tool.Result{}
	}
	before, _ := sc.Snapshot()
	res := s.Tools.PointerDown(sc, scene.Pt{X: x, Y: y})
	if res.Created != nil {
		s.pushUndo(before)
		s.selection = res.Created
	}
	return res
}

// Selection handling. The render surface drives this; the session only
// remembers the current target for format operations.

func (s *Session) SetSelection(o scene.Object) { s.selection = o }
func (s *Session) Selection() scene.Object     { return s.selection }
func (s *Session) ClearSelection()             { s.selection = nil }

// DeleteSelection removes the selected object from the scene.
func (s *Session) DeleteSelection() bool {
	sc := s.Adapter.Scene()
	if sc == nil || s.selection == nil {
		return false
	}
	before, _ := sc.Snapshot()
	if !sc.Remove(s.selection) {
		return false
	}
	s.pushUndo(before)
	s.selection = nil
	return true
}

// ApplyTextFormat patches the selection if it is a text box. The false
// return is the no-op notice for other selections.
func (s *Session) ApplyTextFormat(p format.TextPatch) bool {
	sc := s.Adapter.Scene()
	if sc == nil || s.selection == nil {
		return false
	}
	before, _ := sc.Snapshot()
	if !s.Formats.ApplyText(sc, s.selection, p) {
		return false
	}
	s.pushUndo(before)
	return true
}

// ApplyShapeFormat patches the selection's shapes and records the style
// as the default for new shapes.
func (s *Session) ApplyShapeFormat(p format.ShapePatch) bool {
	sc := s.Adapter.Scene()
	if sc == nil || s.selection == nil {
		return false
	}
	before, _ := sc.Snapshot()
	if !s.Formats.ApplyShape(sc, s.selection, p) {
		return false
	}
	s.pushUndo(before)
	return true
}

func (s *Session) pushUndo(snapshot string) {
	id := s.Adapter.BoundSlideID()
	if id == "" {
		return
	}
	s.Undo.Push(undo.Snapshot{SlideID: id, Data: snapshot, TS: time.Now()})
}

// UndoStep restores the slide to the state before its latest recorded
// mutation.
func (s *Session) UndoStep() bool {
	id, current, ok := s.currentSlideState()
	if !ok {
		return false
	}
	snap, ok := s.Undo.Undo(id, current)
	if !ok {
		return false
	}
	return s.restoreSnapshot(id, snap.Data)
}

// RedoStep re-applies the last undone state.
func (s *Session) RedoStep() bool {
	id, current, ok := s.currentSlideState()
	if !ok {
		return false
	}
	snap, ok := s.Undo.Redo(id, current)
	if !ok {
		return false
	}
	return s.restoreSnapshot(id, snap.Data)
}

// currentSlideState flushes pending scene edits and returns the bound
// slide's persisted state, the counterpart pushed onto the opposite
// stack by an undo or redo step.
func (s *Session) currentSlideState() (id, data string, ok bool) {
	id = s.Adapter.BoundSlideID()
	if id == "" {
		return "", "", false
	}
	s.Adapter.Flush()
	slide, found := s.Store.Slide(id)
	if !found {
		return "", "", false
	}
	return id, slide.CanvasData, true
}

func (s *Session) restoreSnapshot(id, data string) bool {
	s.Store.UpdateSlide(id, store.UpdateSlidePatch{CanvasData: &data})
	if err := s.Adapter.ActivateSlide(id); err != nil {
		s.log.Error("restore snapshot failed", slog.String("slide", id), slog.Any("err", err))
		return false
	}
	s.selection = nil
	return true
}

// ImageInsert is a pending side-channel insertion. It remembers which
// slide initiated the request so a late completion cannot land on the
// wrong slide.
type ImageInsert struct {
	s       *Session
	slideID string
	at      *scene.Pt
}

// BeginImageInsert opens the image side channel for the active slide.
// at is the drop position, or nil for canvas center.
func (s *Session) BeginImageInsert(at *scene.Pt) *ImageInsert {
	return &ImageInsert{s: s, slideID: s.Adapter.BoundSlideID(), at: at}
}

// Complete places the loaded image if the initiating slide is still
// active; a stale completion is discarded and reports false.
func (p *ImageInsert) Complete(loaded *imageio.Loaded) bool {
	s := p.s
	if p.slideID == "" || p.slideID != s.Adapter.BoundSlideID() {
		s.log.Info("discarding stale image insert", slog.String("slide", p.slideID))
		return false
	}
	sc := s.Adapter.Scene()
	if sc == nil {
		return false
	}
	before, _ := sc.Snapshot()
	img := s.Tools.InsertImage(sc, loaded.DataURI, loaded.DisplayWidth, loaded.DisplayHeight, p.at)
	s.pushUndo(before)
	s.selection = img
	return true
}

// InsertImageFromSource loads src (URL, file path or data URI) and
// completes the pending insert. Load failures come back as
// *imageio.IOError; a stale completion is not an error, just false.
func (s *Session) InsertImageFromSource(ctx context.Context, src string, at *scene.Pt) (bool, error) {
	pending := s.BeginImageInsert(at)
	loaded, err := s.loader.Load(ctx, src)
	if err != nil {
		return false, err
	}
	return pending.Complete(loaded), nil
}

// NewDocument discards the current document and starts over with one
// empty slide.
func (s *Session) NewDocument() error {
	s.Adapter.Deactivate()
	s.Store.ClearDocument()
	s.file = nil
	s.closeSidecar()
	s.selection = nil
	id := s.Store.AddSlide("")
	return s.Adapter.ActivateSlide(id)
}

// Open loads a deck file, replacing the current document.
func (s *Session) Open(path string) error {
	h, err := docfile.Open(path)
	if err != nil {
		return err
	}
	s.Adapter.Deactivate()
	s.Store.LoadDocument(h.Doc)
	s.file = h
	s.selection = nil
	s.reopenSidecar(h.Path)
	if id := s.Store.ActiveSlideID(); id != "" {
		return s.Adapter.ActivateSlide(id)
	}
	return nil
}

// Save writes the document to its file, flushing pending scene changes
// first. With no file attached yet it fails; use SaveAs.
func (s *Session) Save() error {
	if s.file == nil {
		return errors.New("document has no file; use save-as")
	}
	s.Adapter.Flush()
	s.file.Doc = s.Store.Document()
	if err := s.file.Save(); err != nil {
		return err
	}
	s.Store.MarkSaved()
	s.autosave()
	return nil
}

// SaveAs writes the document to a new path and attaches the session to
// it.
func (s *Session) SaveAs(path string) error {
	s.Adapter.Flush()
	if s.file == nil {
		h, err := docfile.Create(path, s.Store.Document())
		if err != nil {
			return err
		}
		s.file = h
	} else {
		s.file.Doc = s.Store.Document()
		if err := s.file.SaveAs(path); err != nil {
			return err
		}
	}
	s.Store.MarkSaved()
	s.reopenSidecar(s.file.Path)
	s.autosave()
	return nil
}

// RecoverAutosave replaces the document with the latest sidecar
// autosave, e.g. after a crash. Returns false when the sidecar has no
// snapshot to offer.
func (s *Session) RecoverAutosave() (bool, error) {
	if s.sidecar == nil {
		return false, nil
	}
	data, err := s.sidecar.LatestAutosave(context.Background())
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	doc, err := codec.Decode(data)
	if err != nil {
		return false, fmt.Errorf("autosave snapshot: %w", err)
	}
	s.Adapter.Deactivate()
	s.Store.LoadDocument(doc)
	s.selection = nil
	if id := s.Store.ActiveSlideID(); id != "" {
		if aerr := s.Adapter.ActivateSlide(id); aerr != nil {
			return true, aerr
		}
	}
	return true, nil
}

// FilePath returns the attached deck file path, or "".
func (s *Session) FilePath() string {
	if s.file == nil {
		return ""
	}
	return s.file.Path
}

// autosave drops an encoded copy of the document into the sidecar cache.
func (s *Session) autosave() {
	if s.sidecar == nil {
		return
	}
	data, err := codec.Encode(s.Store.Document())
	if err != nil {
		s.log.Warn("autosave encode failed", slog.Any("err", err))
		return
	}
	if err := s.sidecar.PutAutosave(context.Background(), data, 10); err != nil {
		s.log.Warn("autosave write failed", slog.Any("err", err))
	}
}

func (s *Session) reopenSidecar(deckPath string) {
	s.closeSidecar()
	c, err := cache.Open(deckPath)
	if err != nil {
		s.log.Warn("sidecar cache unavailable", slog.Any("err", err))
		return
	}
	s.sidecar = c
}

func (s *Session) closeSidecar() {
	if s.sidecar != nil {
		_ = s.sidecar.Close()
		s.sidecar = nil
	}
}
