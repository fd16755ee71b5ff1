/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package adapter keeps the live editing scene and the document store in
// sync. Exactly one slide is bound to the scene at a time; edits on the
// scene are captured back into that slide's record after a debounce
// window, and switching slides flushes first so nothing is lost.
package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	applog "goslide/internal/log"
	"goslide/internal/scene"
	"goslide/internal/store"
)

// DefaultDebounce is the quiet period before scene edits are persisted
// into the store.
const DefaultDebounce = 500 * time.Millisecond

// Thumbnailer renders a small preview of a scene. Implemented by the
// software rasterizer; nil disables thumbnail capture.
type Thumbnailer interface {
	Thumbnail(s *scene.Scene, canvasW, canvasH int) (string, error)
}

// Options configures a SceneAdapter.
type Options struct {
	CanvasWidth  int
	CanvasHeight int
	Debounce     time.Duration
}

// SceneAdapter mediates between one editing scene and the store.
type SceneAdapter struct {
	log    *slog.Logger
	store  *store.Store
	thumbs Thumbnailer
	opts   Options
	deb    *Debouncer

	mu      sync.Mutex // guards cur and slideID against the timer goroutine
	cur     *scene.Scene
	slideID string
}

// New builds an adapter over st. Zero option fields get defaults
// (1200x800 canvas, 500ms debounce).
func New(st *store.Store, thumbs Thumbnailer, opts Options) *SceneAdapter {
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = 1200
	}
	if opts.CanvasHeight <= 0 {
		opts.CanvasHeight = 800
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	a := &SceneAdapter{
		log:    applog.WithComponent("adapter"),
		store:  st,
		thumbs: thumbs,
		opts:   opts,
	}
	a.deb = NewDebouncer(opts.Debounce, a.capture)
	return a
}

// Scene returns the currently bound scene, or nil when no slide is bound.
func (a *SceneAdapter) Scene() *scene.Scene {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cur
}

// BoundSlideID returns the id of the slide the scene reflects.
func (a *SceneAdapter) BoundSlideID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.slideID
}

// CanvasSize returns the logical editing canvas dimensions.
func (a *SceneAdapter) CanvasSize() (int, int) { return a.opts.CanvasWidth, a.opts.CanvasHeight }

// ActivateSlide flushes any pending capture for the current slide, then
// loads the named slide's canvas data into a fresh scene and marks it
// active in the store. Corrupt canvas data is logged and replaced with an
// empty scene rather than failing the switch.
func (a *SceneAdapter) ActivateSlide(id string) error {
	a.deb.Flush()

	sl, ok := a.store.Slide(id)
	if !ok {
		return fmt.Errorf("activate slide %s: not found", id)
	}
	sc, err := scene.Decode(sl.CanvasData)
	if err != nil {
		if !errors.Is(err, scene.ErrCorrupt) {
			return fmt.Errorf("activate slide %s: %w", id, err)
		}
		a.log.Warn("corrupt canvas data, starting with empty scene", slog.String("slide", id), slog.Any("err", err))
		sc = scene.New("")
	}
	a.store.SetActiveSlide(id)
	a.mu.Lock()
	if a.cur != nil {
		// The old scene must stop feeding the debouncer, or a caller
		// still holding it could capture into the new slide's record.
		a.cur.SetOnChange(nil)
	}
	a.slideID = id
	a.cur = sc
	a.mu.Unlock()
	sc.SetOnChange(a.deb.Trigger)
	return nil
}

// Deactivate flushes and unbinds the scene. Used when the document is
// cleared or the bound slide was deleted.
func (a *SceneAdapter) Deactivate() {
	a.deb.Flush()
	a.mu.Lock()
	if a.cur != nil {
		a.cur.SetOnChange(nil)
	}
	a.cur = nil
	a.slideID = ""
	a.mu.Unlock()
}

// Flush persists pending scene changes immediately.
func (a *SceneAdapter) Flush() { a.deb.Flush() }

// Pending reports whether unsaved scene changes are awaiting capture.
func (a *SceneAdapter) Pending() bool { return a.deb.Pending() }

// Close stops the debounce timer after a final flush.
func (a *SceneAdapter) Close() {
	a.deb.Flush()
	a.deb.Stop()
}

// capture snapshots the bound scene into its slide record, along with a
// fresh thumbnail when a renderer is attached.
func (a *SceneAdapter) capture() {
	a.mu.Lock()
	sc, id := a.cur, a.slideID
	a.mu.Unlock()
	if sc == nil || id == "" {
		return
	}
	snap, err := sc.Snapshot()
	if err != nil {
		a.log.Error("snapshot failed, slide not updated", slog.String("slide", id), slog.Any("err", err))
		return
	}
	patch := store.UpdateSlidePatch{CanvasData: &snap}
	if a.thumbs != nil {
		th, err := a.thumbs.Thumbnail(sc, a.opts.CanvasWidth, a.opts.CanvasHeight)
		if err != nil {
			a.log.Warn("thumbnail render failed", slog.String("slide", id), slog.Any("err", err))
		} else {
			patch.Thumbnail = &th
		}
	}
	a.store.UpdateSlide(id, patch)
}
