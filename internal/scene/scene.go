/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the live, mutable scene graph for the active slide
// and its canonical JSON snapshot form. Exactly one scene is live at a
// time; the durable source of truth is the snapshot string stored on the
// slide, and the scene is rebuilt from it on every slide switch.
package scene

import "sync"

// DefaultBackground is used for new slides and when a snapshot omits the
// background field.
const DefaultBackground = "#ffffff"

// Scene is an ordered collection of objects plus a background color.
// Order is z-order: later objects draw on top.
//
// The scene is mutated on the caller's goroutine while snapshots and
// thumbnails are taken on the debounce timer goroutine, so all access to
// the object list goes through the mutex. Mutations of fields on a
// retained object pointer must go through Update so they serialize with
// Snapshot and View.
type Scene struct {
	mu         sync.Mutex
	objects    []Object
	background string
	onChange   func()
}

// New returns an empty scene with the given background ("" uses the default).
func New(background string) *Scene {
	if background == "" {
		background = DefaultBackground
	}
	return &Scene{background: background}
}

// SetOnChange registers a single callback fired on every structural or
// style mutation. The scene does not debounce; that is the caller's job.
func (s *Scene) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// notifyLocked grabs the callback under the lock; the caller invokes the
// returned function after unlocking so the callback never runs with the
// scene lock held.
func (s *Scene) notifyLocked() func() {
	if s.onChange != nil {
		return s.onChange
	}
	return func() {}
}

// Changed reports an in-place mutation of an object already in the scene.
// Prefer Update, which also serializes the mutation itself.
func (s *Scene) Changed() {
	s.mu.Lock()
	fn := s.notifyLocked()
	s.mu.Unlock()
	fn()
}

// Update runs fn under the scene lock and fires the change callback.
// Style patches through retained object pointers use this so they cannot
// interleave with a snapshot or render in progress.
func (s *Scene) Update(fn func()) {
	s.mu.Lock()
	fn()
	cb := s.notifyLocked()
	s.mu.Unlock()
	cb()
}

// View runs fn under the scene lock with the object list and background,
// for read-only traversals (rendering, encoding). fn must not call back
// into the scene.
func (s *Scene) View(fn func(objects []Object, background string)) {
	s.mu.Lock()
	fn(s.objects, s.background)
	s.mu.Unlock()
}

// Len returns the number of top-level objects.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Objects returns a copy of the object list in z-order.
func (s *Scene) Objects() []Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Object(nil), s.objects...)
}

// ObjectAt returns the object at z-index i, or nil if out of range.
func (s *Scene) ObjectAt(i int) Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.objects) {
		return nil
	}
	return s.objects[i]
}

// Add appends an object on top of the stack.
func (s *Scene) Add(o Object) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.objects = append(s.objects, o)
	fn := s.notifyLocked()
	s.mu.Unlock()
	fn()
}

// Remove deletes the given object; returns false if it is not in the scene.
func (s *Scene) Remove(o Object) bool {
	s.mu.Lock()
	for i, c := range s.objects {
		if c == o {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			fn := s.notifyLocked()
			s.mu.Unlock()
			fn()
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// Background returns the scene background color.
func (s *Scene) Background() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

// SetBackground changes the background color.
func (s *Scene) SetBackground(c string) {
	s.mu.Lock()
	if c == "" || c == s.background {
		s.mu.Unlock()
		return
	}
	s.background = c
	fn := s.notifyLocked()
	s.mu.Unlock()
	fn()
}

// HitTest returns the top-most object containing p, or nil.
func (s *Scene) HitTest(p Pt) Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].Hit(p) {
			return s.objects[i]
		}
	}
	return nil
}

// Bounds returns the union of all object bounds (zero rect when empty).
func (s *Scene) Bounds() Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b Rect
	first := true
	for _, o := range s.objects {
		ob := o.Bounds()
		if first {
			b = ob
			first = false
		} else {
			b = b.Union(ob)
		}
	}
	return b
}
