/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerSlide: 10, MinInterval: 10 * time.Millisecond})
	id := "slide-1"
	m.Push(Snapshot{SlideID: id, Data: "a", TS: time.Now()})
	m.Push(Snapshot{SlideID: id, Data: "b", TS: time.Now().Add(20 * time.Millisecond)})
	if _, slides, total := m.Stats(); slides != 1 || total != 2 {
		t.Fatalf("expected 1 slide and 2 snapshots, got slides=%d total=%d", slides, total)
	}
	s, ok := m.Undo(id, "current")
	if !ok || s.Data != "b" {
		t.Fatalf("undo expected 'b', got ok=%v data=%q", ok, s.Data)
	}
	s, ok = m.Redo(id, s.Data)
	if !ok || s.Data != "current" {
		t.Fatalf("redo expected 'current', got ok=%v data=%q", ok, s.Data)
	}
}

func TestCoalesce(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerSlide: 10, MinInterval: 50 * time.Millisecond})
	id := "slide-2"
	t0 := time.Now()
	m.Push(Snapshot{SlideID: id, Data: "1", TS: t0})
	m.Push(Snapshot{SlideID: id, Data: "2", TS: t0.Add(10 * time.Millisecond)}) // coalesce
	_, _, total := m.Stats()
	if total != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", total)
	}
	s, ok := m.Undo(id, "3")
	if !ok || s.Data != "2" {
		t.Fatalf("expected coalesced snapshot '2', got ok=%v data=%q", ok, s.Data)
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	id := "slide-3"
	m.Push(Snapshot{SlideID: id, Data: "a", TS: time.Now()})
	m.Push(Snapshot{SlideID: id, Data: "b", TS: time.Now().Add(10 * time.Millisecond)})
	if _, ok := m.Undo(id, "b"); !ok {
		t.Fatal("undo failed")
	}
	m.Push(Snapshot{SlideID: id, Data: "c", TS: time.Now().Add(20 * time.Millisecond)})
	if _, ok := m.Redo(id, "c"); ok {
		t.Fatal("redo should be cleared by a new push")
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxPerSlide: 2, MinInterval: 1 * time.Millisecond})
	id := "slide-4"
	for i := 0; i < 10; i++ {
		m.Push(Snapshot{SlideID: id, Data: "xxxxx", TS: time.Now().Add(time.Duration(i) * time.Millisecond)})
	}
	_, _, total := m.Stats()
	if total > 2 {
		t.Fatalf("expected MaxPerSlide cap to limit to 2, got %d", total)
	}
}

func TestClearSlide(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	id := "slide-5"
	m.Push(Snapshot{SlideID: id, Data: "a", TS: time.Now()})
	m.ClearSlide(id)
	if _, ok := m.Undo(id, "a"); ok {
		t.Fatal("cleared slide still has undo entries")
	}
	if total, _, _ := m.Stats(); total != 0 {
		t.Fatalf("totalBytes = %d after clear", total)
	}
}
