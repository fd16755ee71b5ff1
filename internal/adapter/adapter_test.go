/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package adapter

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"goslide/internal/scene"
	"goslide/internal/store"
)

type fakeThumbs struct{ calls int32 }

func (f *fakeThumbs) Thumbnail(s *scene.Scene, w, h int) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return "data:image/png;base64,thumb", nil
}

func TestDebouncerCoalesces(t *testing.T) {
	var n int32
	d := NewDebouncer(20*time.Millisecond, func() { atomic.AddInt32(&n, 1) })
	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&n); got != 1 {
		t.Fatalf("callback ran %d times, want 1", got)
	}
}

func TestDebouncerFlushRunsPendingOnce(t *testing.T) {
	var n int32
	d := NewDebouncer(time.Hour, func() { atomic.AddInt32(&n, 1) })
	d.Trigger()
	d.Flush()
	d.Flush() // nothing pending now
	if got := atomic.LoadInt32(&n); got != 1 {
		t.Fatalf("callback ran %d times, want 1", got)
	}
}

func TestDebouncerStopCancels(t *testing.T) {
	var n int32
	d := NewDebouncer(10*time.Millisecond, func() { atomic.AddInt32(&n, 1) })
	d.Trigger()
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&n); got != 0 {
		t.Fatalf("callback ran %d times, want 0", got)
	}
}

func newAdapter(t *testing.T) (*store.Store, *SceneAdapter, *fakeThumbs) {
	t.Helper()
	st := store.New()
	th := &fakeThumbs{}
	a := New(st, th, Options{Debounce: time.Hour}) // flush manually in tests
	t.Cleanup(a.Close)
	return st, a, th
}

func TestActivateAndCapture(t *testing.T) {
	st, a, th := newAdapter(t)
	id := st.AddSlide("")
	if err := a.ActivateSlide(id); err != nil {
		t.Fatalf("ActivateSlide: %v", err)
	}

	a.Scene().Add(&scene.Rectangle{Left: 10, Top: 10, Width: 50, Height: 40, Fill: "#ff0000"})
	if !a.Pending() {
		t.Fatal("expected pending capture after scene change")
	}
	a.Flush()

	sl, _ := st.Slide(id)
	if !strings.Contains(sl.CanvasData, `"rect"`) {
		t.Fatalf("canvas data not captured: %s", sl.CanvasData)
	}
	if sl.Thumbnail == "" {
		t.Fatal("thumbnail not captured")
	}
	if atomic.LoadInt32(&th.calls) != 1 {
		t.Fatalf("thumbnailer called %d times", th.calls)
	}
	if !st.IsDirty() {
		t.Fatal("store should be dirty after capture")
	}
}

func TestSwitchFlushesPreviousSlide(t *testing.T) {
	st, a, _ := newAdapter(t)
	first := st.AddSlide("")
	second := st.AddSlide("")
	if err := a.ActivateSlide(first); err != nil {
		t.Fatalf("ActivateSlide: %v", err)
	}

	a.Scene().Add(&scene.Circle{Left: 0, Top: 0, Radius: 20, Fill: "#00ff00"})
	if err := a.ActivateSlide(second); err != nil {
		t.Fatalf("ActivateSlide: %v", err)
	}

	sl, _ := st.Slide(first)
	if !strings.Contains(sl.CanvasData, `"circle"`) {
		t.Fatalf("pending edit lost on switch: %s", sl.CanvasData)
	}
	if st.ActiveSlideID() != second {
		t.Fatalf("active slide = %s, want %s", st.ActiveSlideID(), second)
	}
	if a.Scene().Len() != 0 {
		t.Fatal("second slide should start empty")
	}
}

func TestActivateCorruptDataFallsBackToEmpty(t *testing.T) {
	st, a, _ := newAdapter(t)
	id := st.AddSlide("")
	bad := "{not json"
	st.UpdateSlide(id, store.UpdateSlidePatch{CanvasData: &bad})

	if err := a.ActivateSlide(id); err != nil {
		t.Fatalf("ActivateSlide: %v", err)
	}
	if a.Scene().Len() != 0 {
		t.Fatal("corrupt slide should yield empty scene")
	}
}

func TestActivateUnknownSlide(t *testing.T) {
	_, a, _ := newAdapter(t)
	if err := a.ActivateSlide("no-such-id"); err == nil {
		t.Fatal("expected error for unknown slide")
	}
}

func TestDeactivateUnbinds(t *testing.T) {
	st, a, _ := newAdapter(t)
	if err := a.ActivateSlide(st.AddSlide("")); err != nil {
		t.Fatalf("ActivateSlide: %v", err)
	}
	a.Deactivate()
	if a.Scene() != nil || a.BoundSlideID() != "" {
		t.Fatal("adapter still bound after Deactivate")
	}
}

func TestDebouncerRunsNeverOverlap(t *testing.T) {
	var inFlight, overlaps int32
	d := NewDebouncer(time.Millisecond, func() {
		if atomic.AddInt32(&inFlight, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	})
	defer d.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				d.Trigger()
				d.Flush()
			}
		}()
	}
	wg.Wait()
	time.Sleep(20 * time.Millisecond)
	if n := atomic.LoadInt32(&overlaps); n != 0 {
		t.Fatalf("callback overlapped %d times", n)
	}
}

func TestReplacedSceneStopsTriggering(t *testing.T) {
	st, a, _ := newAdapter(t)
	first := st.AddSlide("")
	second := st.AddSlide("")
	if err := a.ActivateSlide(first); err != nil {
		t.Fatalf("ActivateSlide: %v", err)
	}
	old := a.Scene()
	if err := a.ActivateSlide(second); err != nil {
		t.Fatalf("ActivateSlide: %v", err)
	}

	old.Add(&scene.Rectangle{Left: 1, Top: 1, Width: 5, Height: 5})
	if a.Pending() {
		t.Fatal("edit on a replaced scene must not schedule a capture")
	}
	a.Flush()
	sl, _ := st.Slide(second)
	if strings.Contains(sl.CanvasData, `"rect"`) {
		t.Fatalf("replaced scene leaked into the new slide: %s", sl.CanvasData)
	}
}

func TestCaptureUnderConcurrentEdits(t *testing.T) {
	st := store.New()
	a := New(st, nil, Options{Debounce: time.Millisecond})
	defer a.Close()
	id := st.AddSlide("")
	if err := a.ActivateSlide(id); err != nil {
		t.Fatalf("ActivateSlide: %v", err)
	}

	// edits keep arriving while the debounce timer captures snapshots
	sc := a.Scene()
	for i := 0; i < 50; i++ {
		sc.Add(&scene.Rectangle{Left: float64(i), Top: 0, Width: 4, Height: 4})
		time.Sleep(time.Millisecond / 2)
	}
	a.Flush()

	sl, _ := st.Slide(id)
	if !strings.Contains(sl.CanvasData, `"rect"`) {
		t.Fatalf("final capture missing edits: %.80s", sl.CanvasData)
	}
	if sc.Len() != 50 {
		t.Fatalf("scene len = %d, want 50", sc.Len())
	}
}
