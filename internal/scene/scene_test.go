/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"sync"
	"testing"
)

func TestSceneAddRemoveNotify(t *testing.T) {
	s := New("")
	var fired int
	s.SetOnChange(func() { fired++ })

	r := &Rectangle{Left: 10, Top: 10, Width: 50, Height: 50}
	s.Add(r)
	if s.Len() != 1 {
		t.Fatalf("len after add: %d", s.Len())
	}
	if fired != 1 {
		t.Fatalf("add should notify once, got %d", fired)
	}
	if !s.Remove(r) {
		t.Fatalf("remove returned false")
	}
	if s.Len() != 0 {
		t.Fatalf("len after remove: %d", s.Len())
	}
	if fired != 2 {
		t.Fatalf("remove should notify, got %d", fired)
	}
	if s.Remove(r) {
		t.Fatalf("second remove should be false")
	}
}

func TestSceneSetBackground(t *testing.T) {
	s := New("")
	var fired int
	s.SetOnChange(func() { fired++ })
	s.SetBackground("#000000")
	if s.Background() != "#000000" {
		t.Fatalf("background: %q", s.Background())
	}
	// setting the same color again is a no-op
	s.SetBackground("#000000")
	if fired != 1 {
		t.Fatalf("expected 1 notification, got %d", fired)
	}
}

func TestHitTestTopMostWins(t *testing.T) {
	s := New("")
	bottom := &Rectangle{Left: 0, Top: 0, Width: 100, Height: 100}
	top := &Rectangle{Left: 50, Top: 50, Width: 100, Height: 100}
	s.Add(bottom)
	s.Add(top)
	if got := s.HitTest(Pt{X: 75, Y: 75}); got != top {
		t.Fatalf("expected top-most object, got %v", got)
	}
	if got := s.HitTest(Pt{X: 10, Y: 10}); got != bottom {
		t.Fatalf("expected bottom object, got %v", got)
	}
	if got := s.HitTest(Pt{X: 300, Y: 300}); got != nil {
		t.Fatalf("expected nil hit, got %v", got)
	}
}

func TestCircleHit(t *testing.T) {
	c := &Circle{Left: 0, Top: 0, Radius: 50}
	if !c.Hit(Pt{X: 50, Y: 50}) {
		t.Fatalf("center should hit")
	}
	if c.Hit(Pt{X: 2, Y: 2}) {
		t.Fatalf("bounding-box corner should miss the circle")
	}
}

func TestLineHitWithSlop(t *testing.T) {
	l := &Line{X1: 0, Y1: 0, X2: 100, Y2: 0, StrokeWidth: 2}
	if !l.Hit(Pt{X: 50, Y: 3}) {
		t.Fatalf("point near segment should hit")
	}
	if l.Hit(Pt{X: 50, Y: 20}) {
		t.Fatalf("point far from segment should miss")
	}
	if l.Hit(Pt{X: 120, Y: 0}) {
		t.Fatalf("point beyond endpoint should miss")
	}
}

func TestGroupBoundsUnion(t *testing.T) {
	g := &Group{Objects: []Object{
		&Rectangle{Left: 10, Top: 10, Width: 20, Height: 20},
		&Rectangle{Left: 100, Top: 50, Width: 40, Height: 10},
	}}
	b := g.Bounds()
	if b.X != 10 || b.Y != 10 || b.W != 130 || b.H != 50 {
		t.Fatalf("unexpected group bounds: %+v", b)
	}
}

func TestClampInto(t *testing.T) {
	bounds := R(0, 0, 1200, 800)
	// off the top-left corner
	r := R(5, 5, 100, 60).ClampInto(bounds, 10)
	if r.X < 10 || r.Y < 10 {
		t.Fatalf("clamped rect escapes margin: %+v", r)
	}
	// off the bottom-right corner
	r = R(1180, 790, 100, 60).ClampInto(bounds, 10)
	if r.X+r.W > 1190 || r.Y+r.H > 790 {
		t.Fatalf("clamped rect escapes far edge: %+v", r)
	}
	// size is preserved
	if r.W != 100 || r.H != 60 {
		t.Fatalf("clamp changed the size: %+v", r)
	}
}

func TestConcurrentMutateAndSnapshot(t *testing.T) {
	s := New("#ffffff")
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.Add(&Rectangle{Left: float64(i), Top: 0, Width: 10, Height: 10, Fill: "#000000"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if _, err := s.Snapshot(); err != nil {
				t.Errorf("Snapshot: %v", err)
				return
			}
		}
	}()
	wg.Wait()
	if s.Len() != 100 {
		t.Fatalf("len = %d, want 100", s.Len())
	}
	// a final snapshot sees everything
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	got, err := Decode(snap)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Len() != 100 {
		t.Fatalf("decoded len = %d, want 100", got.Len())
	}
}
