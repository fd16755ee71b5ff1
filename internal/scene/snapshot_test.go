/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func fullScene() *Scene {
	s := New("#fafafa")
	s.Add(&TextBox{Left: 100, Top: 50, Width: 200, Height: 48, Text: "Title",
		FontSize: 32, FontFamily: "sans", FontWeight: "bold", FontStyle: "normal",
		TextAlign: "center", Fill: "#111111"})
	s.Add(&Rectangle{Left: 40, Top: 120, Width: 160, Height: 90,
		Fill: "#cccccc", Stroke: "#333333", StrokeWidth: 2})
	s.Add(&Circle{Left: 300, Top: 200, Radius: 45,
		Fill: "#ffcc00", Stroke: "#000000", StrokeWidth: 1})
	s.Add(&Line{X1: 10, Y1: 400, X2: 210, Y2: 380, Stroke: "#ff0000", StrokeWidth: 3})
	s.Add(&Image{Left: 500, Top: 300, Width: 180, Height: 120, Src: "data:image/png;base64,AAAA"})
	s.Add(&Group{Objects: []Object{
		&Rectangle{Left: 600, Top: 40, Width: 60, Height: 60, Fill: "#00ff00", Stroke: "#003300", StrokeWidth: 1},
		&Circle{Left: 620, Top: 60, Radius: 15, Fill: "#0000ff", Stroke: "#000033", StrokeWidth: 1},
	}})
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := fullScene()
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	got, err := Decode(snap)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Background() != s.Background() {
		t.Fatalf("background mismatch: %q vs %q", got.Background(), s.Background())
	}
	if !reflect.DeepEqual(got.Objects(), s.Objects()) {
		t.Fatalf("objects differ after round trip\n got: %#v\nwant: %#v", got.Objects(), s.Objects())
	}
	// Re-encode must be byte-identical (canonical form).
	snap2, err := got.Snapshot()
	if err != nil {
		t.Fatalf("re-snapshot: %v", err)
	}
	if snap != snap2 {
		t.Fatalf("snapshot not canonical:\n%s\n%s", snap, snap2)
	}
}

func TestSnapshotWireTags(t *testing.T) {
	s := fullScene()
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for _, tag := range []string{`"type":"textbox"`, `"type":"rect"`, `"type":"circle"`, `"type":"line"`, `"type":"image"`, `"type":"group"`} {
		if !strings.Contains(snap, tag) {
			t.Fatalf("snapshot missing %s: %s", tag, snap)
		}
	}
	if !strings.Contains(snap, `"background":"#fafafa"`) {
		t.Fatalf("snapshot missing background: %s", snap)
	}
}

func TestDecodeEmptyString(t *testing.T) {
	s, err := Decode("")
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty scene, got %d objects", s.Len())
	}
	if s.Background() != DefaultBackground {
		t.Fatalf("expected default background, got %q", s.Background())
	}
}

func TestEmptySnapshotIsStable(t *testing.T) {
	snap := EmptySnapshot()
	s, err := Decode(snap)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	snap2, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap != snap2 {
		t.Fatalf("empty snapshot not stable: %q vs %q", snap, snap2)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode("{not json")
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode(`{"objects":[{"type":"hexagon","left":1,"top":2}],"background":"#fff"}`)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestLineEncodesDerivedLeftTop(t *testing.T) {
	s := New("")
	s.Add(&Line{X1: 200, Y1: 50, X2: 100, Y2: 150, Stroke: "#000000", StrokeWidth: 1})
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !strings.Contains(snap, `"left":100`) || !strings.Contains(snap, `"top":50`) {
		t.Fatalf("line left/top not derived from endpoints: %s", snap)
	}
}
