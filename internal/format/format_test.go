/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import (
	"testing"

	"goslide/internal/scene"
	"goslide/internal/tool"
)

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }

func TestApplyTextToTextBox(t *testing.T) {
	sc := scene.New("")
	tb := &scene.TextBox{Text: "hi", FontSize: 24, Fill: "#333333"}
	sc.Add(tb)
	changes := 0
	sc.SetOnChange(func() { changes++ })

	a := New(nil)
	ok := a.ApplyText(sc, tb, TextPatch{FontSize: f64p(36), FontWeight: strp("bold")})
	if !ok {
		t.Fatal("patch should apply")
	}
	if tb.FontSize != 36 || tb.FontWeight != "bold" || tb.Fill != "#333333" {
		t.Fatalf("after patch: %+v", tb)
	}
	if changes != 1 {
		t.Fatalf("change notifications = %d", changes)
	}
}

func TestApplyTextDroppedOnShape(t *testing.T) {
	sc := scene.New("")
	r := &scene.Rectangle{Width: 10, Height: 10}
	sc.Add(r)
	changes := 0
	sc.SetOnChange(func() { changes++ })

	if New(nil).ApplyText(sc, r, TextPatch{FontSize: f64p(36)}) {
		t.Fatal("text patch must not apply to a rectangle")
	}
	if changes != 0 {
		t.Fatal("dropped patch must not fire a change")
	}
}

func TestApplyShapeUpdatesToolDefault(t *testing.T) {
	sc := scene.New("")
	r := &scene.Rectangle{Fill: "#ffffff", Stroke: "#000000", StrokeWidth: 1}
	sc.Add(r)
	in := tool.New(1200, 800)

	a := New(in)
	ok := a.ApplyShape(sc, r, ShapePatch{Fill: strp("#ff0000"), StrokeWidth: f64p(4)})
	if !ok {
		t.Fatal("patch should apply")
	}
	if r.Fill != "#ff0000" || r.StrokeWidth != 4 || r.Stroke != "#000000" {
		t.Fatalf("after patch: %+v", r)
	}
	def := in.ShapeFormat()
	if def.Fill != "#ff0000" || def.StrokeWidth != 4 {
		t.Fatalf("tool default not updated: %+v", def)
	}
	// untouched patch fields keep the previous default
	if def.Stroke != tool.DefaultShapeFormat().Stroke {
		t.Fatalf("stroke default = %q", def.Stroke)
	}
}

func TestApplyShapeLineIgnoresFill(t *testing.T) {
	sc := scene.New("")
	l := &scene.Line{X2: 100, Stroke: "#000000", StrokeWidth: 1}
	sc.Add(l)

	ok := New(nil).ApplyShape(sc, l, ShapePatch{Fill: strp("#ff0000"), Stroke: strp("#00ff00")})
	if !ok {
		t.Fatal("patch should apply")
	}
	if l.Stroke != "#00ff00" {
		t.Fatalf("stroke = %q", l.Stroke)
	}
}

func TestApplyShapeGroupRecurses(t *testing.T) {
	sc := scene.New("")
	r := &scene.Rectangle{Fill: "#ffffff"}
	l := &scene.Line{X2: 50, Stroke: "#000000"}
	tb := &scene.TextBox{Text: "label"}
	g := &scene.Group{Objects: []scene.Object{r, l, tb}}
	sc.Add(g)

	ok := New(nil).ApplyShape(sc, g, ShapePatch{Fill: strp("#123456"), Stroke: strp("#654321")})
	if !ok {
		t.Fatal("patch should apply to group members")
	}
	if r.Fill != "#123456" || r.Stroke != "#654321" {
		t.Fatalf("rect: %+v", r)
	}
	if l.Stroke != "#654321" {
		t.Fatalf("line: %+v", l)
	}
}

func TestApplyShapeDroppedOnText(t *testing.T) {
	sc := scene.New("")
	tb := &scene.TextBox{Text: "hi"}
	sc.Add(tb)
	in := tool.New(1200, 800)

	if New(in).ApplyShape(sc, tb, ShapePatch{Fill: strp("#ff0000")}) {
		t.Fatal("shape patch must not apply to text")
	}
	if in.ShapeFormat().Fill != tool.DefaultShapeFormat().Fill {
		t.Fatal("dropped patch must not update the tool default")
	}
}
