/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

// Object is the closed set of visual items a slide scene can hold. The
// variants are fixed: TextBox, Rectangle, Circle, Line, Image and Group.
// Code that dispatches on Kind can rely on the switch being exhaustive.
//
// Objects are held and mutated by pointer; style edits by the format
// applicator happen in place.

// Kind discriminates the object variants. Its String form doubles as the
// "type" tag in the snapshot JSON.
type Kind uint8

const (
	KindText Kind = iota
	KindRect
	KindCircle
	KindLine
	KindImage
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "textbox"
	case KindRect:
		return "rect"
	case KindCircle:
		return "circle"
	case KindLine:
		return "line"
	case KindImage:
		return "image"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// ParseKind maps a snapshot type tag to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "textbox":
		return KindText, true
	case "rect":
		return KindRect, true
	case "circle":
		return KindCircle, true
	case "line":
		return KindLine, true
	case "image":
		return KindImage, true
	case "group":
		return KindGroup, true
	}
	return 0, false
}

type Object interface {
	Kind() Kind
	Bounds() Rect
	Hit(p Pt) bool

	sealed()
}

// TextBox is an editable text run with typography attributes.
type TextBox struct {
	Left, Top     float64
	Width, Height float64
	Text          string
	FontSize      float64
	FontFamily    string
	FontWeight    string // "normal" or "bold"
	FontStyle     string // "normal" or "italic"
	TextAlign     string // "left", "center" or "right"
	Fill          string
}

func (t *TextBox) Kind() Kind   { return KindText }
func (t *TextBox) Bounds() Rect { return R(t.Left, t.Top, t.Width, t.Height) }
func (t *TextBox) Hit(p Pt) bool {
	return t.Bounds().Contains(p)
}
func (t *TextBox) sealed() {}

// Rectangle is a filled and stroked axis-aligned box.
type Rectangle struct {
	Left, Top     float64
	Width, Height float64
	Fill          string
	Stroke        string
	StrokeWidth   float64
}

func (r *Rectangle) Kind() Kind    { return KindRect }
func (r *Rectangle) Bounds() Rect  { return R(r.Left, r.Top, r.Width, r.Height) }
func (r *Rectangle) Hit(p Pt) bool { return r.Bounds().Contains(p) }
func (r *Rectangle) sealed()       {}

// Circle is stored by its bounding-box min corner and radius.
type Circle struct {
	Left, Top   float64
	Radius      float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

func (c *Circle) Kind() Kind   { return KindCircle }
func (c *Circle) Bounds() Rect { return R(c.Left, c.Top, 2*c.Radius, 2*c.Radius) }
func (c *Circle) Hit(p Pt) bool {
	// point-in-circle against the bounding-box center
	cx := c.Left + c.Radius
	cy := c.Top + c.Radius
	if c.Radius <= 0 {
		return false
	}
	dx := (p.X - cx) / c.Radius
	dy := (p.Y - cy) / c.Radius
	return dx*dx+dy*dy <= 1
}
func (c *Circle) sealed() {}

// Line is a straight segment between two absolute points.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	StrokeWidth    float64
}

func (l *Line) Kind() Kind { return KindLine }
func (l *Line) Bounds() Rect {
	minX := min(l.X1, l.X2)
	minY := min(l.Y1, l.Y2)
	return R(minX, minY, max(l.X1, l.X2)-minX, max(l.Y1, l.Y2)-minY)
}

// Hit tests distance from the segment with a small pick slop around the
// stroke width.
func (l *Line) Hit(p Pt) bool {
	slop := l.StrokeWidth/2 + 3
	dx := l.X2 - l.X1
	dy := l.Y2 - l.Y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		ddx := p.X - l.X1
		ddy := p.Y - l.Y1
		return ddx*ddx+ddy*ddy <= slop*slop
	}
	t := ((p.X-l.X1)*dx + (p.Y-l.Y1)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx := l.X1 + t*dx
	cy := l.Y1 + t*dy
	ddx := p.X - cx
	ddy := p.Y - cy
	return ddx*ddx+ddy*ddy <= slop*slop
}
func (l *Line) sealed() {}

// Image references decoded pixel data by source (URL or data URI) and a
// display size on the canvas.
type Image struct {
	Left, Top     float64
	Width, Height float64
	Src           string
}

func (i *Image) Kind() Kind    { return KindImage }
func (i *Image) Bounds() Rect  { return R(i.Left, i.Top, i.Width, i.Height) }
func (i *Image) Hit(p Pt) bool { return i.Bounds().Contains(p) }
func (i *Image) sealed()       {}

// Group is a container over child objects. Children keep absolute canvas
// coordinates; the group's position is derived from their union.
type Group struct {
	Objects []Object
}

func (g *Group) Kind() Kind { return KindGroup }

func (g *Group) Bounds() Rect {
	var b Rect
	first := true
	for _, c := range g.Objects {
		cb := c.Bounds()
		if first {
			b = cb
			first = false
		} else {
			b = b.Union(cb)
		}
	}
	return b
}

func (g *Group) Hit(p Pt) bool {
	for i := len(g.Objects) - 1; i >= 0; i-- { // top-most first
		if g.Objects[i].Hit(p) {
			return true
		}
	}
	return false
}
func (g *Group) sealed() {}
