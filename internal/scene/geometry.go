/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

// Basic 2D geometry for the canvas scene graph. Values are float64 so they
// survive the JSON snapshot round-trip bit-exactly. The scene model is
// axis-aligned; there are no object transforms.

// Pt is a 2D point in canvas logical units.
type Pt struct{ X, Y float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Intersects reports whether the two rectangles overlap at all.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// ClampInto shifts r so it lies within bounds inset by margin, as far as its
// size allows. Size is never changed; an oversized rect keeps its min corner
// at the margin.
func (r Rect) ClampInto(bounds Rect, margin float64) Rect {
	inner := bounds.Inset(margin, margin)
	out := r
	if out.X+out.W > inner.X+inner.W {
		out.X = inner.X + inner.W - out.W
	}
	if out.Y+out.H > inner.Y+inner.H {
		out.Y = inner.Y + inner.H - out.H
	}
	if out.X < inner.X {
		out.X = inner.X
	}
	if out.Y < inner.Y {
		out.Y = inner.Y
	}
	return out
}
