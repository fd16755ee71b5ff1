/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render rasterizes a scene graph into bitmaps. It is the default
// implementation of the renderer collaborator: slide thumbnails and PNG
// exports both go through here. Output quality targets previews, not
// print: text uses a fixed bitmap face and strokes are unantialiased.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"goslide/internal/scene"
)

// Raster renders scenes on the CPU using the standard image packages.
type Raster struct{}

// NewRaster returns a ready-to-use software renderer.
func NewRaster() *Raster { return &Raster{} }

// Render rasterizes the scene onto a w×h canvas.
func (r *Raster) Render(s *scene.Scene, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: invalid canvas size %dx%d", w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	// hold the scene lock for the whole pass so a concurrent style patch
	// cannot change object fields mid-draw
	s.View(func(objects []scene.Object, background string) {
		bg, ok := ParseColor(background)
		if !ok {
			bg = color.RGBA{255, 255, 255, 255}
		}
		draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
		for _, o := range objects {
			r.drawObject(img, o)
		}
	})
	return img, nil
}

// RenderPNG rasterizes the scene and encodes it as PNG bytes.
func (r *Raster) RenderPNG(s *scene.Scene, w, h int) ([]byte, error) {
	img, err := r.Render(s, w, h)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Raster) drawObject(img *image.RGBA, o scene.Object) {
	switch v := o.(type) {
	case *scene.Rectangle:
		x0, y0 := int(math.Round(v.Left)), int(math.Round(v.Top))
		x1, y1 := int(math.Round(v.Left+v.Width))-1, int(math.Round(v.Top+v.Height))-1
		if fc, ok := ParseColor(v.Fill); ok {
			fillRect(img, x0, y0, x1, y1, fc)
		}
		if sc, ok := ParseColor(v.Stroke); ok && v.StrokeWidth > 0 {
			strokeRect(img, x0, y0, x1, y1, int(math.Round(v.StrokeWidth)), sc)
		}
	case *scene.Circle:
		if fc, ok := ParseColor(v.Fill); ok {
			fillEllipse(img, v.Left, v.Top, 2*v.Radius, 2*v.Radius, fc)
		}
		if sc, ok := ParseColor(v.Stroke); ok && v.StrokeWidth > 0 {
			strokeEllipse(img, v.Left, v.Top, 2*v.Radius, 2*v.Radius, v.StrokeWidth, sc)
		}
	case *scene.Line:
		if sc, ok := ParseColor(v.Stroke); ok {
			width := v.StrokeWidth
			if width < 1 {
				width = 1
			}
			drawLine(img, v.X1, v.Y1, v.X2, v.Y2, width, sc)
		}
	case *scene.TextBox:
		drawText(img, v)
	case *scene.Image:
		drawImageObject(img, v)
	case *scene.Group:
		for _, c := range v.Objects {
			r.drawObject(img, c)
		}
	}
}

// ParseColor understands #rgb, #rrggbb and #rrggbbaa. An empty string or
// "transparent" reports ok=false, meaning nothing should be painted.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "transparent" || s == "none" {
		return color.RGBA{}, false
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	hex := s[1:]
	var r, g, b, a uint8
	a = 255
	read := func(h string) (uint8, bool) {
		var v int
		for _, c := range h {
			v <<= 4
			switch {
			case c >= '0' && c <= '9':
				v |= int(c - '0')
			case c >= 'a' && c <= 'f':
				v |= int(c-'a') + 10
			default:
				return 0, false
			}
		}
		return uint8(v), true
	}
	switch len(hex) {
	case 3:
		rr, ok1 := read(hex[0:1])
		gg, ok2 := read(hex[1:2])
		bb, ok3 := read(hex[2:3])
		if !ok1 || !ok2 || !ok3 {
			return color.RGBA{}, false
		}
		r, g, b = rr*17, gg*17, bb*17
	case 6, 8:
		rr, ok1 := read(hex[0:2])
		gg, ok2 := read(hex[2:4])
		bb, ok3 := read(hex[4:6])
		if !ok1 || !ok2 || !ok3 {
			return color.RGBA{}, false
		}
		r, g, b = rr, gg, bb
		if len(hex) == 8 {
			aa, ok := read(hex[6:8])
			if !ok {
				return color.RGBA{}, false
			}
			a = aa
		}
	default:
		return color.RGBA{}, false
	}
	return color.RGBA{R: r, G: g, B: b, A: a}, true
}

func setPixel(img *image.RGBA, x, y int, col color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetRGBA(x, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			setPixel(img, x, y, col)
		}
	}
}

// strokeRect draws an axis-aligned rectangle border of the given width,
// growing inward from the bounds.
func strokeRect(img *image.RGBA, x0, y0, x1, y1, width int, col color.RGBA) {
	if width < 1 {
		width = 1
	}
	for i := 0; i < width; i++ {
		xa, ya, xb, yb := x0+i, y0+i, x1-i, y1-i
		if xb < xa || yb < ya {
			break
		}
		for x := xa; x <= xb; x++ {
			setPixel(img, x, ya, col)
			setPixel(img, x, yb, col)
		}
		for y := ya; y <= yb; y++ {
			setPixel(img, xa, y, col)
			setPixel(img, xb, y, col)
		}
	}
}

func fillEllipse(img *image.RGBA, left, top, w, h float64, col color.RGBA) {
	rx := w / 2
	ry := h / 2
	if rx <= 0 || ry <= 0 {
		return
	}
	cx := left + rx
	cy := top + ry
	y0 := int(math.Floor(top))
	y1 := int(math.Ceil(top + h))
	for y := y0; y <= y1; y++ {
		dy := (float64(y) + 0.5 - cy) / ry
		if dy*dy > 1 {
			continue
		}
		dx := rx * math.Sqrt(1-dy*dy)
		for x := int(math.Round(cx - dx)); x <= int(math.Round(cx+dx)); x++ {
			setPixel(img, x, y, col)
		}
	}
}

func strokeEllipse(img *image.RGBA, left, top, w, h, width float64, col color.RGBA) {
	rx := w / 2
	ry := h / 2
	if rx <= 0 || ry <= 0 {
		return
	}
	cx := left + rx
	cy := top + ry
	// sample the parameter densely enough for the circumference
	steps := int(4 * (rx + ry))
	if steps < 32 {
		steps = 32
	}
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + rx*math.Cos(a)
		y := cy + ry*math.Sin(a)
		stamp(img, x, y, width, col)
	}
}

// drawLine rasterizes the segment by stamping a square brush along it.
func drawLine(img *image.RGBA, x1, y1, x2, y2, width float64, col color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	steps := int(length) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		stamp(img, x1+t*dx, y1+t*dy, width, col)
	}
}

func stamp(img *image.RGBA, x, y, width float64, col color.RGBA) {
	r := width / 2
	if r < 0.5 {
		r = 0.5
	}
	x0 := int(math.Floor(x - r))
	x1 := int(math.Ceil(x + r))
	y0 := int(math.Floor(y - r))
	y1 := int(math.Ceil(y + r))
	for yy := y0; yy <= y1; yy++ {
		for xx := x0; xx <= x1; xx++ {
			setPixel(img, xx, yy, col)
		}
	}
}

// drawText paints the text with the fixed 7x13 bitmap face. Alignment is
// honored per line; font size only affects line spacing since the face is
// fixed, which is good enough for previews.
func drawText(img *image.RGBA, t *scene.TextBox) {
	col, ok := ParseColor(t.Fill)
	if !ok {
		col = color.RGBA{0, 0, 0, 255}
	}
	face := basicfont.Face7x13
	lineH := int(t.FontSize * 1.2)
	if lineH < face.Height {
		lineH = face.Height
	}
	lines := strings.Split(t.Text, "\n")
	y := int(t.Top) + face.Ascent
	for _, line := range lines {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(col),
			Face: face,
		}
		adv := d.MeasureString(line).Ceil()
		x := int(t.Left)
		switch t.TextAlign {
		case "center":
			x += (int(t.Width) - adv) / 2
		case "right":
			x += int(t.Width) - adv
		}
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		if t.FontWeight == "bold" {
			// cheap emboldening: repeat one pixel to the right
			d.Dot = fixed.P(x+1, y)
			d.DrawString(line)
		}
		y += lineH
	}
}

// drawImageObject decodes inline (data URI) image sources and scales them
// to the object's display box. Remote sources are skipped here; they are
// resolved to data URIs at insert time.
func drawImageObject(img *image.RGBA, o *scene.Image) {
	src, ok := decodeDataURI(o.Src)
	if !ok {
		// unresolved source: draw a placeholder frame
		x0, y0 := int(o.Left), int(o.Top)
		x1, y1 := int(o.Left+o.Width)-1, int(o.Top+o.Height)-1
		strokeRect(img, x0, y0, x1, y1, 1, color.RGBA{160, 160, 160, 255})
		return
	}
	dst := image.Rect(int(o.Left), int(o.Top), int(o.Left+o.Width), int(o.Top+o.Height))
	xdraw.ApproxBiLinear.Scale(img, dst, src, src.Bounds(), xdraw.Over, nil)
}

func decodeDataURI(s string) (image.Image, bool) {
	const marker = ";base64,"
	if !strings.HasPrefix(s, "data:image/") {
		return nil, false
	}
	i := strings.Index(s, marker)
	if i < 0 {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(s[i+len(marker):])
	if err != nil {
		return nil, false
	}
	m, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	return m, true
}
