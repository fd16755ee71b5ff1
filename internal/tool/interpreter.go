/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tool

import (
	"log/slog"

	applog "goslide/internal/log"
	"goslide/internal/scene"
)

// Default geometry for one-click creation.
const (
	ClampMargin = 10

	defaultTextWidth   = 200
	defaultTextHeight  = 40
	defaultTextContent = "New text"
	defaultRectWidth   = 120
	defaultRectHeight  = 80
	defaultRadius      = 50
	defaultLineLength  = 150
)

// Result tells the caller what a pointer-down produced. Created is nil
// when no object was placed. TextEdit asks the surface to focus the new
// text box with its content pre-selected. ImagePick asks the surface to
// open the image side channel (URL entry or file browse).
type Result struct {
	Created   scene.Object
	TextEdit  bool
	ImagePick bool
}

// Interpreter is the pointer-input state machine. It owns the active
// tool and the creation formats.
type Interpreter struct {
	log     *slog.Logger
	canvasW float64
	canvasH float64

	active Tool
	shape  ShapeFormat
	text   TextFormat
}

// New returns an interpreter for a canvas of the given size, starting on
// the select tool with default formats.
func New(canvasW, canvasH float64) *Interpreter {
	return &Interpreter{
		log:     applog.WithComponent("tool"),
		canvasW: canvasW,
		canvasH: canvasH,
		active:  Select,
		shape:   DefaultShapeFormat(),
		text:    DefaultTextFormat(),
	}
}

// Active returns the current tool.
func (in *Interpreter) Active() Tool { return in.active }

// SetActive switches tools. Switching is immediate; creation is atomic
// per click, so there is never an in-progress object to discard.
func (in *Interpreter) SetActive(t Tool) {
	if t == in.active {
		return
	}
	in.log.Debug("tool changed", slog.String("from", in.active.String()), slog.String("to", t.String()))
	in.active = t
}

// ShapeFormat returns the current default shape style.
func (in *Interpreter) ShapeFormat() ShapeFormat { return in.shape }

// SetShapeFormat replaces the default shape style. Empty string fields
// and non-positive widths keep their previous value.
func (in *Interpreter) SetShapeFormat(f ShapeFormat) {
	if f.Fill != "" {
		in.shape.Fill = f.Fill
	}
	if f.Stroke != "" {
		in.shape.Stroke = f.Stroke
	}
	if f.StrokeWidth > 0 {
		in.shape.StrokeWidth = f.StrokeWidth
	}
}

// TextFormat returns the current default text style.
func (in *Interpreter) TextFormat() TextFormat { return in.text }

// PointerDown interprets a click at p on the given live scene. Clicks
// outside the canvas are ignored. Creation tools place the object
// centered at p, clamped so its bounds keep a margin inside the canvas,
// then revert to select.
func (in *Interpreter) PointerDown(sc *scene.Scene, p scene.Pt) Result {
	canvas := scene.R(0, 0, in.canvasW, in.canvasH)
	if !canvas.Contains(p) {
		return Result{}
	}
	switch in.active {
	case Select:
		// hit-testing and drag are the render surface's business
		return Result{}
	case Text:
		tb := in.newTextBox(p)
		sc.Add(tb)
		in.SetActive(Select)
		return Result{Created: tb, TextEdit: true}
	case Rect:
		r := in.newRectangle(p)
		sc.Add(r)
		in.SetActive(Select)
		return Result{Created: r}
	case Circle:
		c := in.newCircle(p)
		sc.Add(c)
		in.SetActive(Select)
		return Result{Created: c}
	case Line:
		l := in.newLine(p)
		sc.Add(l)
		in.SetActive(Select)
		return Result{Created: l}
	case Image:
		// nothing is created on click; the session resolves the
		// side channel and calls InsertImage when the load finishes
		in.SetActive(Select)
		return Result{ImagePick: true}
	}
	return Result{}
}

// InsertImage places a loaded image on the scene. at is the drop point,
// or nil for canvas center. The display size is assumed to be already
// fitted; the placement is still bounds-clamped like any creation.
func (in *Interpreter) InsertImage(sc *scene.Scene, src string, w, h float64, at *scene.Pt) *scene.Image {
	p := scene.Pt{X: in.canvasW / 2, Y: in.canvasH / 2}
	if at != nil {
		p = *at
	}
	b := in.clamp(scene.R(p.X-w/2, p.Y-h/2, w, h))
	img := &scene.Image{Left: b.X, Top: b.Y, Width: b.W, Height: b.H, Src: src}
	sc.Add(img)
	return img
}

func (in *Interpreter) clamp(b scene.Rect) scene.Rect {
	return b.ClampInto(scene.R(0, 0, in.canvasW, in.canvasH), ClampMargin)
}

func (in *Interpreter) newTextBox(p scene.Pt) *scene.TextBox {
	b := in.clamp(scene.R(p.X-defaultTextWidth/2, p.Y-defaultTextHeight/2, defaultTextWidth, defaultTextHeight))
	return &scene.TextBox{
		Left:       b.X,
		Top:        b.Y,
		Width:      b.W,
		Height:     b.H,
		Text:       defaultTextContent,
		FontSize:   in.text.FontSize,
		FontFamily: in.text.FontFamily,
		FontWeight: in.text.FontWeight,
		FontStyle:  in.text.FontStyle,
		TextAlign:  in.text.TextAlign,
		Fill:       in.text.Fill,
	}
}

func (in *Interpreter) newRectangle(p scene.Pt) *scene.Rectangle {
	b := in.clamp(scene.R(p.X-defaultRectWidth/2, p.Y-defaultRectHeight/2, defaultRectWidth, defaultRectHeight))
	return &scene.Rectangle{
		Left:        b.X,
		Top:         b.Y,
		Width:       b.W,
		Height:      b.H,
		Fill:        in.shape.Fill,
		Stroke:      in.shape.Stroke,
		StrokeWidth: in.shape.StrokeWidth,
	}
}

func (in *Interpreter) newCircle(p scene.Pt) *scene.Circle {
	b := in.clamp(scene.R(p.X-defaultRadius, p.Y-defaultRadius, 2*defaultRadius, 2*defaultRadius))
	return &scene.Circle{
		Left:        b.X,
		Top:         b.Y,
		Radius:      defaultRadius,
		Fill:        in.shape.Fill,
		Stroke:      in.shape.Stroke,
		StrokeWidth: in.shape.StrokeWidth,
	}
}

func (in *Interpreter) newLine(p scene.Pt) *scene.Line {
	b := in.clamp(scene.R(p.X-defaultLineLength/2, p.Y, defaultLineLength, 0))
	return &scene.Line{
		X1:          b.X,
		Y1:          b.Y,
		X2:          b.X + defaultLineLength,
		Y2:          b.Y,
		Stroke:      in.shape.Stroke,
		StrokeWidth: in.shape.StrokeWidth,
	}
}
