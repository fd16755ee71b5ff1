/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package format applies style patches to selected scene objects. A patch
// that does not fit the selection's kind is dropped, not queued; the
// caller gets a false return to surface the no-op to the user.
package format

import (
	"log/slog"

	applog "goslide/internal/log"
	"goslide/internal/scene"
	"goslide/internal/tool"
)

// TextPatch restyles a text box. Nil fields are left unchanged.
type TextPatch struct {
	FontSize   *float64
	FontWeight *string
	FontStyle  *string
	TextAlign  *string
	Fill       *string
}

// ShapePatch restyles a shape. Nil fields are left unchanged. Lines only
// take the stroke fields; fill is ignored for them.
type ShapePatch struct {
	Fill        *string
	Stroke      *string
	StrokeWidth *float64
}

// Applicator applies patches and keeps the interpreter's default shape
// format in sync with the user's latest styling choice.
type Applicator struct {
	log   *slog.Logger
	tools *tool.Interpreter
}

// New returns an applicator feeding format defaults back into tools.
// tools may be nil when no interpreter is attached.
func New(tools *tool.Interpreter) *Applicator {
	return &Applicator{log: applog.WithComponent("format"), tools: tools}
}

// ApplyText applies p to target if it is a text box. It reports whether
// anything was applied; a false return is the no-op notice for a
// non-text selection. A successful apply fires the scene's change
// notification so the snapshot stays current.
func (a *Applicator) ApplyText(sc *scene.Scene, target scene.Object, p TextPatch) bool {
	tb, ok := target.(*scene.TextBox)
	if !ok {
		a.log.Info("text patch dropped, selection is not text")
		return false
	}
	sc.Update(func() {
		if p.FontSize != nil {
			tb.FontSize = *p.FontSize
		}
		if p.FontWeight != nil {
			tb.FontWeight = *p.FontWeight
		}
		if p.FontStyle != nil {
			tb.FontStyle = *p.FontStyle
		}
		if p.TextAlign != nil {
			tb.TextAlign = *p.TextAlign
		}
		if p.Fill != nil {
			tb.Fill = *p.Fill
		}
	})
	return true
}

// ApplyShape applies p to the selection. Rectangles and circles take all
// fields, lines only stroke and width, groups recurse into their
// members. It reports whether at least one object was restyled; on
// success the interpreter's default shape format is updated and the
// scene change notification fires.
func (a *Applicator) ApplyShape(sc *scene.Scene, target scene.Object, p ShapePatch) bool {
	if !shapeEligible(target) {
		a.log.Info("shape patch dropped, selection has no eligible objects")
		return false
	}
	sc.Update(func() {
		applyShape(target, p)
	})
	if a.tools != nil {
		a.tools.SetShapeFormat(patchFormat(p))
	}
	return true
}

// shapeEligible mirrors applyShape without mutating, so a dropped patch
// never fires the scene change notification.
func shapeEligible(o scene.Object) bool {
	switch v := o.(type) {
	case *scene.Rectangle, *scene.Circle, *scene.Line:
		return true
	case *scene.Group:
		for _, c := range v.Objects {
			if shapeEligible(c) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func applyShape(o scene.Object, p ShapePatch) bool {
	switch v := o.(type) {
	case *scene.Rectangle:
		if p.Fill != nil {
			v.Fill = *p.Fill
		}
		if p.Stroke != nil {
			v.Stroke = *p.Stroke
		}
		if p.StrokeWidth != nil {
			v.StrokeWidth = *p.StrokeWidth
		}
		return true
	case *scene.Circle:
		if p.Fill != nil {
			v.Fill = *p.Fill
		}
		if p.Stroke != nil {
			v.Stroke = *p.Stroke
		}
		if p.StrokeWidth != nil {
			v.StrokeWidth = *p.StrokeWidth
		}
		return true
	case *scene.Line:
		if p.Stroke != nil {
			v.Stroke = *p.Stroke
		}
		if p.StrokeWidth != nil {
			v.StrokeWidth = *p.StrokeWidth
		}
		return true
	case *scene.Group:
		any := false
		for _, c := range v.Objects {
			if applyShape(c, p) {
				any = true
			}
		}
		return any
	default:
		return false
	}
}

func patchFormat(p ShapePatch) tool.ShapeFormat {
	var f tool.ShapeFormat
	if p.Fill != nil {
		f.Fill = *p.Fill
	}
	if p.Stroke != nil {
		f.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		f.StrokeWidth = *p.StrokeWidth
	}
	return f
}
