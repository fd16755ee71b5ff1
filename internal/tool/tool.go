/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tool interprets pointer input against the active editing tool.
// Creation tools place a fully-formed object in one click; there are no
// drag gestures. The interpreter also carries the current shape format,
// the style stamped onto every newly created shape.
package tool

import "fmt"

// Tool identifies the active editing mode.
type Tool int

const (
	Select Tool = iota
	Text
	Rect
	Circle
	Line
	Image
)

func (t Tool) String() string {
	switch t {
	case Select:
		return "select"
	case Text:
		return "text"
	case Rect:
		return "rectangle"
	case Circle:
		return "circle"
	case Line:
		return "line"
	case Image:
		return "image"
	default:
		return fmt.Sprintf("Tool(%d)", int(t))
	}
}

// ParseTool maps a tool name back to its value.
func ParseTool(s string) (Tool, bool) {
	switch s {
	case "select":
		return Select, true
	case "text":
		return Text, true
	case "rectangle", "rect":
		return Rect, true
	case "circle":
		return Circle, true
	case "line":
		return Line, true
	case "image":
		return Image, true
	}
	return Select, false
}

// ShapeFormat is the style applied to newly created shapes. The format
// applicator updates it whenever the user restyles an existing shape, so
// the next creation inherits the latest choice.
type ShapeFormat struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// DefaultShapeFormat returns the style new sessions start with.
func DefaultShapeFormat() ShapeFormat {
	return ShapeFormat{Fill: "#3498db", Stroke: "#2c3e50", StrokeWidth: 2}
}

// TextFormat is the style for newly created text boxes.
type TextFormat struct {
	FontSize   float64
	FontFamily string
	FontWeight string
	FontStyle  string
	TextAlign  string
	Fill       string
}

// DefaultTextFormat returns the text style new sessions start with.
func DefaultTextFormat() TextFormat {
	return TextFormat{
		FontSize:   24,
		FontFamily: "Arial",
		FontWeight: "normal",
		FontStyle:  "normal",
		TextAlign:  "left",
		Fill:       "#333333",
	}
}
