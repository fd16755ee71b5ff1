/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the durable data model for a slide deck. A Document is
// the unit of persistence; each Slide carries its scene as an opaque
// serialized snapshot (CanvasData). The live scene graph for the active
// slide is derived from that snapshot and owned elsewhere; the snapshot is
// the source of truth.

import "time"

// FormatVersion is written into every persisted document.
const FormatVersion = "1.0"

// Slide is one page of the presentation. CanvasData holds the serialized
// scene graph; Thumbnail is an optional base64-encoded PNG preview.
// Timestamps are unix milliseconds to match the on-disk JSON form.
type Slide struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CanvasData string `json:"canvasData"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// Document is a named, ordered collection of slides.
type Document struct {
	Name      string  `json:"name"`
	Slides    []Slide `json:"slides"`
	Version   string  `json:"version"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Slides = append([]Slide(nil), d.Slides...)
	return out
}

// SlideIndex returns the position of the slide with the given id, or -1.
func (d Document) SlideIndex(id string) int {
	for i := range d.Slides {
		if d.Slides[i].ID == id {
			return i
		}
	}
	return -1
}

// Now returns the current time as unix milliseconds.
func Now() int64 { return time.Now().UnixMilli() }
