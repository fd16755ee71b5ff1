/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"goslide/internal/scene"
)

// Default bounding box for slide thumbnails. The rendered canvas is
// scaled down to fit while keeping its aspect ratio.
const (
	ThumbMaxWidth  = 240
	ThumbMaxHeight = 180
)

// Thumbnail renders the scene at full canvas size, scales the result into
// the thumbnail box and returns it as a base64-encoded PNG. The returned
// string is what gets stored on the slide record.
func (r *Raster) Thumbnail(s *scene.Scene, canvasW, canvasH int) (string, error) {
	full, err := r.Render(s, canvasW, canvasH)
	if err != nil {
		return "", err
	}
	tw, th := fitBox(canvasW, canvasH, ThumbMaxWidth, ThumbMaxHeight)
	small := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), full, full.Bounds(), xdraw.Src, nil)
	var buf bytes.Buffer
	if err := png.Encode(&buf, small); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// fitBox shrinks w×h to fit within maxW×maxH preserving aspect ratio.
// Dimensions already inside the box are returned unchanged.
func fitBox(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	sw := float64(maxW) / float64(w)
	sh := float64(maxH) / float64(h)
	s := sw
	if sh < s {
		s = sh
	}
	tw := int(float64(w) * s)
	th := int(float64(h) * s)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}
