/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"goslide/internal/domain"
	"goslide/internal/render"
	"goslide/internal/scene"
)

// ExportSlidePNGs rasterizes each slide to slide-NNN.png files inside
// outDir and returns the written paths. Corrupt slides export as empty
// canvases.
func ExportSlidePNGs(doc domain.Document, canvasW, canvasH int, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	r := render.NewRaster()
	var paths []string
	for i, sl := range doc.Slides {
		sc, err := scene.Decode(sl.CanvasData)
		if err != nil {
			sc = scene.New("")
		}
		data, err := r.RenderPNG(sc, canvasW, canvasH)
		if err != nil {
			return paths, fmt.Errorf("render slide %d: %w", i+1, err)
		}
		p := filepath.Join(outDir, fmt.Sprintf("slide-%03d.png", i+1))
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
