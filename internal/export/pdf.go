/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes presentation documents to portable formats. PDF
// export draws vector objects directly; PNG export rasterizes through
// the software renderer.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"goslide/internal/domain"
	"goslide/internal/render"
	"goslide/internal/scene"
)

// PDFOptions controls PDF export behavior. Units are points, mapping the
// logical canvas 1:1 onto the page.
type PDFOptions struct {
	// Slides selects slide indexes to export; empty means all.
	Slides []int
	// Author is written into the PDF metadata.
	Author string
}

// ExportPDF writes one page per slide to outPath. Slides with corrupt
// canvas data are exported as empty pages rather than failing the run.
func ExportPDF(doc domain.Document, canvasW, canvasH float64, outPath string, opt PDFOptions) error {
	if canvasW <= 0 || canvasH <= 0 {
		return fmt.Errorf("invalid canvas size %gx%g", canvasW, canvasH)
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: canvasW, Ht: canvasH},
		OrientationStr: "",
	})
	pdf.SetTitle(doc.Name, false)
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, false)
	}
	pdf.SetFont("Helvetica", "", 12)

	for _, idx := range slideIndexes(len(doc.Slides), opt.Slides) {
		if idx < 0 || idx >= len(doc.Slides) {
			continue
		}
		sl := doc.Slides[idx]
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: canvasW, Ht: canvasH})

		sc, err := scene.Decode(sl.CanvasData)
		if err != nil {
			sc = scene.New("")
		}
		if bg, ok := render.ParseColor(sc.Background()); ok {
			setFillColor(pdf, bg)
			pdf.Rect(0, 0, canvasW, canvasH, "F")
		}
		for _, o := range sc.Objects() {
			drawObject(pdf, o)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawObject(pdf *gofpdf.Fpdf, o scene.Object) {
	switch v := o.(type) {
	case *scene.Rectangle:
		style := shapeStyle(pdf, v.Fill, v.Stroke, v.StrokeWidth)
		if style != "" {
			pdf.Rect(v.Left, v.Top, v.Width, v.Height, style)
		}
	case *scene.Circle:
		style := shapeStyle(pdf, v.Fill, v.Stroke, v.StrokeWidth)
		if style != "" {
			pdf.Ellipse(v.Left+v.Radius, v.Top+v.Radius, v.Radius, v.Radius, 0, style)
		}
	case *scene.Line:
		if c, ok := render.ParseColor(v.Stroke); ok {
			setDrawColor(pdf, c)
			w := v.StrokeWidth
			if w <= 0 {
				w = 1
			}
			pdf.SetLineWidth(w)
			pdf.Line(v.X1, v.Y1, v.X2, v.Y2)
		}
	case *scene.TextBox:
		drawText(pdf, v)
	case *scene.Image:
		drawImage(pdf, v)
	case *scene.Group:
		for _, c := range v.Objects {
			drawObject(pdf, c)
		}
	}
}

// shapeStyle configures fill/stroke state and returns the gofpdf draw
// style string, empty when nothing would be painted.
func shapeStyle(pdf *gofpdf.Fpdf, fill, stroke string, width float64) string {
	style := ""
	if c, ok := render.ParseColor(fill); ok {
		setFillColor(pdf, c)
		style += "F"
	}
	if c, ok := render.ParseColor(stroke); ok && width > 0 {
		setDrawColor(pdf, c)
		pdf.SetLineWidth(width)
		style += "D"
	}
	return style
}

func drawText(pdf *gofpdf.Fpdf, t *scene.TextBox) {
	fsz := t.FontSize
	if fsz <= 0 {
		fsz = 12
	}
	styleStr := ""
	if t.FontWeight == "bold" {
		styleStr += "B"
	}
	if t.FontStyle == "italic" {
		styleStr += "I"
	}
	pdf.SetFont("Helvetica", styleStr, fsz)
	if c, ok := render.ParseColor(t.Fill); ok {
		pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	} else {
		pdf.SetTextColor(0, 0, 0)
	}
	y := t.Top + fsz // approx baseline for the first line
	for _, line := range strings.Split(t.Text, "\n") {
		x := t.Left
		switch t.TextAlign {
		case "center":
			x += (t.Width - pdf.GetStringWidth(line)) / 2
		case "right":
			x += t.Width - pdf.GetStringWidth(line)
		}
		pdf.Text(x, y, line)
		y += fsz * 1.2
	}
}

func drawImage(pdf *gofpdf.Fpdf, img *scene.Image) {
	raw, typ, ok := dataURIBytes(img.Src)
	if !ok {
		// unresolved source: keep layout visible with a placeholder frame
		pdf.SetDrawColor(160, 160, 160)
		pdf.SetLineWidth(1)
		pdf.Rect(img.Left, img.Top, img.Width, img.Height, "D")
		return
	}
	name := fmt.Sprintf("img-%p", img)
	opts := gofpdf.ImageOptions{ImageType: typ, ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	pdf.ImageOptions(name, img.Left, img.Top, img.Width, img.Height, false, opts, 0, "")
}

func dataURIBytes(src string) ([]byte, string, bool) {
	const marker = ";base64,"
	if !strings.HasPrefix(src, "data:image/") {
		return nil, "", false
	}
	i := strings.Index(src, marker)
	if i < 0 {
		return nil, "", false
	}
	typ := strings.ToUpper(strings.TrimPrefix(src[:i], "data:image/"))
	if typ == "JPG" {
		typ = "JPEG"
	}
	raw, err := base64.StdEncoding.DecodeString(src[i+len(marker):])
	if err != nil {
		return nil, "", false
	}
	return raw, typ, true
}

func slideIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
