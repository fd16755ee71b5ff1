/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"goslide/internal/cache"
	"goslide/internal/config"
	"goslide/internal/crash"
	"goslide/internal/docfile"
	"goslide/internal/domain"
	"goslide/internal/export"
	applog "goslide/internal/log"
	"goslide/internal/render"
	"goslide/internal/scene"
	"goslide/internal/version"
)

func usage() {
	fmt.Println("GoSlide deck editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  goslide version|-v|--version              Show version")
	fmt.Println("  goslide new <path> [name]                  Create a new deck file at <path>")
	fmt.Println("  goslide open <path>                        Open a deck and print a summary")
	fmt.Println("  goslide export-pdf <deck> <out.pdf>        Render all slides to a PDF")
	fmt.Println("  goslide export-png <deck> <outdir>         Render each slide to a PNG file")
	fmt.Println("  goslide thumbs <deck>                      Render slide thumbnails into the sidecar cache")
	fmt.Println("  goslide backups <deck>                     List backup files for a deck")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var h *docfile.Handle
	defer func() { crash.Recover(h) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("GoSlide deck editor")
			fmt.Println(version.String())
			return
		case "new":
			if len(args) < 3 {
				fmt.Println("new requires <path>")
				usage()
				os.Exit(2)
			}
			path, _ := filepath.Abs(args[2])
			name := "Untitled"
			if len(args) >= 4 {
				name = args[3]
			}
			l.Info("new deck", slog.String("path", path), slog.String("name", name))
			nh, err := docfile.Create(path, domain.Document{Name: name, Slides: []domain.Slide{}, Version: domain.FormatVersion})
			if err != nil {
				l.Error("create failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h = nh
			fmt.Println("Created deck at", h.Path)
			return
		case "open":
			nh := mustOpen(l, args, 3)
			h = nh
			fmt.Printf("Opened deck: %s\n", h.Doc.Name)
			fmt.Printf("Slides: %d\n", len(h.Doc.Slides))
			fmt.Println("Format:", h.Doc.Version)
			return
		case "export-pdf":
			if len(args) < 4 {
				fmt.Println("export-pdf requires <deck> and <out.pdf>")
				usage()
				os.Exit(2)
			}
			nh := mustOpen(l, args, 4)
			h = nh
			cfg := config.Defaults()
			out, _ := filepath.Abs(args[3])
			l.Info("export pdf", slog.String("deck", h.Path), slog.String("out", out))
			if err := export.ExportPDF(h.Doc, float64(cfg.Canvas.Width), float64(cfg.Canvas.Height), out, export.PDFOptions{}); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote", out)
			return
		case "export-png":
			if len(args) < 4 {
				fmt.Println("export-png requires <deck> and <outdir>")
				usage()
				os.Exit(2)
			}
			nh := mustOpen(l, args, 4)
			h = nh
			cfg := config.Defaults()
			outDir, _ := filepath.Abs(args[3])
			l.Info("export png", slog.String("deck", h.Path), slog.String("dir", outDir))
			files, err := export.ExportSlidePNGs(h.Doc, cfg.Canvas.Width, cfg.Canvas.Height, outDir)
			if err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, f := range files {
				fmt.Println("Wrote", f)
			}
			return
		case "thumbs":
			nh := mustOpen(l, args, 3)
			h = nh
			cfg := config.Defaults()
			c, err := cache.Open(h.Path)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			defer c.Close()
			r := render.NewRaster()
			ctx := context.Background()
			for _, sl := range h.Doc.Slides {
				sl := sl
				_, err := c.GetOrCreateThumb(ctx, sl.ID, render.ThumbMaxWidth, render.ThumbMaxHeight, func(context.Context) ([]byte, error) {
					sc, derr := scene.Decode(sl.CanvasData)
					if derr != nil {
						return nil, derr
					}
					uri, terr := r.Thumbnail(sc, cfg.Canvas.Width, cfg.Canvas.Height)
					if terr != nil {
						return nil, terr
					}
					return []byte(uri), nil
				})
				if err != nil {
					l.Warn("thumbnail failed", slog.String("id", sl.ID), slog.Any("err", err))
					continue
				}
				fmt.Println("Cached thumbnail for slide", sl.ID)
			}
			return
		case "backups":
			if len(args) < 3 {
				fmt.Println("backups requires <deck>")
				usage()
				os.Exit(2)
			}
			path, _ := filepath.Abs(args[2])
			files, err := docfile.Backups(path)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if len(files) == 0 {
				fmt.Println("No backups.")
				return
			}
			for _, f := range files {
				fmt.Println(f)
			}
			return
		}
	}

	usage()
}

// mustOpen reads the deck named in args[2], exiting with a message on
// failure. minArgs is the total argument count the command needs.
func mustOpen(l *slog.Logger, args []string, minArgs int) *docfile.Handle {
	if len(args) < minArgs {
		fmt.Println(args[1], "requires a <deck> path")
		usage()
		os.Exit(2)
	}
	path, _ := filepath.Abs(args[2])
	l.Info("open deck", slog.String("path", path))
	h, err := docfile.Open(path)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return h
}
