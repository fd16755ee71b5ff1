/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package imageio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytes(t *testing.T) {
	got, err := FromBytes(pngBytes(t, 800, 600), "test")
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if got.PixelWidth != 800 || got.PixelHeight != 600 {
		t.Fatalf("pixel size = %dx%d", got.PixelWidth, got.PixelHeight)
	}
	if got.DisplayWidth != 400 || got.DisplayHeight != 300 {
		t.Fatalf("display size = %gx%g", got.DisplayWidth, got.DisplayHeight)
	}
	if !strings.HasPrefix(got.DataURI, "data:image/png;base64,") {
		t.Fatalf("data uri prefix: %.40s", got.DataURI)
	}
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	_, err := FromBytes([]byte("not an image"), "junk")
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("want *IOError, got %v", err)
	}
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		w, h, wantW, wantH float64
	}{
		{800, 600, 400, 300},
		{200, 100, 200, 100},
		{1000, 250, 400, 100},
		{100, 600, 50, 300},
	}
	for _, c := range cases {
		gw, gh := FitWithin(c.w, c.h, MaxDisplayWidth, MaxDisplayHeight)
		if gw != c.wantW || gh != c.wantH {
			t.Fatalf("FitWithin(%g,%g) = %g,%g want %g,%g", c.w, c.h, gw, gh, c.wantW, c.wantH)
		}
	}
}

func TestLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes(t, 10, 10))
	}))
	defer srv.Close()

	var l Loader
	got, err := l.Load(context.Background(), srv.URL+"/pic.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PixelWidth != 10 || got.PixelHeight != 10 {
		t.Fatalf("pixel size = %dx%d", got.PixelWidth, got.PixelHeight)
	}
}

func TestLoadFromURLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	var l Loader
	_, err := l.Load(context.Background(), srv.URL+"/missing.png")
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("want *IOError, got %v", err)
	}
}

func TestLoadDataURI(t *testing.T) {
	src, err := FromBytes(pngBytes(t, 4, 4), "seed")
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	var l Loader
	got, err := l.Load(context.Background(), src.DataURI)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PixelWidth != 4 {
		t.Fatalf("pixel width = %d", got.PixelWidth)
	}
}

func TestLoadDataURIWithoutBase64(t *testing.T) {
	var l Loader
	for _, src := range []string{
		"data:image/png,AAA",
		"data:image/svg+xml;utf8,<svg></svg>",
	} {
		_, err := l.Load(context.Background(), src)
		var ioErr *IOError
		if !errors.As(err, &ioErr) {
			t.Fatalf("Load(%q): want *IOError, got %v", src, err)
		}
	}
}
