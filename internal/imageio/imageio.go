/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imageio loads user-supplied images for insertion onto a slide.
// Sources can be local files, http(s) URLs or raw bytes. Loaded images are
// normalized to an inline data URI so documents stay self-contained, and
// oversized pictures get a display size fitted into a maximum box.
package imageio

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Maximum display size for a freshly inserted image. Larger pictures keep
// their pixels but are shown scaled down to fit this box.
const (
	MaxDisplayWidth  = 400
	MaxDisplayHeight = 300
)

// Limits on what we are willing to pull in.
const (
	maxFetchBytes = 32 << 20 // 32 MiB
	fetchTimeout  = 15 * time.Second
)

// IOError wraps a failed image load with its source for reporting.
type IOError struct {
	Source string
	Err    error
}

func (e *IOError) Error() string { return fmt.Sprintf("load image %s: %v", e.Source, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// Loaded is a decoded, normalized image ready to be placed on a slide.
type Loaded struct {
	// DataURI is the inline base64 form of the original bytes.
	DataURI string
	// PixelWidth and PixelHeight are the decoded dimensions.
	PixelWidth  int
	PixelHeight int
	// DisplayWidth and DisplayHeight are the fitted on-slide size.
	DisplayWidth  float64
	DisplayHeight float64
}

// Loader fetches and decodes images. The zero value uses a default HTTP
// client with a 15 second timeout.
type Loader struct {
	Client *http.Client
}

func (l *Loader) client() *http.Client {
	if l.Client != nil {
		return l.Client
	}
	return &http.Client{Timeout: fetchTimeout}
}

// Load resolves src, which may be an http(s) URL, a data URI or a local
// file path. Failures come back as *IOError.
func (l *Loader) Load(ctx context.Context, src string) (*Loaded, error) {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fromURL(ctx, src)
	case strings.HasPrefix(src, "data:image/"):
		i := strings.Index(src, ";base64,")
		if i < 0 {
			return nil, &IOError{Source: src[:min(len(src), 32)], Err: fmt.Errorf("unsupported data uri encoding")}
		}
		raw, err := base64.StdEncoding.DecodeString(src[i+len(";base64,"):])
		if err != nil {
			return nil, &IOError{Source: "data uri", Err: err}
		}
		return FromBytes(raw, "data uri")
	default:
		raw, err := os.ReadFile(src)
		if err != nil {
			return nil, &IOError{Source: src, Err: err}
		}
		return FromBytes(raw, src)
	}
}

func (l *Loader) fromURL(ctx context.Context, url string) (*Loaded, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &IOError{Source: url, Err: err}
	}
	resp, err := l.client().Do(req)
	if err != nil {
		return nil, &IOError{Source: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &IOError{Source: url, Err: fmt.Errorf("status %s", resp.Status)}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, &IOError{Source: url, Err: err}
	}
	if len(raw) > maxFetchBytes {
		return nil, &IOError{Source: url, Err: fmt.Errorf("image exceeds %d bytes", maxFetchBytes)}
	}
	return FromBytes(raw, url)
}

// FromBytes decodes raw image bytes and builds the normalized result.
func FromBytes(raw []byte, source string) (*Loaded, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, &IOError{Source: source, Err: err}
	}
	dw, dh := FitWithin(float64(cfg.Width), float64(cfg.Height), MaxDisplayWidth, MaxDisplayHeight)
	return &Loaded{
		DataURI:       "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(raw),
		PixelWidth:    cfg.Width,
		PixelHeight:   cfg.Height,
		DisplayWidth:  dw,
		DisplayHeight: dh,
	}, nil
}

// FitWithin scales w×h down to fit maxW×maxH, preserving aspect ratio.
// Sizes already inside the box pass through unchanged.
func FitWithin(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	s := maxW / w
	if maxH/h < s {
		s = maxH / h
	}
	return w * s, h * s
}
