/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

// Snapshot codec: the canonical JSON serialization of a scene graph.
//
// The wire form is {"objects":[...],"background":"..."} where every object
// carries a "type" tag plus left/top, e.g.
//
//	{"type":"rect","left":10,"top":10,"width":120,"height":80,
//	 "fill":"#cccccc","stroke":"#333333","strokeWidth":2}
//
// Encode and Decode must be lossless for every object variant; the snapshot
// is the durable source of truth for a slide.

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt marks a snapshot that cannot be decoded. Callers recover by
// substituting an empty scene; see the adapter.
var ErrCorrupt = errors.New("corrupt scene data")

type snapshotJSON struct {
	Objects    []json.RawMessage `json:"objects"`
	Background string            `json:"background"`
}

type typeTag struct {
	Type string `json:"type"`
}

type textboxJSON struct {
	Type       string  `json:"type"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`
	FontStyle  string  `json:"fontStyle,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`
	Fill       string  `json:"fill"`
}

type rectJSON struct {
	Type        string  `json:"type"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type circleJSON struct {
	Type        string  `json:"type"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	Radius      float64 `json:"radius"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type lineJSON struct {
	Type        string  `json:"type"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type imageJSON struct {
	Type   string  `json:"type"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Src    string  `json:"src"`
}

type groupJSON struct {
	Type    string            `json:"type"`
	Left    float64           `json:"left"`
	Top     float64           `json:"top"`
	Objects []json.RawMessage `json:"objects"`
}

// EmptySnapshot returns the canonical serialization of an empty scene.
func EmptySnapshot() string {
	s, _ := New("").Snapshot()
	return s
}

// Snapshot serializes the scene into its canonical JSON form. It holds
// the scene lock while encoding so concurrent Update calls cannot change
// object fields mid-serialization.
func (s *Scene) Snapshot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := make([]json.RawMessage, 0, len(s.objects))
	for _, o := range s.objects {
		b, err := encodeObject(o)
		if err != nil {
			return "", err
		}
		raw = append(raw, b)
	}
	out, err := json.Marshal(snapshotJSON{Objects: raw, Background: s.background})
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(out), nil
}

func encodeObject(o Object) (json.RawMessage, error) {
	switch v := o.(type) {
	case *TextBox:
		return json.Marshal(textboxJSON{
			Type: v.Kind().String(), Left: v.Left, Top: v.Top,
			Width: v.Width, Height: v.Height, Text: v.Text,
			FontSize: v.FontSize, FontFamily: v.FontFamily,
			FontWeight: v.FontWeight, FontStyle: v.FontStyle,
			TextAlign: v.TextAlign, Fill: v.Fill,
		})
	case *Rectangle:
		return json.Marshal(rectJSON{
			Type: v.Kind().String(), Left: v.Left, Top: v.Top,
			Width: v.Width, Height: v.Height,
			Fill: v.Fill, Stroke: v.Stroke, StrokeWidth: v.StrokeWidth,
		})
	case *Circle:
		return json.Marshal(circleJSON{
			Type: v.Kind().String(), Left: v.Left, Top: v.Top,
			Radius: v.Radius,
			Fill:   v.Fill, Stroke: v.Stroke, StrokeWidth: v.StrokeWidth,
		})
	case *Line:
		b := v.Bounds()
		return json.Marshal(lineJSON{
			Type: v.Kind().String(), Left: b.X, Top: b.Y,
			X1: v.X1, Y1: v.Y1, X2: v.X2, Y2: v.Y2,
			Stroke: v.Stroke, StrokeWidth: v.StrokeWidth,
		})
	case *Image:
		return json.Marshal(imageJSON{
			Type: v.Kind().String(), Left: v.Left, Top: v.Top,
			Width: v.Width, Height: v.Height, Src: v.Src,
		})
	case *Group:
		children := make([]json.RawMessage, 0, len(v.Objects))
		for _, c := range v.Objects {
			cb, err := encodeObject(c)
			if err != nil {
				return nil, err
			}
			children = append(children, cb)
		}
		b := v.Bounds()
		return json.Marshal(groupJSON{
			Type: v.Kind().String(), Left: b.X, Top: b.Y, Objects: children,
		})
	default:
		return nil, fmt.Errorf("encode: unsupported object %T", o)
	}
}

// Decode rebuilds a scene from its snapshot string. An empty string yields
// an empty scene. Malformed JSON or an unknown object type tag returns an
// error wrapping ErrCorrupt.
func Decode(snapshot string) (*Scene, error) {
	if snapshot == "" {
		return New(""), nil
	}
	var sj snapshotJSON
	if err := json.Unmarshal([]byte(snapshot), &sj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	s := New(sj.Background)
	for i, raw := range sj.Objects {
		o, err := decodeObject(raw)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		s.objects = append(s.objects, o)
	}
	return s, nil
}

func decodeObject(raw json.RawMessage) (Object, error) {
	var tag typeTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	kind, ok := ParseKind(tag.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown object type %q", ErrCorrupt, tag.Type)
	}
	switch kind {
	case KindText:
		var v textboxJSON
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return &TextBox{
			Left: v.Left, Top: v.Top, Width: v.Width, Height: v.Height,
			Text: v.Text, FontSize: v.FontSize, FontFamily: v.FontFamily,
			FontWeight: v.FontWeight, FontStyle: v.FontStyle,
			TextAlign: v.TextAlign, Fill: v.Fill,
		}, nil
	case KindRect:
		var v rectJSON
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return &Rectangle{
			Left: v.Left, Top: v.Top, Width: v.Width, Height: v.Height,
			Fill: v.Fill, Stroke: v.Stroke, StrokeWidth: v.StrokeWidth,
		}, nil
	case KindCircle:
		var v circleJSON
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return &Circle{
			Left: v.Left, Top: v.Top, Radius: v.Radius,
			Fill: v.Fill, Stroke: v.Stroke, StrokeWidth: v.StrokeWidth,
		}, nil
	case KindLine:
		var v lineJSON
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return &Line{
			X1: v.X1, Y1: v.Y1, X2: v.X2, Y2: v.Y2,
			Stroke: v.Stroke, StrokeWidth: v.StrokeWidth,
		}, nil
	case KindImage:
		var v imageJSON
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return &Image{
			Left: v.Left, Top: v.Top, Width: v.Width, Height: v.Height,
			Src: v.Src,
		}, nil
	case KindGroup:
		var v groupJSON
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		g := &Group{}
		for i, craw := range v.Objects {
			c, err := decodeObject(craw)
			if err != nil {
				return nil, fmt.Errorf("group child %d: %w", i, err)
			}
			g.Objects = append(g.Objects, c)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: unhandled kind %v", ErrCorrupt, kind)
	}
}
