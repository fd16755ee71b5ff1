/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"goslide/internal/domain"
	"goslide/internal/scene"
)

func sampleDoc() domain.Document {
	return domain.Document{
		Name:    "Deck",
		Version: domain.FormatVersion,
		Slides: []domain.Slide{
			{ID: "s1", Name: "Intro", CanvasData: scene.EmptySnapshot(), Thumbnail: "cGc=", CreatedAt: 100, UpdatedAt: 200},
			{ID: "s2", Name: "Body", CanvasData: scene.EmptySnapshot(), CreatedAt: 150, UpdatedAt: 250},
		},
		CreatedAt: 100,
		UpdatedAt: 250,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := sampleDoc()
	data, err := Encode(doc)
	require.NoError(t, err)
	require.True(t, data[len(data)-1] == '\n', "encoded file must end in newline")

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, doc, got)
}

func TestEncodeFillsVersion(t *testing.T) {
	doc := sampleDoc()
	doc.Version = ""
	data, err := Encode(doc)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, domain.FormatVersion, got.Version)
}

func TestDecodeRejectsMissingSlideField(t *testing.T) {
	// version 0.9 file with a slide missing canvasData
	payload := []byte(`{
	  "name": "Old",
	  "version": "0.9",
	  "createdAt": 1,
	  "updatedAt": 2,
	  "slides": [ {"id": "a", "name": "x", "createdAt": 1, "updatedAt": 2} ]
	}`)
	_, err := Decode(payload)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Problems)
}

func TestDecodeRejectsWrongTypes(t *testing.T) {
	cases := map[string]string{
		"name not string":       `{"name": 7, "version": "1.0", "slides": []}`,
		"slides not array":      `{"name": "x", "version": "1.0", "slides": {}}`,
		"missing version":       `{"name": "x", "slides": []}`,
		"canvasData not string": `{"name":"x","version":"1.0","slides":[{"id":"a","name":"n","canvasData":5,"createdAt":1,"updatedAt":1}]}`,
		"createdAt not number":  `{"name":"x","version":"1.0","slides":[{"id":"a","name":"n","canvasData":"","createdAt":"1","updatedAt":1}]}`,
		"not json":              `{{{`,
	}
	for name, payload := range cases {
		_, err := Decode([]byte(payload))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, name)
	}
}

func TestDecodeRejectsDuplicateSlideIDs(t *testing.T) {
	payload := []byte(`{
	  "name": "Dup",
	  "version": "1.0",
	  "slides": [
	    {"id": "a", "name": "1", "canvasData": "", "createdAt": 1, "updatedAt": 1},
	    {"id": "a", "name": "2", "canvasData": "", "createdAt": 1, "updatedAt": 1}
	  ]
	}`)
	_, err := Decode(payload)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Error(), "duplicate slide id")
}

func TestDecodeEmptySlidesOK(t *testing.T) {
	doc, err := Decode([]byte(`{"name": "Blank", "version": "1.0", "slides": []}`))
	require.NoError(t, err)
	require.Empty(t, doc.Slides)
}
