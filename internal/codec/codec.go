/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package codec converts between the in-memory document and its versioned
// JSON file form. Decoding is strict: the payload is validated against a
// JSON Schema before unmarshalling, and any deviation is rejected as a
// ValidationError with no partial result.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"goslide/internal/domain"
)

// ValidationError reports why a persisted document was refused. The
// document state of the caller is untouched when this is returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid document: " + strings.Join(e.Problems, "; ")
}

// Encode renders the document as indented, human-diffable JSON with a
// trailing newline, the same convention the on-disk manifest uses.
func Encode(doc domain.Document) ([]byte, error) {
	if doc.Version == "" {
		doc.Version = domain.FormatVersion
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses and validates a persisted document. It returns a
// *ValidationError when the payload does not conform; nothing is loaded
// partially.
func Decode(data []byte) (domain.Document, error) {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		// not even parseable JSON
		return domain.Document{}, &ValidationError{Problems: []string{err.Error()}}
	}
	if !result.Valid() {
		verr := &ValidationError{}
		for _, re := range result.Errors() {
			verr.Problems = append(verr.Problems, re.String())
		}
		return domain.Document{}, verr
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, &ValidationError{Problems: []string{err.Error()}}
	}

	// Schema cannot express id uniqueness; check it here.
	seen := make(map[string]struct{}, len(doc.Slides))
	for _, sl := range doc.Slides {
		if _, dup := seen[sl.ID]; dup {
			return domain.Document{}, &ValidationError{Problems: []string{fmt.Sprintf("duplicate slide id %q", sl.ID)}}
		}
		seen[sl.ID] = struct{}{}
	}
	return doc, nil
}
