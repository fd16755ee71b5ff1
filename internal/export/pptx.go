/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"

	"goslide/internal/domain"
)

// ErrPPTXNotImplemented is returned by ExportPPTX until OOXML output
// lands.
var ErrPPTXNotImplemented = errors.New("pptx export is not implemented")

// ExportPPTX is a placeholder for PowerPoint output. Deck fidelity
// requirements (theme slots, layout inheritance) are still unresolved,
// so the operation reports a clean not-implemented error instead of a
// lossy approximation.
func ExportPPTX(doc domain.Document, outPath string) error {
	_ = doc
	_ = outPath
	return ErrPPTXNotImplemented
}
