/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package codec

// documentSchema is the JSON Schema for the persisted document file.
// canvasData stays an opaque string here; its inner structure is the scene
// package's concern.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "GoSlide Document",
  "type": "object",
  "required": ["name", "slides", "version"],
  "properties": {
    "name": { "type": "string" },
    "version": { "type": "string" },
    "createdAt": { "type": "number" },
    "updatedAt": { "type": "number" },
    "slides": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "canvasData", "createdAt", "updatedAt"],
        "properties": {
          "id": { "type": "string", "minLength": 1 },
          "name": { "type": "string" },
          "canvasData": { "type": "string" },
          "thumbnail": { "type": "string" },
          "createdAt": { "type": "number" },
          "updatedAt": { "type": "number" }
        }
      }
    }
  }
}`
