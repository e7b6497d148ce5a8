/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// EnvelopeVersion is the current schema version of the persisted per-book
// annotation payload.
const EnvelopeVersion = 1

// Envelope is the versioned per-book annotation payload written to durable
// storage. Writes always replace the whole page map; typical annotation
// payloads are small enough that incremental patching is not worth its
// complexity.
type Envelope struct {
	Version   int
	BookID    string
	Pages     map[int][]byte
	UpdatedAt time.Time
}

// NewEnvelope returns an empty envelope for the book.
func NewEnvelope(bookID string) Envelope {
	return Envelope{Version: EnvelopeVersion, BookID: bookID, Pages: map[int][]byte{}}
}

// wireEnvelope is the JSON shape: page indices as string keys, blobs as
// embedded JSON.
type wireEnvelope struct {
	Version   int                        `json:"version"`
	BookID    string                     `json:"bookId"`
	Pages     map[string]json.RawMessage `json:"pages"`
	UpdatedAt string                     `json:"updatedAt"`
}

// MarshalJSON renders the envelope in its wire shape.
func (e Envelope) MarshalJSON() ([]byte, error) {
	w := wireEnvelope{
		Version:   e.Version,
		BookID:    e.BookID,
		Pages:     make(map[string]json.RawMessage, len(e.Pages)),
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for idx, blob := range e.Pages {
		w.Pages[strconv.Itoa(idx)] = json.RawMessage(blob)
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the wire shape back. Page keys that are not valid
// integers fail the whole parse; the store treats that as a corrupt payload.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	pages := make(map[int][]byte, len(w.Pages))
	for k, v := range w.Pages {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("page key %q: %w", k, err)
		}
		pages[idx] = []byte(v)
	}
	e.Version = w.Version
	e.BookID = w.BookID
	e.Pages = pages
	if w.UpdatedAt != "" {
		ts, err := time.Parse(time.RFC3339, w.UpdatedAt)
		if err != nil {
			return fmt.Errorf("updatedAt: %w", err)
		}
		e.UpdatedAt = ts
	}
	return nil
}
