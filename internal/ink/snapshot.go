/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ink

import (
	"encoding/json"
	"fmt"
)

// snapshotVersion is bumped on incompatible changes to the stroke blob.
const snapshotVersion = 1

// snapshotDoc is the serialized form of a surface's content. The blob is
// opaque to the rest of the engine; only this package reads or writes it.
type snapshotDoc struct {
	Version int      `json:"v"`
	Strokes []Stroke `json:"strokes"`
}

// Snapshot serializes the committed strokes of the surface. An empty
// surface still yields a valid (stroke-less) blob.
func (s *Surface) Snapshot() ([]byte, error) {
	doc := snapshotDoc{Version: snapshotVersion, Strokes: s.strokes}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return b, nil
}

// Restore replaces the surface content with the snapshot blob. A malformed
// blob leaves the existing content untouched and returns an error; the
// caller decides whether to log and fall back. A successful restore bumps
// the generation counter.
func (s *Surface) Restore(blob []byte) error {
	strokes, err := DecodeSnapshot(blob)
	if err != nil {
		return err
	}
	s.strokes = strokes
	s.current = nil
	s.generation++
	return nil
}

// DecodeSnapshot parses a snapshot blob into strokes without touching any
// surface. Asynchronous restore paths decode first, then re-check the
// stale-load guard before applying via Restore.
func DecodeSnapshot(blob []byte) ([]Stroke, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var doc snapshotDoc
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d not supported", doc.Version)
	}
	return doc.Strokes, nil
}
