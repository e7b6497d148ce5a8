/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ink models the freehand drawing surface bound to one page: stroke
// capture, brush state, and snapshot serialization. A surface is owned by
// the page component that mounted it; the engine only holds lookup
// references to it.
package ink

import (
	"flowbook/internal/domain"
)

// BrushKind distinguishes how a stroke is rendered.
type BrushKind string

const (
	BrushPen       BrushKind = "pen"
	BrushHighlight BrushKind = "highlight"
)

// Brush is the live stroke style applied to new strokes.
type Brush struct {
	Kind  BrushKind    `json:"kind"`
	Color domain.Color `json:"color"`
	Width float32      `json:"width"`
}

// Point is one sampled pointer position in page coordinates.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Stroke is one committed freehand path.
type Stroke struct {
	Kind   BrushKind    `json:"kind"`
	Color  domain.Color `json:"color"`
	Width  float32      `json:"width"`
	Points []Point      `json:"points"`
}

// CommitFunc observes completed strokes. It runs synchronously on the
// event thread after the stroke has been appended to the surface.
type CommitFunc func(pageIndex int)

// Surface is a vector drawing canvas for a single page. It is not safe for
// concurrent use; all calls must come from the UI event thread.
type Surface struct {
	page       int
	alive      bool
	generation uint64
	drawing    bool
	brush      Brush
	strokes    []Stroke
	current    *Stroke
	onCommit   CommitFunc
}

// NewSurface creates an empty surface for the given page index.
func NewSurface(pageIndex int) *Surface {
	return &Surface{
		page:  pageIndex,
		alive: true,
		brush: Brush{Kind: BrushPen, Color: domain.Color{A: 255}, Width: 2},
	}
}

// PageIndex returns the page this surface is bound to.
func (s *Surface) PageIndex() int { return s.page }

// Alive reports whether the surface is still mounted. A retired surface
// drops all further input.
func (s *Surface) Alive() bool { return s.alive }

// Retire marks the surface as unmounted. Any in-progress stroke is
// discarded without committing.
func (s *Surface) Retire() {
	s.alive = false
	s.current = nil
	s.generation++
}

// Generation is a counter bumped on every bulk content change (restore or
// clear). Asynchronous restores capture it before decoding and re-check it
// before applying, so a stale completion is dropped instead of clobbering
// newer content.
func (s *Surface) Generation() uint64 { return s.generation }

// SetDrawingMode toggles interactive drawing. When off the surface passes
// pointer input through (selection mode) and Begin/Append/End are no-ops.
func (s *Surface) SetDrawingMode(on bool) {
	s.drawing = on
	if !on {
		s.current = nil
	}
}

// DrawingMode reports whether interactive drawing is enabled.
func (s *Surface) DrawingMode() bool { return s.drawing }

// SetBrush replaces the live brush used for the next strokes.
func (s *Surface) SetBrush(b Brush) { s.brush = b }

// Brush returns the live brush.
func (s *Surface) Brush() Brush { return s.brush }

// OnStrokeCommitted registers the single commit observer. The engine wires
// its save/history pipeline here.
func (s *Surface) OnStrokeCommitted(fn CommitFunc) { s.onCommit = fn }

// BeginStroke starts a new stroke at the given point. No-op unless the
// surface is alive and in drawing mode.
func (s *Surface) BeginStroke(x, y float32) {
	if !s.alive || !s.drawing {
		return
	}
	s.current = &Stroke{
		Kind:   s.brush.Kind,
		Color:  s.brush.Color,
		Width:  s.brush.Width,
		Points: []Point{{X: x, Y: y}},
	}
}

// AppendPoint extends the in-progress stroke.
func (s *Surface) AppendPoint(x, y float32) {
	if s.current == nil {
		return
	}
	s.current.Points = append(s.current.Points, Point{X: x, Y: y})
}

// EndStroke commits the in-progress stroke and notifies the commit
// observer. Returns false if there was nothing to commit.
func (s *Surface) EndStroke() bool {
	if s.current == nil {
		return false
	}
	st := *s.current
	s.current = nil
	if len(st.Points) == 0 {
		return false
	}
	s.strokes = append(s.strokes, st)
	if s.onCommit != nil {
		s.onCommit(s.page)
	}
	return true
}

// StrokeCount returns the number of committed strokes.
func (s *Surface) StrokeCount() int { return len(s.strokes) }

// Strokes returns a copy of the committed strokes for rendering/export.
func (s *Surface) Strokes() []Stroke {
	out := make([]Stroke, len(s.strokes))
	copy(out, s.strokes)
	return out
}

// ReplaceStrokes swaps in decoded snapshot content. This is the apply half
// of an asynchronous restore: callers decode with DecodeSnapshot, re-check
// the stale-load guard, then apply.
func (s *Surface) ReplaceStrokes(strokes []Stroke) {
	s.strokes = strokes
	s.current = nil
	s.generation++
}

// Clear removes every stroke object from the surface.
func (s *Surface) Clear() {
	s.strokes = nil
	s.current = nil
	s.generation++
}
