/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for a Flowbook document: a paginated
// book grouped into modules, with per-page pixel dimensions and embedded
// media overlay markers. The engine consumes this description; page image
// delivery is a collaborator and stays outside this model.

// Book describes one openable document. ID must be stable across sessions
// because it scopes all annotation persistence keys.
type Book struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Metadata Metadata `json:"metadata,omitempty"`
	Modules  []Module `json:"modules"`
	Pages    []Page   `json:"pages"`
}

// Metadata contains optional descriptive metadata for a book.
type Metadata struct {
	Subject   string `json:"subject,omitempty"`
	Grade     string `json:"grade,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Module is a contiguous range of pages grouped for navigation.
// StartPage and EndPage are inclusive 0-based page indices.
type Module struct {
	Title     string `json:"title"`
	StartPage int    `json:"startPage"`
	EndPage   int    `json:"endPage"`
}

// Contains reports whether the page index falls inside the module range.
func (m Module) Contains(page int) bool { return page >= m.StartPage && page <= m.EndPage }

// Page describes a single page: its source image reference, pixel
// dimensions (needed for percentage-based overlay placement), and any
// embedded media markers.
type Page struct {
	Index    int      `json:"index"`
	ImageRef string   `json:"imageRef,omitempty"`
	WidthPx  int      `json:"widthPx"`
	HeightPx int      `json:"heightPx"`
	Markers  []Marker `json:"markers,omitempty"`
}

// MarkerKind identifies what an overlay marker opens.
type MarkerKind string

const (
	MarkerAudio    MarkerKind = "audio"
	MarkerVideo    MarkerKind = "video"
	MarkerActivity MarkerKind = "activity"
)

// Marker is an embedded media/activity overlay anchored to a page.
// XPct/YPct are percentages (0..100) of page width/height so the marker
// stays correctly placed across zoom levels.
type Marker struct {
	ID       string     `json:"id"`
	Kind     MarkerKind `json:"kind"`
	XPct     float64    `json:"xPct"`
	YPct     float64    `json:"yPct"`
	MediaRef string     `json:"mediaRef,omitempty"`
	Title    string     `json:"title,omitempty"`
}

// PageCount returns the number of pages in the book.
func (b *Book) PageCount() int {
	if b == nil {
		return 0
	}
	return len(b.Pages)
}

// ModuleForPage returns the index of the first module whose range contains
// the page, or 0 when none matches.
func (b *Book) ModuleForPage(page int) int {
	if b == nil {
		return 0
	}
	for i, m := range b.Modules {
		if m.Contains(page) {
			return i
		}
	}
	return 0
}

// Color is an RGBA color used for stroke styling.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}
