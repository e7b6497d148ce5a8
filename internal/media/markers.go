/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package media

import "flowbook/internal/domain"

// ResolveMarker converts a marker's percentage placement into absolute
// page coordinates for the page's pixel dimensions. Because placement is
// percentage-based, the resolved point scales naturally with zoom when the
// renderer multiplies by the current zoom level.
func ResolveMarker(m domain.Marker, page domain.Page) (x, y float64) {
	x = m.XPct / 100 * float64(page.WidthPx)
	y = m.YPct / 100 * float64(page.HeightPx)
	return x, y
}

// PlacedMarker is a marker with its resolved page coordinates.
type PlacedMarker struct {
	domain.Marker
	X float64
	Y float64
}

// PlaceMarkers resolves every marker on a page.
func PlaceMarkers(page domain.Page) []PlacedMarker {
	out := make([]PlacedMarker, 0, len(page.Markers))
	for _, m := range page.Markers {
		x, y := ResolveMarker(m, page)
		out = append(out, PlacedMarker{Marker: m, X: x, Y: y})
	}
	return out
}
