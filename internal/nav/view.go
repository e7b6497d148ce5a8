/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package nav

// ZoomLevels is the fixed ascending list of designed zoom stops. Zoom
// never takes values outside this list.
var ZoomLevels = []float64{1, 1.25, 1.5, 2, 2.5, 3}

// ViewMode selects the page layout.
type ViewMode uint8

const (
	SinglePage ViewMode = iota
	DoublePage
)

// View holds zoom, pan offset, view mode, and the transient panning flag.
// Pan is forced back to the origin whenever zoom is at or below the base
// level: at 1:1 there is nothing to pan.
type View struct {
	levels  []float64
	zoomIdx int
	panX    float64
	panY    float64
	mode    ViewMode
	panning bool
}

// NewView returns a view at base zoom with no pan, in single-page mode.
func NewView() *View {
	return &View{levels: ZoomLevels}
}

// Zoom returns the current zoom level.
func (v *View) Zoom() float64 { return v.levels[v.zoomIdx] }

// SetZoomLevel snaps z to the nearest designed stop, clamping to the
// list's min/max. Landing at or below the base level resets pan.
func (v *View) SetZoomLevel(z float64) {
	idx := 0
	best := -1.0
	for i, lvl := range v.levels {
		d := z - lvl
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
			idx = i
		}
	}
	v.zoomIdx = idx
	v.resetPanAtBase()
}

// ZoomIn steps to the next designed zoom stop; a no-op at the top.
func (v *View) ZoomIn() {
	if v.zoomIdx < len(v.levels)-1 {
		v.zoomIdx++
	}
	v.resetPanAtBase()
}

// ZoomOut steps to the previous designed zoom stop; a no-op at the bottom.
func (v *View) ZoomOut() {
	if v.zoomIdx > 0 {
		v.zoomIdx--
	}
	v.resetPanAtBase()
}

// Pan returns the current pan offset.
func (v *View) Pan() (x, y float64) { return v.panX, v.panY }

// SetPan updates the pan offset. Ignored at or below base zoom, where the
// offset is pinned to the origin.
func (v *View) SetPan(x, y float64) {
	if v.zoomIdx == 0 {
		return
	}
	v.panX, v.panY = x, y
}

// Mode returns the current view mode.
func (v *View) Mode() ViewMode { return v.mode }

// SetMode switches between single- and double-page layout.
func (v *View) SetMode(m ViewMode) { v.mode = m }

// Panning reports the transient is-panning flag.
func (v *View) Panning() bool { return v.panning }

// SetPanning toggles the transient is-panning flag.
func (v *View) SetPanning(p bool) { v.panning = p }

// ResetView restores base zoom and origin pan atomically.
func (v *View) ResetView() {
	v.zoomIdx = 0
	v.panX, v.panY = 0, 0
}

func (v *View) resetPanAtBase() {
	if v.zoomIdx == 0 {
		v.panX, v.panY = 0, 0
	}
}
