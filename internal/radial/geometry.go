/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package radial

import "math"

// Ring dimensions in screen units. The menu spans a half ring (180°)
// opening upward from the anchor; segment 0 starts at the left.
const (
	InnerRadius = 40.0
	OuterRadius = 110.0
	spanDeg     = 180.0
	startDeg    = 180.0 // screen coords: y grows down, so 180..360 is above the anchor
)

// Segment describes one laid-out ring segment.
type Segment struct {
	Index    int
	StartDeg float64
	EndDeg   float64
	// Icon center: mid-angle, mid-radius point.
	IconX float64
	IconY float64
}

// Layout splits the half ring into n equal angular segments anchored at
// (ax, ay). Segment order follows Items order.
func Layout(ax, ay float64, n int) []Segment {
	if n <= 0 {
		return nil
	}
	step := spanDeg / float64(n)
	midR := (InnerRadius + OuterRadius) / 2
	segs := make([]Segment, n)
	for i := 0; i < n; i++ {
		start := startDeg + float64(i)*step
		mid := (start + start + step) / 2 * math.Pi / 180
		segs[i] = Segment{
			Index:    i,
			StartDeg: start,
			EndDeg:   start + step,
			IconX:    ax + math.Cos(mid)*midR,
			IconY:    ay + math.Sin(mid)*midR,
		}
	}
	return segs
}

// HitTest maps a pointer position to a segment index, or -1 when the point
// falls outside the ring (radius or angle).
func HitTest(ax, ay, x, y float64, n int) int {
	if n <= 0 {
		return -1
	}
	dx, dy := x-ax, y-ay
	r := math.Hypot(dx, dy)
	if r < InnerRadius || r > OuterRadius {
		return -1
	}
	deg := math.Atan2(dy, dx) * 180 / math.Pi // (-180, 180]
	if deg > 0 {
		// Below the anchor: outside the upward-opening half ring.
		return -1
	}
	deg += 360 // map (-180, 0] onto (180, 360]
	idx := int((deg - startDeg) / (spanDeg / float64(n)))
	if idx < 0 || idx >= n {
		return -1
	}
	return idx
}
