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

import (
	"fmt"
	"strings"
)

// ParseHexColor parses "#rgb" or "#rrggbb" (leading '#' optional) into a
// fully opaque Color. Tool pickers hand colors around as hex strings; the
// engine converts them once at the styling boundary.
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		var r, g, b uint8
		if _, err := fmt.Sscanf(h, "%1x%1x%1x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("parse hex color %q: %w", s, err)
		}
		return Color{R: r * 17, G: g * 17, B: b * 17, A: 255}, nil
	case 6:
		var r, g, b uint8
		if _, err := fmt.Sscanf(h, "%02x%02x%02x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("parse hex color %q: %w", s, err)
		}
		return Color{R: r, G: g, B: b, A: 255}, nil
	default:
		return Color{}, fmt.Errorf("parse hex color %q: bad length", s)
	}
}

// WithOpacity returns the color with its alpha scaled to opacity in [0,1].
func (c Color) WithOpacity(opacity float64) Color {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(opacity*255 + 0.5)
	return c
}

// Hex renders the color as "#rrggbb", dropping alpha.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }
