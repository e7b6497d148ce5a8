/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	xvector "golang.org/x/image/vector"

	"flowbook/internal/domain"
	"flowbook/internal/ink"
)

// RenderPNG rasterizes one page's annotation blob onto a transparent image
// of the page's pixel dimensions. Each stroke segment is filled as a thick
// quad through an x/image/vector rasterizer used as a draw mask, which
// preserves the highlighter's translucency.
func RenderPNG(page domain.Page, blob []byte) (*image.RGBA, error) {
	w, h := page.WidthPx, page.HeightPx
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page %d has no pixel dimensions", page.Index)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	strokes, err := ink.DecodeSnapshot(blob)
	if err != nil {
		return nil, err
	}
	for _, st := range strokes {
		rasterizeStroke(dst, st)
	}
	return dst, nil
}

// WritePNG renders a page's annotations and writes them to outPath.
func WritePNG(page domain.Page, blob []byte, outPath string) error {
	img, err := RenderPNG(page, blob)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func rasterizeStroke(dst *image.RGBA, st ink.Stroke) {
	if len(st.Points) == 0 {
		return
	}
	b := dst.Bounds()
	r := xvector.NewRasterizer(b.Dx(), b.Dy())
	half := st.Width / 2
	if half <= 0 {
		half = 0.5
	}
	if len(st.Points) == 1 {
		quadAround(r, st.Points[0], half)
	}
	for i := 1; i < len(st.Points); i++ {
		segmentQuad(r, st.Points[i-1], st.Points[i], half)
	}
	src := image.NewUniform(color.NRGBA{R: st.Color.R, G: st.Color.G, B: st.Color.B, A: st.Color.A})
	r.Draw(dst, b, src, image.Point{})
}

// segmentQuad fills one line segment as a rectangle rotated to the
// segment direction.
func segmentQuad(r *xvector.Rasterizer, a, b ink.Point, half float32) {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		quadAround(r, a, half)
		return
	}
	// Unit normal to the segment.
	nx := float32(-dy / length * float64(half))
	ny := float32(dx / length * float64(half))
	r.MoveTo(a.X+nx, a.Y+ny)
	r.LineTo(b.X+nx, b.Y+ny)
	r.LineTo(b.X-nx, b.Y-ny)
	r.LineTo(a.X-nx, a.Y-ny)
	r.ClosePath()
}

// quadAround fills a small square around a single point (dot strokes).
func quadAround(r *xvector.Rasterizer, p ink.Point, half float32) {
	r.MoveTo(p.X-half, p.Y-half)
	r.LineTo(p.X+half, p.Y-half)
	r.LineTo(p.X+half, p.Y+half)
	r.LineTo(p.X-half, p.Y+half)
	r.ClosePath()
}
