/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders a book's annotations to portable formats. Page
// images stay out of scope; exports carry the strokes only, on pages sized
// like the source pages, so they can be overlaid or reviewed standalone.
package export

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"flowbook/internal/domain"
	"flowbook/internal/ink"
	"flowbook/internal/storage"
)

// pxToPt converts page pixel dimensions to PDF points (96 px/inch source).
const pxToPt = 72.0 / 96.0

// PDFOptions controls annotation PDF export.
type PDFOptions struct {
	// Pages limits output to these page indices; empty means every page
	// with a stored record.
	Pages []int
	// IncludeBlank also emits pages without annotations.
	IncludeBlank bool
}

// WritePDF exports the book's annotations to a multi-page PDF at outPath.
// Pen strokes draw opaque; highlight strokes draw with their stored alpha.
func WritePDF(book *domain.Book, env storage.Envelope, outPath string, opt PDFOptions) error {
	if book == nil {
		return fmt.Errorf("book is nil")
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: 612, Ht: 792},
	})
	pdf.SetTitle(fmt.Sprintf("%s — annotations", book.Title), false)
	pdf.SetAuthor("Flowbook", false)

	pages := pageIndexes(book, env, opt)
	for _, idx := range pages {
		if idx < 0 || idx >= len(book.Pages) {
			continue
		}
		pg := book.Pages[idx]
		w := float64(pg.WidthPx) * pxToPt
		h := float64(pg.HeightPx) * pxToPt
		if w <= 0 || h <= 0 {
			w, h = 612, 792
		}
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})

		blob, ok := env.Pages[idx]
		if !ok {
			continue
		}
		strokes, err := ink.DecodeSnapshot(blob)
		if err != nil {
			return fmt.Errorf("page %d annotations: %w", idx, err)
		}
		for _, st := range strokes {
			drawStroke(pdf, st)
		}
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawStroke(pdf *gofpdf.Fpdf, st ink.Stroke) {
	if len(st.Points) == 0 {
		return
	}
	pdf.SetDrawColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
	pdf.SetLineWidth(float64(st.Width) * pxToPt)
	pdf.SetLineCapStyle("round")
	alpha := float64(st.Color.A) / 255
	pdf.SetAlpha(alpha, "Normal")
	if len(st.Points) == 1 {
		p := st.Points[0]
		r := float64(st.Width) * pxToPt / 2
		pdf.Circle(float64(p.X)*pxToPt, float64(p.Y)*pxToPt, r, "D")
	} else {
		for i := 1; i < len(st.Points); i++ {
			a, b := st.Points[i-1], st.Points[i]
			pdf.Line(float64(a.X)*pxToPt, float64(a.Y)*pxToPt,
				float64(b.X)*pxToPt, float64(b.Y)*pxToPt)
		}
	}
	pdf.SetAlpha(1, "Normal")
}

// pageIndexes resolves which pages to emit.
func pageIndexes(book *domain.Book, env storage.Envelope, opt PDFOptions) []int {
	if len(opt.Pages) > 0 {
		return opt.Pages
	}
	var out []int
	for i := range book.Pages {
		if _, ok := env.Pages[i]; ok || opt.IncludeBlank {
			out = append(out, i)
		}
	}
	return out
}
