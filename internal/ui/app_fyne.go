//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"flowbook/internal/annotate"
	"flowbook/internal/crash"
	"flowbook/internal/domain"
	"flowbook/internal/export"
	"flowbook/internal/ink"
	applog "flowbook/internal/log"
	"flowbook/internal/media"
	"flowbook/internal/nav"
	"flowbook/internal/radial"
	"flowbook/internal/storage"
	"flowbook/internal/telemetry"
)

// Run starts the Fyne-based reader shell. Pass the path to a book.json to
// open it immediately; an empty path starts with no book loaded.
func Run(bookPath string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	dir, err := storage.DefaultDir()
	if err != nil {
		return err
	}
	st, err := storage.Open(dir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			l.Error("closing annotation store failed", slog.Any("err", cerr))
		}
	}()

	ss := annotate.NewSession(st)
	defer crash.Recover(ss)

	navg := nav.NewNavigator()
	view := nav.NewView()
	player := media.NewPlayer()

	fyneApp := app.NewWithID("flowbook")
	w := fyneApp.NewWindow("Flowbook")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	rc := NewReaderCanvas(ss, view)

	menu := radial.NewMenu(ss, radial.Hooks{
		OpenToolbar: func(it radial.Item) {
			status.SetText(fmt.Sprintf("Tool: %s", it))
		},
		OpenWhiteboard: func() {
			status.SetText("Whiteboard")
		},
	})
	rc.menu = menu

	// showPage swaps the mounted surface: the outgoing page saves and
	// retires, the incoming one restores persisted ink asynchronously.
	showPage := func(idx int) {
		if navg.TotalPages() == 0 {
			return
		}
		if rc.surface != nil {
			ss.UnregisterSurface(context.Background(), rc.surface.PageIndex())
		}
		book := ss.Book()
		pg := book.Pages[idx]
		s := ink.NewSurface(idx)
		ss.RegisterSurface(s)
		ss.SetActivePage(idx)
		rc.ShowPage(pg, s)
		status.SetText(fmt.Sprintf("Page %d/%d — Module %d", idx+1, navg.TotalPages(), navg.CurrentModule()+1))
		telemetry.PageViewed(idx)
	}

	openBook := func(path string) {
		book, err := storage.LoadBook(path)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := ss.OpenBook(context.Background(), book); err != nil {
			dialog.ShowError(err, w)
			return
		}
		navg.SetBook(book)
		view.ResetView()
		w.SetTitle("Flowbook — " + book.Title)
		showPage(0)
		l.Info("book opened", slog.String("book", book.ID), slog.Int("pages", book.PageCount()))
		telemetry.BookOpened(book.PageCount())
	}

	goTo := func(idx int) {
		navg.GoToPage(idx)
		showPage(navg.CurrentPage())
	}

	btnPrev := widget.NewButton("Prev", func() {
		navg.PrevPage()
		showPage(navg.CurrentPage())
	})
	btnNext := widget.NewButton("Next", func() {
		navg.NextPage()
		showPage(navg.CurrentPage())
	})
	btnUndo := widget.NewButton("Undo", func() {
		ss.Undo(navg.CurrentPage())
		rc.Refresh()
	})
	btnRedo := widget.NewButton("Redo", func() {
		ss.Redo(navg.CurrentPage())
		rc.Refresh()
	})
	btnZoomIn := widget.NewButton("Zoom +", func() {
		view.ZoomIn()
		rc.Refresh()
	})
	btnZoomOut := widget.NewButton("Zoom −", func() {
		view.ZoomOut()
		rc.Refresh()
	})
	toolSelect := widget.NewSelect([]string{"select", "pen", "highlight"}, func(v string) {
		switch v {
		case "pen":
			ss.Tools().SetActiveTool(annotate.ToolPen)
		case "highlight":
			ss.Tools().SetActiveTool(annotate.ToolHighlight)
		default:
			ss.Tools().SetActiveTool(annotate.ToolSelect)
		}
		rc.Refresh()
	})
	toolSelect.SetSelected("select")
	visCheck := widget.NewCheck("Show ink", func(v bool) {
		ss.SetAnnotationsVisible(v)
		rc.Refresh()
	})
	visCheck.SetChecked(true)
	btnClear := widget.NewButton("Clear page", func() {
		idx := navg.CurrentPage()
		dialog.ShowConfirm("Clear annotations", fmt.Sprintf("Remove all ink from page %d?", idx+1), func(ok bool) {
			if !ok {
				return
			}
			ss.ClearAnnotations(context.Background(), idx)
			rc.Refresh()
		}, w)
	})
	btnExport := widget.NewButton("Export PDF", func() {
		book := ss.Book()
		if book == nil {
			return
		}
		env := st.LoadEnvelope(context.Background(), book.ID)
		out := filepath.Join(dir, book.ID+".pdf")
		if err := export.WritePDF(book, env, out, export.PDFOptions{IncludeBlank: true}); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Exported " + out)
		telemetry.ExportCompleted("pdf", book.PageCount())
	})

	// Media bar for marker playback.
	btnPlay := widget.NewButton("Play/Pause", func() {
		player.Toggle()
		status.SetText("Media: " + player.State().String())
	})
	rateSelect := widget.NewSelect([]string{"0.5", "0.75", "1", "1.25", "1.5", "2"}, func(v string) {
		var r float64
		_, _ = fmt.Sscanf(strings.TrimSpace(v), "%f", &r)
		player.SetRate(r)
	})
	rateSelect.SetSelected("1")

	pageEntry := widget.NewEntry()
	pageEntry.SetPlaceHolder("page #")
	pageEntry.OnSubmitted = func(v string) {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err == nil {
			goTo(n - 1)
		}
	}

	fileOpen := widget.NewButton("Open…", func() {
		dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil || r == nil {
				return
			}
			path := r.URI().Path()
			_ = r.Close()
			openBook(path)
		}, w)
	})

	toolbar := container.NewHBox(
		fileOpen, widget.NewSeparator(),
		btnPrev, btnNext, pageEntry, widget.NewSeparator(),
		toolSelect, btnUndo, btnRedo, btnClear, visCheck, widget.NewSeparator(),
		btnZoomIn, btnZoomOut, widget.NewSeparator(),
		btnPlay, rateSelect, widget.NewSeparator(),
		btnExport,
	)

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, rc))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		ss.Close(context.Background())
	})

	if strings.TrimSpace(bookPath) != "" {
		openBook(bookPath)
	}

	w.ShowAndRun()
	return nil
}

// ReaderCanvas renders the current page with its ink overlay and routes
// pointer input: drawing when a drawing tool is armed, panning otherwise,
// and the radial menu overlay when open.
type ReaderCanvas struct {
	widget.BaseWidget

	session *annotate.Session
	view    *nav.View
	menu    *radial.Menu

	page    domain.Page
	surface *ink.Surface
	markers []media.PlacedMarker

	stroking bool
}

func NewReaderCanvas(ss *annotate.Session, view *nav.View) *ReaderCanvas {
	rc := &ReaderCanvas{session: ss, view: view}
	rc.ExtendBaseWidget(rc)
	return rc
}

// ShowPage swaps the displayed page and its mounted ink surface.
func (rc *ReaderCanvas) ShowPage(pg domain.Page, s *ink.Surface) {
	rc.page = pg
	rc.surface = s
	rc.markers = media.PlaceMarkers(pg)
	rc.stroking = false
	rc.Refresh()
}

// PreferredSize sets a decent default size for the widget.
func (rc *ReaderCanvas) PreferredSize() fyne.Size { return fyne.NewSize(900, 700) }

// Coordinate helpers: page <-> screen mapping.
func (rc *ReaderCanvas) pageOriginAndScale() (cx, cy, scale float32) {
	size := rc.Size()
	z := float32(rc.view.Zoom())
	px, py := rc.view.Pan()
	scaledW := float32(rc.page.WidthPx) * z
	scaledH := float32(rc.page.HeightPx) * z
	cx = size.Width/2 - scaledW/2 + float32(px)
	cy = size.Height/2 - scaledH/2 + float32(py)
	return cx, cy, z
}

func (rc *ReaderCanvas) toScreen(x, y float32) fyne.Position {
	cx, cy, s := rc.pageOriginAndScale()
	return fyne.NewPos(cx+x*s, cy+y*s)
}

func (rc *ReaderCanvas) toPage(pos fyne.Position) (x, y float32) {
	cx, cy, s := rc.pageOriginAndScale()
	return (pos.X - cx) / s, (pos.Y - cy) / s
}

// TappedSecondary opens the radial menu at the pointer.
func (rc *ReaderCanvas) TappedSecondary(e *fyne.PointEvent) {
	if rc.menu == nil {
		return
	}
	rc.menu.Open(float64(e.Position.X), float64(e.Position.Y))
	rc.Refresh()
}

// Tapped routes clicks to the radial menu first; the menu consumes the
// event when open so taps never fall through to the page.
func (rc *ReaderCanvas) Tapped(e *fyne.PointEvent) {
	if rc.menu != nil && rc.menu.IsOpen() {
		if rc.menu.ActivateAt(float64(e.Position.X), float64(e.Position.Y)) {
			rc.Refresh()
			return
		}
	}
}

func (rc *ReaderCanvas) Dragged(e *fyne.DragEvent) {
	if rc.menu != nil && rc.menu.IsOpen() {
		return
	}
	if rc.surface != nil && rc.surface.DrawingMode() && rc.session.AnnotationsVisible() {
		x, y := rc.toPage(e.Position)
		if !rc.stroking {
			rc.stroking = true
			rc.surface.BeginStroke(x, y)
		} else {
			rc.surface.AppendPoint(x, y)
		}
		rc.Refresh()
		return
	}
	px, py := rc.view.Pan()
	rc.view.SetPanning(true)
	rc.view.SetPan(px+float64(e.Dragged.DX), py+float64(e.Dragged.DY))
	rc.Refresh()
}

func (rc *ReaderCanvas) DragEnd() {
	if rc.stroking {
		rc.stroking = false
		rc.surface.EndStroke()
	}
	rc.view.SetPanning(false)
	rc.Refresh()
}

// Scrolled zooms with the wheel, snapping to the fixed zoom levels.
func (rc *ReaderCanvas) Scrolled(e *fyne.ScrollEvent) {
	if e.Scrolled.DY > 0 {
		rc.view.ZoomIn()
	} else if e.Scrolled.DY < 0 {
		rc.view.ZoomOut()
	}
	rc.Refresh()
}

func (rc *ReaderCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	page := canvas.NewRectangle(color.White)
	page.StrokeColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	page.StrokeWidth = 2
	return &readerCanvasRenderer{rc: rc, bg: bg, page: page}
}

// readerCanvasRenderer rebuilds the ink and overlay objects on each refresh;
// the page and background rectangles persist across frames.
type readerCanvasRenderer struct {
	rc       *ReaderCanvas
	bg, page *canvas.Rectangle
	overlay  []fyne.CanvasObject
}

func (r *readerCanvasRenderer) MinSize() fyne.Size { return fyne.NewSize(400, 300) }

func (r *readerCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	rc := r.rc
	cx, cy, s := rc.pageOriginAndScale()
	r.page.Move(fyne.NewPos(cx, cy))
	r.page.Resize(fyne.NewSize(float32(rc.page.WidthPx)*s, float32(rc.page.HeightPx)*s))
}

func (r *readerCanvasRenderer) Refresh() {
	rc := r.rc
	r.overlay = r.overlay[:0]

	if rc.surface != nil && rc.session.AnnotationsVisible() {
		for _, st := range rc.surface.Strokes() {
			col := color.NRGBA{R: st.Color.R, G: st.Color.G, B: st.Color.B, A: st.Color.A}
			_, _, s := rc.pageOriginAndScale()
			for i := 1; i < len(st.Points); i++ {
				ln := canvas.NewLine(col)
				ln.StrokeWidth = st.Width * s
				ln.Position1 = rc.toScreen(st.Points[i-1].X, st.Points[i-1].Y)
				ln.Position2 = rc.toScreen(st.Points[i].X, st.Points[i].Y)
				r.overlay = append(r.overlay, ln)
			}
		}
	}

	for _, pm := range rc.markers {
		c := canvas.NewCircle(color.NRGBA{R: 255, G: 140, B: 0, A: 220})
		pos := rc.toScreen(float32(pm.X), float32(pm.Y))
		c.Move(fyne.NewPos(pos.X-8, pos.Y-8))
		c.Resize(fyne.NewSize(16, 16))
		r.overlay = append(r.overlay, c)
	}

	if rc.menu != nil && rc.menu.IsOpen() {
		ax, ay := rc.menu.Anchor()
		ring := canvas.NewCircle(color.NRGBA{R: 40, G: 40, B: 48, A: 200})
		ring.Move(fyne.NewPos(float32(ax)-radial.OuterRadius, float32(ay)-radial.OuterRadius))
		ring.Resize(fyne.NewSize(2*radial.OuterRadius, 2*radial.OuterRadius))
		r.overlay = append(r.overlay, ring)
		for _, seg := range radial.Layout(ax, ay, len(radial.Items())) {
			dot := canvas.NewCircle(color.NRGBA{R: 230, G: 230, B: 240, A: 255})
			if seg.Index == rc.menu.Hovered() {
				dot.FillColor = color.NRGBA{R: 255, G: 200, B: 60, A: 255}
			}
			dot.Move(fyne.NewPos(float32(seg.IconX)-12, float32(seg.IconY)-12))
			dot.Resize(fyne.NewSize(24, 24))
			r.overlay = append(r.overlay, dot)
		}
	}

	r.Layout(rc.Size())
	canvas.Refresh(rc)
}

func (r *readerCanvasRenderer) Objects() []fyne.CanvasObject {
	objs := []fyne.CanvasObject{r.bg, r.page}
	return append(objs, r.overlay...)
}

func (r *readerCanvasRenderer) Destroy() {}
