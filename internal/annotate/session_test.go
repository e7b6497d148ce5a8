/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package annotate

import (
	"context"
	"testing"

	"flowbook/internal/domain"
	"flowbook/internal/ink"
	"flowbook/internal/storage"
)

// fakeBlob records envelope saves so tests can assert ordering and content.
type fakeBlob struct {
	envs  []storage.Envelope
	seed  storage.Envelope
	fail  bool
	saved int
}

func (f *fakeBlob) LoadEnvelope(_ context.Context, bookID string) storage.Envelope {
	if f.seed.BookID == bookID && f.seed.Pages != nil {
		return f.seed
	}
	return storage.NewEnvelope(bookID)
}

func (f *fakeBlob) SaveEnvelope(_ context.Context, env storage.Envelope) error {
	f.saved++
	if f.fail {
		return context.DeadlineExceeded
	}
	// deep copy the page map so later mutations don't alias
	cp := storage.NewEnvelope(env.BookID)
	for k, v := range env.Pages {
		cp.Pages[k] = append([]byte(nil), v...)
	}
	f.envs = append(f.envs, cp)
	return nil
}

func testBook() *domain.Book {
	pages := make([]domain.Page, 10)
	for i := range pages {
		pages[i] = domain.Page{Index: i, WidthPx: 800, HeightPx: 1200}
	}
	return &domain.Book{
		ID:    "bk-1",
		Title: "Test Book",
		Modules: []domain.Module{
			{Title: "One", StartPage: 0, EndPage: 3},
			{Title: "Two", StartPage: 4, EndPage: 6},
			{Title: "Three", StartPage: 7, EndPage: 9},
		},
		Pages: pages,
	}
}

func openTestSession(t *testing.T, durable BlobStore) *Session {
	t.Helper()
	ss := NewSession(durable)
	if err := ss.OpenBook(context.Background(), testBook()); err != nil {
		t.Fatalf("open book: %v", err)
	}
	return ss
}

func drawStroke(s *ink.Surface, x, y float32) {
	s.BeginStroke(x, y)
	s.AppendPoint(x+1, y+1)
	s.EndStroke()
}

func TestStrokeCommitSavesBeforeHistoryPush(t *testing.T) {
	fb := &fakeBlob{}
	ss := openTestSession(t, fb)
	s := ink.NewSurface(0)
	ss.RegisterSurface(s)
	ss.SetActivePage(0)
	ss.Tools().SetActiveTool(ToolPen)

	drawStroke(s, 10, 10)

	if fb.saved != 1 {
		t.Fatalf("durable saves: got %d, want 1", fb.saved)
	}
	// The pushed history entry must equal the persisted record
	blob, ok := ss.PageAnnotations(0)
	if !ok {
		t.Fatalf("no stored record after commit")
	}
	ss.Undo(0)
	ss.Redo(0)
	after, _ := ss.PageAnnotations(0)
	if string(after) != string(blob) {
		t.Fatalf("redo did not land on the persisted snapshot")
	}
}

func TestUndoRestoresPriorState(t *testing.T) {
	ss := openTestSession(t, &fakeBlob{})
	s := ink.NewSurface(0)
	ss.RegisterSurface(s)
	ss.SetActivePage(0)
	ss.Tools().SetActiveTool(ToolPen)

	drawStroke(s, 1, 1)
	drawStroke(s, 2, 2)
	drawStroke(s, 3, 3)
	if s.StrokeCount() != 3 {
		t.Fatalf("setup: %d strokes", s.StrokeCount())
	}

	ss.Undo(0)
	if s.StrokeCount() != 2 {
		t.Fatalf("after undo: %d strokes", s.StrokeCount())
	}
	ss.Undo(0)
	ss.Undo(0)
	if s.StrokeCount() != 0 {
		t.Fatalf("after full undo: %d strokes, want pre-first-stroke state", s.StrokeCount())
	}
	if ss.CanUndo(0) {
		t.Fatalf("undo past the baseline should be unavailable")
	}
	ss.Redo(0)
	if s.StrokeCount() != 1 {
		t.Fatalf("after redo: %d strokes", s.StrokeCount())
	}
}

func TestUndoOnUnmountedPageIsNoOp(t *testing.T) {
	ss := openTestSession(t, &fakeBlob{})
	s := ink.NewSurface(0)
	ss.RegisterSurface(s)
	ss.SetActivePage(0)
	ss.Tools().SetActiveTool(ToolPen)
	drawStroke(s, 1, 1)

	ss.UnregisterSurface(context.Background(), 0)
	before, _ := ss.PageAnnotations(0)
	ss.Undo(0)
	after, _ := ss.PageAnnotations(0)
	if string(before) != string(after) {
		t.Fatalf("undo on unmounted page changed stored state")
	}
}

func TestUnregisterSavesBeforeDropping(t *testing.T) {
	fb := &fakeBlob{}
	ss := openTestSession(t, fb)
	s := ink.NewSurface(2)
	ss.RegisterSurface(s)
	ss.SetActivePage(2)
	ss.Tools().SetActiveTool(ToolPen)
	drawStroke(s, 5, 5)

	ss.UnregisterSurface(context.Background(), 2)
	if s.Alive() {
		t.Fatalf("surface not retired on unregister")
	}
	if ss.Registry().Lookup(2) != nil {
		t.Fatalf("surface still registered")
	}
	last := fb.envs[len(fb.envs)-1]
	if _, ok := last.Pages[2]; !ok {
		t.Fatalf("final save missing page record")
	}
}

func TestRestoreOnMount(t *testing.T) {
	// Prime a persisted record, then mount a fresh surface for the page.
	fb := &fakeBlob{}
	ss := openTestSession(t, fb)
	s := ink.NewSurface(1)
	ss.RegisterSurface(s)
	ss.SetActivePage(1)
	ss.Tools().SetActiveTool(ToolPen)
	drawStroke(s, 7, 7)
	ss.UnregisterSurface(context.Background(), 1)

	s2 := ink.NewSurface(1)
	ss.RegisterSurface(s2)
	if s2.StrokeCount() != 1 {
		t.Fatalf("mounted surface not restored: %d strokes", s2.StrokeCount())
	}
}

func TestCorruptRecordLeavesSurfaceUntouched(t *testing.T) {
	seed := storage.NewEnvelope("bk-1")
	seed.Pages[0] = []byte("{broken")
	fb := &fakeBlob{seed: seed}
	ss := openTestSession(t, fb)

	s := ink.NewSurface(0)
	ss.RegisterSurface(s)
	if s.StrokeCount() != 0 {
		t.Fatalf("corrupt record changed the surface")
	}
	// Surface stays usable
	ss.SetActivePage(0)
	ss.Tools().SetActiveTool(ToolPen)
	drawStroke(s, 1, 1)
	if s.StrokeCount() != 1 {
		t.Fatalf("surface unusable after corrupt restore")
	}
}

func TestClearAnnotations(t *testing.T) {
	fb := &fakeBlob{}
	ss := openTestSession(t, fb)
	s := ink.NewSurface(0)
	ss.RegisterSurface(s)
	ss.SetActivePage(0)
	ss.Tools().SetActiveTool(ToolPen)
	drawStroke(s, 1, 1)
	drawStroke(s, 2, 2)

	ss.ClearAnnotations(context.Background(), 0)
	if s.StrokeCount() != 0 {
		t.Fatalf("surface not cleared")
	}
	if _, ok := ss.PageAnnotations(0); ok {
		t.Fatalf("stored record survived clear")
	}
	if ss.CanUndo(0) || ss.CanRedo(0) {
		t.Fatalf("history not reset by clear")
	}
}

func TestDurableFailureDoesNotBlock(t *testing.T) {
	fb := &fakeBlob{fail: true}
	ss := openTestSession(t, fb)
	s := ink.NewSurface(0)
	ss.RegisterSurface(s)
	ss.SetActivePage(0)
	ss.Tools().SetActiveTool(ToolPen)

	drawStroke(s, 1, 1)
	// In-memory record and history still advance
	if _, ok := ss.PageAnnotations(0); !ok {
		t.Fatalf("in-memory record missing after failed durable save")
	}
	ss.Undo(0)
	if s.StrokeCount() != 0 {
		t.Fatalf("undo broken after failed durable save")
	}
}

func TestCloseTearsDownState(t *testing.T) {
	fb := &fakeBlob{}
	ss := openTestSession(t, fb)
	s := ink.NewSurface(0)
	ss.RegisterSurface(s)
	ss.Close(context.Background())
	if ss.Book() != nil {
		t.Fatalf("book still set after close")
	}
	if ss.Store().Active() {
		t.Fatalf("store still active after close")
	}
	if ss.Registry().Mounted() != 0 {
		t.Fatalf("registry not fresh after close")
	}
}

// seedBlob builds a persisted snapshot with one stroke for seeding the
// durable store.
func seedBlob(t *testing.T) []byte {
	t.Helper()
	donor := ink.NewSurface(0)
	donor.SetDrawingMode(true)
	drawStroke(donor, 3, 3)
	blob, err := donor.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return blob
}

func TestStaleRestoreDroppedOnSurfaceSwap(t *testing.T) {
	seed := storage.NewEnvelope("bk-1")
	seed.Pages[0] = seedBlob(t)
	ss := openTestSession(t, &fakeBlob{seed: seed})

	orig := decodeSnapshot
	defer func() { decodeSnapshot = orig }()

	s := ink.NewSurface(0)
	var swapped *ink.Surface
	decodeSnapshot = func(blob []byte) ([]ink.Stroke, error) {
		// The page remounts while the decode is still pending.
		swapped = ink.NewSurface(0)
		ss.Registry().Register(swapped)
		return orig(blob)
	}
	ss.RegisterSurface(s)

	if s.StrokeCount() != 0 {
		t.Fatalf("stale decode applied to a replaced surface: %d strokes", s.StrokeCount())
	}
	if swapped.StrokeCount() != 0 {
		t.Fatalf("stale decode leaked onto the new surface: %d strokes", swapped.StrokeCount())
	}
}

func TestStaleRestoreDroppedOnGenerationBump(t *testing.T) {
	seed := storage.NewEnvelope("bk-1")
	seed.Pages[0] = seedBlob(t)
	ss := openTestSession(t, &fakeBlob{seed: seed})

	orig := decodeSnapshot
	defer func() { decodeSnapshot = orig }()

	s := ink.NewSurface(0)
	decodeSnapshot = func(blob []byte) ([]ink.Stroke, error) {
		s.Clear() // a bulk change lands before the decode completes
		return orig(blob)
	}
	ss.RegisterSurface(s)

	if s.StrokeCount() != 0 {
		t.Fatalf("restore overwrote newer content: %d strokes", s.StrokeCount())
	}
	// With nothing interfering, a fresh restore applies normally.
	decodeSnapshot = orig
	ss.RestorePage(0)
	if s.StrokeCount() != 1 {
		t.Fatalf("clean restore failed: %d strokes", s.StrokeCount())
	}
}

func TestOpenBookRequiresID(t *testing.T) {
	ss := NewSession(nil)
	if err := ss.OpenBook(context.Background(), &domain.Book{}); err == nil {
		t.Fatalf("expected error for book without id")
	}
}
