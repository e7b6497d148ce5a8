/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package annotate is the annotation engine core: one Session per open
// book ties together the surface registry, the tool controller, the
// per-page history and the persistence store, and enforces the
// stroke-commit ordering (save, then history push).
package annotate

import (
	"context"
	"errors"
	"log/slog"

	"flowbook/internal/domain"
	"flowbook/internal/ink"
	applog "flowbook/internal/log"
	"flowbook/internal/telemetry"
)

// decodeSnapshot is swappable so tests can land a surface swap or bulk
// content change while a restore decode is still in flight.
var decodeSnapshot = ink.DecodeSnapshot

// Session is the explicit context for one open book. It is created per
// document and torn down when the document closes; exactly one book is
// active per Session. Not safe for concurrent use: all calls must come
// from the UI event thread.
type Session struct {
	log   *slog.Logger
	reg   *Registry
	hist  *History
	store *Store
	tools *Controller

	book    *domain.Book
	visible bool
}

// NewSession creates an engine session over the durable store. durable may
// be nil for in-memory-only use.
func NewSession(durable BlobStore) *Session {
	reg := NewRegistry()
	return &Session{
		log:     applog.WithComponent("session"),
		reg:     reg,
		hist:    NewHistory(DefaultHistoryDepth),
		store:   NewStore(durable),
		tools:   NewController(reg),
		visible: true,
	}
}

// OpenBook initializes the session for a book: loads the persisted
// annotation envelope (missing or corrupt state degrades to empty) and
// resets navigationally scoped state. Any previously open book is closed
// first.
func (ss *Session) OpenBook(ctx context.Context, book *domain.Book) error {
	if book == nil || book.ID == "" {
		return errors.New("book with id is required")
	}
	if ss.book != nil {
		ss.Close(ctx)
	}
	ss.book = book
	ss.store.InitializeBook(ctx, book.ID)
	ss.hist = NewHistory(DefaultHistoryDepth)
	applog.WithBook(ss.log, book.ID).Info("book opened",
		slog.Int("pages", book.PageCount()),
		slog.Int("annotated", ss.store.PageCount()))
	return nil
}

// Close flushes the in-memory annotation map durably and clears the
// session. Safe to call with no book open.
func (ss *Session) Close(ctx context.Context) {
	if ss.book == nil {
		return
	}
	ss.store.Flush(ctx)
	ss.store.Teardown()
	ss.reg = NewRegistry()
	ss.tools.reg = ss.reg
	ss.hist = NewHistory(DefaultHistoryDepth)
	applog.WithBook(ss.log, ss.book.ID).Info("book closed")
	ss.book = nil
}

// Book returns the open book, or nil.
func (ss *Session) Book() *domain.Book { return ss.book }

// Tools returns the drawing tool controller.
func (ss *Session) Tools() *Controller { return ss.tools }

// Registry returns the surface registry.
func (ss *Session) Registry() *Registry { return ss.reg }

// Store returns the annotation store.
func (ss *Session) Store() *Store { return ss.store }

// RegisterSurface wires a freshly mounted surface into the engine: it is
// registered for lookup, its committed strokes feed the save/history
// pipeline, its persisted content is restored, and the restored state
// seeds the page's history baseline. The surface carries its own page
// index.
func (ss *Session) RegisterSurface(s *ink.Surface) {
	if s == nil {
		return
	}
	pageIndex := s.PageIndex()
	ss.reg.Register(s)
	s.OnStrokeCommitted(ss.strokeCommitted)
	ss.RestorePage(pageIndex)
	if blob, err := s.Snapshot(); err == nil {
		ss.hist.SeedIfEmpty(pageIndex, blob)
	}
}

// UnregisterSurface flushes a final save for the page and then drops the
// reference. Losing uncommitted strokes on unmount would be a correctness
// bug, so the save always precedes the removal.
func (ss *Session) UnregisterSurface(ctx context.Context, pageIndex int) {
	s := ss.reg.Lookup(pageIndex)
	if s == nil {
		ss.log.Debug("unregister for unmounted page", slog.Int("page", pageIndex))
		return
	}
	ss.savePage(ctx, pageIndex, s)
	ss.reg.Unregister(pageIndex)
	s.Retire()
}

// SetActivePage points tool input at the surface for the given page. The
// stored tool configuration is applied so the surface picks up settings
// chosen before it mounted. A page with no surface detaches tool input.
func (ss *Session) SetActivePage(pageIndex int) {
	s := ss.reg.Lookup(pageIndex)
	ss.reg.SetActive(s)
	ss.tools.Apply(s)
}

// SetActiveSurface temporarily points tool input elsewhere, e.g. during a
// page transition. Pass nil to detach.
func (ss *Session) SetActiveSurface(s *ink.Surface) {
	ss.reg.SetActive(s)
	ss.tools.Apply(s)
}

// AnnotationsVisible reports whether annotation rendering is on.
func (ss *Session) AnnotationsVisible() bool { return ss.visible }

// SetAnnotationsVisible toggles annotation rendering. The radial menu
// forces this on when a drawing tool is selected.
func (ss *Session) SetAnnotationsVisible(v bool) { ss.visible = v }

// strokeCommitted is the ordered stroke-completion pipeline: persist the
// page first, then push the history snapshot. Keeping this order means
// undo can never roll back to a state absent from the persisted store.
func (ss *Session) strokeCommitted(pageIndex int) {
	s := ss.reg.Lookup(pageIndex)
	if s == nil {
		ss.log.Warn("stroke committed on unmounted page", slog.Int("page", pageIndex))
		return
	}
	blob, err := s.Snapshot()
	if err != nil {
		ss.log.Error("snapshot after stroke failed", slog.Int("page", pageIndex), slog.Any("err", err))
		return
	}
	ss.store.SavePage(context.Background(), pageIndex, blob)
	ss.hist.Push(pageIndex, blob)
	telemetry.AnnotationSaved(s.StrokeCount())
}

// SavePage serializes the live surface content for the page and persists
// it. A page with no mounted surface is a logged no-op.
func (ss *Session) SavePage(ctx context.Context, pageIndex int) {
	s := ss.reg.Lookup(pageIndex)
	if s == nil {
		ss.log.Debug("save for unmounted page", slog.Int("page", pageIndex))
		return
	}
	ss.savePage(ctx, pageIndex, s)
}

func (ss *Session) savePage(ctx context.Context, pageIndex int, s *ink.Surface) {
	blob, err := s.Snapshot()
	if err != nil {
		ss.log.Error("serialize page failed", slog.Int("page", pageIndex), slog.Any("err", err))
		return
	}
	ss.store.SavePage(ctx, pageIndex, blob)
}

// PageAnnotations returns the stored record for a page, if any.
func (ss *Session) PageAnnotations(pageIndex int) ([]byte, bool) {
	return ss.store.Get(pageIndex)
}

// ClearAnnotations removes every stroke from the live surface (if
// mounted), deletes the stored record, and resets the page's history.
func (ss *Session) ClearAnnotations(ctx context.Context, pageIndex int) {
	if s := ss.reg.Lookup(pageIndex); s != nil {
		s.Clear()
	}
	ss.store.DeletePage(ctx, pageIndex)
	ss.hist.Reset(pageIndex)
}

// RestorePage loads the persisted record onto the page's surface. The
// snapshot decode may complete after the surface has been torn down or
// reassigned, so the result is applied only if the stale-load guard still
// holds; otherwise it is silently dropped. A malformed blob is logged and
// the surface keeps whatever it already shows.
func (ss *Session) RestorePage(pageIndex int) {
	s := ss.reg.Lookup(pageIndex)
	if s == nil {
		ss.log.Debug("restore for unmounted page", slog.Int("page", pageIndex))
		return
	}
	blob, ok := ss.store.Get(pageIndex)
	if !ok {
		return
	}
	gen := s.Generation()
	strokes, err := decodeSnapshot(blob)
	if err != nil {
		ss.log.Warn("page annotations failed to load", slog.Int("page", pageIndex), slog.Any("err", err))
		return
	}
	// Stale-load guard: the surface must still be the registered, live
	// surface for this page, untouched since the decode started.
	if ss.reg.Lookup(pageIndex) != s || !s.Alive() || s.Generation() != gen {
		ss.log.Debug("dropping stale restore", slog.Int("page", pageIndex))
		return
	}
	s.ReplaceStrokes(strokes)
}

// CanUndo reports whether undo is available for a page.
func (ss *Session) CanUndo(pageIndex int) bool { return ss.hist.CanUndo(pageIndex) }

// CanRedo reports whether redo is available for a page.
func (ss *Session) CanRedo(pageIndex int) bool { return ss.hist.CanRedo(pageIndex) }

// Undo steps the page back one snapshot, loads it onto the surface, and
// mirrors it into the in-memory record. The durable write is deferred to
// the next save. Operating on an unmounted page logs a diagnostic and
// leaves all state unchanged.
func (ss *Session) Undo(pageIndex int) {
	ss.stepHistory(pageIndex, ss.hist.Undo, "undo")
}

// Redo steps the page forward one snapshot, symmetric to Undo.
func (ss *Session) Redo(pageIndex int) {
	ss.stepHistory(pageIndex, ss.hist.Redo, "redo")
}

func (ss *Session) stepHistory(pageIndex int, step func(int) ([]byte, bool), op string) {
	s := ss.reg.Lookup(pageIndex)
	if s == nil {
		ss.log.Warn(op+" on unmounted page", slog.Int("page", pageIndex))
		return
	}
	blob, ok := step(pageIndex)
	if !ok {
		return
	}
	strokes, err := ink.DecodeSnapshot(blob)
	if err != nil {
		// History blobs are engine-written; a decode failure means the
		// entry is unusable, not that the surface should change.
		ss.log.Error(op+" snapshot unreadable", slog.Int("page", pageIndex), slog.Any("err", err))
		return
	}
	s.ReplaceStrokes(strokes)
	ss.store.SetRecord(pageIndex, blob)
}
