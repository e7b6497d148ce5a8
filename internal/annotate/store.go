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
	"log/slog"
	"time"

	applog "flowbook/internal/log"
	"flowbook/internal/storage"
)

// BlobStore is the durable backend holding one versioned envelope per
// book. storage.Store (embedded SQLite) is the normal implementation; the
// sync backend provides another.
type BlobStore interface {
	LoadEnvelope(ctx context.Context, bookID string) storage.Envelope
	SaveEnvelope(ctx context.Context, env storage.Envelope) error
}

// Store keeps the in-memory per-book annotation map and mirrors it into a
// durable BlobStore. Durable writes are whole-map replacements,
// synchronous and best-effort: a failed save is logged and never stops
// page navigation.
type Store struct {
	log     *slog.Logger
	durable BlobStore
	env     storage.Envelope
	active  bool
}

// NewStore creates a Store on the durable backend. durable may be nil, in
// which case records live only in memory (used by tests and previews).
func NewStore(durable BlobStore) *Store {
	return &Store{log: applog.WithComponent("annotate"), durable: durable}
}

// InitializeBook loads the durable envelope for the book. Missing or
// corrupt durable state yields an empty map; this never fails.
func (s *Store) InitializeBook(ctx context.Context, bookID string) {
	if s.durable != nil {
		s.env = s.durable.LoadEnvelope(ctx, bookID)
	} else {
		s.env = storage.NewEnvelope(bookID)
	}
	if s.env.Pages == nil {
		s.env.Pages = map[int][]byte{}
	}
	s.active = true
}

// Teardown clears the in-memory state. It does not write; callers flush
// first if they want the final state persisted.
func (s *Store) Teardown() {
	s.env = storage.Envelope{}
	s.active = false
}

// Active reports whether a book session is initialized.
func (s *Store) Active() bool { return s.active }

// BookID returns the active book id, or "".
func (s *Store) BookID() string { return s.env.BookID }

// Get returns the stored record for a page. Absence means "no annotations
// yet".
func (s *Store) Get(pageIndex int) ([]byte, bool) {
	blob, ok := s.env.Pages[pageIndex]
	return blob, ok
}

// PageCount returns the number of pages with records.
func (s *Store) PageCount() int { return len(s.env.Pages) }

// SetRecord updates the in-memory record only. Undo/redo mirrors loaded
// snapshots through here; the durable write happens on the next SavePage
// or Flush.
func (s *Store) SetRecord(pageIndex int, blob []byte) {
	if !s.active {
		return
	}
	s.env.Pages[pageIndex] = blob
}

// SavePage updates the page record and, when a book session is active,
// writes the full per-book map durably. Storage failures are swallowed
// after logging.
func (s *Store) SavePage(ctx context.Context, pageIndex int, blob []byte) {
	if !s.active {
		return
	}
	s.env.Pages[pageIndex] = blob
	s.flush(ctx)
}

// DeletePage removes the page record and persists the shrunken map.
func (s *Store) DeletePage(ctx context.Context, pageIndex int) {
	if !s.active {
		return
	}
	delete(s.env.Pages, pageIndex)
	s.flush(ctx)
}

// Flush writes the current in-memory map durably. Used on teardown and by
// crash recovery.
func (s *Store) Flush(ctx context.Context) {
	if !s.active {
		return
	}
	s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) {
	if s.durable == nil {
		return
	}
	s.env.UpdatedAt = time.Now()
	if err := s.durable.SaveEnvelope(ctx, s.env); err != nil {
		applog.WithBook(s.log, s.env.BookID).Warn("durable annotation save failed",
			slog.Any("err", err))
	}
}
