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

// DefaultHistoryDepth caps the number of snapshots kept per page. Entries
// beyond the cap are evicted from the oldest end.
const DefaultHistoryDepth = 50

// pageHistory is one page's ordered snapshot sequence. pos points at the
// current entry; entries before it are undo-able, entries after it are
// redo-able. pos == -1 means empty.
type pageHistory struct {
	entries [][]byte
	pos     int
}

// History keeps a bounded, pointer-based snapshot stack per page. It stores
// opaque snapshot blobs; loading them back onto a surface is the session's
// job. Branching is not supported: pushing after an undo truncates the redo
// tail.
type History struct {
	max   int
	pages map[int]*pageHistory
}

// NewHistory creates a History with the given per-page depth cap
// (DefaultHistoryDepth if max <= 0).
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistoryDepth
	}
	return &History{max: max, pages: make(map[int]*pageHistory)}
}

func (h *History) page(pageIndex int) *pageHistory {
	p := h.pages[pageIndex]
	if p == nil {
		p = &pageHistory{pos: -1}
		h.pages[pageIndex] = p
	}
	return p
}

// Push records a snapshot for the page: truncates any redo tail, appends,
// evicts from the front past the depth cap, and moves the pointer to the
// new last entry.
func (h *History) Push(pageIndex int, blob []byte) {
	p := h.page(pageIndex)
	p.entries = append(p.entries[:p.pos+1], blob)
	if len(p.entries) > h.max {
		drop := len(p.entries) - h.max
		p.entries = append([][]byte{}, p.entries[drop:]...)
	}
	p.pos = len(p.entries) - 1
}

// SeedIfEmpty records a baseline snapshot only when the page has no history
// yet. The session seeds the restored (or blank) content on surface mount
// so a full run of undos lands on the pre-first-stroke state.
func (h *History) SeedIfEmpty(pageIndex int, blob []byte) {
	p := h.page(pageIndex)
	if len(p.entries) == 0 {
		p.entries = [][]byte{blob}
		p.pos = 0
	}
}

// CanUndo reports whether there is an entry before the pointer.
func (h *History) CanUndo(pageIndex int) bool {
	p := h.pages[pageIndex]
	return p != nil && p.pos > 0
}

// CanRedo reports whether there is an entry after the pointer.
func (h *History) CanRedo(pageIndex int) bool {
	p := h.pages[pageIndex]
	return p != nil && p.pos >= 0 && p.pos < len(p.entries)-1
}

// Undo steps the pointer back and returns the snapshot at the new
// position. Returns false when nothing precedes the current entry.
func (h *History) Undo(pageIndex int) ([]byte, bool) {
	p := h.pages[pageIndex]
	if p == nil || p.pos <= 0 {
		return nil, false
	}
	p.pos--
	return p.entries[p.pos], true
}

// Redo steps the pointer forward and returns the snapshot at the new
// position. Returns false when the pointer is already at the last entry.
func (h *History) Redo(pageIndex int) ([]byte, bool) {
	p := h.pages[pageIndex]
	if p == nil || p.pos < 0 || p.pos >= len(p.entries)-1 {
		return nil, false
	}
	p.pos++
	return p.entries[p.pos], true
}

// Reset clears the page's history back to empty / pointer -1.
func (h *History) Reset(pageIndex int) { delete(h.pages, pageIndex) }

// Depth returns the number of retained entries for a page.
func (h *History) Depth(pageIndex int) int {
	p := h.pages[pageIndex]
	if p == nil {
		return 0
	}
	return len(p.entries)
}
