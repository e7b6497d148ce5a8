/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package nav tracks where the reader is inside a book (page and module)
// and how the page is viewed (zoom, pan, view mode). Both states are
// consumed by the page-rendering layer; neither owns any rendering.
package nav

import (
	"flowbook/internal/domain"
)

// Navigator holds the current page and module position for a loaded book.
// The module index is always derived from the page: the first module whose
// range contains the current page wins, defaulting to module 0.
type Navigator struct {
	book   *domain.Book
	page   int
	module int
}

// NewNavigator returns a navigator with no book loaded. All operations on
// an unloaded navigator are no-ops and TotalPages reports 0.
func NewNavigator() *Navigator { return &Navigator{} }

// SetBook loads a book and resets the position to its first page. Passing
// nil unloads.
func (n *Navigator) SetBook(b *domain.Book) {
	n.book = b
	n.page = 0
	n.module = 0
	if b != nil {
		n.module = b.ModuleForPage(0)
	}
}

// CurrentPage returns the current 0-based page index.
func (n *Navigator) CurrentPage() int { return n.page }

// CurrentModule returns the derived module index.
func (n *Navigator) CurrentModule() int { return n.module }

// TotalPages returns the page count of the loaded book, or 0.
func (n *Navigator) TotalPages() int { return n.book.PageCount() }

// GoToPage clamps the target into [0, pageCount-1], moves there, and
// recomputes the module index. No-op when no book is loaded.
func (n *Navigator) GoToPage(i int) {
	if n.book == nil || n.book.PageCount() == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if max := n.book.PageCount() - 1; i > max {
		i = max
	}
	n.page = i
	n.module = n.book.ModuleForPage(i)
}

// NextPage steps forward one page; at the last page it is a no-op, not a
// wraparound.
func (n *Navigator) NextPage() { n.GoToPage(n.page + 1) }

// PrevPage steps back one page; at page 0 it is a no-op.
func (n *Navigator) PrevPage() { n.GoToPage(n.page - 1) }

// GoToModule jumps to the module's start page. Out-of-range module indices
// are ignored.
func (n *Navigator) GoToModule(m int) {
	if n.book == nil || m < 0 || m >= len(n.book.Modules) {
		return
	}
	n.GoToPage(n.book.Modules[m].StartPage)
}
