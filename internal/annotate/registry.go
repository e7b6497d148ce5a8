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
	"flowbook/internal/ink"
)

// Registry tracks the live drawing surface for every currently-mounted
// page. It holds non-owning references only: the page component that
// mounted a surface creates and disposes it, and the registry must never be
// the reason a surface outlives its page. In double-page view two surfaces
// are registered at once but only the active one receives tool input.
type Registry struct {
	surfaces map[int]*ink.Surface
	active   *ink.Surface
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[int]*ink.Surface)}
}

// Register stores the surface reference for its page index, replacing any
// previous reference for that page.
func (r *Registry) Register(s *ink.Surface) {
	if s == nil {
		return
	}
	r.surfaces[s.PageIndex()] = s
}

// Unregister drops the reference for a page. The session flushes a save
// before calling this; the registry itself only forgets.
func (r *Registry) Unregister(pageIndex int) {
	if r.active != nil && r.active.PageIndex() == pageIndex {
		r.active = nil
	}
	delete(r.surfaces, pageIndex)
}

// Lookup returns the surface for a page, or nil if that page is not
// mounted.
func (r *Registry) Lookup(pageIndex int) *ink.Surface { return r.surfaces[pageIndex] }

// Active returns the surface currently receiving tool input, or nil.
func (r *Registry) Active() *ink.Surface { return r.active }

// SetActive switches tool input to the given surface. Passing nil detaches
// tool input entirely (e.g. during a page transition).
func (r *Registry) SetActive(s *ink.Surface) { r.active = s }

// Mounted returns the number of registered surfaces.
func (r *Registry) Mounted() int { return len(r.surfaces) }
