/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package radial implements the transient radial tool-selector overlay: a
// half-ring of segments anchored at a long-press position. Opening,
// hovering and activating are a small state machine; the hosting view only
// renders what the menu reports.
package radial

import (
	"log/slog"

	"flowbook/internal/annotate"
	applog "flowbook/internal/log"
)

// Item is one selectable segment. The order of these constants is the
// segment order in the ring and must stay stable: hit-testing and tests
// rely on it.
type Item uint8

const (
	ItemDraw Item = iota
	ItemHighlight
	ItemWhiteboard

	itemCount = 3
)

func (it Item) String() string {
	switch it {
	case ItemDraw:
		return "draw"
	case ItemHighlight:
		return "highlight"
	case ItemWhiteboard:
		return "whiteboard"
	default:
		return "unknown"
	}
}

// Items returns the menu items in ring order.
func Items() []Item { return []Item{ItemDraw, ItemHighlight, ItemWhiteboard} }

// Hooks are the external actions a menu activation can trigger. Nil hooks
// are tolerated.
type Hooks struct {
	// OpenToolbar opens the detail toolbar for the selected drawing tool.
	OpenToolbar func(item Item)
	// OpenWhiteboard opens the external whiteboard view.
	OpenWhiteboard func()
}

// Menu is the radial tool menu state machine. While open it tracks a
// hovered segment used only for visual feedback; hover has no side effect
// until activation. The menu consumes its activation events before the
// pan/zoom gesture layer: every input method returns whether the event was
// handled, and callers must not forward handled events.
type Menu struct {
	log     *slog.Logger
	session *annotate.Session
	hooks   Hooks

	open    bool
	anchorX float64
	anchorY float64
	hovered int
}

// NewMenu creates a closed menu bound to the engine session.
func NewMenu(session *annotate.Session, hooks Hooks) *Menu {
	return &Menu{log: applog.WithComponent("radial"), session: session, hooks: hooks, hovered: -1}
}

// IsOpen reports whether the menu is showing.
func (m *Menu) IsOpen() bool { return m.open }

// Anchor returns the pointer position the menu is anchored at.
func (m *Menu) Anchor() (x, y float64) { return m.anchorX, m.anchorY }

// Hovered returns the hovered segment index, or -1.
func (m *Menu) Hovered() int { return m.hovered }

// Open shows the menu anchored at the given pointer position. Opening an
// already-open menu just moves the anchor.
func (m *Menu) Open(x, y float64) {
	m.open = true
	m.anchorX, m.anchorY = x, y
	m.hovered = -1
}

// Close hides the menu and clears the transient hover. Backdrop clicks and
// the Escape key route here.
func (m *Menu) Close() {
	m.open = false
	m.hovered = -1
}

// Hover updates the hovered segment for visual feedback. Out-of-range
// indices clear the hover. No-op while closed.
func (m *Menu) Hover(segment int) {
	if !m.open {
		return
	}
	if segment < 0 || segment >= itemCount {
		m.hovered = -1
		return
	}
	m.hovered = segment
}

// ActivateAt hit-tests a pointer position and activates the segment under
// it. Returns true when the event was consumed (a segment activated or the
// backdrop closed the menu); false only while the menu is closed.
func (m *Menu) ActivateAt(x, y float64) bool {
	if !m.open {
		return false
	}
	seg := HitTest(m.anchorX, m.anchorY, x, y, itemCount)
	if seg < 0 {
		// Backdrop click.
		m.Close()
		return true
	}
	return m.Activate(Item(seg))
}

// Activate applies the segment's action and closes the menu:
//   - draw/highlight select the tool, force annotation visibility on, and
//     open the tool's detail toolbar
//   - whiteboard invokes the external whiteboard action
func (m *Menu) Activate(item Item) bool {
	if !m.open {
		return false
	}
	switch item {
	case ItemDraw:
		m.selectTool(annotate.ToolPen, item)
	case ItemHighlight:
		m.selectTool(annotate.ToolHighlight, item)
	case ItemWhiteboard:
		if m.hooks.OpenWhiteboard != nil {
			m.hooks.OpenWhiteboard()
		}
	default:
		m.log.Warn("unknown radial item", slog.Int("item", int(item)))
	}
	m.Close()
	return true
}

func (m *Menu) selectTool(t annotate.Tool, item Item) {
	m.session.Tools().SetActiveTool(t)
	if !m.session.AnnotationsVisible() {
		m.session.SetAnnotationsVisible(true)
	}
	if m.hooks.OpenToolbar != nil {
		m.hooks.OpenToolbar(item)
	}
}
