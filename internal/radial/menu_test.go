/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package radial

import (
	"context"
	"testing"

	"flowbook/internal/annotate"
	"flowbook/internal/domain"
)

func testSession(t *testing.T) *annotate.Session {
	t.Helper()
	ss := annotate.NewSession(nil)
	book := &domain.Book{ID: "bk-radial", Pages: make([]domain.Page, 3)}
	if err := ss.OpenBook(context.Background(), book); err != nil {
		t.Fatalf("open book: %v", err)
	}
	return ss
}

func TestItemOrderStable(t *testing.T) {
	items := Items()
	if len(items) != 3 {
		t.Fatalf("item count: %d", len(items))
	}
	if items[0] != ItemDraw || items[1] != ItemHighlight || items[2] != ItemWhiteboard {
		t.Fatalf("item order changed: %v", items)
	}
}

func TestOpenCloseHover(t *testing.T) {
	m := NewMenu(testSession(t), Hooks{})
	if m.IsOpen() {
		t.Fatalf("new menu is open")
	}
	m.Hover(1)
	if m.Hovered() != -1 {
		t.Fatalf("hover while closed took effect")
	}

	m.Open(100, 200)
	if !m.IsOpen() {
		t.Fatalf("menu not open")
	}
	if x, y := m.Anchor(); x != 100 || y != 200 {
		t.Fatalf("anchor: %v,%v", x, y)
	}
	m.Hover(2)
	if m.Hovered() != 2 {
		t.Fatalf("hover: %d", m.Hovered())
	}
	m.Hover(9)
	if m.Hovered() != -1 {
		t.Fatalf("out-of-range hover not cleared")
	}
	m.Close()
	if m.IsOpen() || m.Hovered() != -1 {
		t.Fatalf("close did not reset state")
	}
}

func TestActivateDrawSelectsPenAndForcesVisibility(t *testing.T) {
	ss := testSession(t)
	ss.SetAnnotationsVisible(false)
	var toolbarItem = Item(255)
	m := NewMenu(ss, Hooks{OpenToolbar: func(it Item) { toolbarItem = it }})
	m.Open(0, 0)

	if !m.Activate(ItemDraw) {
		t.Fatalf("activation not consumed")
	}
	if ss.Tools().ActiveTool() != annotate.ToolPen {
		t.Fatalf("tool: %v", ss.Tools().ActiveTool())
	}
	if !ss.AnnotationsVisible() {
		t.Fatalf("visibility not forced on")
	}
	if toolbarItem != ItemDraw {
		t.Fatalf("toolbar hook: %v", toolbarItem)
	}
	if m.IsOpen() {
		t.Fatalf("menu still open after activation")
	}
}

func TestActivateHighlight(t *testing.T) {
	ss := testSession(t)
	m := NewMenu(ss, Hooks{})
	m.Open(0, 0)
	m.Activate(ItemHighlight)
	if ss.Tools().ActiveTool() != annotate.ToolHighlight {
		t.Fatalf("tool: %v", ss.Tools().ActiveTool())
	}
}

func TestActivateWhiteboard(t *testing.T) {
	ss := testSession(t)
	opened := false
	m := NewMenu(ss, Hooks{OpenWhiteboard: func() { opened = true }})
	m.Open(0, 0)
	m.Activate(ItemWhiteboard)
	if !opened {
		t.Fatalf("whiteboard hook not invoked")
	}
	if ss.Tools().ActiveTool() == annotate.ToolPen || ss.Tools().ActiveTool() == annotate.ToolHighlight {
		t.Fatalf("whiteboard changed the drawing tool")
	}
}

func TestBackdropClickClosesAndConsumes(t *testing.T) {
	m := NewMenu(testSession(t), Hooks{})
	m.Open(500, 500)
	// Far outside the ring
	if !m.ActivateAt(900, 900) {
		t.Fatalf("backdrop click not consumed")
	}
	if m.IsOpen() {
		t.Fatalf("backdrop click did not close")
	}
	// Closed menu does not consume
	if m.ActivateAt(500, 400) {
		t.Fatalf("closed menu consumed an event")
	}
}

func TestActivateAtHitsSegments(t *testing.T) {
	ss := testSession(t)
	m := NewMenu(ss, Hooks{})
	midR := (InnerRadius + OuterRadius) / 2

	// Straight left at mid radius falls in segment 0 (draw)
	m.Open(500, 500)
	if !m.ActivateAt(500-midR, 500-1) {
		t.Fatalf("left hit not consumed")
	}
	if ss.Tools().ActiveTool() != annotate.ToolPen {
		t.Fatalf("left hit selected %v", ss.Tools().ActiveTool())
	}

	// Straight up hits the middle segment (highlight)
	m.Open(500, 500)
	m.ActivateAt(500, 500-midR)
	if ss.Tools().ActiveTool() != annotate.ToolHighlight {
		t.Fatalf("top hit selected %v", ss.Tools().ActiveTool())
	}

	// Inside the inner radius counts as backdrop
	m.Open(500, 500)
	before := ss.Tools().ActiveTool()
	m.ActivateAt(500, 500-10)
	if ss.Tools().ActiveTool() != before {
		t.Fatalf("dead-zone click activated a tool")
	}
	if m.IsOpen() {
		t.Fatalf("dead-zone click did not close")
	}
}

func TestGeometryLayoutAndHitTestAgree(t *testing.T) {
	const ax, ay = 300.0, 300.0
	segs := Layout(ax, ay, itemCount)
	if len(segs) != itemCount {
		t.Fatalf("segments: %d", len(segs))
	}
	for _, seg := range segs {
		if got := HitTest(ax, ay, seg.IconX, seg.IconY, itemCount); got != seg.Index {
			t.Fatalf("icon center of segment %d hit-tests to %d", seg.Index, got)
		}
	}
	// Below the anchor is always outside the upward-opening half ring
	if got := HitTest(ax, ay, ax, ay+(InnerRadius+OuterRadius)/2, itemCount); got != -1 {
		t.Fatalf("below-anchor point hit segment %d", got)
	}
}
