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
	"log/slog"

	"flowbook/internal/domain"
	"flowbook/internal/ink"
	applog "flowbook/internal/log"
)

// Tool identifies the active annotation tool.
type Tool uint8

const (
	ToolNone Tool = iota
	ToolSelect
	ToolPen
	ToolHighlight
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolPen:
		return "pen"
	case ToolHighlight:
		return "highlight"
	default:
		return "none"
	}
}

// Highlighter rendering constants. The highlighter always draws a wide,
// semi-transparent stroke; its width is not user-configurable, unlike pen
// width.
const (
	HighlightOpacity = 0.4
	HighlightWidth   = 20
)

// DefaultPenWidth is the pen width before the user picks one.
const DefaultPenWidth = 2

// Controller configures stroke properties on the active surface. Tool
// settings are global to the session, not per-page: values set while no
// surface is active are stored and picked up by the next surface. Every
// setter is a silent no-op on the surface side when nothing is active; the
// UI may call them before any page has mounted.
type Controller struct {
	log            *slog.Logger
	reg            *Registry
	tool           Tool
	penColor       domain.Color
	penWidth       float32
	highlightColor domain.Color
}

// NewController creates a controller over the registry with default pen
// (black) and highlighter (yellow) colors.
func NewController(reg *Registry) *Controller {
	return &Controller{
		log:            applog.WithComponent("tools"),
		reg:            reg,
		tool:           ToolNone,
		penColor:       domain.Color{A: 255},
		penWidth:       DefaultPenWidth,
		highlightColor: domain.Color{R: 255, G: 235, B: 59, A: 255},
	}
}

// ActiveTool returns the current tool.
func (c *Controller) ActiveTool() Tool { return c.tool }

// SetActiveTool switches the tool and reconfigures the active surface:
// interactive drawing for pen/highlight, selection pass-through otherwise.
func (c *Controller) SetActiveTool(t Tool) {
	c.tool = t
	c.Apply(c.reg.Active())
}

// SetPenColor updates the pen color from a hex string. A malformed value
// is logged and ignored.
func (c *Controller) SetPenColor(hex string) {
	col, err := domain.ParseHexColor(hex)
	if err != nil {
		c.log.Warn("ignoring bad pen color", slog.String("value", hex), slog.Any("err", err))
		return
	}
	c.penColor = col
	if c.tool == ToolPen {
		c.Apply(c.reg.Active())
	}
}

// SetPenWidth updates the pen stroke width. Non-positive widths are
// ignored.
func (c *Controller) SetPenWidth(w float32) {
	if w <= 0 {
		c.log.Warn("ignoring non-positive pen width", slog.Float64("width", float64(w)))
		return
	}
	c.penWidth = w
	if c.tool == ToolPen {
		c.Apply(c.reg.Active())
	}
}

// SetHighlightColor updates the highlighter color from a hex string. The
// stored color stays fully opaque; the fixed opacity is applied when the
// brush is built.
func (c *Controller) SetHighlightColor(hex string) {
	col, err := domain.ParseHexColor(hex)
	if err != nil {
		c.log.Warn("ignoring bad highlight color", slog.String("value", hex), slog.Any("err", err))
		return
	}
	c.highlightColor = col
	if c.tool == ToolHighlight {
		c.Apply(c.reg.Active())
	}
}

// PenColor returns the stored pen color.
func (c *Controller) PenColor() domain.Color { return c.penColor }

// PenWidth returns the stored pen width.
func (c *Controller) PenWidth() float32 { return c.penWidth }

// HighlightColor returns the stored highlighter base color (opaque).
func (c *Controller) HighlightColor() domain.Color { return c.highlightColor }

// Apply pushes the current tool configuration onto a surface. Called when
// the tool changes and when a surface becomes active, so new surfaces pick
// up settings chosen before they mounted. nil surfaces are tolerated.
func (c *Controller) Apply(s *ink.Surface) {
	if s == nil {
		return
	}
	switch c.tool {
	case ToolPen:
		s.SetBrush(ink.Brush{Kind: ink.BrushPen, Color: c.penColor, Width: c.penWidth})
		s.SetDrawingMode(true)
	case ToolHighlight:
		s.SetBrush(ink.Brush{
			Kind:  ink.BrushHighlight,
			Color: c.highlightColor.WithOpacity(HighlightOpacity),
			Width: HighlightWidth,
		})
		s.SetDrawingMode(true)
	default:
		s.SetDrawingMode(false)
	}
}
