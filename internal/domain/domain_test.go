/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import "testing"

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
		err  bool
	}{
		{"#ff0000", Color{R: 255, A: 255}, false},
		{"00ff00", Color{G: 255, A: 255}, false},
		{"#fff", Color{R: 255, G: 255, B: 255, A: 255}, false},
		{" #1a2b3c ", Color{R: 0x1a, G: 0x2b, B: 0x3c, A: 255}, false},
		{"#12345", Color{}, true},
		{"#zzzzzz", Color{}, true},
		{"", Color{}, true},
	}
	for _, c := range cases {
		got, err := ParseHexColor(c.in)
		if c.err {
			if err == nil {
				t.Fatalf("%q: expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("%q: got %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestColorOpacityAndHex(t *testing.T) {
	c := Color{R: 255, G: 235, B: 59, A: 255}
	if got := c.WithOpacity(0.4).A; got != 102 {
		t.Fatalf("opacity 0.4: alpha %d", got)
	}
	if got := c.WithOpacity(-1).A; got != 0 {
		t.Fatalf("clamped low: alpha %d", got)
	}
	if got := c.WithOpacity(2).A; got != 255 {
		t.Fatalf("clamped high: alpha %d", got)
	}
	if got := c.Hex(); got != "#ffeb3b" {
		t.Fatalf("hex: %q", got)
	}
}

func TestModuleForPage(t *testing.T) {
	b := Book{
		Modules: []Module{
			{Title: "A", StartPage: 0, EndPage: 3},
			{Title: "B", StartPage: 4, EndPage: 6},
			{Title: "C", StartPage: 7, EndPage: 9},
		},
		Pages: make([]Page, 10),
	}
	if got := b.ModuleForPage(5); got != 1 {
		t.Fatalf("page 5: module %d", got)
	}
	if got := b.ModuleForPage(9); got != 2 {
		t.Fatalf("page 9: module %d", got)
	}
	// A page covered by no module maps to the first module
	if got := b.ModuleForPage(42); got != 0 {
		t.Fatalf("uncovered page: module %d", got)
	}
}

func TestModuleForPageOverlapFirstWins(t *testing.T) {
	b := Book{
		Modules: []Module{
			{Title: "A", StartPage: 0, EndPage: 5},
			{Title: "B", StartPage: 3, EndPage: 9},
		},
	}
	if got := b.ModuleForPage(4); got != 0 {
		t.Fatalf("overlap: module %d, want first match", got)
	}
}
