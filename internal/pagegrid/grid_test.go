/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pagegrid

import (
	"errors"
	"testing"
)

func mustGrid(t *testing.T, x, y, w, h, entries, pages int) *Grid {
	t.Helper()
	g, err := New(x, y, w, h, entries, pages)
	if err != nil {
		t.Fatalf("New(%d,%d,%d,%d,%d,%d) error: %v", x, y, w, h, entries, pages, err)
	}
	return g
}

func TestNew_TenEntriesOnTwoPages(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 10, 2)
	if g.EntriesPerPage() != 5 {
		t.Fatalf("EntriesPerPage = %d, want 5", g.EntriesPerPage())
	}
	if g.BoxSide() != 33 || g.BoxesPerRow() != 3 || g.BoxesPerColumn() != 3 {
		t.Fatalf("unexpected geometry: %+v", g.Geometry())
	}
	if g.BoxesPerRow()*g.BoxSide() > 100 || g.BoxesPerColumn()*g.BoxSide() > 100 {
		t.Fatalf("grid overflows the area: %+v", g.Geometry())
	}
	if g.BoxesPerRow()*g.BoxesPerColumn() < 5 {
		t.Fatalf("grid has fewer cells than entries per page: %+v", g.Geometry())
	}
	if g.ActivePage() != 0 || g.Dirty() {
		t.Fatalf("expected fresh grid on page 0 and clean, got page %d dirty=%t", g.ActivePage(), g.Dirty())
	}
}

func TestNew_RejectsNonPositiveInput(t *testing.T) {
	if _, err := New(0, 0, 0, 100, 10, 2); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("zero width: got %v, want ErrInvalidDimensions", err)
	}
	if _, err := New(0, 0, 100, -1, 10, 2); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("negative height: got %v, want ErrInvalidDimensions", err)
	}
	if _, err := New(0, 0, 100, 100, 0, 2); !errors.Is(err, ErrInvalidCounts) {
		t.Fatalf("zero entries: got %v, want ErrInvalidCounts", err)
	}
	if _, err := New(0, 0, 100, 100, 10, 0); !errors.Is(err, ErrInvalidCounts) {
		t.Fatalf("zero pages: got %v, want ErrInvalidCounts", err)
	}
}

func TestResolveAbsolute(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 10, 2)
	for page := 0; page < g.TotalPages(); page++ {
		for e := 0; e < g.EntriesPerPage(); e++ {
			got, ok := g.ResolveAbsolute(page, e)
			if !ok || got != page*g.EntriesPerPage()+e {
				t.Fatalf("ResolveAbsolute(%d,%d) = %d,%t", page, e, got, ok)
			}
		}
	}
	for _, in := range [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, 5}, {1, 7}} {
		if got, ok := g.ResolveAbsolute(in[0], in[1]); ok || got != NoEntry {
			t.Fatalf("ResolveAbsolute(%d,%d) = %d,%t, want NoEntry", in[0], in[1], got, ok)
		}
	}
}

func TestLocate_SecondPage(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 10, 2)
	g.SetActivePage(1)
	// slot 4 is row 1, column 1
	if got, ok := g.Locate(40, 40); !ok || got != 9 {
		t.Fatalf("Locate(40,40) = %d,%t, want 9", got, ok)
	}
	// slot 5 exists in the 3x3 grid but not on the page
	if got, ok := g.Locate(70, 40); ok || got != NoEntry {
		t.Fatalf("Locate(70,40) = %d,%t, want NoEntry", got, ok)
	}
	if got, ok := g.Locate(0, 0); !ok || got != 5 {
		t.Fatalf("Locate(0,0) = %d,%t, want 5", got, ok)
	}
}

func TestLocate_OutsideArea(t *testing.T) {
	g := mustGrid(t, 10, 20, 100, 100, 10, 2)
	for _, p := range [][2]int{{9, 20}, {10, 19}, {110, 50}, {50, 120}, {-5, -5}, {500, 500}} {
		if got, ok := g.Locate(p[0], p[1]); ok || got != NoEntry {
			t.Fatalf("Locate(%d,%d) = %d,%t, want NoEntry", p[0], p[1], got, ok)
		}
	}
	if got, ok := g.Locate(10, 20); !ok || got != 0 {
		t.Fatalf("Locate at origin = %d,%t, want 0", got, ok)
	}
}

func TestLocate_StripPastLastColumn(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 10, 2)
	// boxes cover [0,99); x=99 lies inside the area but right of every box
	if got, ok := g.Locate(99, 0); ok {
		t.Fatalf("Locate(99,0) = %d, want NoEntry", got)
	}
}

func TestLocateInvertsBoxFor(t *testing.T) {
	grids := [][6]int{
		{0, 0, 100, 100, 10, 2},
		{15, 25, 640, 480, 24, 2},
		{-40, 7, 100, 50, 6, 2},
		{0, 0, 100, 100, 7, 2},
	}
	for _, in := range grids {
		g := mustGrid(t, in[0], in[1], in[2], in[3], in[4], in[5])
		for page := 0; page < g.TotalPages(); page++ {
			g.SetActivePage(page)
			for e := 0; e < g.EntriesPerPage(); e++ {
				b, ok := g.BoxFor(e)
				if !ok {
					continue
				}
				for _, p := range [][2]int{{b.X, b.Y}, {b.X + b.Side/2, b.Y + b.Side/2}, {b.X + b.Side - 1, b.Y + b.Side - 1}} {
					got, ok := g.Locate(p[0], p[1])
					if !ok || got != b.Entry {
						t.Fatalf("grid %v page %d slot %d: Locate(%d,%d) = %d,%t, want %d", in, page, e, p[0], p[1], got, ok, b.Entry)
					}
				}
			}
		}
	}
}

func TestBoxFor_ShortLastPage(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 7, 2)
	if g.EntriesPerPage() != 4 || g.BoxSide() != 50 || g.BoxesPerRow() != 2 {
		t.Fatalf("unexpected layout: per page %d, %+v", g.EntriesPerPage(), g.Geometry())
	}
	g.SetActivePage(1)
	b, ok := g.BoxFor(2)
	if !ok || b.Entry != 6 || b.X != 0 || b.Y != 50 || b.Side != 50 {
		t.Fatalf("BoxFor(2) = %+v,%t", b, ok)
	}
	if b, ok := g.BoxFor(3); ok || b.Entry != NoEntry {
		t.Fatalf("BoxFor(3) = %+v,%t, want NoEntry", b, ok)
	}
	if _, ok := g.BoxFor(4); ok {
		t.Fatalf("BoxFor past entries per page should fail")
	}
	if _, ok := g.BoxFor(-1); ok {
		t.Fatalf("BoxFor(-1) should fail")
	}
	if n := len(g.VisibleBoxes()); n != 3 {
		t.Fatalf("VisibleBoxes on short page = %d, want 3", n)
	}
	if _, ok := g.Locate(75, 75); ok {
		t.Fatalf("Locate on empty slot of the short page should fail")
	}
}

func TestBoxFor_UsesOffset(t *testing.T) {
	g := mustGrid(t, 30, 40, 100, 100, 10, 2)
	b, ok := g.BoxFor(4)
	if !ok || b.X != 30+33 || b.Y != 40+33 || b.Entry != 4 {
		t.Fatalf("BoxFor(4) = %+v,%t", b, ok)
	}
}

func TestNavigation(t *testing.T) {
	g := mustGrid(t, 0, 0, 90, 90, 9, 3)
	for i := 0; i < 5; i++ {
		g.NextPage(false)
	}
	if g.ActivePage() != 2 {
		t.Fatalf("NextPage without wrap should stop at last page, got %d", g.ActivePage())
	}
	g.NextPage(true)
	if g.ActivePage() != 0 {
		t.Fatalf("NextPage with wrap should land on 0, got %d", g.ActivePage())
	}
	g.PreviousPage(false)
	if g.ActivePage() != 0 {
		t.Fatalf("PreviousPage without wrap should stay on 0, got %d", g.ActivePage())
	}
	g.PreviousPage(true)
	if g.ActivePage() != 2 {
		t.Fatalf("PreviousPage with wrap should land on last page, got %d", g.ActivePage())
	}
	g.PreviousPage(false)
	if g.ActivePage() != 1 {
		t.Fatalf("PreviousPage should step back, got %d", g.ActivePage())
	}
}

func TestSetActivePage_IgnoresOutOfRange(t *testing.T) {
	g := mustGrid(t, 0, 0, 90, 90, 9, 3)
	g.SetActivePage(1)
	g.SetActivePage(3)
	g.SetActivePage(-1)
	if g.ActivePage() != 1 {
		t.Fatalf("out of range pages must be ignored, active = %d", g.ActivePage())
	}
}

func TestAddEntry_GrowsPagesMonotonically(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 10, 2)
	pages := g.TotalPages()
	for k := 1; k <= 12; k++ {
		g.AddEntry()
		if g.TotalEntries() != 10+k {
			t.Fatalf("after %d adds TotalEntries = %d", k, g.TotalEntries())
		}
		if g.TotalPages() < pages {
			t.Fatalf("page count decreased from %d to %d", pages, g.TotalPages())
		}
		pages = g.TotalPages()
		if g.EntriesPerPage()*g.TotalPages() < g.TotalEntries() {
			t.Fatalf("pages cannot hold entries: %s", g)
		}
	}
	if pages != 5 {
		t.Fatalf("22 entries at 5 per page need 5 pages, got %d", pages)
	}
	if !g.Dirty() {
		t.Fatalf("AddEntry must mark the grid dirty")
	}
	if g.EntriesPerPage() != 5 || g.BoxSide() != 33 {
		t.Fatalf("AddEntry must not touch the layout: %s %+v", g, g.Geometry())
	}
}

func TestRemoveEntry_StopsAtZero(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 10, 2)
	g.SetActivePage(1)
	for i := 0; i < 15; i++ {
		g.RemoveEntry()
		if g.TotalEntries() < 0 {
			t.Fatalf("entry count went negative")
		}
		if g.TotalPages() < 1 {
			t.Fatalf("page count dropped below 1")
		}
		if g.ActivePage() < 0 || g.ActivePage() >= g.TotalPages() {
			t.Fatalf("active page %d outside [0,%d)", g.ActivePage(), g.TotalPages())
		}
	}
	if g.TotalEntries() != 0 || g.TotalPages() != 1 {
		t.Fatalf("expected empty single page, got %s", g)
	}
}

func TestRemoveEntry_ClosesEmptyLastPage(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 6, 2)
	// 3 per page; dropping to 3 entries empties page 1
	g.SetActivePage(1)
	g.RemoveEntry()
	g.RemoveEntry()
	if g.TotalPages() != 2 {
		t.Fatalf("page 1 still holds an entry, pages = %d", g.TotalPages())
	}
	g.RemoveEntry()
	if g.TotalPages() != 1 || g.ActivePage() != 0 {
		t.Fatalf("expected last page closed and active page clamped, got %s", g)
	}
}

func TestReconcile_RederivesLayout(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 10, 2)
	for i := 0; i < 6; i++ {
		g.AddEntry()
	}
	// 16 entries on 4 pages
	g.Resize(100, 100)
	if !g.Dirty() {
		t.Fatalf("Resize must not clear the dirty flag")
	}
	g.Reconcile()
	if g.Dirty() {
		t.Fatalf("Reconcile must clear the dirty flag")
	}
	if g.TotalPages() != 4 || g.EntriesPerPage() != 4 {
		t.Fatalf("unexpected counts after reconcile: %s", g)
	}
	if g.Geometry() != (Geometry{BoxSide: 50, BoxesPerRow: 2, BoxesPerColumn: 2}) {
		t.Fatalf("unexpected geometry after reconcile: %+v", g.Geometry())
	}
}

func TestReconcile_EmptyGridKeepsOneSlot(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 1, 1)
	g.RemoveEntry()
	g.Reconcile()
	if g.EntriesPerPage() != 1 || g.BoxSide() < 1 {
		t.Fatalf("empty grid should keep a drawable layout: %s %+v", g, g.Geometry())
	}
	if len(g.VisibleBoxes()) != 0 {
		t.Fatalf("empty grid has no visible boxes")
	}
	if _, ok := g.Locate(1, 1); ok {
		t.Fatalf("empty grid locates nothing")
	}
}

func TestResize_KeepsEntriesPerPageAndPage(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 10, 2)
	g.SetActivePage(1)
	g.Resize(200, 100)
	if g.Geometry() != (Geometry{BoxSide: 50, BoxesPerRow: 4, BoxesPerColumn: 2}) {
		t.Fatalf("unexpected geometry after resize: %+v", g.Geometry())
	}
	if g.EntriesPerPage() != 5 || g.ActivePage() != 1 {
		t.Fatalf("resize changed counts or page: %s", g)
	}
	g.Resize(0, 50)
	g.Resize(50, -1)
	if g.Width() != 200 || g.Height() != 100 {
		t.Fatalf("non-positive resize must be ignored, got %dx%d", g.Width(), g.Height())
	}
}

func TestReposition_MovesHitArea(t *testing.T) {
	g := mustGrid(t, 0, 0, 100, 100, 10, 2)
	before := g.Geometry()
	g.Reposition(200, 300)
	if g.Geometry() != before {
		t.Fatalf("reposition must not change geometry")
	}
	if x, y := g.Offset(); x != 200 || y != 300 {
		t.Fatalf("Offset = %d,%d", x, y)
	}
	if _, ok := g.Locate(5, 5); ok {
		t.Fatalf("old origin should be outside after reposition")
	}
	if got, ok := g.Locate(205, 305); !ok || got != 0 {
		t.Fatalf("Locate at new origin = %d,%t", got, ok)
	}
}
