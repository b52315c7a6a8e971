/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pagegrid computes the layout of a paged grid of square boxes.
//
// A Grid distributes a number of entries over a number of pages, sizes the
// boxes so one page fits into a screen rectangle, maps screen points to entry
// indices and back, and keeps track of the active page. It draws nothing and
// handles no events; the host UI calls into it.
//
// Entry count changes (AddEntry, RemoveEntry) only adjust the page count and
// mark the grid dirty. The host must call Reconcile before the next render to
// bring entries-per-page and box geometry back in line with the counts.
//
// A Grid is not safe for concurrent use.
package pagegrid

import (
	"errors"
	"log/slog"
)

// NoEntry is returned together with ok=false by queries that do not hit an entry.
const NoEntry = -1

var (
	ErrInvalidDimensions = errors.New("pagegrid: width and height must be positive")
	ErrInvalidCounts     = errors.New("pagegrid: entries and pages must be positive")
)

// Box is one visible cell of the active page.
type Box struct {
	X, Y  int // top-left corner in screen coordinates
	Side  int
	Entry int // absolute entry index
}

// Grid is the page/entry layout model.
type Grid struct {
	area Rect

	totalEntries   int
	totalPages     int
	entriesPerPage int
	geom           Geometry

	activePage int
	dirty      bool

	log *slog.Logger
}

// Option configures optional Grid behavior.
type Option func(*Grid)

// WithLogger routes debug output about geometry recomputation to l.
func WithLogger(l *slog.Logger) Option {
	return func(g *Grid) { g.log = l }
}

// New creates a grid at offset (x, y) with the given size, entry count and page count.
func New(x, y, width, height, entries, pages int, opts ...Option) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if entries <= 0 || pages <= 0 {
		return nil, ErrInvalidCounts
	}
	g := &Grid{
		area:           Rect{X: x, Y: y, Width: width, Height: height},
		totalEntries:   entries,
		totalPages:     pages,
		entriesPerPage: ceilDiv(entries, pages),
	}
	for _, o := range opts {
		o(g)
	}
	g.derive("new")
	return g, nil
}

func (g *Grid) derive(op string) {
	g.geom = DeriveGeometry(g.area.Width, g.area.Height, g.entriesPerPage)
	if g.log != nil {
		g.log.Debug("geometry derived",
			slog.String("op", op),
			slog.Int("width", g.area.Width),
			slog.Int("height", g.area.Height),
			slog.Int("entries_per_page", g.entriesPerPage),
			slog.Int("box_side", g.geom.BoxSide),
			slog.Int("per_row", g.geom.BoxesPerRow),
			slog.Int("per_column", g.geom.BoxesPerColumn),
		)
	}
}

// Resize changes the area size and rederives the box geometry using the
// current entries-per-page. Non-positive sizes are ignored. The active page and
// the dirty flag are left untouched.
func (g *Grid) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	g.area.Width, g.area.Height = width, height
	g.derive("resize")
}

// Reposition moves the area offset. Geometry does not change.
func (g *Grid) Reposition(x, y int) {
	g.area.X, g.area.Y = x, y
}

// Reconcile recomputes entries-per-page from the current counts, rederives the
// geometry and clears the dirty flag.
func (g *Grid) Reconcile() {
	g.entriesPerPage = max(1, ceilDiv(g.totalEntries, g.totalPages))
	g.derive("reconcile")
	g.clampActive()
	g.dirty = false
}

// Dirty reports whether entry counts changed since the geometry was last reconciled.
func (g *Grid) Dirty() bool { return g.dirty }

// Locate maps a screen point to the absolute entry shown there on the active page.
func (g *Grid) Locate(px, py int) (int, bool) {
	if !g.area.Contains(px, py) {
		return NoEntry, false
	}
	col := (px - g.area.X) / g.geom.BoxSide
	row := (py - g.area.Y) / g.geom.BoxSide
	// the strip right of the last column belongs to no box
	if col >= g.geom.BoxesPerRow {
		return NoEntry, false
	}
	onPage := row*g.geom.BoxesPerRow + col
	if onPage >= g.entriesPerPage {
		return NoEntry, false
	}
	abs := g.activePage*g.entriesPerPage + onPage
	if abs >= g.totalEntries {
		return NoEntry, false
	}
	return abs, true
}

// BoxFor returns the box of the entryOnPage-th slot of the active page. It fails
// for slots beyond entries-per-page and for slots past the last entry.
func (g *Grid) BoxFor(entryOnPage int) (Box, bool) {
	if entryOnPage < 0 || entryOnPage >= g.entriesPerPage {
		return Box{Entry: NoEntry}, false
	}
	abs := g.activePage*g.entriesPerPage + entryOnPage
	if abs >= g.totalEntries {
		return Box{Entry: NoEntry}, false
	}
	side := g.geom.BoxSide
	return Box{
		X:     (entryOnPage%g.geom.BoxesPerRow)*side + g.area.X,
		Y:     (entryOnPage/g.geom.BoxesPerRow)*side + g.area.Y,
		Side:  side,
		Entry: abs,
	}, true
}

// VisibleBoxes returns every box of the active page in slot order.
func (g *Grid) VisibleBoxes() []Box {
	out := make([]Box, 0, g.entriesPerPage)
	for i := 0; i < g.entriesPerPage; i++ {
		b, ok := g.BoxFor(i)
		if !ok {
			break
		}
		out = append(out, b)
	}
	return out
}

// ResolveAbsolute converts a (page, slot) pair into an absolute entry index.
// It does not check the index against the entry count.
func (g *Grid) ResolveAbsolute(page, entryOnPage int) (int, bool) {
	if page < 0 || page >= g.totalPages {
		return NoEntry, false
	}
	if entryOnPage < 0 || entryOnPage >= g.entriesPerPage {
		return NoEntry, false
	}
	return page*g.entriesPerPage + entryOnPage, true
}

// SetActivePage selects page if it is in range; otherwise it does nothing.
func (g *Grid) SetActivePage(page int) {
	if page < 0 || page >= g.totalPages {
		return
	}
	g.activePage = page
}

// NextPage advances the active page. Past the last page it wraps to 0 when wrap is set.
func (g *Grid) NextPage(wrap bool) {
	switch {
	case g.activePage+1 < g.totalPages:
		g.activePage++
	case wrap:
		g.activePage = 0
	}
}

// PreviousPage moves back one page. Before page 0 it wraps to the last page when wrap is set.
func (g *Grid) PreviousPage(wrap bool) {
	switch {
	case g.activePage-1 >= 0:
		g.activePage--
	case wrap:
		g.activePage = g.totalPages - 1
	}
}

// AddEntry appends one entry, opening a new page when the existing pages are full.
func (g *Grid) AddEntry() {
	g.totalEntries++
	if g.entriesPerPage*g.totalPages < g.totalEntries {
		g.totalPages++
	}
	g.dirty = true
}

// RemoveEntry drops one entry and closes the last page once it is empty.
//
// The emptiness check uses the entries-per-page of the last reconcile, so after
// earlier additions it may keep or drop a page that a fresh layout would not.
// The page count never falls below 1.
func (g *Grid) RemoveEntry() {
	if g.totalEntries > 0 {
		g.totalEntries--
	}
	if g.totalPages > 1 && g.entriesPerPage*(g.totalPages-1) >= g.totalEntries {
		g.totalPages--
	}
	g.clampActive()
	g.dirty = true
}

func (g *Grid) clampActive() {
	if g.activePage >= g.totalPages {
		g.activePage = g.totalPages - 1
	}
	if g.activePage < 0 {
		g.activePage = 0
	}
}

func (g *Grid) Area() Rect          { return g.area }
func (g *Grid) Offset() (x, y int)  { return g.area.X, g.area.Y }
func (g *Grid) Width() int          { return g.area.Width }
func (g *Grid) Height() int         { return g.area.Height }
func (g *Grid) TotalEntries() int   { return g.totalEntries }
func (g *Grid) TotalPages() int     { return g.totalPages }
func (g *Grid) EntriesPerPage() int { return g.entriesPerPage }
func (g *Grid) Geometry() Geometry  { return g.geom }
func (g *Grid) BoxSide() int        { return g.geom.BoxSide }
func (g *Grid) BoxesPerRow() int    { return g.geom.BoxesPerRow }
func (g *Grid) BoxesPerColumn() int { return g.geom.BoxesPerColumn }
func (g *Grid) ActivePage() int     { return g.activePage }
func (g *Grid) String() string      { return g.Snapshot().String() }
