//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"gridpager/internal/pagegrid"
	"gridpager/internal/undo"
)

var (
	gridBackground = color.RGBA{R: 30, G: 30, B: 34, A: 255}
	boxFill        = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	boxSelected    = color.RGBA{R: 120, G: 180, B: 220, A: 255}
	boxStroke      = color.RGBA{R: 30, G: 30, B: 30, A: 255}
)

// GridView draws the active page of a pagegrid.Grid and maps taps to entries.
// The grid area follows the widget size; a dirty grid is reconciled before
// each layout.
type GridView struct {
	widget.BaseWidget

	grid     *pagegrid.Grid
	wrap     bool
	selected int // absolute entry, pagegrid.NoEntry if none
	history  *undo.Manager

	// OnSelect is called with the tapped entry.
	OnSelect func(entry int)
	// OnChange is called after navigation or entry count changes.
	OnChange func()
}

func NewGridView(g *pagegrid.Grid, wrap bool) *GridView {
	v := &GridView{grid: g, wrap: wrap, selected: pagegrid.NoEntry, history: undo.NewManager(undo.Config{MaxDepth: 200})}
	v.ExtendBaseWidget(v)
	return v
}

func (v *GridView) Grid() *pagegrid.Grid { return v.grid }
func (v *GridView) Selected() int        { return v.selected }

// Status is a short description of the page position for a status bar.
func (v *GridView) Status() string {
	return fmt.Sprintf("Page %d/%d, %d entries", v.grid.ActivePage()+1, v.grid.TotalPages(), v.grid.TotalEntries())
}

// Tapped selects the entry under the pointer.
func (v *GridView) Tapped(e *fyne.PointEvent) {
	entry, ok := v.grid.Locate(int(e.Position.X), int(e.Position.Y))
	if !ok {
		return
	}
	v.selected = entry
	if v.OnSelect != nil {
		v.OnSelect(entry)
	}
	v.Refresh()
}

func (v *GridView) Next()     { v.grid.NextPage(v.wrap); v.changed() }
func (v *GridView) Previous() { v.grid.PreviousPage(v.wrap); v.changed() }

// AddEntry appends one entry. Entry count changes can be undone.
func (v *GridView) AddEntry() {
	v.history.Push(v.grid.Snapshot())
	v.grid.AddEntry()
	v.changed()
}

// RemoveEntry drops the last entry and clears a selection that no longer exists.
func (v *GridView) RemoveEntry() {
	v.history.Push(v.grid.Snapshot())
	v.grid.RemoveEntry()
	v.dropStaleSelection()
	v.changed()
}

func (v *GridView) Undo() {
	if s, ok := v.history.Undo(v.grid.Snapshot()); ok {
		v.restore(s)
	}
}

func (v *GridView) Redo() {
	if s, ok := v.history.Redo(v.grid.Snapshot()); ok {
		v.restore(s)
	}
}

func (v *GridView) restore(s pagegrid.State) {
	// states come from this grid and always validate
	_ = v.grid.Restore(s)
	v.dropStaleSelection()
	v.changed()
}

func (v *GridView) dropStaleSelection() {
	if v.selected >= v.grid.TotalEntries() {
		v.selected = pagegrid.NoEntry
	}
}

func (v *GridView) changed() {
	if v.OnChange != nil {
		v.OnChange()
	}
	v.Refresh()
}

func (v *GridView) MinSize() fyne.Size { return fyne.NewSize(160, 120) }

// syncGrid fits the grid area to size and reconciles pending count changes.
func (v *GridView) syncGrid(size fyne.Size) {
	w, h := int(size.Width), int(size.Height)
	if w > 0 && h > 0 && (w != v.grid.Width() || h != v.grid.Height()) {
		v.grid.Resize(w, h)
	}
	v.grid.Reposition(0, 0)
	if v.grid.Dirty() {
		v.grid.Reconcile()
	}
}

func (v *GridView) CreateRenderer() fyne.WidgetRenderer {
	v.ExtendBaseWidget(v)
	bg := canvas.NewRectangle(gridBackground)
	return &gridViewRenderer{v: v, bg: bg, objects: []fyne.CanvasObject{bg}}
}

type gridViewRenderer struct {
	v       *GridView
	bg      *canvas.Rectangle
	boxes   []*canvas.Rectangle
	labels  []*canvas.Text
	objects []fyne.CanvasObject
	visible int
}

func (r *gridViewRenderer) Destroy()                     {}
func (r *gridViewRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *gridViewRenderer) MinSize() fyne.Size           { return r.v.MinSize() }
func (r *gridViewRenderer) Refresh()                     { r.Layout(r.v.Size()); canvas.Refresh(r.v) }

func (r *gridViewRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	r.v.syncGrid(size)
	boxes := r.v.grid.VisibleBoxes()
	r.ensure(len(boxes))
	for i, b := range boxes {
		side := float32(b.Side)
		rc := r.boxes[i]
		rc.Resize(fyne.NewSize(side, side))
		rc.Move(fyne.NewPos(float32(b.X), float32(b.Y)))
		if b.Entry == r.v.selected {
			rc.FillColor = boxSelected
		} else {
			rc.FillColor = boxFill
		}
		rc.Show()
		rc.Refresh()

		lb := r.labels[i]
		lb.Text = strconv.Itoa(b.Entry)
		lb.TextSize = min(14, max(6, side*0.3))
		ms := lb.MinSize()
		lb.Resize(ms)
		lb.Move(fyne.NewPos(float32(b.X)+(side-ms.Width)/2, float32(b.Y)+(side-ms.Height)/2))
		lb.Show()
		lb.Refresh()
	}
	// Hide any surplus boxes
	for j := len(boxes); j < len(r.boxes); j++ {
		r.boxes[j].Hide()
		r.labels[j].Hide()
	}
	r.visible = len(boxes)
}

// ensure grows the box and label pools to n.
func (r *gridViewRenderer) ensure(n int) {
	for len(r.boxes) < n {
		rc := canvas.NewRectangle(boxFill)
		rc.StrokeColor = boxStroke
		rc.StrokeWidth = 1
		lb := canvas.NewText("", boxStroke)
		r.boxes = append(r.boxes, rc)
		r.labels = append(r.labels, lb)
		r.objects = append(r.objects, rc, lb)
	}
}
