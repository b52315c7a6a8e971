/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders layout sheets of a paged grid: one PDF page or one
// PNG file per grid page, each box outlined and labeled with its absolute
// entry number. Exports walk the pages through the grid itself and restore the
// active page afterwards. The geometry is drawn as it stands, so hosts should
// reconcile a dirty grid first.
package export

import (
	"errors"
	"image/color"

	"gridpager/internal/pagegrid"
)

var ErrNilGrid = errors.New("export: grid is nil")

var (
	defaultBoxColor     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	defaultOutlineColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	defaultLabelColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
)

func orDefault(c, def color.RGBA) color.RGBA {
	if c == (color.RGBA{}) {
		return def
	}
	return c
}

// pageIndexes returns the pages to export: all of them when specific is empty,
// otherwise the in-range subset of specific.
func pageIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, 0, len(specific))
	for _, p := range specific {
		if p >= 0 && p < total {
			out = append(out, p)
		}
	}
	return out
}

// eachPage activates every selected page in turn and calls fn with its boxes.
// The previously active page is restored on return.
func eachPage(g *pagegrid.Grid, pages []int, fn func(page int, boxes []pagegrid.Box) error) error {
	prev := g.ActivePage()
	defer g.SetActivePage(prev)
	for _, p := range pageIndexes(g.TotalPages(), pages) {
		g.SetActivePage(p)
		if err := fn(p, g.VisibleBoxes()); err != nil {
			return err
		}
	}
	return nil
}
