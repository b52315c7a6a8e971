/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pagegrid

// Integer screen-space geometry for the paged grid.
// All values are in screen units (pixels); boxes are always square.

import "math"

// CorrectionPasses is the number of box-side correction rounds applied after
// the ideal side has been estimated. The correction is a bounded heuristic, not
// a convergent search; two rounds stabilize the expected input ranges.
const CorrectionPasses = 2

// Rect is an axis-aligned screen rectangle defined by its top-left corner and size.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether the point lies inside the half-open rectangle
// [X, X+Width) x [Y, Y+Height).
func (r Rect) Contains(px, py int) bool {
	lx, ly := px-r.X, py-r.Y
	return lx >= 0 && ly >= 0 && lx < r.Width && ly < r.Height
}

// Geometry is the derived box layout for one page.
type Geometry struct {
	BoxSide        int
	BoxesPerRow    int
	BoxesPerColumn int
}

// Cells returns the number of grid cells available on a page.
func (g Geometry) Cells() int { return g.BoxesPerRow * g.BoxesPerColumn }

// DeriveGeometry tiles a width x height area with entriesPerPage equal squares.
//
// The ideal side s = sqrt(width*height/entriesPerPage) treats the area as if it
// could be covered without waste. Row and column counts are rounded up from s and
// the side is then shrunk so the grid fits the axis that overflows the most.
// Non-positive inputs yield the zero Geometry.
func DeriveGeometry(width, height, entriesPerPage int) Geometry {
	if width <= 0 || height <= 0 || entriesPerPage <= 0 {
		return Geometry{}
	}
	s := math.Sqrt(float64(width) * float64(height) / float64(entriesPerPage))
	g := Geometry{
		BoxSide:        int(s),
		BoxesPerRow:    int(math.Ceil(float64(width) / s)),
		BoxesPerColumn: int(math.Ceil(float64(height) / s)),
	}
	for i := 0; i < CorrectionPasses; i++ {
		overX := g.BoxesPerRow*g.BoxSide - width
		overY := g.BoxesPerColumn*g.BoxSide - height
		if overY-overX < 0 {
			g.BoxSide = width / g.BoxesPerRow
		} else {
			g.BoxSide = height / g.BoxesPerColumn
		}
	}
	// very dense pages on tiny areas round the side down to zero
	if g.BoxSide < 1 {
		g.BoxSide = 1
	}
	return g
}

// ceilDiv returns ceil(a/b) for a >= 0 and b > 0.
func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
