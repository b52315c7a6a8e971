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
	"fmt"
)

// ErrInvalidState is returned by FromState for states that cannot describe a grid.
var ErrInvalidState = errors.New("pagegrid: invalid state")

// State is a serializable snapshot of a Grid.
// Geometry is not stored; it is rederived from the area and EntriesPerPage.
type State struct {
	X              int  `json:"x"`
	Y              int  `json:"y"`
	Width          int  `json:"width"`
	Height         int  `json:"height"`
	TotalEntries   int  `json:"totalEntries"`
	TotalPages     int  `json:"totalPages"`
	EntriesPerPage int  `json:"entriesPerPage"`
	ActivePage     int  `json:"activePage"`
	Dirty          bool `json:"dirty,omitempty"`
}

// Snapshot captures the grid's current model.
func (g *Grid) Snapshot() State {
	return State{
		X:              g.area.X,
		Y:              g.area.Y,
		Width:          g.area.Width,
		Height:         g.area.Height,
		TotalEntries:   g.totalEntries,
		TotalPages:     g.totalPages,
		EntriesPerPage: g.entriesPerPage,
		ActivePage:     g.activePage,
		Dirty:          g.dirty,
	}
}

// Validate checks the structural constraints a restorable state must satisfy.
func (s State) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidState, s.Width, s.Height)
	case s.TotalEntries < 0:
		return fmt.Errorf("%w: negative entry count %d", ErrInvalidState, s.TotalEntries)
	case s.TotalPages < 1:
		return fmt.Errorf("%w: page count %d", ErrInvalidState, s.TotalPages)
	case s.EntriesPerPage < 1:
		return fmt.Errorf("%w: entries per page %d", ErrInvalidState, s.EntriesPerPage)
	case s.ActivePage < 0 || s.ActivePage >= s.TotalPages:
		return fmt.Errorf("%w: active page %d of %d", ErrInvalidState, s.ActivePage, s.TotalPages)
	}
	return nil
}

// FromState rebuilds a grid from a snapshot. A stale (dirty) snapshot is
// restored as-is, keeping its entries-per-page until the caller reconciles.
func FromState(s State, opts ...Option) (*Grid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	g := &Grid{}
	for _, o := range opts {
		o(g)
	}
	g.apply(s)
	g.derive("restore")
	return g, nil
}

// Restore replaces the grid's model with s in place, keeping its options.
func (g *Grid) Restore(s State) error {
	if err := s.Validate(); err != nil {
		return err
	}
	g.apply(s)
	g.derive("restore")
	return nil
}

func (g *Grid) apply(s State) {
	g.area = Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
	g.totalEntries = s.TotalEntries
	g.totalPages = s.TotalPages
	g.entriesPerPage = s.EntriesPerPage
	g.activePage = s.ActivePage
	g.dirty = s.Dirty
}

func (s State) String() string {
	return fmt.Sprintf("grid %dx%d@(%d,%d) entries=%d pages=%d per_page=%d active=%d dirty=%t",
		s.Width, s.Height, s.X, s.Y, s.TotalEntries, s.TotalPages, s.EntriesPerPage, s.ActivePage, s.Dirty)
}
