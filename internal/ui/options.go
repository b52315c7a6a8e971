/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui hosts a paged grid in a desktop window. The Fyne implementation
// is compiled with -tags fyne; other builds carry stubs so CI stays headless.
package ui

import (
	"context"
	"errors"
	"fmt"

	"gridpager/internal/config"
	"gridpager/internal/pagegrid"
	"gridpager/internal/storage"
)

// Options configures Run.
type Options struct {
	Grid config.GridConfig
	// Store and StateName are optional; when both are set the grid is restored
	// from and saved back to the store.
	Store     storage.Store
	StateName string
}

// openGrid restores the named state when available and falls back to a fresh
// grid from the configured layout.
func openGrid(ctx context.Context, opts Options, gopts ...pagegrid.Option) (*pagegrid.Grid, error) {
	if opts.Store != nil && opts.StateName != "" {
		g, err := storage.LoadGrid(ctx, opts.Store, opts.StateName, gopts...)
		switch {
		case err == nil:
			return g, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}
	}
	gc := opts.Grid
	g, err := pagegrid.New(gc.X, gc.Y, gc.Width, gc.Height, gc.Entries, gc.Pages, gopts...)
	if err != nil {
		return nil, fmt.Errorf("grid from config: %w", err)
	}
	return g, nil
}
