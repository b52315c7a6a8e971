/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gridpager/internal/pagegrid"
)

var (
	// ErrNotFound is returned when no state is stored under a name.
	ErrNotFound = errors.New("grid state not found")
	// ErrInvalidName is returned for empty or overlong state names.
	ErrInvalidName = errors.New("invalid grid state name")
)

// MaxNameLen bounds state names so they stay usable as file names and keys.
const MaxNameLen = 128

// StateInfo is a stored grid state with its bookkeeping.
type StateInfo struct {
	Name      string
	State     pagegrid.State
	UpdatedAt time.Time
}

// Store persists named grid view states. Only layout and navigation state is
// kept; the entries shown in the grid are owned by the host.
type Store interface {
	Save(ctx context.Context, name string, s pagegrid.State) error
	Load(ctx context.Context, name string) (pagegrid.State, error)
	List(ctx context.Context) ([]StateInfo, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// NormalizeName trims and checks a state name.
func NormalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" || len(n) > MaxNameLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return n, nil
}

// SaveGrid snapshots g and stores it under name.
func SaveGrid(ctx context.Context, st Store, name string, g *pagegrid.Grid) error {
	return st.Save(ctx, name, g.Snapshot())
}

// LoadGrid restores the grid stored under name.
func LoadGrid(ctx context.Context, st Store, name string, opts ...pagegrid.Option) (*pagegrid.Grid, error) {
	s, err := st.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	g, err := pagegrid.FromState(s, opts...)
	if err != nil {
		return nil, fmt.Errorf("restore %q: %w", name, err)
	}
	return g, nil
}
