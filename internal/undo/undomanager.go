/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded undo/redo stacks of grid states.
package undo

import (
	"sync"
	"time"

	"gridpager/internal/pagegrid"
)

// Snapshot is a grid state captured before a change.
type Snapshot struct {
	State pagegrid.State
	TS    time.Time
}

// Config controls depth caps and coalescing behavior.
type Config struct {
	// MaxDepth limits the number of undo steps kept (0 means 100).
	MaxDepth int
	// MinInterval coalesces snapshots captured within the interval: the older
	// snapshot is kept so one undo reverts the whole burst.
	MinInterval time.Duration
}

// Manager provides in-memory undo/redo of grid states.
// It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo []Snapshot
	redo []Snapshot
	now  func() time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 100
	}
	return &Manager{cfg: cfg, now: time.Now}
}

// Push records the state before a change. Any new change invalidates redo.
func (m *Manager) Push(s pagegrid.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.redo = nil
	if n := len(m.undo); n > 0 && m.cfg.MinInterval > 0 && now.Sub(m.undo[n-1].TS) < m.cfg.MinInterval {
		// coalesce: keep the older state, extend the burst
		m.undo[n-1].TS = now
		return
	}
	m.undo = append(m.undo, Snapshot{State: s, TS: now})
	if len(m.undo) > m.cfg.MaxDepth {
		// drop the oldest extras
		m.undo = append([]Snapshot(nil), m.undo[len(m.undo)-m.cfg.MaxDepth:]...)
	}
}

// Undo returns the state to go back to and remembers current for Redo.
func (m *Manager) Undo(current pagegrid.State) (pagegrid.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undo)
	if n == 0 {
		return pagegrid.State{}, false
	}
	s := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, Snapshot{State: current, TS: m.now()})
	return s.State, true
}

// Redo reapplies the last undone change and remembers current for Undo.
func (m *Manager) Redo(current pagegrid.State) (pagegrid.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redo)
	if n == 0 {
		return pagegrid.State{}, false
	}
	s := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, Snapshot{State: current, TS: time.Time{}})
	return s.State, true
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo = nil, nil
}

// Stats returns the stack depths for diagnostics.
func (m *Manager) Stats() (undoDepth, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}
