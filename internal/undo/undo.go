/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot is a reversible canvas state for one slide. Data is the
// opaque scene snapshot string; size accounting uses its length.
type Snapshot struct {
	SlideID string
	Data    string
	TS      time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; oldest entries are pruned when exceeded.
	MaxBytes int
	// MaxPerSlide limits snapshots kept per slide (0 means unlimited).
	MaxPerSlide int
	// MinInterval coalesces snapshots captured within the interval for
	// the same slide, replacing the previous one.
	MinInterval time.Duration
}

// Manager is an in-memory undo/redo stack per slide with memory
// safeguards. Safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex

	undo map[string][]Snapshot
	redo map[string][]Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records a snapshot for a slide. Within MinInterval of the last
// snapshot on the same slide it replaces the last entry instead of
// growing the stack. Any push clears that slide's redo stack.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.SlideID]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			m.totalBytes -= len(last.Data)
			m.totalBytes += len(s.Data)
			stack[n-1] = s
			m.undo[s.SlideID] = stack
			m.redo[s.SlideID] = nil
			m.enforceCapsLocked(s.SlideID)
			return
		}
	}
	stack = append(stack, s)
	m.undo[s.SlideID] = stack
	m.totalBytes += len(s.Data)
	m.redo[s.SlideID] = nil
	m.enforceCapsLocked(s.SlideID)
}

// Undo pops the newest snapshot for a slide. current is the slide's
// present state; it goes onto the redo stack so the step can be
// re-applied.
func (m *Manager) Undo(slideID, current string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[slideID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[slideID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Data)
	m.redo[slideID] = append(m.redo[slideID], Snapshot{SlideID: slideID, Data: current, TS: time.Now()})
	return s, true
}

// Redo pops the newest redo snapshot; current goes back onto the undo
// stack. The redo stack is left intact for further steps.
func (m *Manager) Redo(slideID, current string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[slideID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[slideID] = r[:len(r)-1]
	m.undo[slideID] = append(m.undo[slideID], Snapshot{SlideID: slideID, Data: current, TS: time.Now()})
	m.totalBytes += len(current)
	m.enforceCapsLocked(slideID)
	return s, true
}

// ClearSlide frees both stacks for a slide, e.g. after deletion.
func (m *Manager) ClearSlide(slideID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[slideID] {
		m.totalBytes -= len(s.Data)
	}
	delete(m.undo, slideID)
	delete(m.redo, slideID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, slides int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slides = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, slides, totalSnapshots
}

func (m *Manager) enforceCapsLocked(slideID string) {
	if m.cfg.MaxPerSlide > 0 {
		stack := m.undo[slideID]
		if len(stack) > m.cfg.MaxPerSlide {
			toDrop := len(stack) - m.cfg.MaxPerSlide
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Data)
			}
			m.undo[slideID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// global cap: drop the globally oldest snapshot until under budget
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestSlide := ""
		oldestIdx := -1
		var oldestTS time.Time
		for id, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestSlide = id
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestSlide]
		m.totalBytes -= len(stack[0].Data)
		m.undo[oldestSlide] = stack[1:]
		if len(m.undo[oldestSlide]) == 0 {
			delete(m.undo, oldestSlide)
		}
	}
}
