/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package adapter

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single callback after a
// quiet period. Every Trigger restarts the timer, so the callback only
// runs once the triggers stop. Flush runs a pending callback immediately,
// which callers use to guarantee nothing is lost on slide switches or
// shutdown.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	pending bool

	// runMu serializes fn invocations: a timer firing while a Flush (or
	// an earlier timer) is still inside fn must wait for it to finish.
	runMu sync.Mutex
}

// NewDebouncer builds a debouncer invoking fn after delay of quiet.
// fn runs on a timer goroutine without the debouncer's lock held;
// invocations never overlap.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules (or reschedules) the callback.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()
	d.runMu.Lock()
	d.fn()
	d.runMu.Unlock()
}

// Flush runs the callback now if one is pending. No-op otherwise.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.runMu.Lock()
	d.fn()
	d.runMu.Unlock()
}

// Stop cancels any pending callback without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
