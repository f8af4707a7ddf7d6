/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package coalescer

import "sync"

// SeriesFrameCoalescer is the per-series variant of FrameCoalescer: marks
// carry series names, and the frame callback receives the union of all names
// marked since the last frame as a defensive copy.
type SeriesFrameCoalescer struct {
	mu         sync.Mutex
	scheduler  Scheduler
	callback   func(dirty []string)
	enabled    bool
	disposed   bool
	scheduled  bool
	handle     Handle
	generation uint64
	dirty      map[string]struct{}
}

// NewSeriesFrameCoalescer creates an enabled series coalescer.
func NewSeriesFrameCoalescer(scheduler Scheduler, callback func(dirty []string)) *SeriesFrameCoalescer {
	return &SeriesFrameCoalescer{
		scheduler: scheduler,
		callback:  callback,
		enabled:   true,
		dirty:     make(map[string]struct{}),
	}
}

// MarkSeries flags one series dirty and schedules the next-frame callback if
// needed. When disabled the callback fires synchronously with just this name.
func (c *SeriesFrameCoalescer) MarkSeries(name string) {
	c.MarkAllSeries([]string{name})
}

// MarkAllSeries unions names into the dirty set. When disabled the callback
// fires synchronously with exactly these names.
func (c *SeriesFrameCoalescer) MarkAllSeries(names []string) {
	if len(names) == 0 {
		return
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if !c.enabled {
		cb := c.callback
		c.mu.Unlock()
		if cb != nil {
			cb(append([]string(nil), names...))
		}
		return
	}
	for _, name := range names {
		c.dirty[name] = struct{}{}
	}
	if !c.scheduled {
		c.scheduled = true
		gen := c.generation
		c.handle = c.scheduler.ScheduleOnce(func() { c.onFrame(gen) })
	}
	c.mu.Unlock()
}

func (c *SeriesFrameCoalescer) onFrame(gen uint64) {
	c.mu.Lock()
	if c.disposed || gen != c.generation || len(c.dirty) == 0 {
		if gen == c.generation {
			c.scheduled = false
		}
		c.mu.Unlock()
		return
	}
	names := c.takeDirtyLocked()
	c.scheduled = false
	c.generation++
	cb := c.callback
	c.mu.Unlock()
	if cb != nil {
		cb(names)
	}
}

// Flush invokes the callback immediately with the coalesced dirty set, then
// clears state. No-op when nothing is dirty.
func (c *SeriesFrameCoalescer) Flush() {
	c.mu.Lock()
	if c.disposed || len(c.dirty) == 0 {
		c.mu.Unlock()
		return
	}
	names := c.takeDirtyLocked()
	c.settleLocked()
	cb := c.callback
	c.mu.Unlock()
	if cb != nil {
		cb(names)
	}
}

// Cancel clears the dirty set without invoking the callback; an already
// scheduled frame becomes a no-op.
func (c *SeriesFrameCoalescer) Cancel() {
	c.mu.Lock()
	if !c.disposed {
		c.takeDirtyLocked()
		c.settleLocked()
	}
	c.mu.Unlock()
}

// Dispose cancels pending work and makes the coalescer permanently inert.
// Idempotent.
func (c *SeriesFrameCoalescer) Dispose() {
	c.mu.Lock()
	if !c.disposed {
		c.takeDirtyLocked()
		c.settleLocked()
		c.disposed = true
	}
	c.mu.Unlock()
}

// takeDirtyLocked drains the dirty set into a defensive copy.
func (c *SeriesFrameCoalescer) takeDirtyLocked() []string {
	names := make([]string, 0, len(c.dirty))
	for name := range c.dirty {
		names = append(names, name)
	}
	c.dirty = make(map[string]struct{})
	return names
}

func (c *SeriesFrameCoalescer) settleLocked() {
	if c.scheduled {
		c.scheduled = false
		c.generation++
		c.scheduler.Cancel(c.handle)
	}
}

// SetEnabled toggles coalescing. Disabling does not flush; subsequent marks
// fire synchronously.
func (c *SeriesFrameCoalescer) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// Enabled reports whether frame coalescing is active.
func (c *SeriesFrameCoalescer) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// DirtySeries returns a copy of the currently dirty series names. Mutating
// the returned slice has no effect on the coalescer.
func (c *SeriesFrameCoalescer) DirtySeries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.dirty))
	for name := range c.dirty {
		names = append(names, name)
	}
	return names
}
