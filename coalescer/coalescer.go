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

// FrameCoalescer batches mark() signals into exactly one callback per
// scheduled frame. State machine: idle -> (Mark) -> dirty+scheduled ->
// (frame fires) -> idle. Any number of Marks between scheduling and the
// frame boundary still produce a single callback.
type FrameCoalescer struct {
	mu        sync.Mutex
	scheduler Scheduler
	callback  func()
	enabled   bool
	disposed  bool
	dirty     bool
	scheduled bool
	handle    Handle
	// generation invalidates frame callbacks that fire after Cancel,
	// Flush or Dispose already settled their work
	generation uint64
}

// NewFrameCoalescer creates an enabled coalescer. callback runs at frame
// boundaries on the scheduler's execution context.
func NewFrameCoalescer(scheduler Scheduler, callback func()) *FrameCoalescer {
	return &FrameCoalescer{
		scheduler: scheduler,
		callback:  callback,
		enabled:   true,
	}
}

// Mark flags pending work and schedules the next-frame callback if one is
// not already scheduled. When the coalescer is disabled the callback runs
// synchronously instead and no dirty/scheduled state is touched. Never
// blocks on the frame.
func (c *FrameCoalescer) Mark() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if !c.enabled {
		cb := c.callback
		c.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}
	c.dirty = true
	if !c.scheduled {
		c.scheduled = true
		gen := c.generation
		c.handle = c.scheduler.ScheduleOnce(func() { c.onFrame(gen) })
	}
	c.mu.Unlock()
}

// onFrame consumes the dirty state at a frame boundary.
func (c *FrameCoalescer) onFrame(gen uint64) {
	c.mu.Lock()
	if c.disposed || gen != c.generation || !c.dirty {
		if gen == c.generation {
			c.scheduled = false
		}
		c.mu.Unlock()
		return
	}
	c.dirty = false
	c.scheduled = false
	c.generation++
	cb := c.callback
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Flush invokes the callback immediately if dirty, clearing all pending
// state. No-op when not dirty.
func (c *FrameCoalescer) Flush() {
	c.mu.Lock()
	if c.disposed || !c.dirty {
		c.mu.Unlock()
		return
	}
	c.settleLocked()
	cb := c.callback
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Cancel clears dirty state without invoking the callback. A frame callback
// already scheduled becomes a no-op when it fires.
func (c *FrameCoalescer) Cancel() {
	c.mu.Lock()
	if !c.disposed {
		c.settleLocked()
	}
	c.mu.Unlock()
}

// settleLocked clears pending state and invalidates any in-flight frame.
func (c *FrameCoalescer) settleLocked() {
	c.dirty = false
	if c.scheduled {
		c.scheduled = false
		c.generation++
		c.scheduler.Cancel(c.handle)
	}
}

// Dispose cancels pending work and makes the coalescer permanently inert.
// Idempotent.
func (c *FrameCoalescer) Dispose() {
	c.mu.Lock()
	if !c.disposed {
		c.settleLocked()
		c.disposed = true
	}
	c.mu.Unlock()
}

// SetEnabled toggles coalescing. Disabling does not flush pending work; a
// Mark issued while disabled fires synchronously.
func (c *FrameCoalescer) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// Enabled reports whether frame coalescing is active.
func (c *FrameCoalescer) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// IsDirty reports whether work is pending.
func (c *FrameCoalescer) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}
