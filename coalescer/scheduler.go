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

// Package coalescer batches high-frequency dirty signals into one callback
// per rendering frame. The frame boundary itself is owned by the host: a
// render loop injects its Scheduler and the coalescer only asks it for
// "call me once at the next frame". A timer-backed scheduler is provided for
// hosts without a render loop.
package coalescer

import (
	"sync"
	"time"
)

// Handle identifies one scheduled frame callback.
type Handle int64

// Scheduler is the injected host frame scheduler. ScheduleOnce arranges for
// fn to run at the next frame boundary and returns a handle usable with
// Cancel. A canceled handle must never fire.
type Scheduler interface {
	ScheduleOnce(fn func()) Handle
	Cancel(h Handle)
}

// TimerScheduler approximates frame boundaries with a fixed interval timer.
// It stands in for a render host in standalone use and in examples; the
// engine itself never assumes it.
type TimerScheduler struct {
	interval time.Duration
	mu       sync.Mutex
	next     Handle
	timers   map[Handle]*time.Timer
}

// NewTimerScheduler creates a scheduler firing callbacks after interval.
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &TimerScheduler{
		interval: interval,
		timers:   make(map[Handle]*time.Timer),
	}
}

// ScheduleOnce runs fn once after the frame interval.
func (s *TimerScheduler) ScheduleOnce(fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	s.timers[h] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		_, live := s.timers[h]
		delete(s.timers, h)
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	return h
}

// Cancel stops a pending callback. Canceling an unknown or already-fired
// handle is a no-op.
func (s *TimerScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}
