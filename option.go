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

package livechart

import (
	"io"
	"time"

	"github.com/rulego/livechart/coalescer"
	"github.com/rulego/livechart/controller"
	"github.com/rulego/livechart/logger"
	"github.com/rulego/livechart/retention"
	"github.com/rulego/livechart/types"
)

// Option modifies the engine's default behavior.
type Option func(*controller.Options)

// WithCapacity sets the per-series ring buffer capacity.
//
// Example:
//
//	chart := livechart.New(livechart.WithCapacity(5000))
func WithCapacity(capacity int) Option {
	return func(o *controller.Options) {
		o.Capacity = capacity
	}
}

// WithRetentionPolicy sets the shared retention policy for all series.
//
// Example:
//
//	chart := livechart.New(
//		livechart.WithRetentionPolicy(retention.RollingCount{MaxPoints: 1000}),
//	)
func WithRetentionPolicy(policy retention.Policy) Option {
	return func(o *controller.Options) {
		o.Policy = policy
	}
}

// WithOutOfOrder selects how out-of-sequence points are resolved.
func WithOutOfOrder(behavior types.OutOfOrderBehavior) Option {
	return func(o *controller.Options) {
		o.OutOfOrder = behavior
	}
}

// WithDuplicatePolicy selects how duplicate-timestamp points are resolved.
func WithDuplicatePolicy(behavior types.DuplicateTimestampBehavior) Option {
	return func(o *controller.Options) {
		o.Duplicates = behavior
	}
}

// WithScheduler injects the host's frame scheduler. Render loops pass
// their own vsync-aligned implementation; the default is a timer
// approximating 60fps.
func WithScheduler(s coalescer.Scheduler) Option {
	return func(o *controller.Options) {
		o.Scheduler = s
	}
}

// WithFrameInterval is a convenience for a timer scheduler at the given
// interval.
//
// Example:
//
//	// 30fps notification cadence
//	chart := livechart.New(livechart.WithFrameInterval(33 * time.Millisecond))
func WithFrameInterval(interval time.Duration) Option {
	return func(o *controller.Options) {
		o.Scheduler = coalescer.NewTimerScheduler(interval)
	}
}

// WithCoalescingDisabled makes change callbacks fire synchronously on
// every mutation instead of once per frame. Intended for tests and
// headless consumers.
func WithCoalescingDisabled() Option {
	return func(o *controller.Options) {
		o.CoalescingDisabled = true
	}
}

// WithLogger sets a custom logger for ingestion diagnostics.
//
// Example:
//
//	customLogger := logger.NewLogger(logger.DEBUG, os.Stderr)
//	chart := livechart.New(livechart.WithLogger(customLogger))
func WithLogger(log logger.Logger) Option {
	return func(o *controller.Options) {
		o.Logger = log
	}
}

// WithLogLevel sets the level on the global default logger.
//
// Example:
//
//	// silence ingestion warnings
//	chart := livechart.New(livechart.WithLogLevel(logger.OFF))
func WithLogLevel(level logger.Level) Option {
	return func(o *controller.Options) {
		logger.GetDefault().SetLevel(level)
	}
}

// WithLogOutput directs the global default logger to output at the given
// level.
//
// Example:
//
//	logFile, _ := os.OpenFile("livechart.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
//	chart := livechart.New(livechart.WithLogOutput(logFile, logger.INFO))
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(o *controller.Options) {
		logger.SetDefault(logger.NewLogger(level, output))
	}
}
