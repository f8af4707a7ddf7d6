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
	"errors"
	"fmt"
	"time"

	"github.com/rulego/livechart/coalescer"
	"github.com/rulego/livechart/controller"
	"github.com/rulego/livechart/logger"
	"github.com/rulego/livechart/mapper"
	"github.com/rulego/livechart/retention"
	"github.com/rulego/livechart/types"
)

// LiveChart is the engine facade. It owns one controller and exposes the
// full ingestion, retention and notification API.
//
// Usage:
//
//	chart := livechart.New()
//	chart.AddPoint("cpu", types.NewPoint(1, 0.42))
type LiveChart struct {
	controller *controller.Controller
}

// New creates an engine configured by options.
//
// Examples:
//
//	// defaults: unlimited retention, 60fps timer frames
//	chart := livechart.New()
//
//	// bounded, strictly ordered feed
//	chart := livechart.New(
//		livechart.WithRetentionPolicy(retention.RollingCount{MaxPoints: 1000}),
//		livechart.WithOutOfOrder(types.OutOfOrderReject),
//	)
func New(options ...Option) *LiveChart {
	opts := controller.Options{}
	for _, option := range options {
		option(&opts)
	}
	return &LiveChart{controller: controller.New(opts)}
}

// FromConfig creates an engine from a declarative config. Options are
// applied after the config and win on conflict.
func FromConfig(cfg *types.Config, options ...Option) (*LiveChart, error) {
	if cfg == nil {
		return nil, errors.New("livechart: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := retention.FromConfig(cfg.Retention)
	if err != nil {
		return nil, err
	}
	outOfOrder, err := types.ParseOutOfOrderBehavior(cfg.OutOfOrder)
	if err != nil {
		return nil, err
	}
	duplicates, err := types.ParseDuplicateTimestampBehavior(cfg.Duplicates)
	if err != nil {
		return nil, err
	}
	if cfg.LogLevel != "" {
		level, err := parseLogLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logger.GetDefault().SetLevel(level)
	}

	opts := controller.Options{
		Capacity:           cfg.Capacity,
		Policy:             policy,
		OutOfOrder:         outOfOrder,
		Duplicates:         duplicates,
		CoalescingDisabled: cfg.CoalescingDisabled,
	}
	if cfg.FrameInterval > 0 {
		opts.Scheduler = coalescer.NewTimerScheduler(cfg.FrameInterval)
	}
	for _, option := range options {
		option(&opts)
	}
	return &LiveChart{controller: controller.New(opts)}, nil
}

func parseLogLevel(name string) (logger.Level, error) {
	switch name {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warn":
		return logger.WARN, nil
	case "error":
		return logger.ERROR, nil
	case "off":
		return logger.OFF, nil
	default:
		return logger.INFO, fmt.Errorf("unknown log level: %q", name)
	}
}

// Controller exposes the underlying controller for advanced use.
func (lc *LiveChart) Controller() *controller.Controller { return lc.controller }

// AddPoint ingests one point. False means rejected.
func (lc *LiveChart) AddPoint(series string, p types.DataPoint) bool {
	return lc.controller.AddPoint(series, p)
}

// AddXY ingests one plain (x, y) sample.
func (lc *LiveChart) AddXY(series string, x, y float64) bool {
	return lc.controller.AddPoint(series, types.NewPoint(x, y))
}

// AddPoints ingests a batch into one series, applying retention once.
// Returns the accepted count.
func (lc *LiveChart) AddPoints(series string, points []types.DataPoint) int {
	return lc.controller.AddPoints(series, points)
}

// AddMultiSeriesPoints ingests batches into several series. Returns the
// total accepted count.
func (lc *LiveChart) AddMultiSeriesPoints(batches map[string][]types.DataPoint) int {
	return lc.controller.AddMultiSeriesPoints(batches)
}

// SetInitialData atomically replaces a series, bypassing ordering and
// duplicate policies.
func (lc *LiveChart) SetInitialData(series string, points []types.DataPoint) {
	lc.controller.SetInitialData(series, points)
}

// GetPoints returns a snapshot of the series contents, oldest first.
func (lc *LiveChart) GetPoints(series string) []types.DataPoint {
	return lc.controller.GetPoints(series)
}

// GetLatestPoint returns the newest point of a series.
func (lc *LiveChart) GetLatestPoint(series string) (types.DataPoint, bool) {
	return lc.controller.GetLatestPoint(series)
}

// GetOldestPoint returns the oldest point of a series.
func (lc *LiveChart) GetOldestPoint(series string) (types.DataPoint, bool) {
	return lc.controller.GetOldestPoint(series)
}

// GetPointCount returns the buffered point count of a series.
func (lc *LiveChart) GetPointCount(series string) int {
	return lc.controller.GetPointCount(series)
}

// GetDataRange returns the bounding box of a series.
func (lc *LiveChart) GetDataRange(series string) (types.DataRange, bool) {
	return lc.controller.GetDataRange(series)
}

// SeriesNames returns the known series names.
func (lc *LiveChart) SeriesNames() []string {
	return lc.controller.SeriesNames()
}

// SetDataCallback registers the per-frame change listener.
func (lc *LiveChart) SetDataCallback(cb func(series []string)) {
	lc.controller.SetDataCallback(cb)
}

// SetPauseCallback registers the pause transition listener.
func (lc *LiveChart) SetPauseCallback(cb func(paused bool)) {
	lc.controller.SetPauseCallback(cb)
}

// SetStreamErrorCallback registers the fail-soft mapper error listener.
func (lc *LiveChart) SetStreamErrorCallback(cb func(series string, err error)) {
	lc.controller.SetStreamErrorCallback(cb)
}

// Pause suspends frame notifications; ingestion continues.
func (lc *LiveChart) Pause() { lc.controller.Pause() }

// Resume re-enables notifications. animation is a rendering hint.
func (lc *LiveChart) Resume(animation time.Duration) { lc.controller.Resume(animation) }

// IsPaused reports the pause state.
func (lc *LiveChart) IsPaused() bool { return lc.controller.IsPaused() }

// RetentionPolicy returns the active retention policy.
func (lc *LiveChart) RetentionPolicy() retention.Policy {
	return lc.controller.RetentionPolicy()
}

// SetRetentionPolicy replaces the retention policy. Structurally equal
// reassignment is a no-op; a genuine change reapplies everywhere and
// notifies immediately.
func (lc *LiveChart) SetRetentionPolicy(policy retention.Policy) {
	lc.controller.SetRetentionPolicy(policy)
}

// BindStream subscribes a series to an asynchronous push source.
func (lc *LiveChart) BindStream(series string, src <-chan interface{}, m mapper.Mapper) error {
	return lc.controller.BindStream(series, src, m)
}

// UnbindStream cancels the binding for a series.
func (lc *LiveChart) UnbindStream(series string) bool {
	return lc.controller.UnbindStream(series)
}

// UnbindAllStreams cancels every binding.
func (lc *LiveChart) UnbindAllStreams() { lc.controller.UnbindAllStreams() }

// HasStreamBinding reports whether a series has a live binding.
func (lc *LiveChart) HasStreamBinding(series string) bool {
	return lc.controller.HasStreamBinding(series)
}

// GetStatistics returns a bookkeeping snapshot across all series.
func (lc *LiveChart) GetStatistics() types.Statistics {
	return lc.controller.GetStatistics()
}

// GetMemoryUsage estimates the memory footprint of a series.
func (lc *LiveChart) GetMemoryUsage(series string) int64 {
	return lc.controller.GetMemoryUsage(series)
}

// Clear evicts every point from one series.
func (lc *LiveChart) Clear(series string) { lc.controller.Clear(series) }

// ClearAll evicts every point from every series.
func (lc *LiveChart) ClearAll() { lc.controller.ClearAll() }

// Dispose shuts the engine down permanently. Idempotent.
func (lc *LiveChart) Dispose() { lc.controller.Dispose() }
