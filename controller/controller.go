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

// Package controller orchestrates live chart ingestion: per-series ring
// buffers, ordering and duplicate resolution, retention enforcement, frame
// coalesced change notification, pause/resume and stream bindings.
//
// Writers are expected to be logically single: the controller serializes
// internally so stream bindings can deliver from goroutines, but ingestion
// order across concurrent producers is the caller's problem.
package controller

import (
	"sync"
	"time"

	"github.com/rulego/livechart/buffer"
	"github.com/rulego/livechart/coalescer"
	"github.com/rulego/livechart/logger"
	"github.com/rulego/livechart/retention"
	"github.com/rulego/livechart/types"
)

// pointMemoryBytes is the heuristic footprint of one buffered point: two
// float64s, a string header, a map pointer, the backing slot and a share of
// buffer bookkeeping.
const pointMemoryBytes = 96

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	// Capacity is the per-series ring buffer capacity.
	// Defaults to types.DefaultCapacity.
	Capacity int
	// Policy is the shared retention policy. Defaults to retention.Unlimited.
	Policy retention.Policy
	// OutOfOrder selects the out-of-order resolution. Defaults to accept.
	OutOfOrder types.OutOfOrderBehavior
	// Duplicates selects the duplicate-timestamp resolution.
	// Defaults to replace.
	Duplicates types.DuplicateTimestampBehavior
	// Scheduler provides frame boundaries. Defaults to a timer scheduler at
	// types.DefaultFrameInterval.
	Scheduler coalescer.Scheduler
	// CoalescingDisabled makes change callbacks fire synchronously on every
	// mutation.
	CoalescingDisabled bool
	// Logger receives ingestion diagnostics. Defaults to the global logger.
	Logger logger.Logger
}

type seriesState struct {
	buf *buffer.RingBuffer[types.DataPoint]
}

// Controller is the live chart ingestion engine.
type Controller struct {
	mu sync.Mutex

	capacity   int
	policy     retention.Policy
	outOfOrder types.OutOfOrderBehavior
	duplicates types.DuplicateTimestampBehavior
	log        logger.Logger

	series   map[string]*seriesState
	coal     *coalescer.SeriesFrameCoalescer
	bindings map[string]*StreamBinding

	paused bool
	// series mutated or carried by a suppressed frame while paused;
	// replayed as dirty on Resume. Non-nil exactly while paused.
	touchedWhilePaused map[string]struct{}
	disposed           bool
	resumeAnimation    time.Duration

	dataCallback  func(series []string)
	pauseCallback func(paused bool)
	errorCallback func(series string, err error)
}

// New creates a controller.
func New(opts Options) *Controller {
	if opts.Capacity <= 0 {
		opts.Capacity = types.DefaultCapacity
	}
	if opts.Policy == nil {
		opts.Policy = retention.Unlimited{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = coalescer.NewTimerScheduler(types.DefaultFrameInterval)
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}

	c := &Controller{
		capacity:   opts.Capacity,
		policy:     opts.Policy,
		outOfOrder: opts.OutOfOrder,
		duplicates: opts.Duplicates,
		log:        opts.Logger,
		series:     make(map[string]*seriesState),
		bindings:   make(map[string]*StreamBinding),
	}
	c.coal = coalescer.NewSeriesFrameCoalescer(opts.Scheduler, c.notifyData)
	if opts.CoalescingDisabled {
		c.coal.SetEnabled(false)
	}
	return c
}

// notifyData relays a coalesced frame to the registered data callback. A
// frame scheduled before Pause can still fire during the pause; its series
// are folded into the paused-touch set instead of being delivered, and
// Resume replays them.
func (c *Controller) notifyData(series []string) {
	c.mu.Lock()
	if c.paused && !c.disposed {
		for _, name := range series {
			c.touchedWhilePaused[name] = struct{}{}
		}
		c.mu.Unlock()
		return
	}
	cb := c.dataCallback
	disposed := c.disposed
	c.mu.Unlock()
	if cb != nil && !disposed {
		cb(series)
	}
}

// markLocked routes dirty series names to the coalescer or, while paused,
// into the paused-touch set. Returns the names to mark after unlocking.
func (c *Controller) markLocked(names []string) []string {
	if !c.paused {
		return names
	}
	for _, name := range names {
		c.touchedWhilePaused[name] = struct{}{}
	}
	return nil
}

// SetDataCallback registers the change listener invoked once per frame with
// the series dirtied since the previous frame.
func (c *Controller) SetDataCallback(cb func(series []string)) {
	c.mu.Lock()
	c.dataCallback = cb
	c.mu.Unlock()
}

// SetPauseCallback registers the listener fired once per pause transition
// with the new state.
func (c *Controller) SetPauseCallback(cb func(paused bool)) {
	c.mu.Lock()
	c.pauseCallback = cb
	c.mu.Unlock()
}

// seriesLocked returns the state for name, creating it on first use.
func (c *Controller) seriesLocked(name string) *seriesState {
	s, ok := c.series[name]
	if !ok {
		s = &seriesState{buf: buffer.New[types.DataPoint](c.capacity)}
		c.series[name] = s
	}
	return s
}

// ingestLocked runs ordering and duplicate resolution for one point and
// mutates the buffer. Reports whether the point was accepted.
func (c *Controller) ingestLocked(name string, p types.DataPoint) bool {
	p = p.Sanitized()
	s := c.seriesLocked(name)

	last, ok := s.buf.LastOK()
	if !ok || p.X > last.X {
		s.buf.Add(p)
		return true
	}

	if p.X == last.X {
		switch c.duplicates {
		case types.DuplicateReplace:
			s.buf.ReplaceLast(p)
			return true
		case types.DuplicateKeepFirst:
			return false
		case types.DuplicateKeepBoth:
			s.buf.Add(p)
			return true
		case types.DuplicateAverage:
			last.Y = (last.Y + p.Y) / 2
			s.buf.ReplaceLast(last)
			return true
		default:
			s.buf.ReplaceLast(p)
			return true
		}
	}

	switch c.outOfOrder {
	case types.OutOfOrderAccept:
		s.buf.Add(p)
		return true
	case types.OutOfOrderAcceptWithWarning:
		c.log.Warn("series %q: out-of-order point x=%g behind newest x=%g", name, p.X, last.X)
		s.buf.Add(p)
		return true
	case types.OutOfOrderReject:
		return false
	case types.OutOfOrderAutoSort:
		idx := s.buf.LowerBound(p, types.CompareX)
		s.buf.InsertAt(idx, p)
		return true
	default:
		s.buf.Add(p)
		return true
	}
}

// applyRetentionLocked enforces the policy on one series, referenced to its
// newest x.
func (c *Controller) applyRetentionLocked(s *seriesState) {
	if last, ok := s.buf.LastOK(); ok {
		retention.Apply(s.buf, c.policy, last.X)
	}
}

// AddPoint ingests a single point. Returns false when the point was rejected
// (empty series name, ordering/duplicate policy, disposed controller).
func (c *Controller) AddPoint(series string, p types.DataPoint) bool {
	if series == "" {
		return false
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false
	}
	accepted := c.ingestLocked(series, p)
	var mark []string
	if accepted {
		c.applyRetentionLocked(c.series[series])
		mark = c.markLocked([]string{series})
	}
	c.mu.Unlock()

	c.coal.MarkAllSeries(mark)
	return accepted
}

// AddPoints ingests a batch into one series. Ordering and duplicate
// resolution run per point; retention is applied once for the whole batch.
// Returns the number of accepted points.
func (c *Controller) AddPoints(series string, points []types.DataPoint) int {
	if series == "" || len(points) == 0 {
		return 0
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return 0
	}
	accepted := 0
	for _, p := range points {
		if c.ingestLocked(series, p) {
			accepted++
		}
	}
	var mark []string
	if accepted > 0 {
		c.applyRetentionLocked(c.series[series])
		mark = c.markLocked([]string{series})
	}
	c.mu.Unlock()

	c.coal.MarkAllSeries(mark)
	return accepted
}

// AddMultiSeriesPoints ingests batches into several series at once.
// Retention is applied once per touched series. Returns the total number of
// accepted points.
func (c *Controller) AddMultiSeriesPoints(batches map[string][]types.DataPoint) int {
	if len(batches) == 0 {
		return 0
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return 0
	}
	total := 0
	var touched []string
	for series, points := range batches {
		if series == "" || len(points) == 0 {
			continue
		}
		accepted := 0
		for _, p := range points {
			if c.ingestLocked(series, p) {
				accepted++
			}
		}
		if accepted > 0 {
			c.applyRetentionLocked(c.series[series])
			total += accepted
			touched = append(touched, series)
		}
	}
	mark := c.markLocked(touched)
	c.mu.Unlock()

	c.coal.MarkAllSeries(mark)
	return total
}

// SetInitialData atomically replaces the series contents, bypassing ordering
// and duplicate policy. No-op for an empty name or a disposed controller.
func (c *Controller) SetInitialData(series string, points []types.DataPoint) {
	if series == "" {
		return
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	s := c.seriesLocked(series)
	s.buf = buffer.New[types.DataPoint](c.capacity)
	for _, p := range points {
		s.buf.Add(p.Sanitized())
	}
	c.applyRetentionLocked(s)
	mark := c.markLocked([]string{series})
	c.mu.Unlock()

	c.coal.MarkAllSeries(mark)
}

// GetPoints returns a snapshot of the series contents, oldest first. Empty
// for unknown series.
func (c *Controller) GetPoints(series string) []types.DataPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.series[series]
	if !ok {
		return nil
	}
	return s.buf.ToSlice()
}

// GetLatestPoint returns the newest point, or ok=false for an unknown or
// empty series.
func (c *Controller) GetLatestPoint(series string) (types.DataPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.series[series]
	if !ok {
		return types.DataPoint{}, false
	}
	return s.buf.LastOK()
}

// GetOldestPoint returns the oldest point, or ok=false for an unknown or
// empty series.
func (c *Controller) GetOldestPoint(series string) (types.DataPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.series[series]
	if !ok {
		return types.DataPoint{}, false
	}
	return s.buf.FirstOK()
}

// GetPointCount returns the buffered point count, zero for unknown series.
func (c *Controller) GetPointCount(series string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.series[series]
	if !ok {
		return 0
	}
	return s.buf.Len()
}

// GetDataRange returns the bounding box of a series, or ok=false for an
// unknown or empty series.
func (c *Controller) GetDataRange(series string) (types.DataRange, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.series[series]
	if !ok || s.buf.IsEmpty() {
		return types.DataRange{}, false
	}
	first := s.buf.First()
	r := types.DataRange{MinX: first.X, MaxX: first.X, MinY: first.Y, MaxY: first.Y}
	for i := 1; i < s.buf.Len(); i++ {
		p := s.buf.At(i)
		if p.X < r.MinX {
			r.MinX = p.X
		}
		if p.X > r.MaxX {
			r.MaxX = p.X
		}
		if p.Y < r.MinY {
			r.MinY = p.Y
		}
		if p.Y > r.MaxY {
			r.MaxY = p.Y
		}
	}
	return r, true
}

// SeriesNames returns the known series names in no particular order.
func (c *Controller) SeriesNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	return names
}

// Pause suspends frame notifications. Ingestion continues in the background;
// consumers repaint once on Resume. Idempotent; the pause callback fires once
// per actual transition.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.disposed || c.paused {
		c.mu.Unlock()
		return
	}
	c.paused = true
	c.touchedWhilePaused = make(map[string]struct{})
	cb := c.pauseCallback
	c.mu.Unlock()

	if cb != nil {
		cb(true)
	}
}

// Resume re-enables frame notifications and marks every non-empty series,
// plus every series touched while paused (including ones cleared to empty),
// so the consumer catches up in a single frame. animation is a hint for the
// rendering layer, readable via ResumeAnimation. Idempotent.
func (c *Controller) Resume(animation time.Duration) {
	c.mu.Lock()
	if c.disposed || !c.paused {
		c.mu.Unlock()
		return
	}
	c.paused = false
	c.resumeAnimation = animation
	dirty := c.touchedWhilePaused
	c.touchedWhilePaused = nil
	for name, s := range c.series {
		if !s.buf.IsEmpty() {
			dirty[name] = struct{}{}
		}
	}
	mark := make([]string, 0, len(dirty))
	for name := range dirty {
		mark = append(mark, name)
	}
	cb := c.pauseCallback
	c.mu.Unlock()

	c.coal.MarkAllSeries(mark)
	if cb != nil {
		cb(false)
	}
}

// IsPaused reports the pause state.
func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// ResumeAnimation returns the animation hint carried by the last Resume.
func (c *Controller) ResumeAnimation() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumeAnimation
}

// RetentionPolicy returns the active policy.
func (c *Controller) RetentionPolicy() retention.Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// SetRetentionPolicy replaces the shared policy. Assigning a structurally
// equal policy is a complete no-op. A genuine change reapplies retention to
// every series and notifies the data callback immediately, bypassing frame
// coalescing: this is a configuration event, not a streaming event.
func (c *Controller) SetRetentionPolicy(policy retention.Policy) {
	if policy == nil {
		policy = retention.Unlimited{}
	}
	c.mu.Lock()
	if c.disposed || retention.Equal(c.policy, policy) {
		c.mu.Unlock()
		return
	}
	c.policy = policy
	affected := make([]string, 0, len(c.series))
	for name, s := range c.series {
		c.applyRetentionLocked(s)
		affected = append(affected, name)
	}
	cb := c.dataCallback
	c.mu.Unlock()

	if cb != nil && len(affected) > 0 {
		cb(affected)
	}
}

// GetStatistics returns a snapshot of controller-wide bookkeeping.
func (c *Controller) GetStatistics() types.Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := types.Statistics{Series: make(map[string]types.SeriesStatistics, len(c.series))}
	for name, s := range c.series {
		ss := types.SeriesStatistics{
			PointCount:   s.buf.Len(),
			Capacity:     s.buf.Cap(),
			TotalAdded:   s.buf.TotalAdded(),
			TotalEvicted: s.buf.TotalEvicted(),
			MemoryBytes:  int64(s.buf.Len()) * pointMemoryBytes,
		}
		if first, ok := s.buf.FirstOK(); ok {
			ss.OldestX = first.X
			ss.NewestX = s.buf.Last().X
		}
		stats.Series[name] = ss
		stats.TotalPoints += ss.PointCount
	}
	return stats
}

// GetMemoryUsage estimates the series footprint with a fixed bytes-per-point
// heuristic. Zero for unknown series.
func (c *Controller) GetMemoryUsage(series string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.series[series]
	if !ok {
		return 0
	}
	return int64(s.buf.Len()) * pointMemoryBytes
}

// Clear evicts every point from one series. The series itself stays known.
func (c *Controller) Clear(series string) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	s, ok := c.series[series]
	var mark []string
	if ok && s.buf.Len() > 0 {
		s.buf.Clear()
		mark = c.markLocked([]string{series})
	}
	c.mu.Unlock()

	c.coal.MarkAllSeries(mark)
}

// ClearAll evicts every point from every series.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	var touched []string
	for name, s := range c.series {
		if s.buf.Len() > 0 {
			s.buf.Clear()
			touched = append(touched, name)
		}
	}
	mark := c.markLocked(touched)
	c.mu.Unlock()

	c.coal.MarkAllSeries(mark)
}

// Dispose cancels all stream bindings and pending coalescer work and turns
// every mutator into a permanent no-op. Idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	bindings := make([]*StreamBinding, 0, len(c.bindings))
	for _, b := range c.bindings {
		bindings = append(bindings, b)
	}
	c.bindings = make(map[string]*StreamBinding)
	c.mu.Unlock()

	for _, b := range bindings {
		b.cancel()
	}
	c.coal.Dispose()
}

// IsDisposed reports whether Dispose has run.
func (c *Controller) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
