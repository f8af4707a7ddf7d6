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

package controller

import (
	"context"
	"errors"

	"github.com/rulego/livechart/mapper"
)

// ErrDisposed is returned by BindStream on a disposed controller.
var ErrDisposed = errors.New("controller: disposed")

// ErrEmptySeries is returned by BindStream for an empty series name.
var ErrEmptySeries = errors.New("controller: empty series name")

// StreamBinding owns one subscription: a source channel pumped through a
// mapper into the standard ingestion path. Cancellation is explicit via
// UnbindStream; values emitted after cancellation are dropped, not queued.
type StreamBinding struct {
	series     string
	cancelFunc context.CancelFunc
	done       chan struct{}
}

func (b *StreamBinding) cancel() {
	b.cancelFunc()
}

// Done closes when the binding's pump goroutine has fully stopped.
func (b *StreamBinding) Done() <-chan struct{} { return b.done }

// SetStreamErrorCallback registers the fail-soft listener for mapper errors.
// The offending value is dropped and the subscription stays alive.
func (c *Controller) SetStreamErrorCallback(cb func(series string, err error)) {
	c.mu.Lock()
	c.errorCallback = cb
	c.mu.Unlock()
}

// BindStream subscribes series to an asynchronous push source. Every
// emission is mapped to a point and routed through AddPoint, so ordering,
// duplicate and retention policies all apply. An existing binding for the
// same series is cancelled first. Returns an error on a disposed controller
// or empty series name.
func (c *Controller) BindStream(series string, src <-chan interface{}, m mapper.Mapper) error {
	if series == "" {
		return ErrEmptySeries
	}
	if m == nil {
		return errors.New("controller: nil mapper")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &StreamBinding{
		series:     series,
		cancelFunc: cancel,
		done:       make(chan struct{}),
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		cancel()
		return ErrDisposed
	}
	previous := c.bindings[series]
	c.bindings[series] = b
	c.mu.Unlock()

	if previous != nil {
		previous.cancel()
	}
	go c.pump(ctx, b, src, m)
	return nil
}

// pump drives one binding until the source closes or the binding is
// cancelled.
func (c *Controller) pump(ctx context.Context, b *StreamBinding, src <-chan interface{}, m mapper.Mapper) {
	defer close(b.done)
	defer c.dropBinding(b)

	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-src:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				// unbound mid-delivery: drop, don't queue
				return
			}
			c.deliver(b.series, v, m)
		}
	}
}

func (c *Controller) deliver(series string, v interface{}, m mapper.Mapper) {
	pt, err := m(v)
	if err != nil {
		c.mu.Lock()
		cb := c.errorCallback
		log := c.log
		c.mu.Unlock()
		log.Warn("series %q: dropped stream value: %v", series, err)
		if cb != nil {
			cb(series, err)
		}
		return
	}
	c.AddPoint(series, pt)
}

// dropBinding removes b from the table if it is still the active binding
// for its series.
func (c *Controller) dropBinding(b *StreamBinding) {
	c.mu.Lock()
	if current, ok := c.bindings[b.series]; ok && current == b {
		delete(c.bindings, b.series)
	}
	c.mu.Unlock()
}

// UnbindStream cancels and removes the binding for series. Reports whether
// a binding existed.
func (c *Controller) UnbindStream(series string) bool {
	c.mu.Lock()
	b, ok := c.bindings[series]
	if ok {
		delete(c.bindings, series)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	b.cancel()
	return true
}

// UnbindAllStreams cancels and removes every binding.
func (c *Controller) UnbindAllStreams() {
	c.mu.Lock()
	bindings := make([]*StreamBinding, 0, len(c.bindings))
	for _, b := range c.bindings {
		bindings = append(bindings, b)
	}
	c.bindings = make(map[string]*StreamBinding)
	c.mu.Unlock()

	for _, b := range bindings {
		b.cancel()
	}
}

// HasStreamBinding reports whether series currently has a binding.
func (c *Controller) HasStreamBinding(series string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.bindings[series]
	return ok
}
