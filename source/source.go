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

// Package source provides push sources for stream binding. A source is a
// plain receive channel of raw values; the controller maps each emission
// into a point through the binding's mapper. Sources close their channel
// when exhausted or cancelled, which ends the binding cleanly.
package source

import (
	"context"
	"time"
)

// FromSlice replays values in order, then closes the channel. Useful for
// tests and for backfilling a series through the normal ingestion path.
func FromSlice(values []interface{}) <-chan interface{} {
	ch := make(chan interface{}, len(values))
	for _, v := range values {
		ch <- v
	}
	close(ch)
	return ch
}

// Ticker emits gen(i) every interval until ctx is cancelled. Emissions are
// dropped rather than queued when the consumer lags a full interval.
func Ticker(ctx context.Context, interval time.Duration, gen func(i int) interface{}) <-chan interface{} {
	ch := make(chan interface{}, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case ch <- gen(i):
				default:
				}
			}
		}
	}()
	return ch
}
