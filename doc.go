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

/*
Package livechart is an in-memory live-data ingestion and retention engine
for charting. It buffers named series of (x, y) points in fixed-capacity
ring buffers, resolves out-of-sequence and duplicate-timestamp input,
enforces configurable retention policies (rolling count/duration windows and
two-tier downsampling including LTTB), and coalesces high-frequency updates
into one change notification per rendering frame.

Rendering, coordinate transforms and interaction are external consumers:
they pull snapshots through the read accessors when notified and never
mutate engine state.

# Quick Start

	chart := livechart.New(
		livechart.WithCapacity(5000),
		livechart.WithRetentionPolicy(retention.RollingDuration{MaxAge: 60}),
	)
	chart.SetDataCallback(func(series []string) {
		// repaint the dirtied series
	})
	chart.AddPoint("temperature", types.NewPoint(t, celsius))

# Stream Binding

External push feeds bind to a series through a mapper; every emission runs
through the standard ingestion path:

	feed, _ := source.WebSocket(ctx, "wss://example/metrics")
	m, _ := mapper.NewExprMapper("ts / 1000", "cpu * 100")
	chart.BindStream("cpu", feed, m)

# Frame Scheduling

Frame boundaries are host-owned. A render loop injects its own scheduler via
WithScheduler; standalone use falls back to a timer approximating 60fps.
*/
package livechart
