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
Package types provides core type definitions shared across the livechart engine.

This package defines the point model, the ingestion behavior enums, statistics
structures, and the declarative configuration decoded from YAML. It carries no
engine logic; every other package depends on it and it depends on nothing
inside the module.

# Core Types

• DataPoint - immutable (x, y) sample with optional label/metadata
• DataRange - min/max bounds over both axes of a series
• OutOfOrderBehavior - how ingestion treats points older than the newest one
• DuplicateTimestampBehavior - how ingestion treats exact x collisions
• Statistics / SeriesStatistics - controller-level bookkeeping snapshots
• Config / RetentionConfig - declarative engine configuration

# Behavior Enums

The behavior enums are closed sets; ingestion switches over them exhaustively
so a new variant cannot be silently unhandled:

	ctrl := controller.New(controller.Options{
		OutOfOrder: types.OutOfOrderAutoSort,
		Duplicates: types.DuplicateAverage,
	})

# Declarative Configuration

A full engine can be described in YAML and loaded with LoadConfig:

	capacity: 10000
	outOfOrder: autoSort
	duplicates: average
	retention:
	  type: rollingDuration
	  params:
	    maxAge: 60
*/
package types
