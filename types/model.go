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

package types

import (
	"fmt"
	"math"
)

// DataPoint is a single sample on a series. X is the ordering key (typically
// a timestamp on the data axis), Y the value. Label and Metadata are optional
// presentation payload carried through untouched. DataPoint is treated as
// immutable once stored.
type DataPoint struct {
	X        float64                `json:"x"`
	Y        float64                `json:"y"`
	Label    string                 `json:"label,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewPoint creates a plain DataPoint without label or metadata.
func NewPoint(x, y float64) DataPoint {
	return DataPoint{X: x, Y: y}
}

// Sanitized returns the point with non-finite Y coerced to 0.
// NaN and infinities are ingestion noise, not errors.
func (p DataPoint) Sanitized() DataPoint {
	if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
		p.Y = 0
	}
	return p
}

// CompareX orders two points by X, returning -1, 0 or 1. Suitable as a
// comparator for sorted-position searches over X-ordered buffers.
func CompareX(a, b DataPoint) int {
	switch {
	case a.X < b.X:
		return -1
	case a.X > b.X:
		return 1
	default:
		return 0
	}
}

// DataRange describes the bounding box of a series over both axes.
type DataRange struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

// OutOfOrderBehavior controls what ingestion does with a point whose X is
// smaller than the newest stored X of its series.
type OutOfOrderBehavior int

const (
	// OutOfOrderAccept appends the point regardless of order.
	OutOfOrderAccept OutOfOrderBehavior = iota
	// OutOfOrderAcceptWithWarning appends and emits a diagnostic.
	OutOfOrderAcceptWithWarning
	// OutOfOrderReject discards the point and reports failure.
	OutOfOrderReject
	// OutOfOrderAutoSort inserts at the sorted position. O(n) per insert,
	// traded against the buffer's O(1) append.
	OutOfOrderAutoSort
)

// String returns the configuration name of the behavior.
func (b OutOfOrderBehavior) String() string {
	switch b {
	case OutOfOrderAccept:
		return "accept"
	case OutOfOrderAcceptWithWarning:
		return "acceptWithWarning"
	case OutOfOrderReject:
		return "reject"
	case OutOfOrderAutoSort:
		return "autoSort"
	default:
		return "unknown"
	}
}

// ParseOutOfOrderBehavior resolves a configuration name to a behavior.
func ParseOutOfOrderBehavior(name string) (OutOfOrderBehavior, error) {
	switch name {
	case "accept", "":
		return OutOfOrderAccept, nil
	case "acceptWithWarning":
		return OutOfOrderAcceptWithWarning, nil
	case "reject":
		return OutOfOrderReject, nil
	case "autoSort":
		return OutOfOrderAutoSort, nil
	default:
		return OutOfOrderAccept, fmt.Errorf("unknown out-of-order behavior: %q", name)
	}
}

// DuplicateTimestampBehavior controls what ingestion does when an incoming
// point shares the exact X of the newest stored point of its series.
type DuplicateTimestampBehavior int

const (
	// DuplicateReplace overwrites the stored Y with the incoming one.
	DuplicateReplace DuplicateTimestampBehavior = iota
	// DuplicateKeepFirst discards the incoming point and reports failure.
	DuplicateKeepFirst
	// DuplicateKeepBoth appends a second point sharing the X.
	DuplicateKeepBoth
	// DuplicateAverage merges the Y values by arithmetic mean into the
	// single stored point.
	DuplicateAverage
)

// String returns the configuration name of the behavior.
func (b DuplicateTimestampBehavior) String() string {
	switch b {
	case DuplicateReplace:
		return "replace"
	case DuplicateKeepFirst:
		return "keepFirst"
	case DuplicateKeepBoth:
		return "keepBoth"
	case DuplicateAverage:
		return "average"
	default:
		return "unknown"
	}
}

// ParseDuplicateTimestampBehavior resolves a configuration name to a behavior.
func ParseDuplicateTimestampBehavior(name string) (DuplicateTimestampBehavior, error) {
	switch name {
	case "replace", "":
		return DuplicateReplace, nil
	case "keepFirst":
		return DuplicateKeepFirst, nil
	case "keepBoth":
		return DuplicateKeepBoth, nil
	case "average":
		return DuplicateAverage, nil
	default:
		return DuplicateReplace, fmt.Errorf("unknown duplicate-timestamp behavior: %q", name)
	}
}

// SeriesStatistics is a per-series bookkeeping snapshot.
type SeriesStatistics struct {
	PointCount   int     `json:"pointCount"`
	Capacity     int     `json:"capacity"`
	TotalAdded   uint64  `json:"totalAdded"`
	TotalEvicted uint64  `json:"totalEvicted"`
	MemoryBytes  int64   `json:"memoryBytes"`
	OldestX      float64 `json:"oldestX"`
	NewestX      float64 `json:"newestX"`
}

// Statistics is a controller-level snapshot across all series.
type Statistics struct {
	TotalPoints int                         `json:"totalPoints"`
	Series      map[string]SeriesStatistics `json:"series"`
}
