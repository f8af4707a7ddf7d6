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

package retention

import (
	"fmt"
	"math"

	"github.com/rulego/livechart/buffer"
	"github.com/rulego/livechart/types"
)

// Apply enforces policy on buf. referenceX is the newest point's x (data
// axis, not wall clock). Apply is pure over (contents, policy, referenceX)
// and idempotent: applying it twice with the same inputs changes nothing the
// second time. Eviction happens only at the logical front; the downsampled
// variant additionally compacts the archive prefix in place.
func Apply(buf *buffer.RingBuffer[types.DataPoint], policy Policy, referenceX float64) {
	if buf == nil || policy == nil {
		return
	}
	switch p := policy.(type) {
	case Unlimited:
		// no-op
	case RollingCount:
		applyCount(buf, p.MaxPoints)
	case RollingDuration:
		applyDuration(buf, p.MaxAge, referenceX)
	case Combined:
		applyCount(buf, p.MaxPoints)
		applyDuration(buf, p.MaxAge, referenceX)
	case Downsampled:
		applyDownsampled(buf, p, referenceX)
	default:
		// closed union; a new variant must be handled above
		panic(fmt.Sprintf("retention: unhandled policy %T", policy))
	}
}

func applyCount(buf *buffer.RingBuffer[types.DataPoint], maxPoints int) {
	if maxPoints <= 0 {
		return
	}
	if excess := buf.Len() - maxPoints; excess > 0 {
		buf.RemoveFirstN(excess)
	}
}

func applyDuration(buf *buffer.RingBuffer[types.DataPoint], maxAge, referenceX float64) {
	if maxAge <= 0 {
		return
	}
	buf.RemoveWhile(func(p types.DataPoint) bool {
		return referenceX-p.X > maxAge
	})
}

// applyDownsampled maintains the two tiers. Everything older than the recent
// window (or overflowing RecentMaxPoints) is bucketed by ArchiveResolution
// and reduced. A bucket that already holds only its reduced representatives
// reduces to itself, which is what keeps reapplication idempotent.
func applyDownsampled(buf *buffer.RingBuffer[types.DataPoint], p Downsampled, referenceX float64) {
	if buf.IsEmpty() {
		return
	}
	boundary := referenceX - p.RecentWindow
	// first index belonging to the raw recent tier
	recentStart := buf.LowerBound(types.DataPoint{X: boundary}, types.CompareX)
	if p.RecentMaxPoints > 0 {
		if overflow := (buf.Len() - recentStart) - p.RecentMaxPoints; overflow > 0 {
			recentStart += overflow
		}
	}
	if recentStart == 0 {
		return
	}

	candidates := buf.FirstN(recentStart)
	anchor, hasAnchor := nextAnchor(buf, recentStart)
	archive := reduceBuckets(candidates, p, anchor, hasAnchor)
	if p.MaxArchivePoints > 0 && len(archive) > p.MaxArchivePoints {
		archive = archive[len(archive)-p.MaxArchivePoints:]
	}
	// equal length means every bucket was already reduced; nothing to rewrite
	if len(archive) == recentStart {
		return
	}
	buf.CompactPrefix(recentStart, archive)
}

// nextAnchor is the first raw point after the archive tier, used as the LTTB
// forward anchor for the final bucket.
func nextAnchor(buf *buffer.RingBuffer[types.DataPoint], recentStart int) (types.DataPoint, bool) {
	if recentStart < buf.Len() {
		return buf.At(recentStart), true
	}
	return types.DataPoint{}, false
}

func reduceBuckets(points []types.DataPoint, p Downsampled, anchor types.DataPoint, hasAnchor bool) []types.DataPoint {
	if len(points) == 0 {
		return nil
	}
	// group into resolution buckets; input is sorted ascending by x
	type bucket struct {
		key    float64
		points []types.DataPoint
	}
	var buckets []bucket
	for _, pt := range points {
		key := math.Floor(pt.X / p.ArchiveResolution)
		if n := len(buckets); n > 0 && buckets[n-1].key == key {
			buckets[n-1].points = append(buckets[n-1].points, pt)
		} else {
			buckets = append(buckets, bucket{key: key, points: []types.DataPoint{pt}})
		}
	}

	out := make([]types.DataPoint, 0, len(buckets))
	prev := points[0]
	for i, bk := range buckets {
		var reduced []types.DataPoint
		switch p.Method {
		case MethodFirst:
			reduced = []types.DataPoint{bk.points[0]}
		case MethodLast:
			reduced = []types.DataPoint{bk.points[len(bk.points)-1]}
		case MethodAverage:
			reduced = []types.DataPoint{centroid(bk.points)}
		case MethodMinMax:
			reduced = minMax(bk.points)
		case MethodLTTB:
			next, ok := anchor, hasAnchor
			if i+1 < len(buckets) {
				next, ok = centroid(buckets[i+1].points), true
			}
			if !ok {
				next = bk.points[len(bk.points)-1]
			}
			reduced = []types.DataPoint{largestTriangle(prev, bk.points, next)}
		default:
			panic(fmt.Sprintf("retention: unhandled downsample method %d", p.Method))
		}
		out = append(out, reduced...)
		prev = reduced[len(reduced)-1]
	}
	return out
}

// centroid is the arithmetic mean of a bucket on both axes.
func centroid(points []types.DataPoint) types.DataPoint {
	var sx, sy float64
	for _, pt := range points {
		sx += pt.X
		sy += pt.Y
	}
	n := float64(len(points))
	return types.DataPoint{X: sx / n, Y: sy / n}
}

// minMax keeps the bucket's extreme points by y, emitted in x order so the
// buffer stays sorted.
func minMax(points []types.DataPoint) []types.DataPoint {
	lo, hi := 0, 0
	for i, pt := range points {
		if pt.Y < points[lo].Y {
			lo = i
		}
		if pt.Y > points[hi].Y {
			hi = i
		}
	}
	if lo == hi {
		return []types.DataPoint{points[lo]}
	}
	if lo < hi {
		return []types.DataPoint{points[lo], points[hi]}
	}
	return []types.DataPoint{points[hi], points[lo]}
}

// largestTriangle picks the bucket point with the largest triangle area
// against the previous representative and the next anchor.
func largestTriangle(prev types.DataPoint, points []types.DataPoint, next types.DataPoint) types.DataPoint {
	best := points[0]
	bestArea := -1.0
	for _, pt := range points {
		area := math.Abs((prev.X-next.X)*(pt.Y-prev.Y)-(prev.X-pt.X)*(next.Y-prev.Y)) / 2
		if area > bestArea {
			bestArea = area
			best = pt
		}
	}
	return best
}
