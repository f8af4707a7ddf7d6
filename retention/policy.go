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

// Package retention defines the closed family of retention policies and the
// pure Apply function that enforces them on a series buffer. Policies are
// comparable value types, so structural equality is plain ==; the controller
// relies on that to make reassigning an equal policy a no-op.
package retention

import (
	"fmt"

	"github.com/rulego/livechart/types"
	"github.com/spf13/cast"
)

// Method is a downsampling reduction method.
type Method int

const (
	// MethodFirst keeps the first point of each bucket.
	MethodFirst Method = iota
	// MethodLast keeps the last point of each bucket.
	MethodLast
	// MethodAverage replaces each bucket with its centroid.
	MethodAverage
	// MethodMinMax keeps the extreme points of each bucket, in x order.
	MethodMinMax
	// MethodLTTB keeps the point with the largest triangle area against the
	// previous representative and the next bucket's centroid
	// (largest-triangle-three-buckets, shape preserving).
	MethodLTTB
)

// String returns the configuration name of the method.
func (m Method) String() string {
	switch m {
	case MethodFirst:
		return "first"
	case MethodLast:
		return "last"
	case MethodAverage:
		return "average"
	case MethodMinMax:
		return "minMax"
	case MethodLTTB:
		return "lttb"
	default:
		return "unknown"
	}
}

// ParseMethod resolves a configuration name to a Method.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "first":
		return MethodFirst, nil
	case "last", "":
		return MethodLast, nil
	case "average":
		return MethodAverage, nil
	case "minMax":
		return MethodMinMax, nil
	case "lttb":
		return MethodLTTB, nil
	default:
		return MethodLast, fmt.Errorf("unknown downsample method: %q", name)
	}
}

// Policy is the closed union of retention policies. Implementations are
// comparable value structs; do not store pointers in a Policy.
type Policy interface {
	isPolicy()
	String() string
}

// Unlimited keeps every buffered point (up to buffer capacity).
type Unlimited struct{}

// RollingCount keeps at most MaxPoints points, evicting the oldest.
type RollingCount struct {
	MaxPoints int
}

// RollingDuration keeps points younger than MaxAge relative to the newest
// point's x. MaxAge is in data-axis units, not wall clock.
type RollingDuration struct {
	MaxAge float64
}

// Combined keeps points satisfying both a count and an age bound.
type Combined struct {
	MaxPoints int
	MaxAge    float64
}

// Downsampled keeps a raw recent window and reduces older points into an
// archive tier bucketed by ArchiveResolution.
type Downsampled struct {
	// RecentWindow is the width of the raw tier, in data-axis units.
	RecentWindow float64
	// RecentMaxPoints additionally bounds the raw tier. Zero means unbounded.
	RecentMaxPoints int
	// ArchiveResolution is the bucket width of the archive tier.
	ArchiveResolution float64
	// MaxArchivePoints bounds the archive tier. Zero means unbounded.
	MaxArchivePoints int
	// Method is the per-bucket reduction.
	Method Method
}

func (Unlimited) isPolicy()       {}
func (RollingCount) isPolicy()    {}
func (RollingDuration) isPolicy() {}
func (Combined) isPolicy()        {}
func (Downsampled) isPolicy()     {}

func (Unlimited) String() string { return "unlimited" }

func (p RollingCount) String() string {
	return fmt.Sprintf("rollingCount(maxPoints=%d)", p.MaxPoints)
}

func (p RollingDuration) String() string {
	return fmt.Sprintf("rollingDuration(maxAge=%g)", p.MaxAge)
}

func (p Combined) String() string {
	return fmt.Sprintf("combined(maxPoints=%d, maxAge=%g)", p.MaxPoints, p.MaxAge)
}

func (p Downsampled) String() string {
	return fmt.Sprintf("downsampled(recent=%g/%d, resolution=%g, maxArchive=%d, method=%s)",
		p.RecentWindow, p.RecentMaxPoints, p.ArchiveResolution, p.MaxArchivePoints, p.Method)
}

// Equal reports structural equality of two policies. All variants are
// comparable value types, so this is interface equality.
func Equal(a, b Policy) bool {
	return a == b
}

// FromConfig builds a policy from its declarative description. Params are
// coerced loosely, so YAML integers, floats and numeric strings all work.
func FromConfig(cfg types.RetentionConfig) (Policy, error) {
	param := func(name string) interface{} { return cfg.Params[name] }

	switch cfg.Type {
	case "", "unlimited":
		return Unlimited{}, nil

	case "rollingCount":
		maxPoints, err := cast.ToIntE(param("maxPoints"))
		if err != nil || maxPoints <= 0 {
			return nil, fmt.Errorf("rollingCount requires a positive maxPoints param")
		}
		return RollingCount{MaxPoints: maxPoints}, nil

	case "rollingDuration":
		maxAge, err := cast.ToFloat64E(param("maxAge"))
		if err != nil || maxAge <= 0 {
			return nil, fmt.Errorf("rollingDuration requires a positive maxAge param")
		}
		return RollingDuration{MaxAge: maxAge}, nil

	case "combined":
		maxPoints, err := cast.ToIntE(param("maxPoints"))
		if err != nil || maxPoints <= 0 {
			return nil, fmt.Errorf("combined requires a positive maxPoints param")
		}
		maxAge, err := cast.ToFloat64E(param("maxAge"))
		if err != nil || maxAge <= 0 {
			return nil, fmt.Errorf("combined requires a positive maxAge param")
		}
		return Combined{MaxPoints: maxPoints, MaxAge: maxAge}, nil

	case "downsampled":
		recentWindow, err := cast.ToFloat64E(param("recentWindow"))
		if err != nil || recentWindow <= 0 {
			return nil, fmt.Errorf("downsampled requires a positive recentWindow param")
		}
		resolution, err := cast.ToFloat64E(param("archiveResolution"))
		if err != nil || resolution <= 0 {
			return nil, fmt.Errorf("downsampled requires a positive archiveResolution param")
		}
		recentMax := 0
		if raw := param("recentMaxPoints"); raw != nil {
			if recentMax, err = cast.ToIntE(raw); err != nil || recentMax < 0 {
				return nil, fmt.Errorf("downsampled recentMaxPoints must be a non-negative integer")
			}
		}
		archiveMax := 0
		if raw := param("maxArchivePoints"); raw != nil {
			if archiveMax, err = cast.ToIntE(raw); err != nil || archiveMax < 0 {
				return nil, fmt.Errorf("downsampled maxArchivePoints must be a non-negative integer")
			}
		}
		methodName, err := cast.ToStringE(param("method"))
		if err != nil {
			return nil, fmt.Errorf("downsampled method must be a string")
		}
		method, err := ParseMethod(methodName)
		if err != nil {
			return nil, err
		}
		return Downsampled{
			RecentWindow:      recentWindow,
			RecentMaxPoints:   recentMax,
			ArchiveResolution: resolution,
			MaxArchivePoints:  archiveMax,
			Method:            method,
		}, nil

	default:
		return nil, fmt.Errorf("unknown retention type: %q", cfg.Type)
	}
}
