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
	"errors"
	"testing"
	"time"

	"github.com/rulego/livechart/mapper"
	"github.com/rulego/livechart/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointMapper(v interface{}) (types.DataPoint, error) {
	pt, ok := v.(types.DataPoint)
	if !ok {
		return types.DataPoint{}, errors.New("not a point")
	}
	return pt, nil
}

func replay(points ...types.DataPoint) <-chan interface{} {
	ch := make(chan interface{}, len(points))
	for _, p := range points {
		ch <- p
	}
	close(ch)
	return ch
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never satisfied")
}

func TestBindStreamRoutesThroughIngestion(t *testing.T) {
	c, _ := newTestController(Options{})

	err := c.BindStream("s", replay(
		types.NewPoint(1, 10),
		types.NewPoint(2, 20),
		types.NewPoint(3, 30),
	), pointMapper)
	require.NoError(t, err)

	waitFor(t, func() bool { return c.GetPointCount("s") == 3 })
	assert.Equal(t, []float64{1, 2, 3}, xsOf(c.GetPoints("s")))
}

func TestBindStreamAppliesPolicies(t *testing.T) {
	// the bound stream goes through the standard addPoint path, so the
	// ordering policy applies to it
	c, _ := newTestController(Options{OutOfOrder: types.OutOfOrderReject})

	err := c.BindStream("s", replay(
		types.NewPoint(10, 1),
		types.NewPoint(5, 2), // rejected
		types.NewPoint(20, 3),
	), pointMapper)
	require.NoError(t, err)

	waitFor(t, func() bool { return c.GetPointCount("s") == 2 })
	assert.Equal(t, []float64{10, 20}, xsOf(c.GetPoints("s")))
}

func TestBindStreamValidation(t *testing.T) {
	c, _ := newTestController(Options{})

	assert.ErrorIs(t, c.BindStream("", replay(), pointMapper), ErrEmptySeries)
	assert.Error(t, c.BindStream("s", replay(), nil))
}

func TestBindStreamAfterDispose(t *testing.T) {
	c, _ := newTestController(Options{})
	c.Dispose()

	err := c.BindStream("s", replay(types.NewPoint(1, 1)), pointMapper)
	assert.ErrorIs(t, err, ErrDisposed)
	assert.False(t, c.HasStreamBinding("s"))
}

func TestBindingRemovedWhenSourceCloses(t *testing.T) {
	c, _ := newTestController(Options{})

	require.NoError(t, c.BindStream("s", replay(types.NewPoint(1, 1)), pointMapper))
	waitFor(t, func() bool { return !c.HasStreamBinding("s") })
	assert.Equal(t, 1, c.GetPointCount("s"))
}

func TestUnbindStream(t *testing.T) {
	c, _ := newTestController(Options{})
	src := make(chan interface{})

	require.NoError(t, c.BindStream("s", src, pointMapper))
	assert.True(t, c.HasStreamBinding("s"))

	assert.True(t, c.UnbindStream("s"))
	assert.False(t, c.HasStreamBinding("s"))
	assert.False(t, c.UnbindStream("s"))

	// values sent after unbind are dropped, not queued
	select {
	case src <- types.NewPoint(1, 1):
	default:
	}
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, c.GetPointCount("s"))
	close(src)
}

func TestUnbindAllStreams(t *testing.T) {
	c, _ := newTestController(Options{})
	a := make(chan interface{})
	b := make(chan interface{})
	defer close(a)
	defer close(b)

	require.NoError(t, c.BindStream("a", a, pointMapper))
	require.NoError(t, c.BindStream("b", b, pointMapper))

	c.UnbindAllStreams()
	assert.False(t, c.HasStreamBinding("a"))
	assert.False(t, c.HasStreamBinding("b"))
}

func TestRebindReplacesBinding(t *testing.T) {
	c, _ := newTestController(Options{})
	first := make(chan interface{})
	defer close(first)

	require.NoError(t, c.BindStream("s", first, pointMapper))
	require.NoError(t, c.BindStream("s", replay(types.NewPoint(1, 1)), pointMapper))

	waitFor(t, func() bool { return c.GetPointCount("s") == 1 })
}

func TestMapperErrorIsFailSoft(t *testing.T) {
	c, _ := newTestController(Options{})
	var failed []string
	done := make(chan struct{})
	c.SetStreamErrorCallback(func(series string, err error) {
		failed = append(failed, series)
		close(done)
	})

	err := c.BindStream("s", replay(
		types.NewPoint(1, 1),
		types.NewPoint(0, 0), // stand-in; the mapper rejects x==0 below
		types.NewPoint(3, 3),
	), func(v interface{}) (types.DataPoint, error) {
		pt := v.(types.DataPoint)
		if pt.X == 0 {
			return types.DataPoint{}, errors.New("bad value")
		}
		return pt, nil
	})
	require.NoError(t, err)

	// the offending value is dropped, the subscription survives
	waitFor(t, func() bool { return c.GetPointCount("s") == 2 })
	<-done
	assert.Equal(t, []string{"s"}, failed)
}

func TestDisposeCancelsBindings(t *testing.T) {
	c, _ := newTestController(Options{})
	src := make(chan interface{})
	defer close(src)

	require.NoError(t, c.BindStream("s", src, pointMapper))
	c.Dispose()

	waitFor(t, func() bool { return !c.HasStreamBinding("s") })
}

func TestExprMapperBinding(t *testing.T) {
	c, _ := newTestController(Options{})
	m, err := mapper.NewExprMapper("ts", "value * 2")
	require.NoError(t, err)

	ch := make(chan interface{}, 2)
	ch <- map[string]interface{}{"ts": 1, "value": 5}
	ch <- map[string]interface{}{"ts": 2, "value": 7}
	close(ch)

	require.NoError(t, c.BindStream("s", ch, m))
	waitFor(t, func() bool { return c.GetPointCount("s") == 2 })

	pts := c.GetPoints("s")
	assert.Equal(t, 10.0, pts[0].Y)
	assert.Equal(t, 14.0, pts[1].Y)
}
