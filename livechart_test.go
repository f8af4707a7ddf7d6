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
	"testing"
	"time"

	"github.com/rulego/livechart/coalescer"
	"github.com/rulego/livechart/retention"
	"github.com/rulego/livechart/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler lets tests decide when a frame fires.
type manualScheduler struct {
	next    coalescer.Handle
	pending map[coalescer.Handle]func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{pending: make(map[coalescer.Handle]func())}
}

func (s *manualScheduler) ScheduleOnce(fn func()) coalescer.Handle {
	s.next++
	s.pending[s.next] = fn
	return s.next
}

func (s *manualScheduler) Cancel(h coalescer.Handle) {
	delete(s.pending, h)
}

func (s *manualScheduler) fireFrame() {
	for h, fn := range s.pending {
		delete(s.pending, h)
		fn()
	}
}

func TestNewDefaults(t *testing.T) {
	chart := New(WithCoalescingDisabled())
	defer chart.Dispose()

	assert.Equal(t, retention.Unlimited{}, chart.RetentionPolicy())
	assert.False(t, chart.IsPaused())
	assert.Empty(t, chart.SeriesNames())
}

func TestFacadeRollingWindow(t *testing.T) {
	chart := New(
		WithRetentionPolicy(retention.RollingCount{MaxPoints: 3}),
		WithCoalescingDisabled(),
	)
	defer chart.Dispose()

	for i := 1; i <= 5; i++ {
		require.True(t, chart.AddXY("s", float64(i), float64(i)*10))
	}

	assert.Equal(t, 3, chart.GetPointCount("s"))
	oldest, ok := chart.GetOldestPoint("s")
	require.True(t, ok)
	assert.Equal(t, 3.0, oldest.X)
	latest, ok := chart.GetLatestPoint("s")
	require.True(t, ok)
	assert.Equal(t, 5.0, latest.X)

	stats := chart.GetStatistics()
	assert.Equal(t, uint64(5), stats.Series["s"].TotalAdded)
	assert.Equal(t, uint64(2), stats.Series["s"].TotalEvicted)
}

func TestFacadeCoalescedNotification(t *testing.T) {
	sched := newManualScheduler()
	chart := New(WithScheduler(sched))
	defer chart.Dispose()

	var frames [][]string
	chart.SetDataCallback(func(series []string) {
		frames = append(frames, series)
	})

	chart.AddXY("a", 1, 1)
	chart.AddXY("a", 2, 2)
	chart.AddXY("b", 1, 1)
	assert.Empty(t, frames)

	sched.fireFrame()
	require.Len(t, frames, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, frames[0])
}

func TestFacadePauseResume(t *testing.T) {
	sched := newManualScheduler()
	chart := New(WithScheduler(sched))
	defer chart.Dispose()

	var transitions []bool
	chart.SetPauseCallback(func(paused bool) {
		transitions = append(transitions, paused)
	})
	var frames int
	chart.SetDataCallback(func(series []string) { frames++ })

	chart.Pause()
	assert.True(t, chart.IsPaused())
	chart.AddXY("s", 1, 1)
	sched.fireFrame()
	assert.Zero(t, frames)

	// ingestion kept running while paused
	assert.Equal(t, 1, chart.GetPointCount("s"))

	chart.Resume(250 * time.Millisecond)
	assert.False(t, chart.IsPaused())
	sched.fireFrame()
	assert.Equal(t, 1, frames)
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestFacadePolicySwap(t *testing.T) {
	chart := New(WithCoalescingDisabled())
	defer chart.Dispose()

	for i := 0; i < 10; i++ {
		chart.AddXY("s", float64(i), 0)
	}

	var notified [][]string
	chart.SetDataCallback(func(series []string) {
		notified = append(notified, series)
	})

	// structurally equal reassignment is a no-op
	chart.SetRetentionPolicy(retention.Unlimited{})
	assert.Empty(t, notified)
	assert.Equal(t, 10, chart.GetPointCount("s"))

	chart.SetRetentionPolicy(retention.RollingCount{MaxPoints: 4})
	assert.Equal(t, 4, chart.GetPointCount("s"))
	require.Len(t, notified, 1)
	assert.Equal(t, []string{"s"}, notified[0])
}

func TestFacadeStreamBinding(t *testing.T) {
	chart := New(WithCoalescingDisabled())
	defer chart.Dispose()

	src := make(chan interface{}, 3)
	src <- types.NewPoint(1, 10)
	src <- types.NewPoint(2, 20)
	src <- types.NewPoint(3, 30)
	close(src)

	err := chart.BindStream("s", src, func(v interface{}) (types.DataPoint, error) {
		pt, ok := v.(types.DataPoint)
		if !ok {
			return types.DataPoint{}, errors.New("not a point")
		}
		return pt, nil
	})
	require.NoError(t, err)

	deadline := time.Now().Add(5 * time.Second)
	for chart.GetPointCount("s") != 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, 3, chart.GetPointCount("s"))
	assert.False(t, chart.HasStreamBinding("s"))
}

func TestFromConfig(t *testing.T) {
	cfg, err := types.ParseConfig([]byte(`
capacity: 100
outOfOrder: reject
duplicates: keepFirst
retention:
  type: rollingCount
  params:
    maxPoints: 5
coalescingDisabled: true
`))
	require.NoError(t, err)

	chart, err := FromConfig(cfg)
	require.NoError(t, err)
	defer chart.Dispose()

	assert.Equal(t, retention.RollingCount{MaxPoints: 5}, chart.RetentionPolicy())

	chart.AddXY("s", 10, 1)
	assert.False(t, chart.AddPoint("s", types.NewPoint(5, 2)))
	assert.Equal(t, 1, chart.GetPointCount("s"))
}

func TestFromConfigOptionsWin(t *testing.T) {
	cfg := &types.Config{
		Retention: types.RetentionConfig{Type: "unlimited"},
	}
	chart, err := FromConfig(cfg,
		WithRetentionPolicy(retention.RollingCount{MaxPoints: 2}),
		WithCoalescingDisabled(),
	)
	require.NoError(t, err)
	defer chart.Dispose()

	assert.Equal(t, retention.RollingCount{MaxPoints: 2}, chart.RetentionPolicy())
}

func TestFromConfigErrors(t *testing.T) {
	_, err := FromConfig(nil)
	assert.Error(t, err)

	_, err = FromConfig(&types.Config{
		Retention: types.RetentionConfig{Type: "nope"},
	})
	assert.Error(t, err)

	_, err = FromConfig(&types.Config{
		Retention:  types.RetentionConfig{Type: "unlimited"},
		OutOfOrder: "sideways",
	})
	assert.Error(t, err)

	_, err = FromConfig(&types.Config{
		Retention: types.RetentionConfig{Type: "unlimited"},
		LogLevel:  "loud",
	})
	assert.Error(t, err)
}

func TestFacadeSetInitialData(t *testing.T) {
	chart := New(WithCoalescingDisabled())
	defer chart.Dispose()

	chart.SetInitialData("s", []types.DataPoint{
		types.NewPoint(5, 1),
		types.NewPoint(1, 2), // out of order, accepted verbatim
	})
	pts := chart.GetPoints("s")
	require.Len(t, pts, 2)
	assert.Equal(t, 5.0, pts[0].X)
	assert.Equal(t, 1.0, pts[1].X)
}

func TestFacadeClearAndDispose(t *testing.T) {
	chart := New(WithCoalescingDisabled())

	chart.AddXY("a", 1, 1)
	chart.AddXY("b", 1, 1)
	chart.Clear("a")
	assert.Equal(t, 0, chart.GetPointCount("a"))
	assert.Equal(t, 1, chart.GetPointCount("b"))

	chart.Dispose()
	assert.False(t, chart.AddXY("b", 2, 2))
	chart.Dispose() // idempotent
}
