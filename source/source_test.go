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

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	ch := FromSlice([]interface{}{1, 2, 3})

	var got []interface{}
	for v := range ch {
		got = append(got, v)
	}
	assert.Equal(t, []interface{}{1, 2, 3}, got)
}

func TestFromSliceEmpty(t *testing.T) {
	ch := FromSlice(nil)
	_, open := <-ch
	assert.False(t, open)
}

func TestTicker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := Ticker(ctx, 5*time.Millisecond, func(i int) interface{} { return i })

	var got []interface{}
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case v := <-ch:
			got = append(got, v)
		case <-timeout:
			t.Fatal("ticker source produced too few values")
		}
	}
	assert.Contains(t, got, 0)

	cancel()
	// channel closes after cancellation
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("ticker channel never closed")
		}
	}
}

var upgrader = websocket.Upgrader{}

func TestWebSocket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for i := 0; i < 3; i++ {
			err := conn.WriteJSON(map[string]interface{}{"ts": i, "v": i * 10})
			require.NoError(t, err)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ch, err := WebSocket(ctx, url)
	require.NoError(t, err)

	var frames []map[string]interface{}
	for v := range ch {
		frames = append(frames, v.(map[string]interface{}))
	}
	require.Len(t, frames, 3)
	assert.Equal(t, float64(20), frames[2]["v"])
}

func TestWebSocketDialError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := WebSocket(ctx, "ws://127.0.0.1:1/nowhere")
	require.Error(t, err)
}

func TestWebSocketCancel(t *testing.T) {
	hold := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		<-hold
	}))
	defer srv.Close()
	defer close(hold)

	ctx, cancel := context.WithCancel(context.Background())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ch, err := WebSocket(ctx, url)
	require.NoError(t, err)

	cancel()
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed after cancel")
	}
}
