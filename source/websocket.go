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

	"github.com/gorilla/websocket"
	"github.com/rulego/livechart/logger"
)

// WebSocket dials a live JSON feed and emits one map per received frame.
// The channel closes when the connection drops, a frame fails to decode, or
// ctx is cancelled.
func WebSocket(ctx context.Context, url string) (<-chan interface{}, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	ch := make(chan interface{}, 16)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(ch)
		defer conn.Close()
		for {
			var frame map[string]interface{}
			if err := conn.ReadJSON(&frame); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					logger.Warn("websocket source %s closed: %v", url, err)
				}
				return
			}
			select {
			case ch <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
