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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
capacity: 5000
outOfOrder: autoSort
duplicates: average
coalescingDisabled: true
frameInterval: 33ms
logLevel: warn
retention:
  type: combined
  params:
    maxPoints: 1000
    maxAge: 60
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Capacity)
	assert.Equal(t, "autoSort", cfg.OutOfOrder)
	assert.Equal(t, "average", cfg.Duplicates)
	assert.True(t, cfg.CoalescingDisabled)
	assert.Equal(t, 33*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, "combined", cfg.Retention.Type)
	assert.Equal(t, 1000, cfg.Retention.Params["maxPoints"])
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Capacity)
	assert.Empty(t, cfg.Retention.Type)
	require.NoError(t, cfg.Validate())
}

func TestParseConfigInvalid(t *testing.T) {
	_, err := ParseConfig([]byte(`capacity: -5`))
	require.Error(t, err)

	_, err = ParseConfig([]byte(`outOfOrder: sideways`))
	require.Error(t, err)

	_, err = ParseConfig([]byte(`duplicates: quadruplicate`))
	require.Error(t, err)

	_, err = ParseConfig([]byte("\t not yaml"))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "livechart.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capacity: 42\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Capacity)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
