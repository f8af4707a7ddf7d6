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
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default tuning values used when the config leaves fields zero.
const (
	// DefaultCapacity is the per-series ring buffer capacity.
	DefaultCapacity = 10000
	// DefaultFrameInterval approximates a 60fps render host for the
	// standalone timer scheduler.
	DefaultFrameInterval = 16 * time.Millisecond
)

// Config is the declarative engine configuration.
type Config struct {
	// Capacity is the per-series ring buffer capacity. Zero means
	// DefaultCapacity; negative is invalid.
	Capacity int `yaml:"capacity" json:"capacity"`
	// OutOfOrder names an OutOfOrderBehavior ("accept", "acceptWithWarning",
	// "reject", "autoSort"). Empty means "accept".
	OutOfOrder string `yaml:"outOfOrder" json:"outOfOrder"`
	// Duplicates names a DuplicateTimestampBehavior ("replace", "keepFirst",
	// "keepBoth", "average"). Empty means "replace".
	Duplicates string `yaml:"duplicates" json:"duplicates"`
	// Retention describes the retention policy.
	Retention RetentionConfig `yaml:"retention" json:"retention"`
	// CoalescingDisabled makes change callbacks fire synchronously on every
	// mutation instead of once per frame.
	CoalescingDisabled bool `yaml:"coalescingDisabled" json:"coalescingDisabled"`
	// FrameInterval is the frame period for the standalone timer scheduler.
	// Ignored when the host injects its own scheduler.
	FrameInterval time.Duration `yaml:"frameInterval" json:"frameInterval"`
	// LogLevel names a logger level ("debug", "info", "warn", "error", "off").
	LogLevel string `yaml:"logLevel" json:"logLevel"`
}

// RetentionConfig describes a retention policy declaratively. Params are
// coerced loosely by retention.FromConfig, so YAML integers, floats and
// strings are all accepted.
//
// Types and their params:
//
//	unlimited:        -
//	rollingCount:     maxPoints
//	rollingDuration:  maxAge (data-axis units)
//	combined:         maxPoints, maxAge
//	downsampled:      recentWindow, recentMaxPoints?, archiveResolution,
//	                  maxArchivePoints?, method (first|last|average|minMax|lttb)
type RetentionConfig struct {
	Type   string                 `yaml:"type" json:"type"`
	Params map[string]interface{} `yaml:"params" json:"params"`
}

// Validate checks the static parts of the config. Retention params are
// validated later by retention.FromConfig.
func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if _, err := ParseOutOfOrderBehavior(c.OutOfOrder); err != nil {
		return err
	}
	if _, err := ParseDuplicateTimestampBehavior(c.Duplicates); err != nil {
		return err
	}
	return nil
}

// ParseConfig decodes a YAML document into a Config and validates it.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}
