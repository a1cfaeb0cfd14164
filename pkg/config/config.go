// Copyright 2025 The actor-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for the actor runtime:
// mailbox defaults, shutdown behavior, supervision intensity and the
// metrics endpoint.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/turtacn/actor-go/pkg/mailbox"
)

// RuntimeConfig holds the tunables of one runtime instance.
type RuntimeConfig struct {
	// Name labels the runtime in logs.
	Name string `yaml:"name" json:"name"`
	// MetricsPort is the listen address of the Prometheus endpoint.
	// Empty disables it.
	MetricsPort string `yaml:"metrics_port" json:"metrics_port"`
	// MailboxCapacity is the default bounded mailbox size.
	MailboxCapacity int `yaml:"mailbox_capacity" json:"mailbox_capacity"`
	// Backpressure is the default bounded mailbox policy: "block",
	// "drop-newest" or "fail".
	Backpressure string `yaml:"backpressure" json:"backpressure"`
	// ShutdownTimeout bounds the graceful mailbox drain on shutdown,
	// in time.ParseDuration syntax.
	ShutdownTimeout string `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	// MaxRestarts and RestartWindow form the default supervision
	// intensity.
	MaxRestarts   int    `yaml:"max_restarts" json:"max_restarts"`
	RestartWindow string `yaml:"restart_window" json:"restart_window"`
	// RestartDelay is the pause before a supervisor respawns a child.
	RestartDelay string `yaml:"restart_delay" json:"restart_delay"`
}

// Config holds the complete configuration.
type Config struct {
	Runtime RuntimeConfig `yaml:"runtime" json:"runtime"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			Name:            "actor-go-node",
			MetricsPort:     ":8082",
			MailboxCapacity: 1000,
			Backpressure:    "block",
			ShutdownTimeout: "30s",
			MaxRestarts:     5,
			RestartWindow:   "60s",
			RestartDelay:    "0s",
		},
	}
}

// LoadConfig loads configuration from a YAML or JSON file. An empty path
// yields the default configuration; fields absent from the file keep their
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		log.Println("[INFO] No config file specified, using default configuration")
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[INFO] Loaded configuration from %s", configPath)
	return config, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	r := c.Runtime
	if r.MailboxCapacity < 1 {
		return fmt.Errorf("mailbox_capacity must be >= 1, got %d", r.MailboxCapacity)
	}
	if _, err := parsePolicy(r.Backpressure); err != nil {
		return err
	}
	for field, v := range map[string]string{
		"shutdown_timeout": r.ShutdownTimeout,
		"restart_window":   r.RestartWindow,
		"restart_delay":    r.RestartDelay,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", field, v, err)
		}
	}
	if r.MaxRestarts < 1 {
		return fmt.Errorf("max_restarts must be >= 1, got %d", r.MaxRestarts)
	}
	return nil
}

func parsePolicy(s string) (mailbox.Policy, error) {
	switch s {
	case "", "block":
		return mailbox.Block, nil
	case "drop-newest":
		return mailbox.DropNewest, nil
	case "fail":
		return mailbox.Fail, nil
	default:
		return 0, fmt.Errorf("unknown backpressure policy %q", s)
	}
}

// BackpressurePolicy returns the configured default mailbox policy.
func (r RuntimeConfig) BackpressurePolicy() mailbox.Policy {
	p, err := parsePolicy(r.Backpressure)
	if err != nil {
		return mailbox.Block
	}
	return p
}

func (r RuntimeConfig) duration(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// ShutdownTimeoutDuration returns the parsed drain timeout.
func (r RuntimeConfig) ShutdownTimeoutDuration() time.Duration {
	return r.duration(r.ShutdownTimeout, 30*time.Second)
}

// RestartWindowDuration returns the parsed restart window.
func (r RuntimeConfig) RestartWindowDuration() time.Duration {
	return r.duration(r.RestartWindow, 60*time.Second)
}

// RestartDelayDuration returns the parsed restart delay.
func (r RuntimeConfig) RestartDelayDuration() time.Duration {
	return r.duration(r.RestartDelay, 0)
}
