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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/actor-go/pkg/mailbox"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "actor-go-node", cfg.Runtime.Name)
	assert.Equal(t, ":8082", cfg.Runtime.MetricsPort)
	assert.Equal(t, 1000, cfg.Runtime.MailboxCapacity)
	assert.Equal(t, mailbox.Block, cfg.Runtime.BackpressurePolicy())
	assert.Equal(t, 30*time.Second, cfg.Runtime.ShutdownTimeoutDuration())
	assert.Equal(t, 5, cfg.Runtime.MaxRestarts)
	assert.Equal(t, 60*time.Second, cfg.Runtime.RestartWindowDuration())
	assert.Equal(t, time.Duration(0), cfg.Runtime.RestartDelayDuration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigYAML(t *testing.T) {
	content := `
runtime:
  name: "test-node"
  mailbox_capacity: 64
  backpressure: "drop-newest"
  shutdown_timeout: "5s"
  max_restarts: 3
  restart_window: "30s"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test-node", cfg.Runtime.Name)
	assert.Equal(t, 64, cfg.Runtime.MailboxCapacity)
	assert.Equal(t, mailbox.DropNewest, cfg.Runtime.BackpressurePolicy())
	assert.Equal(t, 5*time.Second, cfg.Runtime.ShutdownTimeoutDuration())
	assert.Equal(t, 3, cfg.Runtime.MaxRestarts)
	assert.Equal(t, 30*time.Second, cfg.Runtime.RestartWindowDuration())
	// Fields absent from the file keep their defaults.
	assert.Equal(t, ":8082", cfg.Runtime.MetricsPort)
}

func TestLoadConfigJSON(t *testing.T) {
	content := `{"runtime": {"name": "json-node", "backpressure": "fail"}}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json-node", cfg.Runtime.Name)
	assert.Equal(t, mailbox.Fail, cfg.Runtime.BackpressurePolicy())
	assert.Equal(t, 1000, cfg.Runtime.MailboxCapacity)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	badExt := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(badExt, []byte("x"), 0644))
	_, err = LoadConfig(badExt)
	assert.ErrorContains(t, err, "unsupported config file format")

	badYAML := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("runtime: [unclosed"), 0644))
	_, err = LoadConfig(badYAML)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Runtime.MailboxCapacity = 0
	assert.ErrorContains(t, cfg.Validate(), "mailbox_capacity")

	cfg = DefaultConfig()
	cfg.Runtime.Backpressure = "reject"
	assert.ErrorContains(t, cfg.Validate(), "backpressure")

	cfg = DefaultConfig()
	cfg.Runtime.ShutdownTimeout = "not-a-duration"
	assert.ErrorContains(t, cfg.Validate(), "shutdown_timeout")

	cfg = DefaultConfig()
	cfg.Runtime.MaxRestarts = 0
	assert.ErrorContains(t, cfg.Validate(), "max_restarts")
}

func TestDurationFallbacks(t *testing.T) {
	r := RuntimeConfig{}
	assert.Equal(t, 30*time.Second, r.ShutdownTimeoutDuration())
	assert.Equal(t, 60*time.Second, r.RestartWindowDuration())
	assert.Equal(t, time.Duration(0), r.RestartDelayDuration())
	assert.Equal(t, mailbox.Block, r.BackpressurePolicy())
}
