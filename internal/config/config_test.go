package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dyluth/errand/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "errand.yml")

	validConfig := `version: "1.0"
session:
  actor: alice
  admin: true
orchestrator:
  require_admin: true
  confirm: always
remote:
  mode: simulated
  failure_probability: 0
  reconnect_probability: 1
  latency: 150ms
  rand_seed: 42
  initial_state: disconnected
seed:
  - id: P001
    name: Cafe Central
    category: refreshment-point
  - id: P002
    name: " Harbour Books "
    status: pending
`
	require.NoError(t, os.WriteFile(configPath, []byte(validConfig), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, SessionConfig{Actor: "alice", Admin: true}, cfg.Session)
	assert.True(t, cfg.Orchestrator.RequireAdmin)
	assert.Equal(t, ConfirmAlways, cfg.Orchestrator.Confirm)

	assert.Equal(t, ModeSimulated, cfg.Remote.Mode)
	assert.Equal(t, 0.0, *cfg.Remote.FailureProbability)
	assert.Equal(t, 1.0, *cfg.Remote.ReconnectProbability)
	assert.Equal(t, 150*time.Millisecond, cfg.Remote.Latency)
	assert.Equal(t, uint64(42), cfg.Remote.RandSeed)
	assert.Equal(t, "disconnected", cfg.Remote.InitialState)

	require.Len(t, cfg.Seed, 2)
	assert.Equal(t, "Cafe Central", cfg.Seed[0].Name)
	assert.Equal(t, entity.StatusActive, cfg.Seed[0].Status)
	assert.Equal(t, "Harbour Books", cfg.Seed[1].Name)
	assert.Equal(t, entity.StatusPending, cfg.Seed[1].Status)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`version: "1.0"`))
	require.NoError(t, err)

	assert.Equal(t, "operator", cfg.Session.Actor)
	assert.False(t, cfg.Session.Admin)
	require.NotNil(t, cfg.Orchestrator)
	assert.Equal(t, ConfirmPrompt, cfg.Orchestrator.Confirm)
	assert.False(t, cfg.Orchestrator.RequireAdmin)

	require.NotNil(t, cfg.Remote)
	assert.Equal(t, ModeSimulated, cfg.Remote.Mode)
	assert.Equal(t, 0.1, *cfg.Remote.FailureProbability)
	assert.Equal(t, 0.5, *cfg.Remote.ReconnectProbability)
	assert.Equal(t, "connected", cfg.Remote.InitialState)
	assert.Equal(t, "default", cfg.Remote.Namespace)
	assert.Empty(t, cfg.Seed)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/errand.yml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfg, err := Parse([]byte("version: \"1.0\"\nseed:\n  - this is invalid\n    yaml syntax\n"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unsupported version",
			yaml:    `version: "2.0"`,
			wantErr: "unsupported version: 2.0",
		},
		{
			name:    "missing version",
			yaml:    `seed: []`,
			wantErr: "unsupported version",
		},
		{
			name:    "bad confirm mode",
			yaml:    "version: \"1.0\"\norchestrator:\n  confirm: sometimes\n",
			wantErr: "invalid orchestrator.confirm: sometimes",
		},
		{
			name:    "bad remote mode",
			yaml:    "version: \"1.0\"\nremote:\n  mode: carrier-pigeon\n",
			wantErr: "invalid remote.mode: carrier-pigeon",
		},
		{
			name:    "failure probability above one",
			yaml:    "version: \"1.0\"\nremote:\n  failure_probability: 1.5\n",
			wantErr: "remote.failure_probability must be within [0,1]",
		},
		{
			name:    "negative reconnect probability",
			yaml:    "version: \"1.0\"\nremote:\n  reconnect_probability: -0.1\n",
			wantErr: "remote.reconnect_probability must be within [0,1]",
		},
		{
			name:    "negative latency",
			yaml:    "version: \"1.0\"\nremote:\n  latency: -1s\n",
			wantErr: "remote.latency must not be negative",
		},
		{
			name:    "bad initial state",
			yaml:    "version: \"1.0\"\nremote:\n  initial_state: flaky\n",
			wantErr: "invalid remote.initial_state: flaky",
		},
		{
			name:    "redis without url",
			yaml:    "version: \"1.0\"\nremote:\n  mode: redis\n",
			wantErr: "remote.redis_url is required",
		},
		{
			name:    "seed with blank name",
			yaml:    "version: \"1.0\"\nseed:\n  - id: P001\n    name: \"  \"\n",
			wantErr: "seed entity 0",
		},
		{
			name:    "seed with unknown status",
			yaml:    "version: \"1.0\"\nseed:\n  - id: P001\n    name: Cafe\n    status: lost\n",
			wantErr: "unknown status",
		},
		{
			name:    "duplicate seed ids",
			yaml:    "version: \"1.0\"\nseed:\n  - {id: P001, name: A}\n  - {id: P001, name: B}\n",
			wantErr: "duplicate seed id 'P001' (entries 0 and 1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RedisMode(t *testing.T) {
	cfg, err := Parse([]byte("version: \"1.0\"\nremote:\n  mode: redis\n  redis_url: redis://cache:6379/2\n  namespace: staging\n"))
	require.NoError(t, err)
	assert.Equal(t, ModeRedis, cfg.Remote.Mode)
	assert.Equal(t, "redis://cache:6379/2", cfg.Remote.RedisURL)
	assert.Equal(t, "staging", cfg.Remote.Namespace)
}
