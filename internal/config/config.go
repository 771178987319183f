package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dyluth/errand/pkg/entity"
	"gopkg.in/yaml.v3"
)

// Confirm modes for the orchestrator's confirmation gate
const (
	ConfirmPrompt = "prompt" // ask on the terminal
	ConfirmAlways = "always" // auto-approve
	ConfirmNever  = "never"  // decline every mutation (dry run)
)

// Remote modes
const (
	ModeSimulated = "simulated"
	ModeRedis     = "redis"
)

const (
	defaultFailureProbability   = 0.1
	defaultReconnectProbability = 0.5
	defaultNamespace            = "default"
	defaultActor                = "operator"
)

// SessionConfig is the identity used for every request issued by this process
type SessionConfig struct {
	Actor string `yaml:"actor,omitempty"`
	Admin bool   `yaml:"admin,omitempty"`
}

// OrchestratorConfig controls the use case flow
type OrchestratorConfig struct {
	RequireAdmin bool   `yaml:"require_admin,omitempty"` // Reject mutations from non-admin sessions
	Confirm      string `yaml:"confirm,omitempty"`       // prompt, always or never (default: prompt)
}

// RemoteConfig selects and tunes the remote facade
type RemoteConfig struct {
	Mode                 string        `yaml:"mode,omitempty"`                  // simulated or redis (default: simulated)
	FailureProbability   *float64      `yaml:"failure_probability,omitempty"`   // default 0.1
	ReconnectProbability *float64      `yaml:"reconnect_probability,omitempty"` // default 0.5
	Latency              time.Duration `yaml:"latency,omitempty"`
	RandSeed             uint64        `yaml:"rand_seed,omitempty"` // 0 = time based
	InitialState         string        `yaml:"initial_state,omitempty"`
	RedisURL             string        `yaml:"redis_url,omitempty"`
	Namespace            string        `yaml:"namespace,omitempty"`
}

// Config represents the top-level errand.yml configuration
type Config struct {
	Version      string              `yaml:"version"`
	Session      SessionConfig       `yaml:"session"`
	Orchestrator *OrchestratorConfig `yaml:"orchestrator,omitempty"`
	Remote       *RemoteConfig       `yaml:"remote,omitempty"`
	Seed         []entity.Entity     `yaml:"seed,omitempty"`
}

// Validate performs strict validation on the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Session.Actor == "" {
		c.Session.Actor = defaultActor
	}

	if c.Orchestrator == nil {
		c.Orchestrator = &OrchestratorConfig{}
	}
	if c.Orchestrator.Confirm == "" {
		c.Orchestrator.Confirm = ConfirmPrompt
	}
	switch c.Orchestrator.Confirm {
	case ConfirmPrompt, ConfirmAlways, ConfirmNever:
	default:
		return fmt.Errorf("invalid orchestrator.confirm: %s (must be 'prompt', 'always', or 'never')", c.Orchestrator.Confirm)
	}

	if c.Remote == nil {
		c.Remote = &RemoteConfig{}
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}

	seen := make(map[string]int, len(c.Seed))
	for i := range c.Seed {
		e := &c.Seed[i]
		e.Normalize()
		if err := e.Validate(); err != nil {
			return fmt.Errorf("seed entity %d (%q): %w", i, e.ID, err)
		}
		if first, exists := seen[e.ID]; exists {
			return fmt.Errorf("duplicate seed id '%s' (entries %d and %d)", e.ID, first, i)
		}
		seen[e.ID] = i
	}

	return nil
}

// Validate checks the remote section and applies defaults
func (r *RemoteConfig) Validate() error {
	if r.Mode == "" {
		r.Mode = ModeSimulated
	}
	if r.Mode != ModeSimulated && r.Mode != ModeRedis {
		return fmt.Errorf("invalid remote.mode: %s (must be 'simulated' or 'redis')", r.Mode)
	}

	if r.FailureProbability == nil {
		p := defaultFailureProbability
		r.FailureProbability = &p
	}
	if r.ReconnectProbability == nil {
		p := defaultReconnectProbability
		r.ReconnectProbability = &p
	}
	if p := *r.FailureProbability; p < 0 || p > 1 {
		return fmt.Errorf("remote.failure_probability must be within [0,1], got %v", p)
	}
	if p := *r.ReconnectProbability; p < 0 || p > 1 {
		return fmt.Errorf("remote.reconnect_probability must be within [0,1], got %v", p)
	}

	if r.Latency < 0 {
		return fmt.Errorf("remote.latency must not be negative, got %v", r.Latency)
	}

	if r.InitialState == "" {
		r.InitialState = "connected"
	}
	if r.InitialState != "connected" && r.InitialState != "disconnected" {
		return fmt.Errorf("invalid remote.initial_state: %s (must be 'connected' or 'disconnected')", r.InitialState)
	}

	if r.Namespace == "" {
		r.Namespace = defaultNamespace
	}
	if r.Mode == ModeRedis && r.RedisURL == "" {
		return fmt.Errorf("remote.redis_url is required when remote.mode is 'redis'")
	}

	return nil
}

// Load reads and validates errand.yml from the specified path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
