package remote

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the connectivity state of a simulated link.
type State string

const (
	// StateConnected means commits are accepted
	StateConnected State = "connected"

	// StateDisconnected means commits fail until a reconnect attempt succeeds
	StateDisconnected State = "disconnected"
)

// Validate checks if the State is a valid enum value.
func (s State) Validate() error {
	switch s {
	case StateConnected, StateDisconnected:
		return nil
	default:
		return fmt.Errorf("unknown link state: %q", s)
	}
}

// LinkConfig tunes a simulated link.
type LinkConfig struct {
	FailureProbability   float64       // Chance a connected link drops on a probe (0..1)
	ReconnectProbability float64       // Chance a disconnected link recovers on a probe (0..1)
	Latency              time.Duration // Simulated round-trip delay applied to Send
	Seed                 uint64        // Random seed, 0 = time based
	InitialState         State         // Defaults to StateConnected
	Logger               *zap.Logger   // Defaults to a no-op logger
}

// Link is a simulated remote connection.
//
// Connectivity is state, not a per-call coin flip: every probe is one transition
// step (connected -> drop with FailureProbability, disconnected -> reconnect with
// ReconnectProbability). The state is owned by the link and only changes through
// Probe, Connect and Disconnect.
type Link struct {
	mu        sync.Mutex
	state     State
	rng       *rand.Rand
	cfg       LinkConfig
	delivered []Commit
	logger    *zap.Logger
}

// NewLink creates a simulated link. Returns an error for out-of-range probabilities.
func NewLink(cfg LinkConfig) (*Link, error) {
	if cfg.FailureProbability < 0 || cfg.FailureProbability > 1 {
		return nil, fmt.Errorf("failure probability must be within [0,1], got %v", cfg.FailureProbability)
	}
	if cfg.ReconnectProbability < 0 || cfg.ReconnectProbability > 1 {
		return nil, fmt.Errorf("reconnect probability must be within [0,1], got %v", cfg.ReconnectProbability)
	}
	if cfg.Latency < 0 {
		return nil, fmt.Errorf("latency must not be negative, got %v", cfg.Latency)
	}
	if cfg.InitialState == "" {
		cfg.InitialState = StateConnected
	}
	if err := cfg.InitialState.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Link{
		state:  cfg.InitialState,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// State returns the current state without advancing it.
func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Connect forces the link into the connected state.
func (l *Link) Connect() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transition(StateConnected, "connect")
}

// Disconnect forces the link into the disconnected state.
func (l *Link) Disconnect() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transition(StateDisconnected, "disconnect")
}

// Probe advances the state machine by one step and returns the resulting state.
func (l *Link) Probe(ctx context.Context) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.probeLocked()
}

// IsConnected probes the link. Implements Facade.
func (l *Link) IsConnected(ctx context.Context) bool {
	return l.Probe(ctx) == StateConnected
}

// Send waits the configured latency, probes the link and records the commit.
// Returns ctx.Err() if the context ends during the simulated latency.
func (l *Link) Send(ctx context.Context, c Commit) error {
	if l.cfg.Latency > 0 {
		timer := time.NewTimer(l.cfg.Latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.probeLocked() != StateConnected {
		l.logger.Debug("commit rejected by link",
			zap.String("request_id", c.RequestID),
			zap.String("entity_id", c.EntityID))
		return fmt.Errorf("link down while sending %s for %q: %w", c.Action, c.EntityID, ErrConnectionInterrupted)
	}

	l.delivered = append(l.delivered, c)
	return nil
}

// Delivered returns a copy of every commit the link accepted, oldest first.
func (l *Link) Delivered() []Commit {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Commit, len(l.delivered))
	copy(out, l.delivered)
	return out
}

func (l *Link) probeLocked() State {
	switch l.state {
	case StateConnected:
		if l.roll(l.cfg.FailureProbability) {
			l.transition(StateDisconnected, "probe")
		}
	case StateDisconnected:
		if l.roll(l.cfg.ReconnectProbability) {
			l.transition(StateConnected, "probe")
		}
	}
	return l.state
}

// roll returns true with probability p. p == 0 never fires, p == 1 always does.
func (l *Link) roll(p float64) bool {
	if p <= 0 {
		return false
	}
	return l.rng.Float64() < p
}

func (l *Link) transition(to State, cause string) {
	if l.state == to {
		return
	}
	l.logger.Debug("link state changed",
		zap.String("from", string(l.state)),
		zap.String("to", string(to)),
		zap.String("cause", cause))
	l.state = to
}
