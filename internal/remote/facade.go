// Package remote provides the stand-in for the server every commit must reach
// before a use case is allowed to mutate the repository.
//
// Two facades are available: Link, a simulated connection whose connectivity is
// an explicit state machine with probabilistic transitions, and Redis, which
// mirrors commits into a real Redis server and publishes them as events.
package remote

import (
	"context"
	"errors"

	"github.com/dyluth/errand/pkg/entity"
)

// ErrConnectionInterrupted is returned by Send when the remote could not be reached.
// A single failure is final for the request; facades never retry.
var ErrConnectionInterrupted = errors.New("connection interrupted")

// Facade is the contract the orchestrator commits through.
type Facade interface {
	// IsConnected probes the remote and reports whether it is reachable right now.
	IsConnected(ctx context.Context) bool

	// Send delivers a commit. It checks connectivity first and returns an error
	// wrapping ErrConnectionInterrupted when the remote is unreachable.
	Send(ctx context.Context, c Commit) error
}

// Commit is the payload sent to the remote before a mutation is applied locally.
type Commit struct {
	RequestID string         `json:"request_id"`       // UUID - unique per request
	Action    string         `json:"action"`           // Use case action (create, update, delete, ...)
	EntityID  string         `json:"entity_id"`        // Target entity
	Entity    *entity.Entity `json:"entity,omitempty"` // Resulting entity state, nil when the entity is removed
	Actor     string         `json:"actor"`            // Session actor that issued the request
	SentAtMs  int64          `json:"sent_at_ms"`       // Unix timestamp in milliseconds
}

// Removes reports whether the commit deletes its entity.
func (c Commit) Removes() bool {
	return c.Entity == nil
}

// IsInterrupted reports whether err signals a dropped remote connection.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrConnectionInterrupted)
}
