package usecase

import (
	"fmt"
	"strings"

	"github.com/dyluth/errand/pkg/entity"
)

// Action names the mutation a request asks for.
type Action string

const (
	// ActionCreate adds a new entity; the id must not be taken
	ActionCreate Action = "create"

	// ActionUpdate applies a field patch to an existing entity
	ActionUpdate Action = "update"

	// ActionDelete removes an existing entity
	ActionDelete Action = "delete"

	// ActionView loads an entity without touching the remote or the repository
	ActionView Action = "view"
)

// Validate checks if the Action is a valid enum value.
func (a Action) Validate() error {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionView:
		return nil
	default:
		return fmt.Errorf("unknown action: %q", a)
	}
}

// Session identifies who issues a request. It is passed with every request and
// never stored by the orchestrator.
type Session struct {
	Actor string
	Admin bool
}

// Anonymous is the session used when the caller has no identity.
var Anonymous = Session{Actor: "anonymous"}

// actorName returns a printable actor for logs and commit payloads.
func (s Session) actorName() string {
	if strings.TrimSpace(s.Actor) == "" {
		return Anonymous.Actor
	}
	return s.Actor
}

// Request is the portable input of a use case: an id plus optional new values.
type Request struct {
	Action Action
	ID     string
	Patch  entity.Patch  // ActionUpdate only
	Entity entity.Entity // ActionCreate only
}
