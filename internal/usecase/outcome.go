package usecase

import (
	"fmt"
	"strings"

	"github.com/dyluth/errand/pkg/entity"
)

// Outcome is the terminal state of one use case request.
// Exactly one success state and four failure states exist.
type Outcome int

const (
	// Success means the mutation was committed remotely and applied locally exactly once
	Success Outcome = iota

	// NotFound means the target id is not in the repository
	NotFound

	// ValidationError means the request or the resulting entity is malformed
	ValidationError

	// Cancelled means the confirmation gate said no, or the context ended
	Cancelled

	// ConnectionInterrupted means the remote facade could not be reached
	ConnectionInterrupted
)

var outcomeNames = map[Outcome]string{
	Success:               "success",
	NotFound:              "not_found",
	ValidationError:       "validation_error",
	Cancelled:             "cancelled",
	ConnectionInterrupted: "connection_interrupted",
}

// Outcomes lists every outcome in declaration order.
var Outcomes = []Outcome{Success, NotFound, ValidationError, Cancelled, ConnectionInterrupted}

// String returns the snake_case wire name of the outcome.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ParseOutcome converts a wire name back into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for o, name := range outcomeNames {
		if name == want {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown outcome: %q", s)
}

// MarshalText implements encoding.TextMarshaler so outcomes read well in JSON and YAML.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Result is what every use case returns. Callers switch on Outcome; Err carries
// the underlying cause for ValidationError and ConnectionInterrupted.
type Result struct {
	Outcome  Outcome        `json:"outcome"`
	Action   Action         `json:"action"`
	EntityID string         `json:"entity_id"`
	Entity   *entity.Entity `json:"entity,omitempty"` // State after the request (before it, for deletes and failures)
	Message  string         `json:"message"`
	Err      error          `json:"-"`
}

// OK reports whether the request succeeded.
func (r Result) OK() bool {
	return r.Outcome == Success
}

func (r Result) String() string {
	return fmt.Sprintf("%s %s: %s (%s)", r.Action, r.EntityID, r.Outcome, r.Message)
}
