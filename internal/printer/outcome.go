package printer

import (
	"context"
	"fmt"

	"github.com/dyluth/errand/internal/usecase"
)

// Result prints the terminal outcome of a use case. Success goes to out, every
// other outcome to errOut.
func (p *Printer) Result(r usecase.Result) {
	switch r.Outcome {
	case usecase.Success:
		p.Success("%s %s: %s\n", r.Action, r.EntityID, r.Message)
	case usecase.Cancelled:
		p.Warning("%s %s cancelled: %s\n", r.Action, r.EntityID, r.Message)
	case usecase.NotFound:
		red.Fprintf(p.errOut, "✗ %s %s: not found\n", r.Action, displayID(r.EntityID))
	case usecase.ValidationError:
		red.Fprintf(p.errOut, "✗ %s %s: invalid input\n", r.Action, displayID(r.EntityID))
		fmt.Fprintf(p.errOut, "  %s\n", r.Message)
	case usecase.ConnectionInterrupted:
		red.Fprintf(p.errOut, "✗ %s %s: connection interrupted\n", r.Action, displayID(r.EntityID))
		fmt.Fprintf(p.errOut, "  %s\n  Nothing was changed. Try again once the remote is reachable.\n", r.Message)
	default:
		fmt.Fprintf(p.errOut, "%s\n", r)
	}
}

// Notifier returns a usecase.Notifier that prints every result
func (p *Printer) Notifier() usecase.Notifier {
	return usecase.NotifyFunc(func(_ context.Context, r usecase.Result) {
		p.Result(r)
	})
}

func displayID(id string) string {
	if id == "" {
		return "(no id)"
	}
	return id
}
