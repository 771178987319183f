package usecase

import (
	"context"

	"github.com/dyluth/errand/pkg/entity"
)

// Prompt describes what the user is asked to confirm.
type Prompt struct {
	Action  Action
	Current *entity.Entity // nil for create
	Next    *entity.Entity // nil for delete
	Actor   string
}

// Confirmer is the synchronous yes/no gate before commit.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, p Prompt) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) bool {
	return f(ctx, p)
}

// AlwaysConfirm approves every request.
var AlwaysConfirm = ConfirmFunc(func(context.Context, Prompt) bool { return true })

// NeverConfirm declines every request.
var NeverConfirm = ConfirmFunc(func(context.Context, Prompt) bool { return false })

// Notifier receives the terminal result of every request.
type Notifier interface {
	Notify(ctx context.Context, r Result)
}

// NotifyFunc adapts a function to the Notifier interface.
type NotifyFunc func(ctx context.Context, r Result)

// Notify implements Notifier.
func (f NotifyFunc) Notify(ctx context.Context, r Result) {
	f(ctx, r)
}

var discardNotifier = NotifyFunc(func(context.Context, Result) {})

// Handler is the one contract a UI layer needs: request in, result out.
type Handler interface {
	Handle(ctx context.Context, s Session, req Request) Result
}
