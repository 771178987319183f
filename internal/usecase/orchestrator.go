// Package usecase implements the per-request controller shared by every CRUD use case:
// load, validate, confirm, commit through the remote facade, notify.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyluth/errand/internal/remote"
	"github.com/dyluth/errand/pkg/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the repository surface the orchestrator needs.
type Store interface {
	FindByID(id string) (entity.Entity, bool)
	Add(e entity.Entity) bool
	Update(id string, patch entity.Patch) bool
	Delete(id string) bool
}

// Orchestrator runs use case requests one at a time against a store and a remote.
// It implements Handler.
type Orchestrator struct {
	store        Store
	remote       remote.Facade
	confirm      Confirmer
	notify       Notifier
	logger       *zap.Logger
	metrics      *Metrics
	requireAdmin bool
	now          func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConfirmer sets the confirmation gate. Defaults to AlwaysConfirm.
func WithConfirmer(c Confirmer) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.confirm = c
		}
	}
}

// WithNotifier sets the receiver of terminal results. Defaults to discarding them.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notify = n
		}
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics enables outcome metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithRequireAdmin rejects mutations from non-admin sessions as validation errors.
func WithRequireAdmin(required bool) Option {
	return func(o *Orchestrator) {
		o.requireAdmin = required
	}
}

// WithClock overrides the time source used for timestamps and latency.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an orchestrator over store, committing through facade.
func New(store Store, facade remote.Facade, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		remote:  facade,
		confirm: AlwaysConfirm,
		notify:  discardNotifier,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Create adds a new entity. A blank id is replaced by a generated UUID.
func (o *Orchestrator) Create(ctx context.Context, s Session, e entity.Entity) Result {
	return o.Handle(ctx, s, Request{Action: ActionCreate, ID: e.ID, Entity: e})
}

// Update applies a patch to the entity with the given id.
func (o *Orchestrator) Update(ctx context.Context, s Session, id string, patch entity.Patch) Result {
	return o.Handle(ctx, s, Request{Action: ActionUpdate, ID: id, Patch: patch})
}

// SetStatus moves an entity to a new status (approve, reject, archive).
func (o *Orchestrator) SetStatus(ctx context.Context, s Session, id string, status entity.Status) Result {
	return o.Update(ctx, s, id, entity.StatusPatch(status))
}

// Delete removes the entity with the given id.
func (o *Orchestrator) Delete(ctx context.Context, s Session, id string) Result {
	return o.Handle(ctx, s, Request{Action: ActionDelete, ID: id})
}

// View loads an entity. It never confirms, commits or mutates.
func (o *Orchestrator) View(ctx context.Context, id string) Result {
	return o.Handle(ctx, Anonymous, Request{Action: ActionView, ID: id})
}

// Handle runs one request to a terminal outcome, records it and notifies.
// Implements Handler.
func (o *Orchestrator) Handle(ctx context.Context, s Session, req Request) Result {
	start := o.now()

	res := o.run(ctx, s, req)
	res.Action = req.Action

	o.metrics.observe(req.Action, res.Outcome, o.now().Sub(start))

	fields := []zap.Field{
		zap.String("entity_id", res.EntityID),
		zap.String("actor", s.actorName()),
		zap.String("outcome", res.Outcome.String()),
		zap.Duration("elapsed", o.now().Sub(start)),
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(res.Err))
	}
	o.logEvent(outcomeEvent(req.Action, res.Outcome), req.Action, fields...)

	o.notify.Notify(ctx, res)
	return res
}

func (o *Orchestrator) run(ctx context.Context, s Session, req Request) Result {
	if err := req.Action.Validate(); err != nil {
		return Result{Outcome: ValidationError, EntityID: req.ID, Message: err.Error(), Err: err}
	}
	if err := ctx.Err(); err != nil {
		return cancelled(req.ID, nil, err)
	}

	// 1. Load
	var current *entity.Entity
	var id string

	if req.Action == ActionCreate {
		candidate := req.Entity
		if candidate.ID == "" {
			candidate.ID = entity.NewID()
		}
		candidate.Normalize()
		id = candidate.ID

		if _, taken := o.store.FindByID(id); taken {
			err := fmt.Errorf("entity %q already exists", id)
			return Result{Outcome: ValidationError, EntityID: id, Message: err.Error(), Err: err}
		}
		req.Entity = candidate
	} else {
		id = req.ID
		loaded, ok := o.store.FindByID(id)
		if !ok {
			return Result{Outcome: NotFound, EntityID: id, Message: fmt.Sprintf("entity %q not found", id)}
		}
		current = &loaded
	}

	o.logger.Debug("usecase_loaded", zap.String("action", string(req.Action)), zap.String("entity_id", id))

	if req.Action == ActionView {
		return Result{Outcome: Success, EntityID: id, Entity: current, Message: "loaded"}
	}

	// 2. Validate
	next, err := o.validate(s, req, current)
	if err != nil {
		return Result{Outcome: ValidationError, EntityID: id, Entity: current, Message: err.Error(), Err: err}
	}

	// 3. Confirm
	prompt := Prompt{Action: req.Action, Current: current, Next: next, Actor: s.actorName()}
	if !o.confirm.Confirm(ctx, prompt) {
		return Result{Outcome: Cancelled, EntityID: id, Entity: current, Message: "cancelled before commit"}
	}
	if err := ctx.Err(); err != nil {
		return cancelled(id, current, err)
	}

	// 4. Commit: remote first, local mutation only after the remote accepted it
	commit := remote.Commit{
		RequestID: uuid.New().String(),
		Action:    string(req.Action),
		EntityID:  id,
		Entity:    next,
		Actor:     s.actorName(),
		SentAtMs:  o.now().UnixMilli(),
	}
	if err := o.remote.Send(ctx, commit); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return cancelled(id, current, err)
		}
		return Result{Outcome: ConnectionInterrupted, EntityID: id, Entity: current, Message: err.Error(), Err: err}
	}

	return o.apply(req, id, current, next)
}

// validate checks the request and returns the entity state it would produce (nil for deletes).
func (o *Orchestrator) validate(s Session, req Request, current *entity.Entity) (*entity.Entity, error) {
	if o.requireAdmin && !s.Admin {
		return nil, fmt.Errorf("session %q is not an admin session", s.actorName())
	}

	switch req.Action {
	case ActionCreate:
		next := req.Entity
		if next.CreatedAtMs == 0 {
			next.CreatedAtMs = o.now().UnixMilli()
		}
		if err := next.Validate(); err != nil {
			return nil, err
		}
		return &next, nil

	case ActionUpdate:
		if req.Patch.IsEmpty() {
			return nil, fmt.Errorf("update has no fields to change")
		}
		next := req.Patch.Apply(*current)
		next.UpdatedAtMs = o.now().UnixMilli()
		if err := next.Validate(); err != nil {
			return nil, err
		}
		return &next, nil

	default:
		return nil, nil
	}
}

func (o *Orchestrator) apply(req Request, id string, current, next *entity.Entity) Result {
	switch req.Action {
	case ActionCreate:
		if !o.store.Add(*next) {
			err := fmt.Errorf("entity %q already exists", id)
			return Result{Outcome: ValidationError, EntityID: id, Message: err.Error(), Err: err}
		}
	case ActionUpdate:
		if !o.store.Update(id, req.Patch) {
			return Result{Outcome: NotFound, EntityID: id, Message: fmt.Sprintf("entity %q disappeared before commit", id)}
		}
	case ActionDelete:
		if !o.store.Delete(id) {
			return Result{Outcome: NotFound, EntityID: id, Message: fmt.Sprintf("entity %q disappeared before commit", id)}
		}
		return Result{Outcome: Success, EntityID: id, Entity: current, Message: "deleted"}
	}

	stored, ok := o.store.FindByID(id)
	if !ok {
		return Result{Outcome: NotFound, EntityID: id, Message: fmt.Sprintf("entity %q disappeared after commit", id)}
	}
	return Result{Outcome: Success, EntityID: id, Entity: &stored, Message: string(req.Action) + "d"}
}

// logEvent writes one structured event. Failures log at warn so they show up
// without --debug.
func (o *Orchestrator) logEvent(event string, action Action, fields ...zap.Field) {
	fields = append([]zap.Field{zap.String("action", string(action))}, fields...)

	switch event {
	case "usecase_committed", "usecase_viewed":
		o.logger.Info(event, fields...)
	default:
		o.logger.Warn(event, fields...)
	}
}

func outcomeEvent(action Action, outcome Outcome) string {
	switch outcome {
	case Success:
		if action == ActionView {
			return "usecase_viewed"
		}
		return "usecase_committed"
	case NotFound, ValidationError:
		return "usecase_rejected"
	case Cancelled:
		return "usecase_cancelled"
	default:
		return "usecase_interrupted"
	}
}

func cancelled(id string, current *entity.Entity, err error) Result {
	return Result{Outcome: Cancelled, EntityID: id, Entity: current, Message: "request cancelled", Err: err}
}
