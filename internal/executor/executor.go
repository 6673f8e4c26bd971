// Package executor applies batches of directives to session state.
//
// The Executor is the single writer of state: it holds its lock for the
// whole batch, routes each directive to a built-in handler or a plugin
// action, records the outcome, and releases the directive's outbound
// messages only when it succeeds. A failed directive never stops the
// batch and nothing already applied is rolled back.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/catalog"
	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/condition"
	"github.com/cory-johannsen/dmengine/internal/game/dice"
	"github.com/cory-johannsen/dmengine/internal/game/lighting"
	"github.com/cory-johannsen/dmengine/internal/game/session"
	"github.com/cory-johannsen/dmengine/internal/plugin"
)

// DefaultMaxBatch is the number of directives applied per call; the rest
// of a longer batch is dropped.
const DefaultMaxBatch = 50

// Outcome labels passed to Recorder.
const (
	OutcomeExecuted = "executed"
	OutcomeFailed   = "failed"
)

// Failure pairs a directive with the reason it was not applied.
type Failure struct {
	Directive directive.Raw `json:"directive"`
	Reason    string        `json:"reason"`
}

// Result partitions a batch. PendingID is set, and both lists are empty,
// when the batch was queued for approval.
type Result struct {
	Executed  []directive.Raw `json:"executed"`
	Failed    []Failure       `json:"failed"`
	PendingID string          `json:"pendingId,omitempty"`
}

// Enqueuer accepts outbound messages without blocking.
type Enqueuer interface {
	Enqueue(msgs ...broadcast.Message) int
}

// ChatSink receives the narrative lines successful directives produce.
type ChatSink interface {
	AddMessage(sender, content string)
}

// Recorder observes dispatch outcomes.
type Recorder interface {
	DirectiveExecuted(kind, outcome string)
	PendingApprovals(n int)
}

type nopRecorder struct{}

func (nopRecorder) DirectiveExecuted(string, string) {}
func (nopRecorder) PendingApprovals(int)             {}

type nopSink struct{}

func (nopSink) AddMessage(string, string) {}

type nopQueue struct{}

func (nopQueue) Enqueue(...broadcast.Message) int { return 0 }

// Config tunes the Executor.
type Config struct {
	// MaxBatch bounds a batch; 0 uses DefaultMaxBatch.
	MaxBatch int
	// RequireApproval queues every batch not submitted with bypass.
	RequireApproval bool
}

// Deps are the Executor's collaborators. Store and Roller are required;
// the rest default to no-ops or built-in catalogs.
type Deps struct {
	Store      *session.Store
	Roller     *dice.Roller
	Bus        *plugin.Bus
	Actions    *plugin.Actions
	Queue      Enqueuer
	Chat       ChatSink
	Catalog    *catalog.Lazy
	Lights     *lighting.Catalog
	Conditions *condition.Registry
	Recorder   Recorder
	Logger     *zap.Logger
	Now        func() time.Time
}

// Executor applies directive batches. All methods are safe for concurrent
// use; batches are applied one at a time.
type Executor struct {
	cfg  Config
	deps Deps

	mu sync.Mutex

	approval  sync.Mutex
	requireOK bool
	pending   []*Pending
}

// New builds an Executor.
//
// Precondition: deps.Store and deps.Roller must be non-nil.
func New(cfg Config, deps Deps) *Executor {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Bus == nil {
		deps.Bus = plugin.NewBus(deps.Logger)
	}
	if deps.Actions == nil {
		deps.Actions = plugin.NewActions()
	}
	if deps.Queue == nil {
		deps.Queue = nopQueue{}
	}
	if deps.Chat == nil {
		deps.Chat = nopSink{}
	}
	if deps.Lights == nil {
		deps.Lights = lighting.Default()
	}
	if deps.Conditions == nil {
		deps.Conditions = condition.DefaultRegistry()
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Executor{cfg: cfg, deps: deps, requireOK: cfg.RequireApproval}
}

// Execute applies raws to the session state.
//
// If approval is required and bypass is false the whole batch is queued
// as one pending record and an empty Result carrying its id is returned.
// Otherwise at most MaxBatch directives are applied in order; each either
// lands in Executed or in Failed with its reason.
//
// Postcondition: never returns a handler error; ctx only bounds catalog
// loading and plugin calls.
func (e *Executor) Execute(ctx context.Context, raws []directive.Raw, bypass bool) Result {
	if !bypass && e.ApprovalRequired() {
		p := e.enqueuePending(raws)
		return Result{PendingID: p.ID}
	}
	if len(raws) > e.cfg.MaxBatch {
		e.deps.Logger.Info("batch truncated",
			zap.Int("submitted", len(raws)),
			zap.Int("max", e.cfg.MaxBatch),
		)
		raws = raws[:e.cfg.MaxBatch]
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{Executed: []directive.Raw{}, Failed: []Failure{}}
	_ = e.deps.Store.Mutate(func(st *session.State) error {
		for _, raw := range raws {
			applied, err := e.executeOne(ctx, st, raw)
			if err != nil {
				res.Failed = append(res.Failed, Failure{Directive: applied, Reason: err.Error()})
				e.deps.Recorder.DirectiveExecuted(kindLabel(applied), OutcomeFailed)
				e.deps.Logger.Info("directive failed",
					zap.String("kind", applied.Kind()),
					zap.String("reason", err.Error()),
				)
				continue
			}
			res.Executed = append(res.Executed, applied)
			e.deps.Recorder.DirectiveExecuted(kindLabel(applied), OutcomeExecuted)
		}
		return nil
	})
	return res
}

// executeOne runs the before hook, applies the directive, and on success
// flushes its messages and runs the after hooks, asynchronous ones
// included, within ctx. It returns the directive
// as applied, which a before hook may have replaced.
func (e *Executor) executeOne(ctx context.Context, st *session.State, raw directive.Raw) (applied directive.Raw, err error) {
	applied = raw
	if e.deps.Bus.HasSubscribers(plugin.EventBeforeAction) {
		applied = replacement(e.deps.Bus.Emit(plugin.EventBeforeAction, raw), raw)
	}

	out := &broadcast.Outbox{}
	c := &Context{
		State:      st,
		Map:        st.ActiveMap(),
		Roller:     e.deps.Roller,
		Out:        out,
		Sync:       broadcast.NewSynchronizer(out),
		Catalog:    e.deps.Catalog,
		Lights:     e.deps.Lights,
		Conditions: e.deps.Conditions,
		Logger:     e.deps.Logger.With(zap.String("kind", applied.Kind())),
		ctx:        ctx,
	}

	if err := e.dispatch(c, applied); err != nil {
		return applied, err
	}

	e.deps.Queue.Enqueue(out.Messages()...)
	for _, n := range c.notices {
		e.deps.Chat.AddMessage("DM", n)
	}
	if e.deps.Bus.HasSubscribers(plugin.EventAfterAction) {
		if _, err := e.deps.Bus.EmitAsync(ctx, plugin.EventAfterAction, applied); err != nil {
			e.deps.Logger.Info("after-action hooks cut short", zap.String("kind", applied.Kind()), zap.Error(err))
		}
	}
	return applied, nil
}

func kindLabel(raw directive.Raw) string {
	if k := raw.Kind(); k != "" {
		return k
	}
	return "unknown"
}

// replacement returns the payload a before hook produced if it is still a
// directive, otherwise the original.
func replacement(payload any, original directive.Raw) directive.Raw {
	var r directive.Raw
	switch p := payload.(type) {
	case directive.Raw:
		r = p
	case map[string]any:
		r = directive.Raw(p)
	default:
		return original
	}
	if r.Kind() == "" {
		return original
	}
	return r
}

// dispatch decodes raw and routes it, converting a handler panic into a
// failure.
func (e *Executor) dispatch(c *Context, raw directive.Raw) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.Logger.Error("directive handler panicked", zap.Any("panic", r))
			err = fmt.Errorf("%s failed: %v", raw.Kind(), r)
		}
	}()

	d, err := directive.Decode(raw)
	if err != nil {
		return classify(ErrValidation, err)
	}
	if op, ok := d.(directive.Opaque); ok {
		return e.applyPlugin(c, op)
	}
	return apply(c, d)
}

// applyPlugin runs a registered plugin action.
func (e *Executor) applyPlugin(c *Context, op directive.Opaque) error {
	handler, ok := e.deps.Actions.Lookup(op.Name)
	if !ok {
		return &classified{class: ErrUnknownKind, msg: "Unknown directive kind: " + op.Name}
	}
	return handler(c.ctx, plugin.ActionCall{
		Directive: op,
		State:     c.State,
		ActiveMap: c.Map,
		Sync:      c.Sync,
	})
}

// SetApprovalRequired turns approval gating on or off.
func (e *Executor) SetApprovalRequired(on bool) {
	e.approval.Lock()
	defer e.approval.Unlock()
	e.requireOK = on
}

// ApprovalRequired reports whether approval gating is on.
func (e *Executor) ApprovalRequired() bool {
	e.approval.Lock()
	defer e.approval.Unlock()
	return e.requireOK
}
