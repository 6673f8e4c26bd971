package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// Pending is a batch waiting for a human to approve it. Every gated
// submission gets its own record; nothing is merged or replaced.
type Pending struct {
	ID          string          `json:"id"`
	Summary     string          `json:"summary"`
	Directives  []directive.Raw `json:"directives"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

func (e *Executor) enqueuePending(raws []directive.Raw) *Pending {
	p := &Pending{
		ID:          session.NewID(),
		Summary:     directive.SummarizeBatch(raws),
		Directives:  append([]directive.Raw(nil), raws...),
		SubmittedAt: e.deps.Now(),
	}
	e.approval.Lock()
	e.pending = append(e.pending, p)
	n := len(e.pending)
	e.approval.Unlock()

	e.deps.Recorder.PendingApprovals(n)
	e.deps.Logger.Info("batch awaiting approval",
		zap.String("id", p.ID),
		zap.Int("directives", len(raws)),
		zap.String("summary", p.Summary),
	)
	return p
}

// Pending returns the batches awaiting approval, oldest first.
func (e *Executor) Pending() []*Pending {
	e.approval.Lock()
	defer e.approval.Unlock()
	return append([]*Pending(nil), e.pending...)
}

func (e *Executor) take(id string) (*Pending, error) {
	e.approval.Lock()
	defer e.approval.Unlock()
	for i, p := range e.pending {
		if p.ID == id {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			e.deps.Recorder.PendingApprovals(len(e.pending))
			return p, nil
		}
	}
	return nil, notFoundf("Pending batch not found: %s", id)
}

// Approve removes the pending batch id and applies it with approval
// bypassed.
func (e *Executor) Approve(ctx context.Context, id string) (Result, error) {
	p, err := e.take(id)
	if err != nil {
		return Result{}, err
	}
	e.deps.Logger.Info("batch approved", zap.String("id", id))
	return e.Execute(ctx, p.Directives, true), nil
}

// Reject discards the pending batch id without applying it.
func (e *Executor) Reject(id string) error {
	if _, err := e.take(id); err != nil {
		return fmt.Errorf("rejecting: %w", err)
	}
	e.deps.Logger.Info("batch rejected", zap.String("id", id))
	return nil
}
