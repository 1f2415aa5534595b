package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

// MetricRecorder is an abstract interface for recording reconciliation metrics.
//
// Implementations must be safe for concurrent use.
type MetricRecorder interface {
	// RecordOutcome records the result of reconciling or deleting one object.
	//
	// ctx: The context for the operation.
	// kind: The kind of the reconciled object.
	// outcome: inserted, merged, reused or deleted.
	RecordOutcome(ctx context.Context, kind model.EntityKind, outcome model.Outcome)

	// RecordError records a failed reconciliation.
	//
	// ctx: The context for the operation.
	// kind: The kind of the object being reconciled.
	// errorKind: The exception kind of the failure (e.g. "finder", "persister").
	RecordError(ctx context.Context, kind model.EntityKind, errorKind string)

	// RecordTransition records an applied curation lifecycle transition.
	RecordTransition(ctx context.Context, kind model.EntityKind, transition model.Transition, to model.Status)

	// RecordDuration records the execution time of a specific operation.
	//
	// ctx: The context for the operation.
	// name: The name of the duration to record (e.g. "pass", "synchronize").
	// duration: The length of the duration to record.
	// tags: Additional tags associated with the duration, e.g. `{"kind": "publication"}`.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}

// CompositeRecorder fans every record out to several recorders.
type CompositeRecorder struct {
	recorders []MetricRecorder
}

// NewCompositeRecorder creates a CompositeRecorder. Nil recorders are skipped.
func NewCompositeRecorder(recorders ...MetricRecorder) *CompositeRecorder {
	c := &CompositeRecorder{}
	for _, r := range recorders {
		if r != nil {
			c.recorders = append(c.recorders, r)
		}
	}
	return c
}

func (c *CompositeRecorder) RecordOutcome(ctx context.Context, kind model.EntityKind, outcome model.Outcome) {
	for _, r := range c.recorders {
		r.RecordOutcome(ctx, kind, outcome)
	}
}

func (c *CompositeRecorder) RecordError(ctx context.Context, kind model.EntityKind, errorKind string) {
	for _, r := range c.recorders {
		r.RecordError(ctx, kind, errorKind)
	}
}

func (c *CompositeRecorder) RecordTransition(ctx context.Context, kind model.EntityKind, transition model.Transition, to model.Status) {
	for _, r := range c.recorders {
		r.RecordTransition(ctx, kind, transition, to)
	}
}

func (c *CompositeRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	for _, r := range c.recorders {
		r.RecordDuration(ctx, name, duration, tags)
	}
}

var _ MetricRecorder = (*CompositeRecorder)(nil)
