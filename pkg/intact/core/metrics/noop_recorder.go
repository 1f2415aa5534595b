package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

// NoOpMetricRecorder is an implementation of MetricRecorder that does nothing.
// It is used when metrics are disabled or during testing.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder {
	return &NoOpMetricRecorder{}
}

// RecordOutcome does nothing.
func (r *NoOpMetricRecorder) RecordOutcome(ctx context.Context, kind model.EntityKind, outcome model.Outcome) {
}

// RecordError does nothing.
func (r *NoOpMetricRecorder) RecordError(ctx context.Context, kind model.EntityKind, errorKind string) {
}

// RecordTransition does nothing.
func (r *NoOpMetricRecorder) RecordTransition(ctx context.Context, kind model.EntityKind, transition model.Transition, to model.Status) {
}

// RecordDuration does nothing.
func (r *NoOpMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// --- NoOpTracer ---

// NoOpTracer is an implementation of Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

// StartSpan returns ctx unchanged.
func (t *NoOpTracer) StartSpan(ctx context.Context, name string, attributes map[string]string) (context.Context, func()) {
	return ctx, func() {}
}

// RecordError does nothing.
func (t *NoOpTracer) RecordError(ctx context.Context, module string, err error) {}

// RecordEvent does nothing.
func (t *NoOpTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

var _ Tracer = (*NoOpTracer)(nil)
