package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	metrics "github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// LoggingRecorder writes every record to the debug log.
type LoggingRecorder struct{}

// NewLoggingRecorder creates a LoggingRecorder.
func NewLoggingRecorder() *LoggingRecorder {
	return &LoggingRecorder{}
}

func (r *LoggingRecorder) RecordOutcome(ctx context.Context, kind model.EntityKind, outcome model.Outcome) {
	logger.Debugf("Metrics: %s %s.", kind, outcome)
}

func (r *LoggingRecorder) RecordError(ctx context.Context, kind model.EntityKind, errorKind string) {
	logger.Debugf("Metrics: %s failed with a %s error.", kind, errorKind)
}

func (r *LoggingRecorder) RecordTransition(ctx context.Context, kind model.EntityKind, transition model.Transition, to model.Status) {
	logger.Debugf("Metrics: %s transition '%s' to '%s'.", kind, transition, to)
}

func (r *LoggingRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	logger.Debugf("Metrics: '%s' took %s %v.", name, duration, tags)
}

var _ metrics.MetricRecorder = (*LoggingRecorder)(nil)
