package metrics

import (
	"context"
	"sync"
	"time"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	metrics "github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// MetricEvent is a recorder call queued for the worker.
type MetricEvent struct {
	Type       string
	Kind       model.EntityKind
	Outcome    model.Outcome
	ErrorKind  string
	Transition model.Transition
	To         model.Status
	Name       string
	Duration   time.Duration
	Tags       map[string]string
}

// Metric event type constants
const (
	MetricEventTypeOutcome    = "outcome"
	MetricEventTypeError      = "error"
	MetricEventTypeTransition = "transition"
	MetricEventTypeDuration   = "duration"
)

// AsyncMetricRecorder pushes recorder calls to a channel and replays them on a worker goroutine.
type AsyncMetricRecorder struct {
	eventQueue   chan MetricEvent
	stopCh       chan struct{}
	closeOnce    sync.Once
	wg           sync.WaitGroup
	syncRecorder metrics.MetricRecorder
}

// NewAsyncMetricRecorder starts the worker. A bufferSize of 0 or less uses 100.
func NewAsyncMetricRecorder(bufferSize int, syncRec metrics.MetricRecorder) *AsyncMetricRecorder {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	r := &AsyncMetricRecorder{
		eventQueue:   make(chan MetricEvent, bufferSize),
		stopCh:       make(chan struct{}),
		syncRecorder: syncRec,
	}
	r.wg.Add(1)
	go r.run()
	logger.Debugf("AsyncMetricRecorder: Worker goroutine started (buffer size: %d).", bufferSize)
	return r
}

func (r *AsyncMetricRecorder) run() {
	defer r.wg.Done()
	for {
		select {
		case event := <-r.eventQueue:
			r.processEvent(event)
		case <-r.stopCh:
			remaining := len(r.eventQueue)
			for i := 0; i < remaining; i++ {
				r.processEvent(<-r.eventQueue)
			}
			logger.Debugf("AsyncMetricRecorder: Worker goroutine stopped. Processed %d remaining events.", remaining)
			return
		}
	}
}

func (r *AsyncMetricRecorder) processEvent(event MetricEvent) {
	// The caller's context may be gone by now.
	ctx := context.Background()
	switch event.Type {
	case MetricEventTypeOutcome:
		r.syncRecorder.RecordOutcome(ctx, event.Kind, event.Outcome)
	case MetricEventTypeError:
		r.syncRecorder.RecordError(ctx, event.Kind, event.ErrorKind)
	case MetricEventTypeTransition:
		r.syncRecorder.RecordTransition(ctx, event.Kind, event.Transition, event.To)
	case MetricEventTypeDuration:
		r.syncRecorder.RecordDuration(ctx, event.Name, event.Duration, event.Tags)
	default:
		logger.Warnf("AsyncMetricRecorder: Unknown metric event type: %s", event.Type)
	}
}

// Close stops the worker after the queued events are processed. It is safe to call twice.
func (r *AsyncMetricRecorder) Close() {
	r.closeOnce.Do(func() {
		logger.Debugf("AsyncMetricRecorder: Sending shutdown signal...")
		close(r.stopCh)
		r.wg.Wait()
		logger.Debugf("AsyncMetricRecorder: Shutdown complete.")
	})
}

// sendEvent drops the event with a warning when the queue is full.
func (r *AsyncMetricRecorder) sendEvent(event MetricEvent) {
	select {
	case r.eventQueue <- event:
	default:
		logger.Warnf("AsyncMetricRecorder: Event queue is full (type: %s, kind: %s). Event discarded.", event.Type, event.Kind)
	}
}

func (r *AsyncMetricRecorder) RecordOutcome(ctx context.Context, kind model.EntityKind, outcome model.Outcome) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeOutcome, Kind: kind, Outcome: outcome})
}

func (r *AsyncMetricRecorder) RecordError(ctx context.Context, kind model.EntityKind, errorKind string) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeError, Kind: kind, ErrorKind: errorKind})
}

func (r *AsyncMetricRecorder) RecordTransition(ctx context.Context, kind model.EntityKind, transition model.Transition, to model.Status) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeTransition, Kind: kind, Transition: transition, To: to})
}

func (r *AsyncMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeDuration, Name: name, Duration: duration, Tags: tags})
}

var _ metrics.MetricRecorder = (*AsyncMetricRecorder)(nil)
