package metrics

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	metrics "github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	outcomeCounter    *prometheus.CounterVec
	errorCounter      *prometheus.CounterVec
	transitionCounter *prometheus.CounterVec
	durationSeconds   *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a PrometheusRecorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	// Go runtime and process metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		outcomeCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ia_reconcile_outcomes_total",
			Help: "Total reconciled objects by kind and outcome.",
		}, []string{"kind", "outcome"}),
		errorCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ia_reconcile_errors_total",
			Help: "Total reconciliation failures by kind and error kind.",
		}, []string{"kind", "error_kind"}),
		transitionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ia_lifecycle_transitions_total",
			Help: "Total applied curation lifecycle transitions.",
		}, []string{"kind", "transition", "to"}),
		durationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ia_operation_duration_seconds",
			Help:    "Duration of store operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"name", "tags"}),
	}

	registry.MustRegister(r.outcomeCounter)
	registry.MustRegister(r.errorCounter)
	registry.MustRegister(r.transitionCounter)
	registry.MustRegister(r.durationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *PrometheusRecorder) RecordOutcome(ctx context.Context, kind model.EntityKind, outcome model.Outcome) {
	r.outcomeCounter.WithLabelValues(string(kind), string(outcome)).Inc()
}

func (r *PrometheusRecorder) RecordError(ctx context.Context, kind model.EntityKind, errorKind string) {
	r.errorCounter.WithLabelValues(string(kind), errorKind).Inc()
}

func (r *PrometheusRecorder) RecordTransition(ctx context.Context, kind model.EntityKind, transition model.Transition, to model.Status) {
	r.transitionCounter.WithLabelValues(string(kind), string(transition), string(to)).Inc()
}

// RecordDuration observes duration under name. Tags are folded into a single sorted label
// so that callers may pass arbitrary keys without registering new label sets.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.durationSeconds.WithLabelValues(name, foldTags(tags)).Observe(duration.Seconds())
	logger.Debugf("Metrics: '%s' took %.3fs", name, duration.Seconds())
}

func foldTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(tags))
	for k, v := range tags {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
