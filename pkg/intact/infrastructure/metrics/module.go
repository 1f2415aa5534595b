package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	config "github.com/tigerroll/intactdb/pkg/intact/core/config"
	metrics "github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// RecorderParams defines the dependencies of NewMetricRecorder.
type RecorderParams struct {
	fx.In
	Lifecycle  fx.Lifecycle
	Config     *config.Config
	Statistics *metrics.Statistics
	Prometheus *PrometheusRecorder
}

// NewMetricRecorder assembles the application recorder. Statistics and the debug log always
// receive records; Prometheus joins when metrics are enabled. With async enabled the whole
// fan-out runs behind an AsyncMetricRecorder that drains on stop.
func NewMetricRecorder(p RecorderParams) metrics.MetricRecorder {
	cfg := p.Config.Intact.Metrics
	recorders := []metrics.MetricRecorder{p.Statistics, NewLoggingRecorder()}
	if cfg.Enabled {
		recorders = append(recorders, p.Prometheus)
	}
	composite := metrics.NewCompositeRecorder(recorders...)
	if !cfg.Async {
		return composite
	}
	async := NewAsyncMetricRecorder(cfg.AsyncBufferSize, composite)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			async.Close()
			return nil
		},
	})
	logger.Debugf("MetricRecorder decorated with asynchronous wrapper.")
	return async
}

// NewTracer returns an OpenTelemetry tracer exporting over OTLP when tracing is enabled and a
// no-op tracer otherwise. The provider is flushed and shut down on stop.
func NewTracer(lc fx.Lifecycle, cfg *config.Config) (metrics.Tracer, error) {
	tracing := cfg.Intact.Tracing
	if !tracing.Enabled {
		return metrics.NewNoOpTracer(), nil
	}
	provider, err := NewOTLPTracerProvider(context.Background(), tracing)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})
	return NewOpenTelemetryTracer(provider), nil
}

// NewMetricsServer builds the HTTP server exposing /metrics on addr.
func NewMetricsServer(addr string, prom *PrometheusRecorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// RegisterMetricsServer serves the Prometheus registry while the application runs when a
// listen address is configured.
func RegisterMetricsServer(lc fx.Lifecycle, cfg *config.Config, prom *PrometheusRecorder) {
	addr := cfg.Intact.Metrics.ListenAddress
	if addr == "" {
		return
	}
	srv := NewMetricsServer(addr, prom)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorf("Metrics server stopped: %v", err)
				}
			}()
			logger.Infof("Serving metrics on %s/metrics.", ln.Addr())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// Module provides the application MetricRecorder and Tracer.
var Module = fx.Options(
	fx.Provide(
		NewPrometheusRecorder,
		NewMetricRecorder,
		NewTracer,
	),
	fx.Invoke(RegisterMetricsServer),
)
