package metrics

import (
	"go.uber.org/fx"
)

// Module provides the in-memory Statistics. The MetricRecorder and Tracer are assembled
// by internal/app from Statistics and the optional infrastructure implementations.
var Module = fx.Options(
	fx.Provide(NewStatistics),
)
