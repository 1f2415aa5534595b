package logger

import "go.uber.org/fx"

// Module is an Fx module that routes the fx event log through this package.
var Module = fx.Options(
	fx.WithLogger(NewFxLoggerAdapter),
)
