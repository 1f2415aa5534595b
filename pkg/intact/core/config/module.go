package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts *LoggingConfig from *Config.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Intact.System.Logging
}

// NewSynchronizerConfigProvider extracts *SynchronizerConfig from *Config.
func NewSynchronizerConfigProvider(cfg *Config) *SynchronizerConfig {
	return &cfg.Intact.Synchronizer
}

// Module provides the configuration and its sections to Fx.
var Module = fx.Options(
	fx.Provide(
		NewConfigProvider,
		NewLoggingConfigProvider,
		NewSynchronizerConfigProvider,
		func() EnvironmentExpander { return NewOsEnvironmentExpander() },
	),
)
