// Package config provides the configuration structures of the curation store.
package config

// EmbeddedConfig holds the content of the default configuration file, typically embedded by main.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
	// Format is "console" or "json".
	Format string `yaml:"format"`
	// File enables an additional rotated json log file.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the timezone used for lifecycle event timestamps (e.g., "UTC", "Europe/London").
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// InfrastructureConfig holds logical dependency settings for infrastructure components.
type InfrastructureConfig struct {
	// StoreDBRef is the name of the database connection holding the curated data (e.g., "store").
	StoreDBRef string `yaml:"store_db_ref"`
}

// SynchronizerConfig tunes the reconciliation core.
type SynchronizerConfig struct {
	// ACPrefix is prepended to generated accessions (e.g., "EBI" gives "EBI-42").
	ACPrefix string `yaml:"ac_prefix"`
	// SequenceName is the ia_sequence row used for accession generation.
	SequenceName string `yaml:"sequence_name"`
	// SequenceAttempts bounds retries after an optimistic locking failure on the sequence row.
	SequenceAttempts int `yaml:"sequence_attempts"`
	// PageSize is the number of rows fetched per page by batch iteration.
	PageSize int `yaml:"page_size"`
}

// MetricsConfig controls reconciliation statistics.
type MetricsConfig struct {
	// Enabled turns on the Prometheus recorder.
	Enabled bool `yaml:"enabled"`
	// Async routes recorder calls through a buffered worker.
	Async bool `yaml:"async"`
	// AsyncBufferSize is the channel size of the async recorder.
	AsyncBufferSize int `yaml:"async_buffer_size"`
	// ListenAddress exposes /metrics when non-empty (e.g., ":9090").
	ListenAddress string `yaml:"listen_address"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// ExportConfig configures the parquet export of released publications.
type ExportConfig struct {
	// Compression is one of "SNAPPY", "GZIP", "UNCOMPRESSED".
	Compression string `yaml:"compression"`
	// Parallelism is the number of parquet writer goroutines.
	Parallelism int `yaml:"parallelism"`
	// StorageRef names the storage connection receiving export files.
	StorageRef string `yaml:"storage_ref"`
	// OutputBaseDir is the object prefix of export files inside the storage bucket.
	OutputBaseDir string `yaml:"output_base_dir"`
}

// IntactConfig holds all configuration under the "intact" top-level key.
type IntactConfig struct {
	System         SystemConfig         `yaml:"system"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	Synchronizer   SynchronizerConfig   `yaml:"synchronizer"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Tracing        TracingConfig        `yaml:"tracing"`
	Export         ExportConfig         `yaml:"export"`
	// AdaptorConfigs holds the named database connections, decoded later into DatabaseConfig.
	AdaptorConfigs map[string]interface{} `yaml:"database"`
	// StorageConfigs holds the named storage connections, decoded later into StorageConfig.
	StorageConfigs map[string]interface{} `yaml:"storage"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Intact IntactConfig `yaml:"intact"`
	// EmbeddedConfig holds configuration loaded from an embedded source, not from YAML.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	cfg := &Config{
		Intact: IntactConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging: LoggingConfig{
					Level:      "INFO",
					Format:     "console",
					MaxSizeMB:  100,
					MaxBackups: 3,
					MaxAgeDays: 28,
				},
			},
			Infrastructure: InfrastructureConfig{
				StoreDBRef: "store",
			},
			Synchronizer: SynchronizerConfig{
				ACPrefix:         "EBI",
				SequenceName:     "ac",
				SequenceAttempts: 5,
				PageSize:         100,
			},
			Metrics: MetricsConfig{
				AsyncBufferSize: 256,
			},
			Tracing: TracingConfig{
				ServiceName: "intactdb",
			},
			Export: ExportConfig{
				Compression:   "SNAPPY",
				Parallelism:   2,
				StorageRef:    "export",
				OutputBaseDir: "releases",
			},
		},
	}
	cfg.Intact.AdaptorConfigs = map[string]interface{}{}
	cfg.Intact.StorageConfigs = map[string]interface{}{}
	return cfg
}
