// Package config defines database connection settings and their decoding from the
// generic connection maps held in the application configuration.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes" mapstructure:"conn_max_lifetime_minutes"`
}

// DatabaseConfig describes one named connection.
type DatabaseConfig struct {
	Type     string     `yaml:"type" mapstructure:"type"` // "postgres", "mysql" or "sqlite".
	Host     string     `yaml:"host" mapstructure:"host"`
	Port     int        `yaml:"port" mapstructure:"port"`
	Database string     `yaml:"database" mapstructure:"database"` // Database name, or the file path for sqlite.
	User     string     `yaml:"user" mapstructure:"user"`
	Password string     `yaml:"password" mapstructure:"password"`
	Schema   string     `yaml:"schema,omitempty" mapstructure:"schema"`
	Sslmode  string     `yaml:"sslmode" mapstructure:"sslmode"`
	Pool     PoolConfig `yaml:"pool" mapstructure:"pool"`
	// LogLevel is the gorm log level: "SILENT", "ERROR", "WARN" or "INFO".
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// Decode converts a raw connection map (from YAML or environment overrides) into a DatabaseConfig.
// Environment overrides arrive as strings, so weakly typed input is accepted.
func Decode(raw interface{}) (DatabaseConfig, error) {
	var cfg DatabaseConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, fmt.Errorf("decode database config: %w", err)
	}
	return cfg, nil
}

// Lookup finds and decodes the named connection in a connections map.
func Lookup(connections map[string]interface{}, name string) (DatabaseConfig, error) {
	raw, ok := connections[name]
	if !ok {
		return DatabaseConfig{}, fmt.Errorf("database configuration '%s' not found", name)
	}
	return Decode(raw)
}
